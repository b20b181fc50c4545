package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joescharf/p4x/internal/model"
)

// Suggestion holds the LLM-generated changelist description.
type Suggestion struct {
	Summary string `json:"summary"`
	Body    string `json:"body"`
}

// Description renders the suggestion in changelist-spec form: summary line,
// blank line, body.
func (s *Suggestion) Description() string {
	if s.Body == "" {
		return s.Summary
	}
	return s.Summary + "\n\n" + s.Body
}

// Client wraps the Anthropic API for changelist description suggestion.
type Client struct {
	api   *anthropic.Client
	model anthropic.Model
}

// NewClient creates an LLM client with the given API key and model.
func NewClient(apiKey, modelName string) *Client {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := anthropic.NewClient(opts...)
	return &Client{
		api:   &client,
		model: anthropic.Model(modelName),
	}
}

// buildPrompt constructs the system and user prompts for description
// suggestion from the changelist's file operations and diff.
func buildPrompt(resources []model.FileResource, diff string) (system string, user string) {
	system = `You write changelist descriptions for a version control system. Given a list of file operations and a unified diff, return ONLY a JSON object with these fields:
- "summary": one concise line (under 70 characters) describing the change
- "body": 1-5 sentences of detail, or an empty string when the summary suffices

Rules:
- Describe WHAT changed and WHY it appears to have changed, never list the file names back
- Use imperative mood for the summary ("Fix parser crash", not "Fixed")
- Return valid JSON only, no markdown fencing or explanation`

	var sb strings.Builder
	sb.WriteString("File operations:\n")
	for _, res := range resources {
		fmt.Fprintf(&sb, "- %s %s\n", res.Operation, res.DepotPath)
	}
	if diff != "" {
		sb.WriteString("\nDiff:\n")
		sb.WriteString(diff)
	}
	user = sb.String()
	return
}

// SuggestDescription asks the model for a changelist description covering
// the given resources and diff.
func (c *Client) SuggestDescription(ctx context.Context, resources []model.FileResource, diff string) (*Suggestion, error) {
	systemPrompt, userPrompt := buildPrompt(resources, diff)

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API call: %w", err)
	}

	// Extract text from response
	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}

	if text == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	text = stripFencing(text)

	var suggestion Suggestion
	if err := json.Unmarshal([]byte(text), &suggestion); err != nil {
		return nil, fmt.Errorf("parse LLM response as JSON: %w\nraw response: %s", err, text)
	}
	if suggestion.Summary == "" {
		return nil, fmt.Errorf("LLM returned empty summary")
	}

	return &suggestion, nil
}

// stripFencing removes markdown code fencing if present.
func stripFencing(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		lines := strings.SplitN(text, "\n", 2)
		if len(lines) > 1 {
			text = lines[1]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}
	return text
}
