package p4

import (
	"strings"
)

// ChangeSpec is the form read from `p4 change -o` and written back through
// `p4 change -i`. Only the fields p4x edits are modeled individually; the
// rest round-trip untouched through Raw so an unknown server field is never
// dropped on save.
type ChangeSpec struct {
	Change      string // "new" or a decimal number
	Client      string
	User        string
	Status      string
	Description string   // newline-joined description lines
	Files       []string // depot paths, comment suffixes stripped
	Jobs        []string

	rawOrder []string          // field order as read
	raw      map[string]string // unmodeled fields, verbatim bodies
}

var specFields = map[string]bool{
	"Change": true, "Client": true, "User": true, "Status": true,
	"Description": true, "Files": true, "Jobs": true,
}

// ParseChangeSpec parses the tagged form output. Comment lines (#) are
// skipped. A field is a line "Field:" optionally followed by an inline value,
// with tab-indented continuation lines.
func ParseChangeSpec(output string) *ChangeSpec {
	spec := &ChangeSpec{raw: make(map[string]string)}

	field := ""
	var body []string

	flush := func() {
		if field == "" {
			return
		}
		text := strings.Join(body, "\n")
		switch field {
		case "Change":
			spec.Change = strings.TrimSpace(text)
		case "Client":
			spec.Client = strings.TrimSpace(text)
		case "User":
			spec.User = strings.TrimSpace(text)
		case "Status":
			spec.Status = strings.TrimSpace(text)
		case "Description":
			spec.Description = strings.TrimSpace(text)
		case "Files":
			for _, l := range body {
				l = strings.TrimSpace(l)
				// strip trailing "# action" comments
				if i := strings.Index(l, "\t#"); i >= 0 {
					l = strings.TrimSpace(l[:i])
				} else if i := strings.Index(l, " #"); i >= 0 {
					l = strings.TrimSpace(l[:i])
				}
				if l != "" {
					spec.Files = append(spec.Files, l)
				}
			}
		case "Jobs":
			for _, l := range body {
				if l = strings.TrimSpace(l); l != "" {
					spec.Jobs = append(spec.Jobs, l)
				}
			}
		default:
			spec.raw[field] = strings.TrimRight(text, "\n")
		}
		spec.rawOrder = append(spec.rawOrder, field)
		field = ""
		body = nil
	}

	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "\t") {
			if field != "" {
				body = append(body, strings.TrimPrefix(line, "\t"))
			}
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		name, rest, found := strings.Cut(line, ":")
		if !found || strings.ContainsAny(name, " \t") {
			continue
		}
		flush()
		field = name
		if rest = strings.TrimSpace(rest); rest != "" {
			body = append(body, rest)
		}
	}
	flush()
	return spec
}

// Marshal renders the spec in the tagged form `p4 change -i` accepts.
func (s *ChangeSpec) Marshal() string {
	var b strings.Builder

	writeBlock := func(name string, lines []string) {
		b.WriteString(name)
		b.WriteString(":\n")
		for _, l := range lines {
			b.WriteString("\t")
			b.WriteString(l)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	writeInline := func(name, value string) {
		b.WriteString(name)
		b.WriteString(":\t")
		b.WriteString(value)
		b.WriteString("\n\n")
	}

	order := s.rawOrder
	if len(order) == 0 {
		order = []string{"Change", "Client", "User", "Status", "Description", "Files"}
	}
	for _, name := range order {
		switch name {
		case "Change":
			writeInline("Change", orDefault(s.Change, "new"))
		case "Client":
			if s.Client != "" {
				writeInline("Client", s.Client)
			}
		case "User":
			if s.User != "" {
				writeInline("User", s.User)
			}
		case "Status":
			if s.Status != "" {
				writeInline("Status", s.Status)
			}
		case "Description":
			lines := strings.Split(s.Description, "\n")
			if s.Description == "" {
				lines = []string{""}
			}
			writeBlock("Description", lines)
		case "Files":
			if len(s.Files) > 0 {
				writeBlock("Files", s.Files)
			}
		case "Jobs":
			if len(s.Jobs) > 0 {
				writeBlock("Jobs", s.Jobs)
			}
		default:
			if body, ok := s.raw[name]; ok {
				if strings.Contains(body, "\n") {
					writeBlock(name, strings.Split(body, "\n"))
				} else {
					writeInline(name, body)
				}
			}
		}
	}
	return b.String()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
