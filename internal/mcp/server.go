package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/p4x/internal/model"
	"github.com/joescharf/p4x/internal/store"
	"github.com/joescharf/p4x/internal/workspace"
)

// Server exposes the changelist state of one workspace as MCP tools, so an
// editor agent can inspect pending work without shelling out to p4 itself.
type Server struct {
	ws        *workspace.Workspace
	snapshots store.Store // optional, backs the history tool
}

// NewServer creates the MCP server wrapper.
func NewServer(ws *workspace.Workspace, snapshots store.Store) *Server {
	return &Server{ws: ws, snapshots: snapshots}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("p4x", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.changelistsTool())
	srv.AddTool(s.changelistFilesTool())
	srv.AddTool(s.openedTool())
	srv.AddTool(s.refreshTool())
	srv.AddTool(s.historyTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// groups returns the current projected state, refreshing first when nothing
// has been fetched yet.
func (s *Server) groups(ctx context.Context) ([]model.ResourceGroup, error) {
	if s.ws.Provider.UpdatedAt().IsZero() {
		if err := s.ws.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	return s.ws.Groups(), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

type fileOut struct {
	DepotPath       string `json:"depot_path"`
	LocalPath       string `json:"local_path,omitempty"`
	Operation       string `json:"operation"`
	Shelved         bool   `json:"shelved"`
	ResolveFromPath string `json:"resolve_from,omitempty"`
	FileType        string `json:"file_type,omitempty"`
}

func toFileOut(res model.FileResource) fileOut {
	return fileOut{
		DepotPath:       res.DepotPath,
		LocalPath:       res.LocalPath,
		Operation:       res.Operation.String(),
		Shelved:         res.Shelved,
		ResolveFromPath: res.ResolveFromPath,
		FileType:        res.FileType,
	}
}

// p4x_changelists
func (s *Server) changelistsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("p4x_changelists",
		mcp.WithDescription("List pending changelists as resource groups. Returns a JSON array with id, label, count, and file totals."),
	)
	return tool, s.handleChangelists
}

func (s *Server) handleChangelists(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groups, err := s.groups(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("refresh failed: %v", err)), nil
	}

	type groupOut struct {
		ID    string `json:"id"`
		Label string `json:"label"`
		Count int    `json:"count"`
		Files int    `json:"files"`
	}
	out := make([]groupOut, len(groups))
	for i, g := range groups {
		out[i] = groupOut{ID: g.ID, Label: g.Label, Count: g.Count, Files: len(g.Resources)}
	}
	return jsonResult(out)
}

// p4x_changelist_files
func (s *Server) changelistFilesTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("p4x_changelist_files",
		mcp.WithDescription("List the files of one changelist group. Shelved files come before open files."),
		mcp.WithString("group", mcp.Required(), mcp.Description(`Group id: "default" or "pending:<num>"`)),
	)
	return tool, s.handleChangelistFiles
}

func (s *Server) handleChangelistFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groupID, err := request.RequireString("group")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: group"), nil
	}

	groups, err := s.groups(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("refresh failed: %v", err)), nil
	}

	for _, g := range groups {
		if g.ID != groupID {
			continue
		}
		out := make([]fileOut, len(g.Resources))
		for i, res := range g.Resources {
			out[i] = toFileOut(res)
		}
		return jsonResult(out)
	}
	return mcp.NewToolResultError(fmt.Sprintf("no such group: %s", groupID)), nil
}

// p4x_opened
func (s *Server) openedTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("p4x_opened",
		mcp.WithDescription("List every file opened in the workspace across all changelists, excluding shelved-only entries."),
	)
	return tool, s.handleOpened
}

func (s *Server) handleOpened(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groups, err := s.groups(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("refresh failed: %v", err)), nil
	}

	out := []fileOut{}
	for _, g := range groups {
		for _, res := range g.Resources {
			if res.Shelved {
				continue
			}
			f := toFileOut(res)
			out = append(out, f)
		}
	}
	return jsonResult(out)
}

// p4x_refresh
func (s *Server) refreshTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("p4x_refresh",
		mcp.WithDescription("Force a refresh against the server and report group and file counts."),
	)
	return tool, s.handleRefresh
}

func (s *Server) handleRefresh(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.ws.Refresh(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("refresh failed: %v", err)), nil
	}

	groups := s.ws.Groups()
	files := 0
	for _, g := range groups {
		files += len(g.Resources)
	}
	return jsonResult(map[string]int{"groups": len(groups), "files": files})
}

// p4x_history
func (s *Server) historyTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("p4x_history",
		mcp.WithDescription("List stored refresh snapshots for this workspace, newest first."),
		mcp.WithString("limit", mcp.Description("Maximum snapshots to return (default 10)")),
	)
	return tool, s.handleHistory
}

func (s *Server) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.snapshots == nil {
		return mcp.NewToolResultError("snapshot store not configured"), nil
	}
	limit := 10
	if raw := request.GetString("limit", ""); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return mcp.NewToolResultError(fmt.Sprintf("invalid limit: %s", raw)), nil
		}
		limit = n
	}

	snaps, err := s.snapshots.ListSnapshots(ctx, s.ws.Provider.ClientName, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list snapshots: %v", err)), nil
	}

	type snapOut struct {
		ID      string `json:"id"`
		TakenAt string `json:"taken_at"`
		Groups  int    `json:"groups"`
	}
	out := make([]snapOut, len(snaps))
	for i, snap := range snaps {
		out[i] = snapOut{ID: snap.ID, TakenAt: snap.TakenAt.Format("2006-01-02 15:04:05"), Groups: len(snap.Groups)}
	}
	return jsonResult(out)
}
