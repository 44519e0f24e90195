package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/jobassist/internal/contract"
	"github.com/kalambet/jobassist/internal/search"
	"github.com/kalambet/jobassist/internal/shell"
)

// New creates an MCP server exposing the job search as the search_jobs tool.
func New(s shell.Searcher, version string) *server.MCPServer {
	srv := server.NewMCPServer(
		"jobassist",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions("jobassist: live job listings, required skills and a preparation roadmap for a job role."),
		server.WithRecovery(),
	)

	srv.AddTool(
		mcp.NewTool("search_jobs",
			mcp.WithDescription("Search live job listings for a role and return an overview, required skills, interview topics and a preparation roadmap."),
			mcp.WithString("role", mcp.Description("Job role to search for (e.g. Frontend Developer)"), mcp.Required()),
			mcp.WithString("location", mcp.Description("Optional location filter")),
		),
		searchJobs(s),
	)

	return srv
}

func searchJobs(s shell.Searcher) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		role, err := req.RequireString("role")
		if err != nil {
			return mcpError("role is required"), nil
		}

		q := contract.NewSearchQuery(role, req.GetString("location", ""))
		if err := q.Validate(); err != nil {
			return mcpError("role is required"), nil
		}

		result, err := s.Search(ctx, q)
		if err != nil {
			return mcpError(describe(err)), nil
		}

		b, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

// describe keeps the user-facing message but appends the cause, which is
// useful to an agent driving the tool.
func describe(err error) string {
	var malformed *search.MalformedResponseError
	var failed *search.RequestFailedError
	switch {
	case errors.As(err, &malformed):
		return fmt.Sprintf("%s (malformed response: %v)", shell.FailureMessage, err)
	case errors.As(err, &failed) && failed.StatusCode != 0:
		return fmt.Sprintf("%s (backend returned status %d)", shell.FailureMessage, failed.StatusCode)
	default:
		return fmt.Sprintf("%s (%v)", shell.FailureMessage, err)
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
