package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all pqhint MCP tools with the server
func RegisterTools(s *server.MCPServer, handlers *HandlerSet) {
	if handlers == nil {
		handlers = NewHandlerSet(nil)
	}

	// Tool 1: recommend_edits - nearest-reference edit hints
	s.AddTool(mcp.NewTool("recommend_edits",
		mcp.WithDescription("Recommend block additions and deletions that move learner projects towards the most similar better-scoring reference project (pq-gram tree distance)"),
		mcp.WithArray("paths",
			mcp.Required(),
			mcp.WithStringItems(),
			mcp.Description("Source project files or directories (.sb3, .json, .yaml, .py)")),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Folder containing the reference projects")),
		mcp.WithString("csv",
			mcp.Required(),
			mcp.Description("Test results table: projectname,<tests...>,passed,failed,error,[skip],coverage")),
		mcp.WithNumber("min_percentage",
			mcp.Description("Minimum pass percentage a reference needs (default: 90)")),
		mcp.WithBoolean("individual",
			mcp.Description("Only consider references passing every test the source passes plus at least one more (default: false)")),
		mcp.WithNumber("seed",
			mcp.Description("Seed for tie breaking between equidistant references, 0 = random (default: 0)")),
		mcp.WithNumber("p",
			mcp.Description("pq-gram stem length (default: 2)")),
		mcp.WithNumber("q",
			mcp.Description("pq-gram base length (default: 3)")),
		mcp.WithString("intermediate_groups",
			mcp.Enum("best_effort", "strict"),
			mcp.Description("Handling of edit groups without a placement: best_effort or strict (default: best_effort)")),
		mcp.WithBoolean("recursive",
			mcp.Description("Recursively collect source directories (default: true)")),
		mcp.WithString("output_mode",
			mcp.Enum("summary", "full"),
			mcp.Description("summary lists actions per project, full returns every placement (default: summary)")),
	), handlers.HandleRecommendEdits)

	// Tool 2: profile_distance - pq-gram distance of two projects
	s.AddTool(mcp.NewTool("profile_distance",
		mcp.WithDescription("Compute the pq-gram profile distance (0 = identical, 1 = disjoint) between two projects"),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("First project file")),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Second project file")),
		mcp.WithNumber("p",
			mcp.Description("pq-gram stem length (default: 2)")),
		mcp.WithNumber("q",
			mcp.Description("pq-gram base length (default: 3)")),
	), handlers.HandleProfileDistance)
}
