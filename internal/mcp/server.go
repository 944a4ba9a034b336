// Package mcp wires the plan store into an MCP server speaking over stdio.
//
// This is the composition root: it creates the tools and registers them; no
// business logic lives here.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/felixgeelhaar/strata/internal/plan"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates the MCP server with the full tool catalog registered.
// defaultPlan, when positive, is the plan used by calls that omit plan_id.
func New(store *plan.Store, defaultPlan int64) *server.MCPServer {
	s := server.NewMCPServer(
		"strata",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	d := deps{store: store, defaultPlan: defaultPlan}

	for _, tool := range []interface {
		Definition() mcp.Tool
		Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
	}{
		&PlanCreateTool{d},
		&PlanGetTool{d},
		&PlanListTool{d},
		&PlanDeleteTool{d},
		&TaskAddTool{d},
		&TaskCompleteTool{d},
		&TaskUncompleteTool{d},
		&TaskRemoveTool{d},
		&TaskChangeLevelTool{d},
		&MoveToTool{d},
		&GetCurrentTool{d},
		&GetDistilledContextTool{d},
		&NotesGetTool{d},
		&NotesSetTool{d},
		&NotesDeleteTool{d},
		&GenerateLeaseTool{d},
		&GetGuideTool{d},
	} {
		s.AddTool(tool.Definition(), tool.Handle)
	}

	return s
}

// ServeStdio runs the server over stdin/stdout until the stream closes.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

const instructions = `Strata is a hierarchical planning engine. Organize work into plans, break
plans into tasks across abstraction levels (planning, isolation, ordering,
implementation), and complete tasks through the lease handshake:
generate_lease first, then task_complete with the returned token and a
summary. Call get_guide for the full workflow.`
