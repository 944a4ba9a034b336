package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/felixgeelhaar/strata/internal/guide"
	"github.com/felixgeelhaar/strata/internal/plan"
)

// deps is what every tool needs: the store and the default plan fallback.
type deps struct {
	store       *plan.Store
	defaultPlan int64
}

// planID resolves the plan_id argument, falling back to the configured
// default plan when the caller omits it.
func (d *deps) planID(req mcp.CallToolRequest) (int64, error) {
	id := int64(req.GetInt("plan_id", 0))
	if id == 0 {
		id = d.defaultPlan
	}
	if id <= 0 {
		return 0, fmt.Errorf("plan_id is required (no default plan configured)")
	}
	return id, nil
}

func (d *deps) path(req mcp.CallToolRequest, key string) (plan.Path, error) {
	raw, err := req.RequireString(key)
	if err != nil {
		return nil, err
	}
	return plan.ParsePath(raw)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func errResult(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

// planIDOpt is the shared plan_id parameter description.
func planIDOpt() mcp.ToolOption {
	return mcp.WithNumber("plan_id",
		mcp.Description("Plan identifier. Falls back to the configured default plan when omitted."))
}

func pathOpt(desc string) mcp.ToolOption {
	return mcp.WithString("path", mcp.Required(), mcp.Description(desc))
}

// PlanCreateTool creates plans.
type PlanCreateTool struct{ deps }

func (t *PlanCreateTool) Definition() mcp.Tool {
	return mcp.NewTool("plan_create",
		mcp.WithDescription("Create a new plan. Keep the goal concise like a title; put detail in notes."),
		mcp.WithString("goal", mcp.Required(), mcp.Description("What the plan should achieve")),
		mcp.WithString("notes", mcp.Description("Optional context, requirements, or acceptance criteria")),
	)
}

func (t *PlanCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goal, err := req.RequireString("goal")
	if err != nil {
		return errResult(err)
	}
	id, err := t.store.CreatePlan(goal, req.GetString("notes", ""))
	if err != nil {
		return errResult(err)
	}
	return jsonResult(map[string]any{"plan_id": id, "goal": goal})
}

// PlanGetTool fetches a full plan tree.
type PlanGetTool struct{ deps }

func (t *PlanGetTool) Definition() mcp.Tool {
	return mcp.NewTool("plan_get",
		mcp.WithDescription("Get the full plan tree including completion state and the current focus."),
		planIDOpt(),
	)
}

func (t *PlanGetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := t.planID(req)
	if err != nil {
		return errResult(err)
	}
	p, err := t.store.GetPlan(id)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(p)
}

// PlanListTool lists all plans.
type PlanListTool struct{ deps }

func (t *PlanListTool) Definition() mcp.Tool {
	return mcp.NewTool("plan_list",
		mcp.WithDescription("List every plan with its id, goal, and task count."),
	)
}

func (t *PlanListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plans, err := t.store.ListPlans()
	if err != nil {
		return errResult(err)
	}
	return jsonResult(map[string]any{"plans": plans})
}

// PlanDeleteTool deletes a plan.
type PlanDeleteTool struct{ deps }

func (t *PlanDeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("plan_delete",
		mcp.WithDescription("Delete a plan permanently. The id is not reused."),
		planIDOpt(),
	)
}

func (t *PlanDeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := t.planID(req)
	if err != nil {
		return errResult(err)
	}
	if err := t.store.DeletePlan(id); err != nil {
		return errResult(err)
	}
	return jsonResult(map[string]any{"deleted": id})
}

// TaskAddTool appends tasks.
type TaskAddTool struct{ deps }

func (t *TaskAddTool) Definition() mcp.Tool {
	return mcp.NewTool("task_add",
		mcp.WithDescription("Add a task under a parent (plan root when parent_path is omitted). "+
			"Adding work beneath a completed task reopens it."),
		planIDOpt(),
		mcp.WithString("description", mcp.Required(), mcp.Description("What the task is")),
		mcp.WithString("level", mcp.Required(),
			mcp.Description("Abstraction level: planning, isolation, ordering, or implementation")),
		mcp.WithString("parent_path", mcp.Description("Index path of the parent, e.g. \"0,1\"; empty for root")),
		mcp.WithString("notes", mcp.Description("Optional notes")),
	)
}

func (t *TaskAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := t.planID(req)
	if err != nil {
		return errResult(err)
	}
	description, err := req.RequireString("description")
	if err != nil {
		return errResult(err)
	}
	level, err := plan.ParseLevel(req.GetString("level", ""))
	if err != nil {
		return errResult(err)
	}
	parent, err := plan.ParsePath(req.GetString("parent_path", ""))
	if err != nil {
		return errResult(err)
	}

	path, err := t.store.AddTask(id, parent, description, level, req.GetString("notes", ""))
	if err != nil {
		return errResult(err)
	}
	return jsonResult(map[string]any{"path": path.String(), "description": description})
}

// TaskCompleteTool completes tasks through the lease protocol.
type TaskCompleteTool struct{ deps }

func (t *TaskCompleteTool) Definition() mcp.Tool {
	return mcp.NewTool("task_complete",
		mcp.WithDescription("Complete the task at path and its whole subtree. Requires the task's "+
			"current lease and a summary unless force is set."),
		planIDOpt(),
		pathOpt("Index path of the task, e.g. \"0,1,2\""),
		mcp.WithString("lease", mcp.Description("Lease token from generate_lease")),
		mcp.WithString("summary", mcp.Description("What was done and how it was verified")),
		mcp.WithBoolean("force", mcp.Description("Bypass lease and summary checks. Use sparingly.")),
	)
}

func (t *TaskCompleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := t.planID(req)
	if err != nil {
		return errResult(err)
	}
	path, err := t.path(req, "path")
	if err != nil {
		return errResult(err)
	}

	err = t.store.CompleteTask(id, path, req.GetString("lease", ""), req.GetString("summary", ""), req.GetBool("force", false))
	if err != nil {
		return errResult(err)
	}
	return jsonResult(map[string]any{"completed": path.String()})
}

// TaskUncompleteTool reopens tasks.
type TaskUncompleteTool struct{ deps }

func (t *TaskUncompleteTool) Definition() mcp.Tool {
	return mcp.NewTool("task_uncomplete",
		mcp.WithDescription("Reopen a completed task, discarding its summary."),
		planIDOpt(),
		pathOpt("Index path of the task"),
	)
}

func (t *TaskUncompleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := t.planID(req)
	if err != nil {
		return errResult(err)
	}
	path, err := t.path(req, "path")
	if err != nil {
		return errResult(err)
	}
	if err := t.store.UncompleteTask(id, path); err != nil {
		return errResult(err)
	}
	return jsonResult(map[string]any{"uncompleted": path.String()})
}

// TaskRemoveTool removes subtrees.
type TaskRemoveTool struct{ deps }

func (t *TaskRemoveTool) Definition() mcp.Tool {
	return mcp.NewTool("task_remove",
		mcp.WithDescription("Remove the task at path and its subtree. Later siblings shift down; "+
			"re-fetch the plan before reusing paths."),
		planIDOpt(),
		pathOpt("Index path of the task"),
	)
}

func (t *TaskRemoveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := t.planID(req)
	if err != nil {
		return errResult(err)
	}
	path, err := t.path(req, "path")
	if err != nil {
		return errResult(err)
	}
	removed, err := t.store.RemoveTask(id, path)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(map[string]any{"removed": removed})
}

// TaskChangeLevelTool reassigns abstraction levels.
type TaskChangeLevelTool struct{ deps }

func (t *TaskChangeLevelTool) Definition() mcp.Tool {
	return mcp.NewTool("task_change_level",
		mcp.WithDescription("Change a task's abstraction level. Invalidates any outstanding lease."),
		planIDOpt(),
		pathOpt("Index path of the task"),
		mcp.WithString("level", mcp.Required(),
			mcp.Description("planning, isolation, ordering, or implementation")),
	)
}

func (t *TaskChangeLevelTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := t.planID(req)
	if err != nil {
		return errResult(err)
	}
	path, err := t.path(req, "path")
	if err != nil {
		return errResult(err)
	}
	level, err := plan.ParseLevel(req.GetString("level", ""))
	if err != nil {
		return errResult(err)
	}
	if err := t.store.ChangeLevel(id, path, level); err != nil {
		return errResult(err)
	}
	return jsonResult(map[string]any{"path": path.String(), "level": level.String()})
}

// MoveToTool repositions the plan focus.
type MoveToTool struct{ deps }

func (t *MoveToTool) Definition() mcp.Tool {
	return mcp.NewTool("move_to",
		mcp.WithDescription("Move the plan's current focus to the task at path (empty path for root)."),
		planIDOpt(),
		pathOpt("Index path to focus, e.g. \"0,1\"; \"root\" or empty for the plan root"),
	)
}

func (t *MoveToTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := t.planID(req)
	if err != nil {
		return errResult(err)
	}
	path, err := plan.ParsePath(req.GetString("path", ""))
	if err != nil {
		return errResult(err)
	}
	if err := t.store.MoveTo(id, path); err != nil {
		return errResult(err)
	}
	return jsonResult(map[string]any{"current": path.String()})
}

// GetCurrentTool reads the focused task.
type GetCurrentTool struct{ deps }

func (t *GetCurrentTool) Definition() mcp.Tool {
	return mcp.NewTool("get_current",
		mcp.WithDescription("Get the plan's current focus: its path and task snapshot."),
		planIDOpt(),
	)
}

func (t *GetCurrentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := t.planID(req)
	if err != nil {
		return errResult(err)
	}
	cur, err := t.store.GetCurrent(id)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(cur)
}

// GetDistilledContextTool reads the compact working view.
type GetDistilledContextTool struct{ deps }

func (t *GetDistilledContextTool) Definition() mcp.Tool {
	return mcp.NewTool("get_distilled_context",
		mcp.WithDescription("Get the distilled working view: the focused task with level guidance, "+
			"its ancestors, immediate children, and a tree pruned to the focus path."),
		planIDOpt(),
	)
}

func (t *GetDistilledContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := t.planID(req)
	if err != nil {
		return errResult(err)
	}
	dc, err := t.store.DistilledContext(id)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(dc)
}

// NotesGetTool reads task notes.
type NotesGetTool struct{ deps }

func (t *NotesGetTool) Definition() mcp.Tool {
	return mcp.NewTool("notes_get",
		mcp.WithDescription("Get the notes of the task at path."),
		planIDOpt(),
		pathOpt("Index path of the task"),
	)
}

func (t *NotesGetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := t.planID(req)
	if err != nil {
		return errResult(err)
	}
	path, err := t.path(req, "path")
	if err != nil {
		return errResult(err)
	}
	notes, err := t.store.GetNotes(id, path)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(map[string]any{"path": path.String(), "notes": notes})
}

// NotesSetTool replaces task notes.
type NotesSetTool struct{ deps }

func (t *NotesSetTool) Definition() mcp.Tool {
	return mcp.NewTool("notes_set",
		mcp.WithDescription("Set the notes of the task at path. Invalidates any outstanding lease."),
		planIDOpt(),
		pathOpt("Index path of the task"),
		mcp.WithString("notes", mcp.Required(), mcp.Description("The new notes")),
	)
}

func (t *NotesSetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := t.planID(req)
	if err != nil {
		return errResult(err)
	}
	path, err := t.path(req, "path")
	if err != nil {
		return errResult(err)
	}
	notes, err := req.RequireString("notes")
	if err != nil {
		return errResult(err)
	}
	if err := t.store.SetNotes(id, path, notes); err != nil {
		return errResult(err)
	}
	return jsonResult(map[string]any{"path": path.String()})
}

// NotesDeleteTool clears task notes.
type NotesDeleteTool struct{ deps }

func (t *NotesDeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("notes_delete",
		mcp.WithDescription("Delete the notes of the task at path."),
		planIDOpt(),
		pathOpt("Index path of the task"),
	)
}

func (t *NotesDeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := t.planID(req)
	if err != nil {
		return errResult(err)
	}
	path, err := t.path(req, "path")
	if err != nil {
		return errResult(err)
	}
	if err := t.store.DeleteNotes(id, path); err != nil {
		return errResult(err)
	}
	return jsonResult(map[string]any{"path": path.String()})
}

// GenerateLeaseTool issues completion leases.
type GenerateLeaseTool struct{ deps }

func (t *GenerateLeaseTool) Definition() mcp.Tool {
	return mcp.NewTool("generate_lease",
		mcp.WithDescription("Issue a completion lease for the task at path. Supersedes any earlier "+
			"lease; only the newest token can complete the task."),
		planIDOpt(),
		pathOpt("Index path of the task"),
	)
}

func (t *GenerateLeaseTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := t.planID(req)
	if err != nil {
		return errResult(err)
	}
	path, err := t.path(req, "path")
	if err != nil {
		return errResult(err)
	}
	lease, err := t.store.GenerateLease(id, path)
	if err != nil {
		return errResult(err)
	}
	return jsonResult(map[string]any{"token": lease.Token, "path": lease.Path.String()})
}

// GetGuideTool serves the static usage guide.
type GetGuideTool struct{ deps }

func (t *GetGuideTool) Definition() mcp.Tool {
	return mcp.NewTool("get_guide",
		mcp.WithDescription("Get the full strata usage guide: abstraction levels, workflow, and tool reference."),
	)
}

func (t *GetGuideTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(guide.Render(guide.ModeMCP)), nil
}
