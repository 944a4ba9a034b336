package plan

// DistilledContext is the compact working view of a plan, centered on its
// current position. It carries just enough of the tree for an agent to act:
// the focused task with its guidance, the ancestor chain, immediate children,
// and a tree pruned to the focus path.
type DistilledContext struct {
	PlanID    int64        `json:"plan_id"`
	Goal      string       `json:"goal"`
	PlanNotes string       `json:"plan_notes,omitempty"`
	Current   FocusedTask  `json:"current"`
	Ancestors []Crumb      `json:"ancestors,omitempty"`
	Children  []ChildBrief `json:"children,omitempty"`
	Tree      []TreeNode   `json:"tree"`
	Levels    []LevelInfo  `json:"levels"`
	History   []Transition `json:"history,omitempty"`
}

// FocusedTask describes the task at the current position. AtRoot is set when
// the focus is the plan root, in which case Task is nil and Guidance covers
// the planning level.
type FocusedTask struct {
	Path     Path   `json:"path"`
	AtRoot   bool   `json:"at_root"`
	Task     *Task  `json:"task,omitempty"`
	Guidance string `json:"guidance"`
}

// Crumb is one ancestor on the way to the focused task.
type Crumb struct {
	Path        Path   `json:"path"`
	Description string `json:"description"`
	Level       Level  `json:"level"`
	Completed   bool   `json:"completed"`
}

// ChildBrief summarizes one immediate child of the focused task.
type ChildBrief struct {
	Path        Path   `json:"path"`
	Description string `json:"description"`
	Level       Level  `json:"level"`
	Completed   bool   `json:"completed"`
	ChildCount  int    `json:"child_count"`
}

// TreeNode is one node of the focus-pruned tree. Only nodes on the focus path
// carry their children; everything off the path is a leaf summary.
type TreeNode struct {
	Path        Path       `json:"path"`
	Description string     `json:"description"`
	Level       Level      `json:"level"`
	Completed   bool       `json:"completed"`
	Current     bool       `json:"current"`
	Summary     string     `json:"summary,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Children    []TreeNode `json:"children,omitempty"`
}

// Distill projects a plan snapshot into its distilled context. A current
// position that no longer resolves falls back to the root rather than
// failing, so a stale cursor can never make the projection unavailable.
func Distill(p Plan) DistilledContext {
	focus := p.Current
	task := resolveSnapshot(p.Root, focus)
	if task == nil && !focus.IsRoot() {
		focus = Path{}
	}

	dc := DistilledContext{
		PlanID:    p.ID,
		Goal:      p.Goal,
		PlanNotes: p.Notes,
		Levels:    AllLevels(),
		History:   p.History,
		Tree:      buildFocusTree(p.Root, Path{}, focus),
	}

	if focus.IsRoot() {
		dc.Current = FocusedTask{Path: Path{}, AtRoot: true, Guidance: LevelPlanning.Guidance()}
		dc.Children = childBriefs(p.Root, Path{})
		return dc
	}

	dc.Current = FocusedTask{Path: focus.Clone(), Task: task, Guidance: task.Level.Guidance()}
	dc.Children = childBriefs(task.Children, focus)

	siblings := p.Root
	for depth := 0; depth < len(focus)-1; depth++ {
		anc := siblings[focus[depth]]
		dc.Ancestors = append(dc.Ancestors, Crumb{
			Path:        focus[:depth+1].Clone(),
			Description: anc.Description,
			Level:       anc.Level,
			Completed:   anc.Completed,
		})
		siblings = anc.Children
	}
	return dc
}

// resolveSnapshot walks a snapshot tree; nil when the path does not resolve
// or addresses the root.
func resolveSnapshot(root []*Task, path Path) *Task {
	siblings := root
	var task *Task
	for _, idx := range path {
		if idx >= len(siblings) {
			return nil
		}
		task = siblings[idx]
		siblings = task.Children
	}
	return task
}

func childBriefs(children []*Task, parent Path) []ChildBrief {
	out := make([]ChildBrief, 0, len(children))
	for i, c := range children {
		out = append(out, ChildBrief{
			Path:        parent.Child(i),
			Description: c.Description,
			Level:       c.Level,
			Completed:   c.Completed,
			ChildCount:  len(c.Children),
		})
	}
	return out
}

// buildFocusTree keeps every node at each depth but only descends into the
// node that lies on the focus path.
func buildFocusTree(siblings []*Task, at Path, focus Path) []TreeNode {
	out := make([]TreeNode, 0, len(siblings))
	for i, t := range siblings {
		path := at.Child(i)
		node := TreeNode{
			Path:        path,
			Description: t.Description,
			Level:       t.Level,
			Completed:   t.Completed,
			Current:     path.Equal(focus),
			Summary:     t.Summary,
			Notes:       t.Notes,
		}
		if focus.HasPrefix(path) && len(t.Children) > 0 {
			node.Children = buildFocusTree(t.Children, path, focus)
		}
		out = append(out, node)
	}
	return out
}
