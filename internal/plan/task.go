package plan

// Task is one node in a plan's work tree. Stores hand out deep copies, so a
// Task held by a caller never aliases live store state.
type Task struct {
	Description string  `json:"description"`
	Level       Level   `json:"level"`
	Notes       string  `json:"notes,omitempty"`
	Completed   bool    `json:"completed"`
	Summary     string  `json:"summary,omitempty"`
	Children    []*Task `json:"children,omitempty"`
}

// NewTask creates an incomplete task with no children.
func NewTask(description string, level Level) *Task {
	return &Task{Description: description, Level: level}
}

// Clone deep-copies the task and its subtree.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	out := *t
	if len(t.Children) > 0 {
		out.Children = make([]*Task, len(t.Children))
		for i, c := range t.Children {
			out.Children[i] = c.Clone()
		}
	}
	return &out
}

// complete marks the task and every descendant completed. Descendants keep
// their own summaries; only the completed task records the new one.
func (t *Task) complete(summary string) {
	t.Completed = true
	t.Summary = summary
	for _, c := range t.Children {
		c.completeSubtree()
	}
}

func (t *Task) completeSubtree() {
	t.Completed = true
	for _, c := range t.Children {
		c.completeSubtree()
	}
}

// uncomplete reopens the task, discarding its completion summary. Descendants
// are left untouched.
func (t *Task) uncomplete() {
	t.Completed = false
	t.Summary = ""
}

// countTasks returns the number of tasks in the subtree rooted at t,
// including t itself.
func (t *Task) countTasks() int {
	n := 1
	for _, c := range t.Children {
		n += c.countTasks()
	}
	return n
}
