package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/strata/internal/plan"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
)

func checkbox(completed bool) string {
	if completed {
		return doneStyle.Render("[x]")
	}
	return "[ ]"
}

// renderPlan renders the full task tree with paths and completion state.
func renderPlan(p plan.Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render(fmt.Sprintf("Plan %d:", p.ID)), p.Goal)
	if p.Notes != "" {
		fmt.Fprintf(&b, "%s\n", dimStyle.Render(p.Notes))
	}
	if len(p.Root) == 0 {
		b.WriteString(dimStyle.Render("(no tasks yet)") + "\n")
		return b.String()
	}
	renderTasks(&b, p.Root, plan.Path{}, p.Current, 0)
	return b.String()
}

func renderTasks(b *strings.Builder, tasks []*plan.Task, at plan.Path, current plan.Path, depth int) {
	indent := strings.Repeat("  ", depth)
	for i, t := range tasks {
		path := at.Child(i)
		line := fmt.Sprintf("%s%s %s %s", indent, checkbox(t.Completed), t.Description,
			dimStyle.Render(fmt.Sprintf("(%s @ %s)", t.Level, path)))
		if path.Equal(current) {
			line = currentStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
		if t.Summary != "" {
			fmt.Fprintf(b, "  %s  %s\n", indent, summaryStyle.Render("summary: "+t.Summary))
		}
		if t.Notes != "" {
			fmt.Fprintf(b, "  %s  %s\n", indent, dimStyle.Render("notes: "+t.Notes))
		}
		renderTasks(b, t.Children, path, current, depth+1)
	}
}

// renderPlanList renders one line per plan.
func renderPlanList(plans []plan.PlanSummary) string {
	if len(plans) == 0 {
		return dimStyle.Render("No plans. Create one with 'strata plan create --goal <goal>'.") + "\n"
	}
	var b strings.Builder
	for _, p := range plans {
		fmt.Fprintf(&b, "%s %s %s\n",
			titleStyle.Render(fmt.Sprintf("%d", p.ID)),
			p.Goal,
			dimStyle.Render(fmt.Sprintf("(%d tasks, created %s)", p.TaskCount, p.CreatedAt.Format("2006-01-02"))))
	}
	return b.String()
}

// renderCurrent renders the focused task.
func renderCurrent(cur plan.Current) string {
	if cur.Task == nil {
		return titleStyle.Render("At plan root.") + " " + dimStyle.Render("Add tasks or 'strata move <path>'.") + "\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", checkbox(cur.Task.Completed), titleStyle.Render(cur.Task.Description))
	fmt.Fprintf(&b, "%s\n", dimStyle.Render(fmt.Sprintf("path %s, level %s", cur.Path, cur.Task.Level)))
	if cur.Task.Notes != "" {
		fmt.Fprintf(&b, "notes: %s\n", cur.Task.Notes)
	}
	if cur.Task.Summary != "" {
		fmt.Fprintf(&b, "%s\n", summaryStyle.Render("summary: "+cur.Task.Summary))
	}
	if len(cur.Task.Children) > 0 {
		fmt.Fprintf(&b, "%d subtasks\n", len(cur.Task.Children))
	}
	return b.String()
}

// renderContext renders the distilled working view.
func renderContext(dc plan.DistilledContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render(fmt.Sprintf("Plan %d:", dc.PlanID)), dc.Goal)
	if dc.PlanNotes != "" {
		fmt.Fprintf(&b, "%s\n", dimStyle.Render(dc.PlanNotes))
	}

	b.WriteString("\n")
	if dc.Current.AtRoot {
		b.WriteString(titleStyle.Render("Focus: plan root") + "\n")
	} else {
		fmt.Fprintf(&b, "%s %s %s\n", titleStyle.Render("Focus:"), dc.Current.Task.Description,
			dimStyle.Render(fmt.Sprintf("(%s @ %s)", dc.Current.Task.Level, dc.Current.Path)))
	}

	if len(dc.Ancestors) > 0 {
		crumbs := make([]string, len(dc.Ancestors))
		for i, a := range dc.Ancestors {
			crumbs[i] = a.Description
		}
		fmt.Fprintf(&b, "%s %s\n", dimStyle.Render("Under:"), strings.Join(crumbs, " / "))
	}

	if len(dc.Children) > 0 {
		b.WriteString("\n" + titleStyle.Render("Next steps:") + "\n")
		for _, c := range dc.Children {
			fmt.Fprintf(&b, "  %s %s %s\n", checkbox(c.Completed), c.Description,
				dimStyle.Render(fmt.Sprintf("(%s @ %s)", c.Level, c.Path)))
		}
	}

	b.WriteString("\n" + titleStyle.Render("Guidance") + "\n" + dc.Current.Guidance)

	if len(dc.History) > 0 {
		b.WriteString("\n" + titleStyle.Render("Recent activity:") + "\n")
		for _, tr := range dc.History {
			fmt.Fprintf(&b, "  %s %s %s\n", dimStyle.Render(tr.Time.Format("15:04:05")), tr.Action,
				dimStyle.Render(tr.Details))
		}
	}
	return b.String()
}
