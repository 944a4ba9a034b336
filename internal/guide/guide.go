// Package guide renders the long-form usage guide for the CLI and the MCP
// tool surface. The shared sections are assembled once; each mode contributes
// its own getting-started, workflow, and reference text.
package guide

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/strata/internal/plan"
)

// Mode selects which adapter the guide is rendered for.
type Mode int

const (
	// ModeCLI renders shell command examples.
	ModeCLI Mode = iota
	// ModeMCP renders tool-call examples.
	ModeMCP
)

// Render assembles the full guide for the given mode.
func Render(mode Mode) string {
	var cfg modeConfig
	switch mode {
	case ModeMCP:
		cfg = mcpConfig
	default:
		cfg = cliConfig
	}

	sections := []string{
		fmt.Sprintf("=== %s ===", cfg.title),
		overview,
		cfg.gettingStarted,
		levelsSection(),
		transitions,
		cfg.workflow,
		cfg.reference,
		cfg.extra,
	}

	out := make([]string, 0, len(sections))
	for _, s := range sections {
		if s != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return strings.Join(out, "\n\n") + "\n"
}

type modeConfig struct {
	title          string
	gettingStarted string
	workflow       string
	reference      string
	extra          string
}

const overview = `Strata is a hierarchical planning and task management tool. It breaks complex
projects into manageable tasks across multiple abstraction levels.

== OVERVIEW ==

Strata helps you:
- Structure complex work in a logical hierarchy
- Navigate between levels of abstraction
- Track progress and maintain focus
- Adapt the plan as work progresses
- Manage multiple, separate plans at once`

// levelsSection renders the abstraction level catalog from the live
// definitions so the guide never drifts from the engine.
func levelsSection() string {
	var b strings.Builder
	b.WriteString("== ABSTRACTION LEVELS ==\n")
	for i, info := range plan.AllLevels() {
		fmt.Fprintf(&b, "\nLevel %d - %s: %s\n", i, info.Name, info.Description)
		for _, q := range info.Questions {
			fmt.Fprintf(&b, "   - Ask: %q\n", q)
		}
	}
	return b.String()
}

const transitions = `== TRANSITIONING BETWEEN LEVELS ==

Move down a level when the current one has done its job:
- planning -> isolation: the overall approach is clear and you are ready to
  draw component boundaries.
- isolation -> ordering: boundaries are well-defined and you need an
  implementation sequence.
- ordering -> implementation: the sequence is clear and you are ready to
  define concrete tasks.

Move back up when assumptions change: new requirements, a boundary that does
not hold, or an ordering that turns out to be wrong.`

var cliConfig = modeConfig{
	title: "STRATA GUIDE",
	gettingStarted: `== GETTING STARTED: PLANS ==

Strata organizes work into separate plans. Each command needs to know which
plan it targets.

1. CREATE A PLAN:
   $ strata plan create --goal "My new project goal" [--notes <TEXT>]
   Keep the goal concise, like a title; put detail in --notes.

2. SELECT THE ACTIVE PLAN, one of:
   a) environment variable (recommended for sessions):
      $ export STRATA_PLAN=42
   b) --plan flag (overrides the env var for one command):
      $ strata --plan 42 current
   c) the plan key in ~/.strata/config.yaml

3. LIST PLANS:
   $ strata plan list`,
	workflow: `== WORKFLOW ==

1. STRUCTURE THE PLAN
   $ strata task add --level planning "Design system architecture"
   $ strata move 0
   $ strata task add --level isolation "Identify core components"
   $ strata move 0,0

2. STAY ON TRACK
   $ strata plan get          # full tree
   $ strata current           # the focused task
   $ strata context           # distilled working view

3. COMPLETE WITH A LEASE
   Completion is a two-step handshake so concurrent agents cannot double-credit
   the same task:
   $ strata lease 0,0
   > token: 2f1c...
   $ strata task complete 0,0 --lease 2f1c... --summary "Implemented and tested"

   --force bypasses both the lease and the summary requirement; use it
   sparingly. A fresh lease is required after the task's level or notes
   change.`,
	reference: `== COMMAND REFERENCE ==

GLOBAL FLAGS:
  --plan <id>      plan targeted by this command (overrides STRATA_PLAN)
  --server <url>   server base URL (default http://127.0.0.1:3000)
  --config <path>  config file (default ~/.strata/config.yaml)

PLAN MANAGEMENT:
  $ strata plan create --goal <TEXT> [--notes <TEXT>]
  $ strata plan get
  $ strata plan list
  $ strata plan delete <id>

TASK MANAGEMENT:
  $ strata task add [--parent <PATH>] --level <LEVEL> [--notes <TEXT>] <DESCRIPTION>
  $ strata task complete <PATH> [--lease <TOKEN>] [--summary <TEXT>] [--force]
  $ strata task uncomplete <PATH>
  $ strata task remove <PATH>
  $ strata task level <PATH> <LEVEL>
  $ strata task notes view <PATH>
  $ strata task notes set <PATH> <NOTES>
  $ strata task notes delete <PATH>

NAVIGATION & VIEWING:
  $ strata move <PATH>
  $ strata current
  $ strata context

COORDINATION:
  $ strata lease <PATH>

SERVER:
  $ strata serve [--address <HOST:PORT>]
  $ strata mcp

UTILITIES:
  $ strata guide
  $ strata completion <SHELL>
  $ strata version`,
	extra: `== INDEX PATHS ==

Tasks are addressed by comma-separated child offsets:
  0      first top-level task
  0,1    second child of the first top-level task

Removing a task shifts the indices of its later siblings down by one, so
re-fetch the plan after structural changes before reusing a path.`,
}

var mcpConfig = modeConfig{
	title: "STRATA MCP GUIDE",
	gettingStarted: `== GETTING STARTED: PLANS ==

Strata organizes work into separate plans. Every tool call that touches a plan
takes a plan_id parameter.

1. CREATE A PLAN:
   plan_create(goal="Build web application", notes="optional details")
   Returns the plan id used by every later call.

2. LIST PLANS:
   plan_list()

3. DELETE A PLAN:
   plan_delete(plan_id=42)`,
	workflow: `== WORKFLOW ==

1. STRUCTURE THE PLAN
   plan_create(goal="Your project goal")
   task_add(plan_id=42, description="Design system architecture", level="planning")
   move_to(plan_id=42, path="0")
   task_add(plan_id=42, description="Identify core components", level="isolation")

2. TRACK PROGRESS
   get_current(plan_id=42)
   get_distilled_context(plan_id=42)
   plan_get(plan_id=42)

3. COMPLETE TASKS
   generate_lease(plan_id=42, path="0,0")
   task_complete(plan_id=42, path="0,0", lease="<token>", summary="done and verified")
   Force completion (force=true) bypasses the lease and summary checks; use it
   sparingly.`,
	reference: `== TOOL REFERENCE ==

PLAN MANAGEMENT:
  plan_create(goal, notes?)        create a new plan
  plan_get(plan_id)                full plan tree
  plan_list()                      all plans
  plan_delete(plan_id)             delete a plan

NAVIGATION & VIEWING:
  get_current(plan_id)             the focused task
  get_distilled_context(plan_id)   compact working view
  move_to(plan_id, path)           refocus, e.g. path="0,1,2"

TASK MANAGEMENT:
  task_add(plan_id, description, level, parent_path?, notes?)
  task_complete(plan_id, path, lease?, summary?, force?)
  task_uncomplete(plan_id, path)
  task_remove(plan_id, path)
  task_change_level(plan_id, path, level)
  generate_lease(plan_id, path)

NOTES:
  notes_get(plan_id, path)
  notes_set(plan_id, path, notes)
  notes_delete(plan_id, path)

HELP:
  get_guide()`,
	extra: `== INDEX PATHS ==

Tasks are addressed by comma-separated child offsets ("0", "0,1", "0,1,2").
Paths shift when earlier siblings are removed; re-fetch state after structural
changes.

Remember: use the abstraction levels to move deliberately from architecture
down to concrete implementation tasks.`,
}
