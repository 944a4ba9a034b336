package plan

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/strata/internal/errors"
)

// Level is an advisory abstraction label for a task. It orders work from
// high-level planning down to concrete implementation, but no invariant ties
// a child's level to its parent's.
type Level int

const (
	// LevelPlanning is high-level planning: architecture, scope, approach.
	LevelPlanning Level = iota
	// LevelIsolation identifies discrete parts that can be completed independently.
	LevelIsolation
	// LevelOrdering sequences the parts of the plan.
	LevelOrdering
	// LevelImplementation turns each part into concrete, actionable tasks.
	LevelImplementation
)

// levelCount is the size of the closed level enumeration.
const levelCount = 4

// Valid reports whether the level is within the closed enumeration.
func (l Level) Valid() bool {
	return l >= LevelPlanning && l < levelCount
}

// String returns the canonical lowercase name of the level.
func (l Level) String() string {
	switch l {
	case LevelPlanning:
		return "planning"
	case LevelIsolation:
		return "isolation"
	case LevelOrdering:
		return "ordering"
	case LevelImplementation:
		return "implementation"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel parses a level from its name or ordinal ("planning" or "0").
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "planning", "plan":
		return LevelPlanning, nil
	case "isolation":
		return LevelIsolation, nil
	case "ordering":
		return LevelOrdering, nil
	case "implementation", "impl":
		return LevelImplementation, nil
	}

	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		l := Level(n)
		if l.Valid() {
			return l, nil
		}
	}

	return 0, errors.New(errors.ErrCodeInvalidOperation,
		fmt.Sprintf("unknown level %q", s)).
		WithSuggestion("Use planning, isolation, ordering, or implementation")
}

// MarshalJSON encodes the level as its name.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes a level from its name or ordinal.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, perr := ParseLevel(s)
		if perr != nil {
			return perr
		}
		*l = parsed
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	parsed := Level(n)
	if !parsed.Valid() {
		return errors.New(errors.ErrCodeInvalidOperation, fmt.Sprintf("level ordinal %d out of range", n))
	}
	*l = parsed
	return nil
}

// LevelInfo describes one abstraction level for display and guidance.
type LevelInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Questions   []string `json:"questions"`
	Focus       string   `json:"focus"`
}

// Info returns the catalog entry for the level.
func (l Level) Info() LevelInfo {
	return levelCatalog[l]
}

// Guidance renders the level's focus instruction and guiding questions as a
// single block of text suitable for an agent or a terminal.
func (l Level) Guidance() string {
	info := l.Info()
	var b strings.Builder
	fmt.Fprintf(&b, "Abstraction level: %s\n\nFocus: %s\n\nQuestions to consider:\n", info.Description, info.Focus)
	for _, q := range info.Questions {
		fmt.Fprintf(&b, "- %s\n", q)
	}
	return b.String()
}

// AllLevels returns the full level catalog in ordinal order.
func AllLevels() []LevelInfo {
	out := make([]LevelInfo, 0, levelCount)
	for l := LevelPlanning; l.Valid(); l++ {
		out = append(out, l.Info())
	}
	return out
}

var levelCatalog = map[Level]LevelInfo{
	LevelPlanning: {
		Name:        "planning",
		Description: "high level planning; identifying architecture, scope, and approach",
		Questions: []string{
			"Is this approach simple?",
			"Is this approach extensible?",
			"Does this approach provide good, minimally leaking abstractions?",
		},
		Focus: "Maintain altitude by focusing on system wholes. Avoid implementation details. " +
			"Think about conceptual patterns rather than code structures. Consider how components " +
			"will interact without specifying their internal workings.",
	},
	LevelIsolation: {
		Name:        "isolation",
		Description: "identifying discrete parts of the plan which can be completed independently",
		Questions: []string{
			"Can each part be completed and verified independently?",
			"Are the boundaries between pieces modular and extensible?",
		},
		Focus: "Focus on interfaces and boundaries between components. Define clear inputs and " +
			"outputs for each part. Identify dependencies while preserving modularity. Look for " +
			"natural divisions in the problem space.",
	},
	LevelOrdering: {
		Name:        "ordering",
		Description: "ordering the parts of the plan",
		Questions: []string{
			"Do we move from foundational building blocks to more complex concepts?",
			"Do we follow idiomatic design patterns?",
		},
		Focus: "Think about sequence and progression. Identify dependencies and build order " +
			"without diving into implementation details. Consider critical paths and bottlenecks. " +
			"Focus on logical flow and execution constraints.",
	},
	LevelImplementation: {
		Name:        "implementation",
		Description: "turning each part into an ordered list of tasks",
		Questions: []string{
			"Can each task be completed independently?",
			"Does each task build upon, or complement, the previous tasks?",
			"Does each task minimize the execution risk of the other tasks?",
		},
		Focus: "Focus on concrete, actionable steps. Define specific changes or artifacts to " +
			"produce. Reference higher abstractions when needed but maintain focus on precise " +
			"implementation. Consider error cases and edge conditions.",
	},
}
