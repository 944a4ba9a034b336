package plan

import (
	"strconv"
	"strings"

	"github.com/felixgeelhaar/strata/internal/errors"
)

// Path addresses a task inside a plan by the index of each ancestor among its
// siblings, root first. The empty path addresses the root of the plan.
type Path []int

// ParsePath parses a comma-separated index path such as "0,1,2". The empty
// string and "root" both parse to the root path.
func ParsePath(s string) (Path, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || strings.EqualFold(trimmed, "root") {
		return Path{}, nil
	}

	parts := strings.Split(trimmed, ",")
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, errors.NewPathSyntaxError(s, err)
		}
		if n < 0 {
			return nil, errors.NewPathSyntaxError(s, nil)
		}
		p = append(p, n)
	}
	return p, nil
}

// String renders the path in the comma-separated wire form. The root path
// renders as the empty string.
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	parts := make([]string, len(p))
	for i, n := range p {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// IsRoot reports whether the path addresses the plan root.
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// Parent returns the path of the addressed task's parent. The root is its own
// parent.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return Path{}
	}
	return p[:len(p)-1].Clone()
}

// Child returns the path of the i-th child of the addressed task.
func (p Path) Child(i int) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, i)
}

// HasPrefix reports whether prefix addresses the same task or an ancestor.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i, n := range prefix {
		if p[i] != n {
			return false
		}
	}
	return true
}

// Equal reports whether two paths address the same task.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i, n := range p {
		if other[i] != n {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the path.
func (p Path) Clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}
