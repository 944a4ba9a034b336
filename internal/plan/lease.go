package plan

import (
	"github.com/google/uuid"

	"github.com/felixgeelhaar/strata/internal/errors"
)

// Lease is a completion token. Holding the current lease for a task proves the
// caller inspected that task recently enough to complete it.
type Lease struct {
	Token string `json:"token"`
	Path  Path   `json:"path"`
}

type leaseEntry struct {
	token string
	seq   uint64
}

// leaseRegistry tracks at most one outstanding lease per task path. Issuing a
// new lease supersedes any earlier one for the same task; the issuance counter
// is monotonic per plan so superseded tokens can never win a race.
type leaseRegistry struct {
	entries map[string]leaseEntry
	nextSeq uint64
}

func newLeaseRegistry() leaseRegistry {
	return leaseRegistry{entries: make(map[string]leaseEntry)}
}

// issue mints a fresh lease for path, replacing any outstanding one.
func (r *leaseRegistry) issue(path Path) Lease {
	r.nextSeq++
	token := uuid.NewString()
	r.entries[path.String()] = leaseEntry{token: token, seq: r.nextSeq}
	return Lease{Token: token, Path: path.Clone()}
}

// consume validates token against the outstanding lease for path and retires
// it. A missing, superseded, or already consumed lease all fail the same way.
func (r *leaseRegistry) consume(path Path, token string) error {
	key := path.String()
	entry, ok := r.entries[key]
	if !ok || entry.token != token {
		return errors.NewLeaseInvalidError(path.String())
	}
	delete(r.entries, key)
	return nil
}

// invalidate drops the outstanding lease for path, if any.
func (r *leaseRegistry) invalidate(path Path) {
	delete(r.entries, path.String())
}

// invalidateSubtree drops leases for path and every descendant.
func (r *leaseRegistry) invalidateSubtree(prefix Path) {
	for key := range r.entries {
		p, err := ParsePath(key)
		if err != nil {
			continue
		}
		if p.HasPrefix(prefix) {
			delete(r.entries, key)
		}
	}
}
