package plan

import (
	"sync"
	"time"
)

// subscriberBuffer is the per-subscriber channel capacity. A subscriber that
// falls this far behind starts losing events and should re-fetch the plan.
const subscriberBuffer = 16

// Event signals that a plan changed. Seq is strictly increasing per plan, so
// a subscriber can detect dropped events by watching for gaps.
type Event struct {
	PlanID int64     `json:"plan_id"`
	Seq    uint64    `json:"seq"`
	Time   time.Time `json:"time"`
}

type subscriber struct {
	ch        chan Event
	closeOnce sync.Once
}

func (s *subscriber) close() {
	s.closeOnce.Do(func() { close(s.ch) })
}

// Notifier fans plan change events out to per-plan subscribers. Publishing
// never blocks: a subscriber whose buffer is full misses the event.
type Notifier struct {
	mu     sync.RWMutex
	topics map[int64][]*subscriber
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{topics: make(map[int64][]*subscriber)}
}

// Subscribe registers interest in one plan's events. The returned cancel
// function unregisters and closes the channel; it is safe to call more than
// once. Subscribing to a plan that does not exist yet is allowed.
func (n *Notifier) Subscribe(planID int64) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, subscriberBuffer)}

	n.mu.Lock()
	n.topics[planID] = append(n.topics[planID], sub)
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		subs := n.topics[planID]
		for i, s := range subs {
			if s == sub {
				n.topics[planID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		if len(n.topics[planID]) == 0 {
			delete(n.topics, planID)
		}
		n.mu.Unlock()
		sub.close()
	}
	return sub.ch, cancel
}

// Publish delivers ev to every subscriber of its plan without blocking.
func (n *Notifier) Publish(ev Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, sub := range n.topics[ev.PlanID] {
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

// DropPlan closes and removes every subscriber for planID. Used when the plan
// is deleted.
func (n *Notifier) DropPlan(planID int64) {
	n.mu.Lock()
	subs := n.topics[planID]
	delete(n.topics, planID)
	n.mu.Unlock()
	for _, sub := range subs {
		sub.close()
	}
}
