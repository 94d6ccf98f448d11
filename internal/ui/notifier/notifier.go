// Package notifier tells open pages that the session's database was replaced.
package notifier

import "sync"

// Reason tells listeners what replaced the database.
type Reason string

// Reasons for a database replacement.
const (
	ReasonUpload Reason = "upload"
	ReasonWatch  Reason = "watch"
)

// Event announces a database replacement.
type Event struct {
	// Generation is the session generation after the replacement.
	Generation uint64
	Reason     Reason
	Filename   string
}

// Notifier fans database events out to every subscribed page.
//
// A listener holds at most one pending event. When it falls behind, the
// pending event is replaced by the newer one, so a slow page repaints once
// for the latest database instead of once per replacement.
type Notifier struct {
	mu        sync.Mutex
	listeners map[chan Event]struct{}
	last      uint64
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan Event]struct{}),
	}
}

// Subscribe returns a channel that receives database events.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier) Subscribe() chan Event {
	ch := make(chan Event, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.listeners[ch]; !ok {
		return
	}
	delete(n.listeners, ch)
	close(ch)
}

// Broadcast delivers ev to all listeners without blocking. Events older than
// one already broadcast are dropped, so a reload that finishes late cannot
// announce a database that has since been replaced.
func (n *Notifier) Broadcast(ev Event) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if ev.Generation <= n.last {
		return false
	}
	n.last = ev.Generation

	for ch := range n.listeners {
		select {
		case <-ch:
		default:
		}
		ch <- ev
	}
	return true
}

// Listeners reports how many pages are subscribed.
func (n *Notifier) Listeners() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}
