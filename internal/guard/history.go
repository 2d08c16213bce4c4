package guard

import "sync"

// History is an in-process router. Push commits the new path and signals
// PathChanges; observers pick the path up on their next read, which makes the
// navigation asynchronous from the pusher's point of view.
type History struct {
	mu      sync.Mutex
	entries []string
	signal  chan struct{}
}

var (
	_ Navigator  = (*History)(nil)
	_ PathSource = (*History)(nil)
)

// NewHistory starts a history at initial.
func NewHistory(initial string) *History {
	return &History{entries: []string{initial}, signal: make(chan struct{}, 1)}
}

// Push appends path to the history.
func (h *History) Push(path string) {
	h.mu.Lock()
	h.entries = append(h.entries, path)
	h.mu.Unlock()
	h.notify()
}

// Back pops the current entry. It reports false at the first entry.
func (h *History) Back() bool {
	h.mu.Lock()
	if len(h.entries) < 2 {
		h.mu.Unlock()
		return false
	}
	h.entries = h.entries[:len(h.entries)-1]
	h.mu.Unlock()
	h.notify()
	return true
}

// Path returns the committed path.
func (h *History) Path() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[len(h.entries)-1]
}

// PathChanges signals after every Push or Back. Signals coalesce.
func (h *History) PathChanges() <-chan struct{} {
	return h.signal
}

// Entries returns a copy of the history stack, oldest first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.entries...)
}

func (h *History) notify() {
	select {
	case h.signal <- struct{}{}:
	default:
	}
}
