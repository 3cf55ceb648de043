package viewer

import (
	"sync"

	"github.com/samber/lo"

	"go.viam.com/depthinspect/inspect"
)

// KeyEscape is the ESC key.
const KeyEscape rune = 27

var quitKeys = []rune{KeyEscape, 'q', 'Q'}

// PointerEvent is a pointer event in depth image coordinates.
type PointerEvent struct {
	Kind inspect.PointerKind
	X, Y int
}

// IsQuitKey reports whether key ends the session: ESC, q or Q.
func IsQuitKey(key rune) bool {
	return lo.Contains(quitKeys, key)
}

// EventQueue buffers pointer and key events produced on other goroutines until the
// session loop drains them between frames.
type EventQueue struct {
	mu      sync.Mutex
	pointer []PointerEvent
	keys    []rune
}

// NewEventQueue returns an empty queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// PushPointer queues a pointer event.
func (q *EventQueue) PushPointer(ev PointerEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pointer = append(q.pointer, ev)
}

// PushKey queues a key press.
func (q *EventQueue) PushKey(key rune) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.keys = append(q.keys, key)
}

// Drain returns and clears everything queued, in arrival order per kind.
func (q *EventQueue) Drain() ([]PointerEvent, []rune) {
	q.mu.Lock()
	defer q.mu.Unlock()
	pointer, keys := q.pointer, q.keys
	q.pointer, q.keys = nil, nil
	return pointer, keys
}
