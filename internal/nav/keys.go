package nav

import (
	"slices"
	"strings"
	"sync"
)

// Key is a logical key press, independent of any UI toolkit.
type Key int

const (
	KeyNone Key = iota
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
)

var keyNames = map[string]Key{
	"arrowleft":  KeyLeft,
	"left":       KeyLeft,
	"arrowright": KeyRight,
	"right":      KeyRight,
	"arrowup":    KeyUp,
	"up":         KeyUp,
	"arrowdown":  KeyDown,
	"down":       KeyDown,
	"home":       KeyHome,
	"today":      KeyHome,
}

// ParseKey maps browser/terminal key names ("ArrowLeft", "left", "Home")
// onto a Key. Unknown names return KeyNone.
func ParseKey(name string) Key {
	return keyNames[strings.ToLower(strings.TrimSpace(name))]
}

func (k Key) String() string {
	switch k {
	case KeyLeft:
		return "ArrowLeft"
	case KeyRight:
		return "ArrowRight"
	case KeyUp:
		return "ArrowUp"
	case KeyDown:
		return "ArrowDown"
	case KeyHome:
		return "Home"
	default:
		return ""
	}
}

// Handler receives dispatched keys.
type Handler func(Key)

// Hub is a global-style key listener registry. Views register while active
// and must call the returned release func on every exit path.
type Hub struct {
	mu       sync.Mutex
	next     int
	handlers map[int]Handler
}

func NewHub() *Hub {
	return &Hub{handlers: make(map[int]Handler)}
}

// Register adds h and returns its release func. Release is idempotent.
func (h *Hub) Register(fn Handler) (release func()) {
	h.mu.Lock()
	id := h.next
	h.next++
	h.handlers[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.handlers, id)
			h.mu.Unlock()
		})
	}
}

// Dispatch delivers k to every registered handler in registration order.
func (h *Hub) Dispatch(k Key) {
	h.mu.Lock()
	ids := make([]int, 0, len(h.handlers))
	for id := range h.handlers {
		ids = append(ids, id)
	}
	fns := make([]Handler, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, h.handlers[id])
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(k)
	}
}

// Len is the number of active registrations.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handlers)
}

// Activate binds c to the hub until the returned release func is called.
func (c *Controller) Activate(h *Hub) (release func()) {
	return h.Register(func(k Key) { c.HandleKey(k) })
}
