package gesture

import "sync"

// Handler receives the release position of a gesture.
type Handler func(x, y int)

// Registry holds at most one handler per gesture kind, plus any number of
// listeners that see every event.
type Registry struct {
	mu        sync.RWMutex
	handlers  map[Kind]Handler
	listeners []func(Event)
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[Kind]Handler),
	}
}

// On sets the handler for kind, replacing any previous one. A nil handler
// removes it.
func (r *Registry) On(kind Kind, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h == nil {
		delete(r.handlers, kind)
		return
	}
	r.handlers[kind] = h
}

func (r *Registry) OnShortTouch(h Handler) { r.On(ShortTouch, h) }
func (r *Registry) OnLongTouch(h Handler)  { r.On(LongTouch, h) }
func (r *Registry) OnSwipeRight(h Handler) { r.On(SwipeRight, h) }
func (r *Registry) OnSwipeUp(h Handler)    { r.On(SwipeUp, h) }
func (r *Registry) OnSwipeLeft(h Handler)  { r.On(SwipeLeft, h) }
func (r *Registry) OnSwipeDown(h Handler)  { r.On(SwipeDown, h) }

// OnEvent adds a listener called for every dispatched event.
func (r *Registry) OnEvent(fn func(Event)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Dispatch calls the handler registered for ev.Kind, then the listeners.
// Handlers run synchronously on the caller's goroutine. It reports whether
// a kind handler was found.
func (r *Registry) Dispatch(ev Event) bool {
	if ev.Kind == None {
		return false
	}

	r.mu.RLock()
	h := r.handlers[ev.Kind]
	listeners := make([]func(Event), len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.RUnlock()

	if h != nil {
		h(ev.X, ev.Y)
	}
	for _, fn := range listeners {
		fn(ev)
	}
	return h != nil
}
