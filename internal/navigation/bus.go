package navigation

import "sync"

type ChangeKind string

const (
	ChangePage      ChangeKind = "page"
	ChangePrincipal ChangeKind = "principal"
	ChangeAuthModal ChangeKind = "auth_modal"
	ChangeRedirect  ChangeKind = "redirect"
	ChangeCarousel  ChangeKind = "carousel"
	ChangeNarration ChangeKind = "narration"
)

// Change describes a single session transition.
type Change struct {
	Kind ChangeKind
	From string
	To   string
}

type Listener func(Change)

// Bus fans session changes out to subscribers. Listeners run synchronously on
// the publishing goroutine and must not block.
type Bus struct {
	mu        sync.RWMutex
	next      int
	listeners map[int]Listener
}

func NewBus() *Bus {
	return &Bus{listeners: make(map[int]Listener)}
}

// Subscribe registers l and returns a function that removes it.
func (b *Bus) Subscribe(l Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	b.listeners[id] = l

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

func (b *Bus) Publish(c Change) {
	b.mu.RLock()
	listeners := make([]Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		listeners = append(listeners, l)
	}
	b.mu.RUnlock()

	for _, l := range listeners {
		l(c)
	}
}
