// Package modal models overlay dialogs that animate in on open and are hidden
// a fixed delay after close.
package modal

import (
	"errors"
	"fmt"
	"time"
)

const DefaultCloseDelay = 300 * time.Millisecond

type Name string

const (
	Auth      Name = "auth"
	Subscribe Name = "subscribe"
	Contact   Name = "contact"
	Message   Name = "message"
)

var ErrUnknownModal = errors.New("unknown modal")

func ParseName(s string) (Name, error) {
	switch n := Name(s); n {
	case Auth, Subscribe, Contact, Message:
		return n, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownModal, s)
}

type Animation string

const (
	AnimationNone  Animation = ""
	AnimationEnter Animation = "enter"
	AnimationExit  Animation = "exit"
)

// Modal holds the lifecycle of one dialog. Fields are exported so a Set can be
// persisted in a session store.
type Modal struct {
	Visible   bool
	Animation Animation
	HideAt    time.Time
}

func (m *Modal) Open(now time.Time) {
	m.Visible = true
	m.Animation = AnimationEnter
	m.HideAt = time.Time{}
}

// Close starts the exit animation. The modal stays visible until Settle is
// called at or after now+delay. Closing a hidden modal is a no-op.
func (m *Modal) Close(now time.Time, delay time.Duration) {
	if !m.Visible || m.Animation == AnimationExit {
		return
	}
	m.Animation = AnimationExit
	m.HideAt = now.Add(delay)
}

// Settle completes a pending exit once its delay has elapsed and reports
// whether the modal was hidden.
func (m *Modal) Settle(now time.Time) bool {
	if m.Animation != AnimationExit || now.Before(m.HideAt) {
		return false
	}
	m.Visible = false
	m.Animation = AnimationNone
	m.HideAt = time.Time{}
	return true
}

func (m *Modal) Closing() bool {
	return m.Animation == AnimationExit
}

// Set holds one independent Modal per name.
type Set struct {
	Modals     map[Name]*Modal
	CloseDelay time.Duration
}

func NewSet(closeDelay time.Duration) Set {
	if closeDelay <= 0 {
		closeDelay = DefaultCloseDelay
	}
	return Set{Modals: make(map[Name]*Modal), CloseDelay: closeDelay}
}

func (s *Set) get(name Name) *Modal {
	if s.Modals == nil {
		s.Modals = make(map[Name]*Modal)
	}
	m, ok := s.Modals[name]
	if !ok {
		m = &Modal{}
		s.Modals[name] = m
	}
	return m
}

func (s *Set) Open(name Name, now time.Time) {
	s.get(name).Open(now)
}

func (s *Set) Close(name Name, now time.Time) {
	delay := s.CloseDelay
	if delay <= 0 {
		delay = DefaultCloseDelay
	}
	s.get(name).Close(now, delay)
}

// Settle hides every modal whose exit delay has elapsed.
func (s *Set) Settle(now time.Time) []Name {
	var hidden []Name
	for name, m := range s.Modals {
		if m.Settle(now) {
			hidden = append(hidden, name)
		}
	}
	return hidden
}

func (s Set) Visible(name Name) bool {
	m, ok := s.Modals[name]
	return ok && m.Visible
}

func (s Set) State(name Name) Modal {
	if m, ok := s.Modals[name]; ok {
		return *m
	}
	return Modal{}
}

func (s Set) Clone() Set {
	clone := Set{Modals: make(map[Name]*Modal, len(s.Modals)), CloseDelay: s.CloseDelay}
	for name, m := range s.Modals {
		copied := *m
		clone.Modals[name] = &copied
	}
	return clone
}
