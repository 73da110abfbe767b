package navigation

import (
	"strconv"
	"time"

	"techrobotics-site/internal/modal"
	"techrobotics-site/internal/models"
)

// Snapshot is the persisted form of a Session.
type Snapshot struct {
	Page          Page         `json:"current_page"`
	ProjectID     int          `json:"current_project_id,omitempty"`
	WorkshopID    int          `json:"current_workshop_id,omitempty"`
	SlideID       int          `json:"current_slide_id,omitempty"`
	User          *models.User `json:"user,omitempty"`
	Pending       *Redirect    `json:"pending_redirect,omitempty"`
	AuthMode      AuthMode     `json:"auth_mode"`
	CarouselIndex int          `json:"carousel_index"`
	Speaking      bool         `json:"is_speaking"`
	SpeakingSince time.Time    `json:"speaking_since,omitempty"`
	Message       *Message     `json:"message,omitempty"`
	Modals        modal.Set    `json:"-"`
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Page:          s.page,
		ProjectID:     s.projectID,
		WorkshopID:    s.workshopID,
		SlideID:       s.slideID,
		AuthMode:      s.authMode,
		CarouselIndex: s.carousel,
		Speaking:      s.speaking,
		SpeakingSince: s.speakingSince,
		Modals:        s.modals.Clone(),
	}
	if user, ok := s.User(); ok {
		snap.User = user
	}
	if s.pending != nil {
		r := *s.pending
		snap.Pending = &r
	}
	if s.message != nil {
		m := *s.message
		snap.Message = &m
	}
	return snap
}

// Restore rebuilds a session from a snapshot, repairing any state the
// transitions could not have produced.
func Restore(snap Snapshot, opts ...Option) *Session {
	s := newSession()

	if snap.Page.Valid() {
		s.page = snap.Page
	}
	s.projectID = snap.ProjectID
	s.workshopID = snap.WorkshopID
	s.slideID = snap.SlideID
	s.principal = PrincipalFor(snap.User)
	if snap.AuthMode.valid() {
		s.authMode = snap.AuthMode
	}
	if snap.Pending != nil && s.authMode != AuthClosed && snap.Pending.Page.Valid() {
		r := *snap.Pending
		s.pending = &r
	}
	s.carousel = snap.CarouselIndex
	s.speaking = snap.Speaking
	s.speakingSince = snap.SpeakingSince
	if snap.Message != nil {
		m := *snap.Message
		s.message = &m
	}
	if snap.Modals.Modals != nil {
		s.modals = snap.Modals.Clone()
	}

	for _, opt := range opts {
		opt(s)
	}
	s.Settle()
	return s
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
