// Package navigation holds the per-browser session state and the transitions
// that move it between pages and authentication states.
package navigation

import (
	"errors"
	"time"

	"techrobotics-site/internal/modal"
	"techrobotics-site/internal/models"
)

type AuthMode string

const (
	AuthClosed     AuthMode = "closed"
	AuthLogin      AuthMode = "login"
	AuthSignup     AuthMode = "signup"
	AuthAdminLogin AuthMode = "adminLogin"
)

func (m AuthMode) valid() bool {
	switch m {
	case AuthClosed, AuthLogin, AuthSignup, AuthAdminLogin:
		return true
	}
	return false
}

// Redirect is the page a guest asked for before being sent to the auth modal.
type Redirect struct {
	Page   Page `json:"page"`
	DataID int  `json:"data_id,omitempty"`
}

var (
	ErrGuestLogin   = errors.New("cannot complete login as a guest")
	ErrInvalidSlide = errors.New("slide index out of range")
	ErrManagedModal = errors.New("auth modal is controlled by the auth gate")
)

// Session is mutated only through its transition methods, which keep the
// pending redirect tied to an open auth modal.
type Session struct {
	page       Page
	projectID  int
	workshopID int
	slideID    int

	principal Principal
	pending   *Redirect
	authMode  AuthMode

	carousel      int
	speaking      bool
	speakingSince time.Time
	message       *Message
	modals        modal.Set

	clock  func() time.Time
	notify Listener
}

type Option func(*Session)

func WithClock(clock func() time.Time) Option {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithBus(bus *Bus) Option {
	return func(s *Session) {
		if bus != nil {
			s.notify = bus.Publish
		}
	}
}

func WithCloseDelay(delay time.Duration) Option {
	return func(s *Session) {
		if delay > 0 {
			s.modals.CloseDelay = delay
		}
	}
}

func newSession() *Session {
	return &Session{
		page:      DefaultPage,
		principal: Guest{},
		authMode:  AuthClosed,
		modals:    modal.NewSet(modal.DefaultCloseDelay),
		clock:     time.Now,
	}
}

// New returns a guest session on the home page.
func New(opts ...Option) *Session {
	s := newSession()
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) now() time.Time {
	return s.clock()
}

func (s *Session) emit(kind ChangeKind, from, to string) {
	if s.notify == nil || from == to {
		return
	}
	s.notify(Change{Kind: kind, From: from, To: to})
}

func (s *Session) Page() Page           { return s.page }
func (s *Session) ProjectID() int       { return s.projectID }
func (s *Session) WorkshopID() int      { return s.workshopID }
func (s *Session) SlideID() int         { return s.slideID }
func (s *Session) Principal() Principal { return s.principal }
func (s *Session) AuthMode() AuthMode   { return s.authMode }
func (s *Session) CarouselIndex() int   { return s.carousel }
func (s *Session) Speaking() bool       { return s.speaking }
func (s *Session) Message() *Message    { return s.message }
func (s *Session) Modals() modal.Set    { return s.modals.Clone() }

func (s *Session) User() (*models.User, bool) {
	return UserOf(s.principal)
}

func (s *Session) IsAuthenticated() bool {
	_, ok := s.User()
	return ok
}

func (s *Session) IsAdmin() bool {
	_, ok := s.principal.(Admin)
	return ok
}

func (s *Session) PendingRedirect() (Redirect, bool) {
	if s.pending == nil {
		return Redirect{}, false
	}
	return *s.pending, true
}

func (s *Session) showPage(p Page) {
	prev := s.page
	s.page = p
	s.emit(ChangePage, string(prev), string(p))
}

func (s *Session) setData(p Page, dataID int) {
	switch p {
	case PageProjectDetails:
		s.projectID = dataID
	case PageWorkshopDetails:
		s.workshopID = dataID
	case PageDetails:
		s.slideID = dataID
	}
}

func (s *Session) setPending(r *Redirect) {
	var from, to string
	if s.pending != nil {
		from = string(s.pending.Page)
	}
	if r != nil {
		to = string(r.Page)
	}
	s.pending = r
	s.emit(ChangeRedirect, from, to)
}

func (s *Session) setAuthMode(mode AuthMode) {
	prev := s.authMode
	s.authMode = mode
	switch {
	case mode == AuthClosed:
		s.modals.Close(modal.Auth, s.now())
	case prev == AuthClosed:
		s.modals.Open(modal.Auth, s.now())
	}
	s.emit(ChangeAuthModal, string(prev), string(mode))
}

func (s *Session) setPrincipal(p Principal) {
	prev := s.principal.Role()
	s.principal = p
	s.emit(ChangePrincipal, string(prev), string(p.Role()))
}

// ShowAuthModal opens the auth modal in admin, login or signup mode.
func (s *Session) ShowAuthModal(isLogin, isAdmin bool) {
	mode := AuthSignup
	switch {
	case isAdmin:
		mode = AuthAdminLogin
	case isLogin:
		mode = AuthLogin
	}
	s.setAuthMode(mode)
}

// ToggleAuthMode flips between login and signup. It reports false and does
// nothing in admin mode or when the modal is closed.
func (s *Session) ToggleAuthMode() bool {
	switch s.authMode {
	case AuthLogin:
		s.setAuthMode(AuthSignup)
	case AuthSignup:
		s.setAuthMode(AuthLogin)
	default:
		return false
	}
	return true
}

// CloseAuthModal cancels the auth attempt and forgets the pending redirect.
func (s *Session) CloseAuthModal() {
	s.setPending(nil)
	s.setAuthMode(AuthClosed)
}

// CompleteLogin authenticates the session as p and returns the page shown
// afterwards. Admins land on the admin dashboard; other principals are sent to
// the pending redirect page. Only the page is restored, the redirect's data id
// is dropped.
func (s *Session) CompleteLogin(p Principal) (Page, error) {
	if p == nil || p.Role() == models.RoleGuest {
		return s.page, ErrGuestLogin
	}

	s.setPrincipal(p)

	target := s.page
	_, admin := p.(Admin)
	switch {
	case admin:
		target = PageAdminDashboard
	case s.pending != nil && !s.pending.Page.AdminOnly():
		target = s.pending.Page
	}

	s.setPending(nil)
	s.setAuthMode(AuthClosed)
	s.showPage(target)
	return target, nil
}

// SignupSucceeded keeps the modal open and switches it to login mode.
func (s *Session) SignupSucceeded() {
	s.setAuthMode(AuthLogin)
}

// Logout resets the session to a guest on the home page.
func (s *Session) Logout() {
	s.setPending(nil)
	s.setAuthMode(AuthClosed)
	s.setPrincipal(Guest{})
	s.showPage(DefaultPage)
	s.projectID, s.workshopID, s.slideID = 0, 0, 0
	s.StopNarration()
}

func (s *Session) ShowMessage(m *Message) {
	if m == nil {
		return
	}
	s.message = m
	s.modals.Open(modal.Message, s.now())
}

func (s *Session) DismissMessage() {
	s.modals.Close(modal.Message, s.now())
}

// OpenModal opens one of the free-standing modals.
func (s *Session) OpenModal(name modal.Name) error {
	if name == modal.Auth {
		return ErrManagedModal
	}
	s.modals.Open(name, s.now())
	return nil
}

func (s *Session) CloseModal(name modal.Name) error {
	switch name {
	case modal.Auth:
		return ErrManagedModal
	case modal.Message:
		s.DismissMessage()
	default:
		s.modals.Close(name, s.now())
	}
	return nil
}

// Settle hides modals whose exit delay has elapsed. The message is dropped
// once its modal is hidden.
func (s *Session) Settle() {
	for _, name := range s.modals.Settle(s.now()) {
		if name == modal.Message {
			s.message = nil
		}
	}
}

func (s *Session) setCarousel(i int) int {
	prev := s.carousel
	s.carousel = i
	s.emit(ChangeCarousel, itoa(prev), itoa(i))
	return i
}

func (s *Session) NextSlide(count int) int {
	if count <= 0 {
		return s.carousel
	}
	return s.setCarousel((s.carousel%count + 1) % count)
}

func (s *Session) PrevSlide(count int) int {
	if count <= 0 {
		return s.carousel
	}
	return s.setCarousel((s.carousel%count - 1 + count) % count)
}

func (s *Session) SelectSlide(i, count int) error {
	if i < 0 || i >= count {
		return ErrInvalidSlide
	}
	s.setCarousel(i)
	return nil
}

func (s *Session) StartNarration() {
	s.speaking = true
	s.speakingSince = s.now()
	s.emit(ChangeNarration, "stopped", "speaking")
}

// StopNarration reports whether narration was running.
func (s *Session) StopNarration() bool {
	if !s.speaking {
		return false
	}
	s.speaking = false
	s.speakingSince = time.Time{}
	s.emit(ChangeNarration, "speaking", "stopped")
	return true
}

// FinishNarration stops a narration that has been running for at least d.
func (s *Session) FinishNarration(d time.Duration) bool {
	if !s.speaking || s.now().Sub(s.speakingSince) < d {
		return false
	}
	return s.StopNarration()
}
