// Package auth implements the authentication gate that sits in front of
// protected pages, the administrator allow-list and password hashing.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"techrobotics-site/internal/metrics"
	"techrobotics-site/internal/models"
	"techrobotics-site/internal/navigation"
	"techrobotics-site/internal/utils"
)

//go:generate mockgen -source=gate.go -destination=../mocks/identity.go -package=mocks

type IdentityStore interface {
	CreateAccount(ctx context.Context, email, password, username string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	AccountExists(ctx context.Context, email string) (bool, error)
}

type ActivityTracker interface {
	MarkActive(ctx context.Context, user models.User) error
	MarkInactive(ctx context.Context, userID string) error
}

type Credentials struct {
	Email    string
	Password string
	Username string
}

func (c Credentials) trimmed() Credentials {
	return Credentials{
		Email:    strings.TrimSpace(c.Email),
		Password: strings.TrimSpace(c.Password),
		Username: strings.TrimSpace(c.Username),
	}
}

type Outcome string

const (
	OutcomeLoggedIn Outcome = "logged_in"
	OutcomeSignedUp Outcome = "signed_up"
	OutcomeRejected Outcome = "rejected"
)

type Result struct {
	Outcome Outcome             `json:"outcome"`
	User    *models.User        `json:"user,omitempty"`
	Page    navigation.Page     `json:"page"`
	Message *navigation.Message `json:"message,omitempty"`
}

type Gate struct {
	identities        IdentityStore
	admins            *AdminList
	presence          ActivityTracker
	minPasswordLength int
	logger            *slog.Logger
}

func NewGate(identities IdentityStore, admins *AdminList, presence ActivityTracker, minPasswordLength int, logger *slog.Logger) *Gate {
	if minPasswordLength <= 0 {
		minPasswordLength = 6
	}
	return &Gate{
		identities:        identities,
		admins:            admins,
		presence:          presence,
		minPasswordLength: minPasswordLength,
		logger:            logger,
	}
}

// Submit processes the auth form in whatever mode the session's modal is in.
// Rejections come back as one of the package's sentinel errors together with a
// Result carrying the message to show; the session is left in its current mode.
func (g *Gate) Submit(ctx context.Context, s *navigation.Session, creds Credentials) (Result, error) {
	creds = creds.trimmed()
	mode := s.AuthMode()

	var (
		result Result
		err    error
	)
	switch mode {
	case navigation.AuthAdminLogin:
		result, err = g.adminLogin(ctx, s, creds)
	case navigation.AuthLogin:
		result, err = g.login(ctx, s, creds)
	case navigation.AuthSignup:
		result, err = g.signup(ctx, s, creds)
	default:
		result, err = g.reject(s, ErrAuthModalClosed, "Please open the login form first.")
	}

	metrics.AuthAttempts.WithLabelValues(string(mode), string(result.Outcome)).Inc()
	return result, err
}

func (g *Gate) adminLogin(ctx context.Context, s *navigation.Session, creds Credentials) (Result, error) {
	user, err := g.admins.Verify(creds.Email, creds.Password)
	if err != nil {
		if !errors.Is(err, ErrNotAdmin) && !errors.Is(err, ErrInvalidCredentials) {
			g.logger.Error("admin verification failed", "email", utils.RedactEmail(creds.Email), "error", err)
			return g.reject(s, err, "Admin Login Failed: Something went wrong, please try again.")
		}
		g.logger.Warn("admin login rejected", "email", utils.RedactEmail(creds.Email))
		return g.reject(s, fmt.Errorf("admin login: %w", ErrInvalidCredentials), "Admin Login Failed: Invalid admin credentials.")
	}

	return g.complete(ctx, s, navigation.Admin{User: *user})
}

func (g *Gate) login(ctx context.Context, s *navigation.Session, creds Credentials) (Result, error) {
	user, err := g.identities.Authenticate(ctx, creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			g.logger.Info("login rejected", "email", utils.RedactEmail(creds.Email))
			return g.reject(s, err, "Login Failed: Invalid email or password.")
		}
		g.logger.Error("failed to authenticate", "email", utils.RedactEmail(creds.Email), "error", err)
		return g.reject(s, err, "Login Failed: Something went wrong, please try again.")
	}

	user.Role = models.RoleUser
	return g.complete(ctx, s, navigation.Member{User: *user})
}

// CompleteExternalLogin finishes a login vouched for by an external identity
// provider exactly like a successful login-mode submission.
func (g *Gate) CompleteExternalLogin(ctx context.Context, s *navigation.Session, user *models.User) (Result, error) {
	if user == nil {
		return g.reject(s, ErrInvalidCredentials, "Login Failed: Invalid email or password.")
	}
	user.Role = models.RoleUser
	result, err := g.complete(ctx, s, navigation.Member{User: *user})
	metrics.AuthAttempts.WithLabelValues("external", string(result.Outcome)).Inc()
	return result, err
}

func (g *Gate) complete(ctx context.Context, s *navigation.Session, p navigation.Principal) (Result, error) {
	page, err := s.CompleteLogin(p)
	if err != nil {
		return g.reject(s, err, "Login Failed: Something went wrong, please try again.")
	}

	user, _ := navigation.UserOf(p)
	user.LastLoggedIn = time.Now()

	if g.presence != nil {
		if err := g.presence.MarkActive(ctx, *user); err != nil {
			g.logger.Warn("failed to mark user active", "user_id", user.ID, "error", err)
		}
	}

	msg := navigation.Success(fmt.Sprintf("Welcome back, %s!", user.Username))
	s.ShowMessage(msg)

	g.logger.Info("user logged in", "user_id", user.ID, "role", user.Role, "page", page)
	return Result{Outcome: OutcomeLoggedIn, User: user, Page: page, Message: msg}, nil
}

func (g *Gate) signup(ctx context.Context, s *navigation.Session, creds Credentials) (Result, error) {
	if creds.Username == "" {
		return g.reject(s, ErrUsernameRequired, "Sign Up Failed: Username is mandatory.")
	}

	if creds.Email == "" {
		return g.reject(s, ErrEmailRequired, "Sign Up Failed: Email is mandatory.")
	}

	exists, err := g.identities.AccountExists(ctx, creds.Email)
	if err != nil {
		g.logger.Error("failed to check for existing account", "email", utils.RedactEmail(creds.Email), "error", err)
		return g.reject(s, err, "Sign Up Failed: Something went wrong, please try again.")
	}
	if exists {
		return g.reject(s, ErrEmailInUse, "Sign Up Failed: This email is already registered.")
	}

	if len(creds.Password) < g.minPasswordLength {
		return g.reject(s, ErrPasswordTooShort,
			fmt.Sprintf("Sign Up Failed: Password must be at least %d characters.", g.minPasswordLength))
	}

	user, err := g.identities.CreateAccount(ctx, creds.Email, creds.Password, creds.Username)
	if err != nil {
		if errors.Is(err, ErrEmailInUse) {
			return g.reject(s, err, "Sign Up Failed: This email is already registered.")
		}
		g.logger.Error("failed to create account", "email", utils.RedactEmail(creds.Email), "error", err)
		return g.reject(s, err, "Sign Up Failed: Something went wrong, please try again.")
	}

	s.SignupSucceeded()
	msg := navigation.Success("Sign Up successful! Please login now.")
	s.ShowMessage(msg)

	g.logger.Info("account created", "user_id", user.ID)
	return Result{Outcome: OutcomeSignedUp, User: user, Page: s.Page(), Message: msg}, nil
}

func (g *Gate) reject(s *navigation.Session, err error, text string) (Result, error) {
	msg := navigation.Error(text)
	s.ShowMessage(msg)
	return Result{Outcome: OutcomeRejected, Page: s.Page(), Message: msg}, err
}

// Logout removes the user from the active set and resets the session.
func (g *Gate) Logout(ctx context.Context, s *navigation.Session) *navigation.Message {
	if user, ok := s.User(); ok && g.presence != nil {
		if err := g.presence.MarkInactive(ctx, user.ID); err != nil {
			g.logger.Warn("failed to mark user inactive", "user_id", user.ID, "error", err)
		}
	}

	s.Logout()
	msg := navigation.Success("You have been successfully logged out.")
	s.ShowMessage(msg)
	return msg
}
