package models

import "time"

type Role string

const (
	RoleGuest Role = "guest"
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	Provider     string    `json:"provider,omitempty"`
	LastLoggedIn time.Time `json:"last_logged_in"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Account is the stored form of a registered identity.
type Account struct {
	ID              string
	Email           string
	PasswordHash    string
	Provider        string
	ProviderSubject string
	DisplayName     string
	CreatedAt       time.Time
	LastLoginAt     *time.Time
}

func (a *Account) User() *User {
	user := &User{
		ID:        a.ID,
		Username:  a.DisplayName,
		Email:     a.Email,
		Role:      RoleUser,
		Provider:  a.Provider,
		CreatedAt: a.CreatedAt,
	}
	if a.LastLoginAt != nil {
		user.LastLoggedIn = *a.LastLoginAt
	}
	return user
}
