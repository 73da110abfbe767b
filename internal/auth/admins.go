package auth

import (
	"fmt"
	"strings"

	"techrobotics-site/internal/config"
	"techrobotics-site/internal/models"
)

// AdminList is the fixed allow-list of administrator accounts.
type AdminList struct {
	admins map[string]config.AdminAccount
}

func NewAdminList(accounts []config.AdminAccount) *AdminList {
	list := &AdminList{admins: make(map[string]config.AdminAccount, len(accounts))}
	for _, account := range accounts {
		list.admins[normalizeEmail(account.Email)] = account
	}
	return list
}

func (l *AdminList) Contains(email string) bool {
	if l == nil {
		return false
	}
	_, ok := l.admins[normalizeEmail(email)]
	return ok
}

func (l *AdminList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.admins)
}

// Verify checks the credentials against the allow-list and returns the admin
// user on success.
func (l *AdminList) Verify(email, password string) (*models.User, error) {
	if l == nil {
		return nil, ErrNotAdmin
	}

	account, ok := l.admins[normalizeEmail(email)]
	if !ok {
		return nil, ErrNotAdmin
	}

	valid, err := CheckPassword(password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verifying admin password: %w", err)
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	return &models.User{
		ID:       "admin:" + normalizeEmail(account.Email),
		Username: account.Name,
		Email:    account.Email,
		Role:     models.RoleAdmin,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
