package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionDocumentDropsEmptyFields(t *testing.T) {
	sub := Subscription{
		ID:        "sub-1",
		UserID:    "u-1",
		Name:      "Ada",
		Email:     "ada@example.com",
		Client:    ClientInfo{Browser: "Firefox"},
		CreatedAt: time.Unix(100, 0),
	}

	doc := sub.Document()

	assert.Equal(t, CollectionSubscriptions, doc.Collection)
	assert.Equal(t, "Ada", doc.Fields["name"])
	assert.Equal(t, "Firefox", doc.Fields["client_browser"])
	_, hasPhone := doc.Fields["phone"]
	assert.False(t, hasPhone)

	back := SubscriptionFromDocument(doc)
	assert.Equal(t, sub, back)
}

func TestAccountUserDefaultsToUserRole(t *testing.T) {
	login := time.Unix(200, 0)
	account := Account{ID: "a1", Email: "a@b.c", DisplayName: "A", LastLoginAt: &login}

	user := account.User()

	assert.Equal(t, RoleUser, user.Role)
	assert.Equal(t, "A", user.Username)
	assert.Equal(t, login, user.LastLoggedIn)
	assert.False(t, user.IsAdmin())
}
