package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"techrobotics-site/internal/auth"
	"techrobotics-site/internal/config"
	"techrobotics-site/internal/metrics"
	"techrobotics-site/internal/models"
)

//go:generate mockgen -source=storage.go -destination=../mocks/storage.go -package=mocks

// noinspection GoNameStartsWithPackageName
type StorageProvider interface {
	Close() error
	Ping(ctx context.Context) error

	CreateAccount(ctx context.Context, email, password, username string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	AccountExists(ctx context.Context, email string) (bool, error)
	UpsertExternalAccount(ctx context.Context, provider, subject, email, username string) (*models.User, error)
	CountAccounts(ctx context.Context) (int, error)

	Append(ctx context.Context, doc models.Document) (models.Document, error)
	List(ctx context.Context, collection string, order OrderBy) ([]models.Document, error)
	Delete(ctx context.Context, collection, id string) error
	Count(ctx context.Context, collection string) (int, error)
}

const (
	FieldCreatedAt = "created_at"
	ProviderLocal  = "local"
)

var (
	ErrNotFound          = errors.New("document not found")
	ErrInvalidCollection = errors.New("invalid collection name")
	ErrInvalidOrderField = errors.New("invalid order field")
)

var identifierPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

// OrderBy sorts a listing by created_at or by one of the document fields.
type OrderBy struct {
	Field      string
	Descending bool
}

var OrderByNewest = OrderBy{Field: FieldCreatedAt, Descending: true}

func (o OrderBy) validate() error {
	if o.Field == "" {
		return nil
	}
	if !identifierPattern.MatchString(o.Field) {
		return fmt.Errorf("%w: %q", ErrInvalidOrderField, o.Field)
	}
	return nil
}

func validateCollection(collection string) error {
	if !identifierPattern.MatchString(collection) {
		return fmt.Errorf("%w: %q", ErrInvalidCollection, collection)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func observe(store, operation string, start time.Time) {
	metrics.StorageOperationDuration.WithLabelValues(store, operation).Observe(time.Since(start).Seconds())
}

// NewStorageProvider builds the backend named by storage.type.
func NewStorageProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) (StorageProvider, error) {
	switch cfg.Storage.Type {
	case "", "memory":
		logger.Info("using in-memory storage")
		return NewMemoryProvider(), nil
	case "sqlite":
		logger.Info("opening sqlite storage", "path", cfg.Storage.Path)
		provider, err := NewSQLiteProvider(ctx, cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		logger.Debug("running database migrations")
		if err := provider.RunMigrations(ctx); err != nil {
			provider.Close()
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
}

// SeedAccounts creates the configured seed users that do not exist yet.
func SeedAccounts(ctx context.Context, store StorageProvider, users []config.SeedUser, logger *slog.Logger) error {
	for _, seed := range users {
		exists, err := store.AccountExists(ctx, seed.Email)
		if err != nil {
			return fmt.Errorf("checking seed user: %w", err)
		}
		if exists {
			continue
		}

		if _, err := store.CreateAccount(ctx, seed.Email, seed.Password, seed.Username); err != nil && !errors.Is(err, auth.ErrEmailInUse) {
			return fmt.Errorf("creating seed user: %w", err)
		}
		logger.Info("seeded user account", "username", seed.Username)
	}
	return nil
}
