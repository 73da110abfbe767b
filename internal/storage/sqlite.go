package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"techrobotics-site/internal/auth"
	"techrobotics-site/internal/metrics"
	"techrobotics-site/internal/models"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

type SQLiteProvider struct {
	db *sql.DB
}

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA cache_size = -64000",
	"PRAGMA foreign_keys = ON",
	"PRAGMA temp_store = MEMORY",
}

func NewSQLiteProvider(ctx context.Context, path string) (*SQLiteProvider, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// sqlite allows one writer; a single connection keeps pragmas consistent.
	db.SetMaxOpenConns(1)

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting %q: %w", pragma, err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &SQLiteProvider{db: db}, nil
}

func (p *SQLiteProvider) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, p.db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func (p *SQLiteProvider) Close() error {
	return p.db.Close()
}

func (p *SQLiteProvider) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

const accountColumns = `id, email, password_hash, provider, provider_subject, display_name, created_at, last_login_at`

func scanAccount(row interface{ Scan(...any) error }) (*models.Account, error) {
	var (
		account   models.Account
		email     sql.NullString
		createdAt int64
		lastLogin sql.NullInt64
	)
	if err := row.Scan(&account.ID, &email, &account.PasswordHash, &account.Provider,
		&account.ProviderSubject, &account.DisplayName, &createdAt, &lastLogin); err != nil {
		return nil, err
	}
	account.Email = email.String
	account.CreatedAt = time.Unix(0, createdAt).UTC()
	if lastLogin.Valid {
		t := time.Unix(0, lastLogin.Int64).UTC()
		account.LastLoginAt = &t
	}
	return &account, nil
}

// nullableEmail stores accounts without an address as NULL.
func nullableEmail(email string) sql.NullString {
	return sql.NullString{String: email, Valid: email != ""}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (p *SQLiteProvider) CreateAccount(ctx context.Context, email, password, username string) (*models.User, error) {
	defer observe(metrics.StoreTypeSQLite, "create_account", time.Now())

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		Provider:     ProviderLocal,
		DisplayName:  username,
		CreatedAt:    time.Now().UTC(),
	}

	_, err = p.db.ExecContext(ctx,
		`INSERT INTO accounts (id, email, password_hash, provider, display_name, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		account.ID, account.Email, account.PasswordHash, account.Provider, account.DisplayName, account.CreatedAt.UnixNano())
	if isUniqueViolation(err) {
		return nil, auth.ErrEmailInUse
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert account: %w", err)
	}

	return account.User(), nil
}

func (p *SQLiteProvider) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	defer observe(metrics.StoreTypeSQLite, "authenticate", time.Now())

	row := p.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = ?`, normalizeEmail(email))
	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account.PasswordHash == "" {
		return nil, auth.ErrInvalidCredentials
	}

	valid, err := auth.CheckPassword(password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, auth.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if _, err := p.db.ExecContext(ctx, `UPDATE accounts SET last_login_at = ? WHERE id = ?`, now.UnixNano(), account.ID); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	account.LastLoginAt = &now

	return account.User(), nil
}

func (p *SQLiteProvider) AccountExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := p.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE email = ?)`, normalizeEmail(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check account: %w", err)
	}
	return exists, nil
}

func (p *SQLiteProvider) UpsertExternalAccount(ctx context.Context, provider, subject, email, username string) (*models.User, error) {
	defer observe(metrics.StoreTypeSQLite, "upsert_external_account", time.Now())

	now := time.Now().UTC()
	key := normalizeEmail(email)

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE provider = ? AND provider_subject = ?`, provider, subject)
	account, err := scanAccount(row)
	switch {
	case err == nil:
		if key != "" && key != account.Email {
			var taken bool
			if err := tx.QueryRowContext(ctx,
				`SELECT EXISTS(SELECT 1 FROM accounts WHERE email = ? AND id <> ?)`, key, account.ID).Scan(&taken); err != nil {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			// A new address already owned by another account is not taken over.
			if !taken {
				account.Email = key
			}
		}
		account.DisplayName = username
		if _, err := tx.ExecContext(ctx,
			`UPDATE accounts SET email = ?, display_name = ?, last_login_at = ? WHERE id = ?`,
			nullableEmail(account.Email), account.DisplayName, now.UnixNano(), account.ID); err != nil {
			return nil, fmt.Errorf("failed to update account: %w", err)
		}
	case errors.Is(err, sql.ErrNoRows):
		// Without an address there is nothing to link by.
		if key != "" {
			row = tx.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = ?`, key)
			account, err = scanAccount(row)
		}
		if err == nil {
			if _, err := tx.ExecContext(ctx, `UPDATE accounts SET last_login_at = ? WHERE id = ?`, now.UnixNano(), account.ID); err != nil {
				return nil, fmt.Errorf("failed to update account: %w", err)
			}
			break
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to load account: %w", err)
		}

		account = &models.Account{
			ID:              uuid.NewString(),
			Email:           key,
			Provider:        provider,
			ProviderSubject: subject,
			DisplayName:     username,
			CreatedAt:       now,
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO accounts (id, email, provider, provider_subject, display_name, created_at, last_login_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			account.ID, nullableEmail(account.Email), account.Provider, account.ProviderSubject, account.DisplayName,
			account.CreatedAt.UnixNano(), now.UnixNano()); err != nil {
			return nil, fmt.Errorf("failed to insert account: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	account.LastLoginAt = &now

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return account.User(), nil
}

func (p *SQLiteProvider) CountAccounts(ctx context.Context) (int, error) {
	var count int
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}

func (p *SQLiteProvider) Append(ctx context.Context, doc models.Document) (models.Document, error) {
	defer observe(metrics.StoreTypeSQLite, "append", time.Now())

	if err := validateCollection(doc.Collection); err != nil {
		return models.Document{}, err
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if doc.Fields == nil {
		doc.Fields = map[string]string{}
	}

	data, err := json.Marshal(doc.Fields)
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to encode document: %w", err)
	}

	if _, err := p.db.ExecContext(ctx,
		`INSERT INTO documents (id, collection, data, created_at) VALUES (?, ?, ?, ?)`,
		doc.ID, doc.Collection, string(data), doc.CreatedAt.UnixNano()); err != nil {
		return models.Document{}, fmt.Errorf("failed to insert document: %w", err)
	}

	return doc, nil
}

func (p *SQLiteProvider) List(ctx context.Context, collection string, order OrderBy) ([]models.Document, error) {
	defer observe(metrics.StoreTypeSQLite, "list", time.Now())

	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	if err := order.validate(); err != nil {
		return nil, err
	}

	direction := "ASC"
	if order.Descending {
		direction = "DESC"
	}

	query := `SELECT id, collection, data, created_at FROM documents WHERE collection = ?`
	args := []any{collection}
	if order.Field == "" || order.Field == FieldCreatedAt {
		query += ` ORDER BY created_at ` + direction + `, rowid ` + direction
	} else {
		query += ` ORDER BY json_extract(data, ?) ` + direction + `, rowid ` + direction
		args = append(args, "$."+order.Field)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var (
			doc       models.Document
			data      string
			createdAt int64
		)
		if err := rows.Scan(&doc.ID, &doc.Collection, &data, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &doc.Fields); err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", doc.ID, err)
		}
		doc.CreatedAt = time.Unix(0, createdAt).UTC()
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

func (p *SQLiteProvider) Delete(ctx context.Context, collection, id string) error {
	defer observe(metrics.StoreTypeSQLite, "delete", time.Now())

	if err := validateCollection(collection); err != nil {
		return err
	}

	res, err := p.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *SQLiteProvider) Count(ctx context.Context, collection string) (int, error) {
	if err := validateCollection(collection); err != nil {
		return 0, err
	}
	var count int
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE collection = ?`, collection).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}
