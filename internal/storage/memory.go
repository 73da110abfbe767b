package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"techrobotics-site/internal/auth"
	"techrobotics-site/internal/metrics"
	"techrobotics-site/internal/models"

	"github.com/google/uuid"
)

type MemoryProvider struct {
	mu        sync.RWMutex
	accounts  map[string]*models.Account // by id
	emails    map[string]string          // email -> account id
	documents map[string][]models.Document
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		accounts:  make(map[string]*models.Account),
		emails:    make(map[string]string),
		documents: make(map[string][]models.Document),
	}
}

// byEmail finds the account owning email. Callers hold mu.
func (p *MemoryProvider) byEmail(email string) (*models.Account, bool) {
	if email == "" {
		return nil, false
	}
	id, ok := p.emails[email]
	if !ok {
		return nil, false
	}
	account, ok := p.accounts[id]
	return account, ok
}

// insert stores account and indexes its email when it has one. Callers hold mu.
func (p *MemoryProvider) insert(account *models.Account) {
	p.accounts[account.ID] = account
	if account.Email != "" {
		p.emails[account.Email] = account.ID
	}
}

func (p *MemoryProvider) Close() error { return nil }

func (p *MemoryProvider) Ping(ctx context.Context) error { return ctx.Err() }

func (p *MemoryProvider) CreateAccount(ctx context.Context, email, password, username string) (*models.User, error) {
	defer observe(metrics.StoreTypeMemory, "create_account", time.Now())

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	key := normalizeEmail(email)

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.byEmail(key); ok {
		return nil, auth.ErrEmailInUse
	}

	account := &models.Account{
		ID:           uuid.NewString(),
		Email:        key,
		PasswordHash: hash,
		Provider:     ProviderLocal,
		DisplayName:  username,
		CreatedAt:    time.Now().UTC(),
	}
	p.insert(account)

	return account.User(), nil
}

func (p *MemoryProvider) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	defer observe(metrics.StoreTypeMemory, "authenticate", time.Now())

	key := normalizeEmail(email)

	p.mu.RLock()
	account, ok := p.byEmail(key)
	var hash string
	if ok {
		hash = account.PasswordHash
	}
	p.mu.RUnlock()

	if !ok || hash == "" {
		return nil, auth.ErrInvalidCredentials
	}

	valid, err := auth.CheckPassword(password, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, auth.ErrInvalidCredentials
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now().UTC()
	account.LastLoginAt = &now

	return account.User(), nil
}

func (p *MemoryProvider) AccountExists(ctx context.Context, email string) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.byEmail(normalizeEmail(email))
	return ok, nil
}

func (p *MemoryProvider) UpsertExternalAccount(ctx context.Context, provider, subject, email, username string) (*models.User, error) {
	defer observe(metrics.StoreTypeMemory, "upsert_external_account", time.Now())

	now := time.Now().UTC()
	key := normalizeEmail(email)

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, account := range p.accounts {
		if account.Provider == provider && account.ProviderSubject == subject {
			// A new address already owned by another account is not taken over.
			if _, taken := p.byEmail(key); key != "" && key != account.Email && !taken {
				delete(p.emails, account.Email)
				account.Email = key
				p.emails[key] = account.ID
			}
			account.DisplayName = username
			account.LastLoginAt = &now
			return account.User(), nil
		}
	}

	if account, ok := p.byEmail(key); ok {
		account.LastLoginAt = &now
		return account.User(), nil
	}

	account := &models.Account{
		ID:              uuid.NewString(),
		Email:           key,
		Provider:        provider,
		ProviderSubject: subject,
		DisplayName:     username,
		CreatedAt:       now,
		LastLoginAt:     &now,
	}
	p.insert(account)
	return account.User(), nil
}

func (p *MemoryProvider) CountAccounts(ctx context.Context) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.accounts), nil
}

func (p *MemoryProvider) Append(ctx context.Context, doc models.Document) (models.Document, error) {
	defer observe(metrics.StoreTypeMemory, "append", time.Now())

	if err := validateCollection(doc.Collection); err != nil {
		return models.Document{}, err
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	fields := make(map[string]string, len(doc.Fields))
	for k, v := range doc.Fields {
		fields[k] = v
	}
	doc.Fields = fields

	p.mu.Lock()
	defer p.mu.Unlock()
	p.documents[doc.Collection] = append(p.documents[doc.Collection], doc)

	return doc, nil
}

func (p *MemoryProvider) List(ctx context.Context, collection string, order OrderBy) ([]models.Document, error) {
	defer observe(metrics.StoreTypeMemory, "list", time.Now())

	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	if err := order.validate(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	docs := append([]models.Document(nil), p.documents[collection]...)
	p.mu.RUnlock()

	less := func(a, b models.Document) bool {
		if order.Field == "" || order.Field == FieldCreatedAt {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.Fields[order.Field] < b.Fields[order.Field]
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if order.Descending {
			return less(docs[j], docs[i])
		}
		return less(docs[i], docs[j])
	})

	return docs, nil
}

func (p *MemoryProvider) Delete(ctx context.Context, collection, id string) error {
	defer observe(metrics.StoreTypeMemory, "delete", time.Now())

	if err := validateCollection(collection); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	docs := p.documents[collection]
	for i, doc := range docs {
		if doc.ID == id {
			p.documents[collection] = append(docs[:i:i], docs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (p *MemoryProvider) Count(ctx context.Context, collection string) (int, error) {
	if err := validateCollection(collection); err != nil {
		return 0, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.documents[collection]), nil
}
