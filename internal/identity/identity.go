// Package identity implements trust-on-first-use identity resolution.
//
// There is no account system: the first time a device shows up without an
// identity, one is synthesized with a generated device id and persisted in
// the document store. Any caller holding the device token can act as that
// identity; nothing is cryptographically verified beyond the token
// signature naming the device.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmhart/crewlog/internal/models"
	"github.com/jmhart/crewlog/internal/storage"
)

// Provider resolves and persists device identities.
type Provider struct {
	docs storage.Store
}

// NewProvider creates a provider backed by the given document store.
func NewProvider(docs storage.Store) *Provider {
	return &Provider{docs: docs}
}

// Resolve returns the identity stored under id. If the record is missing
// (fresh database, stale token) it is re-created under the same id so the
// device keeps its identity. An empty id synthesizes a brand-new identity.
func (p *Provider) Resolve(ctx context.Context, id string) (models.User, error) {
	if id == "" {
		return p.Synthesize(ctx)
	}
	doc, err := p.docs.Get(ctx, storage.CollectionIdentities, id)
	if errors.Is(err, storage.ErrNotFound) {
		return p.save(ctx, models.User{ID: id})
	}
	if err != nil {
		return models.User{}, err
	}
	var u models.User
	// Untrusted input: decode best effort, normalization fills the rest.
	_ = json.Unmarshal(doc.Body, &u)
	u.ID = id
	return models.NormalizeUser(u), nil
}

// Synthesize creates and persists a fresh identity with a generated
// "dev_" device id. Subsequent Resolve calls with that id return the same
// identity.
func (p *Provider) Synthesize(ctx context.Context) (models.User, error) {
	return p.save(ctx, models.User{ID: models.NewID("dev")})
}

// Update replaces the display fields of the identity stored under id,
// creating the record if needed. The id itself never changes.
func (p *Provider) Update(ctx context.Context, id, username, email, photoDataURL string) (models.User, error) {
	if id == "" {
		id = models.NewID("dev")
	}
	return p.save(ctx, models.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PhotoDataURL: photoDataURL,
	})
}

func (p *Provider) save(ctx context.Context, u models.User) (models.User, error) {
	u = models.NormalizeUser(u)
	body, err := json.Marshal(u)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to encode identity: %w", err)
	}
	if err := p.docs.Put(ctx, storage.CollectionIdentities, u.ID, body); err != nil {
		return models.User{}, err
	}
	return u, nil
}
