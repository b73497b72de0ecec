package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jmhart/crewlog/internal/models"
)

// Groups is the group adapter over the document store. It owns the mapping
// between Group values and stored JSON, normalizing every document it reads:
// anything the store hands back is untrusted input.
type Groups struct {
	docs Store
}

// NewGroups creates a group adapter backed by the given document store.
func NewGroups(docs Store) *Groups {
	return &Groups{docs: docs}
}

func decode(doc Document) models.Group {
	g := models.DecodeGroup(doc.Body)
	g.Version = doc.Version
	return g
}

// Create persists a brand-new group document. Fails with ErrConflict if a
// document with the same id already exists.
func (s *Groups) Create(ctx context.Context, g models.Group) (models.Group, error) {
	g = models.NormalizeGroup(g)
	body, err := json.Marshal(g)
	if err != nil {
		return models.Group{}, fmt.Errorf("failed to encode group: %w", err)
	}
	if err := s.docs.CheckAndPut(ctx, CollectionGroups, g.ID, body, 0); err != nil {
		return models.Group{}, err
	}
	g.Version = 1
	return g, nil
}

// GetByID fetches one group. Returns ErrNotFound if absent.
func (s *Groups) GetByID(ctx context.Context, id string) (models.Group, error) {
	doc, err := s.docs.Get(ctx, CollectionGroups, id)
	if err != nil {
		return models.Group{}, err
	}
	return decode(doc), nil
}

// GetByCode fetches the group holding the given invite code, the only
// secondary lookup key. Returns ErrNotFound when no group has the code.
func (s *Groups) GetByCode(ctx context.Context, code string) (models.Group, error) {
	docs, err := s.docs.QueryEq(ctx, CollectionGroups, "code", code)
	if err != nil {
		return models.Group{}, err
	}
	if len(docs) == 0 {
		return models.Group{}, fmt.Errorf("%w: no group with code %s", ErrNotFound, code)
	}
	return decode(docs[0]), nil
}

// CodeInUse reports whether any live group already holds the code.
func (s *Groups) CodeInUse(ctx context.Context, code string) (bool, error) {
	docs, err := s.docs.QueryEq(ctx, CollectionGroups, "code", code)
	if err != nil {
		return false, err
	}
	return len(docs) > 0, nil
}

// ListForUser returns every group the identity created or is a member of,
// most recently updated first.
func (s *Groups) ListForUser(ctx context.Context, user models.User) ([]models.Group, error) {
	docs, err := s.docs.List(ctx, CollectionGroups)
	if err != nil {
		return nil, err
	}
	groups := make([]models.Group, 0, len(docs))
	for _, doc := range docs {
		g := decode(doc)
		if g.CreatedBy == user.ID || g.FindMember(user.ID, user.Email) >= 0 {
			groups = append(groups, g)
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].UpdatedAt > groups[j].UpdatedAt
	})
	return groups, nil
}

// Update replaces the stored document if it is still at g.Version.
// Returns ErrConflict when another writer got there first; the caller
// re-reads and re-applies.
func (s *Groups) Update(ctx context.Context, g models.Group) error {
	g = models.NormalizeGroup(g)
	body, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to encode group: %w", err)
	}
	return s.docs.CheckAndPut(ctx, CollectionGroups, g.ID, body, g.Version)
}

// Delete removes the group document. Deletion is immediate and
// irreversible; there is no soft delete.
func (s *Groups) Delete(ctx context.Context, id string) error {
	return s.docs.Delete(ctx, CollectionGroups, id)
}
