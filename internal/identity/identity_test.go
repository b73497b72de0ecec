package identity

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmhart/crewlog/internal/models"
	"github.com/jmhart/crewlog/internal/storage/sqlite"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewProvider(store)
}

func TestSynthesize(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	user, err := provider.Synthesize(ctx)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if !strings.HasPrefix(user.ID, "dev_") {
		t.Errorf("id = %q, want dev_ prefix", user.ID)
	}
	if user.Username != models.DefaultUsername {
		t.Errorf("username = %q, want %q", user.Username, models.DefaultUsername)
	}

	// The synthesized identity is persisted and resolvable.
	got, err := provider.Resolve(ctx, user.ID)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("resolved id = %q, want %q", got.ID, user.ID)
	}
}

func TestResolveEmptyID(t *testing.T) {
	provider := newTestProvider(t)

	user, err := provider.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !strings.HasPrefix(user.ID, "dev_") {
		t.Errorf("id = %q, want a fresh dev_ id", user.ID)
	}
}

func TestResolveMissingRecord(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	// A device holding a token for an id the store has never seen, e.g.
	// after the database was wiped. The device keeps its id.
	user, err := provider.Resolve(ctx, "dev_ghost")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if user.ID != "dev_ghost" {
		t.Errorf("id = %q, want dev_ghost", user.ID)
	}

	got, err := provider.Resolve(ctx, "dev_ghost")
	if err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}
	if got.ID != "dev_ghost" {
		t.Errorf("re-resolved id = %q, want dev_ghost", got.ID)
	}
}

func TestUpdate(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	user, err := provider.Synthesize(ctx)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	updated, err := provider.Update(ctx, user.ID, "Alice", "alice@example.com", "data:image/png;base64,abc")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.ID != user.ID {
		t.Errorf("id changed on update: %q -> %q", user.ID, updated.ID)
	}

	got, err := provider.Resolve(ctx, user.ID)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got.Username != "Alice" || got.Email != "alice@example.com" {
		t.Errorf("resolved = %+v, want updated fields", got)
	}
}

func TestUpdateWithoutID(t *testing.T) {
	provider := newTestProvider(t)

	user, err := provider.Update(context.Background(), "", "Bob", "", "")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !strings.HasPrefix(user.ID, "dev_") {
		t.Errorf("id = %q, want generated dev_ id", user.ID)
	}
	if user.Username != "Bob" {
		t.Errorf("username = %q, want Bob", user.Username)
	}
}
