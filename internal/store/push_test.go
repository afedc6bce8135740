package store

import (
	"errors"
	"testing"

	"github.com/dukerupert/bywater/internal/database"
	"github.com/dukerupert/bywater/internal/model"
)

func setupPushStore(t *testing.T) (*PushStore, *model.Household, *model.Household) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	hs := NewHouseholdStore(db)
	h1 := createTestHousehold(t, hs, "", "hash-1")
	h2 := createTestHousehold(t, hs, "", "hash-2")
	return NewPushStore(db), h1, h2
}

func TestPushSubscriptionCreate(t *testing.T) {
	ps, h, _ := setupPushStore(t)

	sub, err := ps.Create(h.ID, "https://push.example/ep1", "p256dh-a", "auth-a")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sub.Endpoint != "https://push.example/ep1" {
		t.Errorf("endpoint = %q", sub.Endpoint)
	}

	subs, err := ps.ListByHousehold(h.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("expected 1 subscription, got %d", len(subs))
	}
}

func TestPushSubscriptionReregister(t *testing.T) {
	ps, h1, h2 := setupPushStore(t)

	first, err := ps.Create(h1.ID, "https://push.example/ep1", "p256dh-a", "auth-a")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Same endpoint again replaces the keys and can move households
	second, err := ps.Create(h2.ID, "https://push.example/ep1", "p256dh-b", "auth-b")
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected the same row, got id %d then %d", first.ID, second.ID)
	}
	if second.P256dhKey != "p256dh-b" {
		t.Errorf("p256dh = %q, want replaced", second.P256dhKey)
	}
	if second.HouseholdID != h2.ID {
		t.Errorf("household = %d, want %d", second.HouseholdID, h2.ID)
	}

	if subs, _ := ps.ListByHousehold(h1.ID); len(subs) != 0 {
		t.Errorf("expected old household to lose the subscription, got %d", len(subs))
	}
}

func TestPushSubscriptionDelete(t *testing.T) {
	ps, h1, h2 := setupPushStore(t)

	sub, _ := ps.Create(h1.ID, "https://push.example/ep1", "k", "a")

	// Scoped to the owning household
	err := ps.Delete(h2.ID, sub.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for foreign household", err)
	}

	if err := ps.Delete(h1.ID, sub.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	err = ps.Delete(h1.ID, sub.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after delete", err)
	}
}

func TestPushSubscriptionDeleteByEndpoint(t *testing.T) {
	ps, h, _ := setupPushStore(t)

	ps.Create(h.ID, "https://push.example/ep1", "k", "a")

	if err := ps.DeleteByEndpoint("https://push.example/ep1"); err != nil {
		t.Fatalf("delete by endpoint: %v", err)
	}
	if subs, _ := ps.ListByHousehold(h.ID); len(subs) != 0 {
		t.Errorf("expected no subscriptions, got %d", len(subs))
	}

	// Unknown endpoints are a no-op
	if err := ps.DeleteByEndpoint("https://push.example/gone"); err != nil {
		t.Fatalf("delete unknown endpoint: %v", err)
	}
}
