package store

import (
	"errors"
	"testing"
)

func TestProductCreateAppendsAtEnd(t *testing.T) {
	hs, ps, _ := setupTestDB(t)
	h := createTestHousehold(t, hs, "", "hash-1")

	for i, name := range []string{"Milk", "Bread", "Eggs"} {
		p, err := ps.Create(h.ID, name)
		if err != nil {
			t.Fatalf("create %q: %v", name, err)
		}
		if p.SortOrder != i+1 {
			t.Errorf("%q sort order = %d, want %d", name, p.SortOrder, i+1)
		}
	}
}

func TestProductCreateDuplicateName(t *testing.T) {
	hs, ps, _ := setupTestDB(t)
	h := createTestHousehold(t, hs, "", "hash-1")

	if _, err := ps.Create(h.ID, "Milk"); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := ps.Create(h.ID, "Milk")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestProductNameScopedPerHousehold(t *testing.T) {
	hs, ps, _ := setupTestDB(t)
	h1 := createTestHousehold(t, hs, "", "hash-1")
	h2 := createTestHousehold(t, hs, "", "hash-2")

	if _, err := ps.Create(h1.ID, "Milk"); err != nil {
		t.Fatalf("create in h1: %v", err)
	}
	// Same name in a different household is fine
	if _, err := ps.Create(h2.ID, "Milk"); err != nil {
		t.Fatalf("create in h2: %v", err)
	}
}

func TestProductGetScopedPerHousehold(t *testing.T) {
	hs, ps, _ := setupTestDB(t)
	h1 := createTestHousehold(t, hs, "", "hash-1")
	h2 := createTestHousehold(t, hs, "", "hash-2")

	p, _ := ps.Create(h1.ID, "Milk")

	got, err := ps.GetByID(h2.ID, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Error("expected nil when fetching another household's product")
	}
}

func TestProductRename(t *testing.T) {
	hs, ps, _ := setupTestDB(t)
	h := createTestHousehold(t, hs, "", "hash-1")

	p, _ := ps.Create(h.ID, "Milk")
	ps.Create(h.ID, "Bread")

	renamed, err := ps.Rename(h.ID, p.ID, "Oat milk")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.Name != "Oat milk" {
		t.Errorf("name = %q, want %q", renamed.Name, "Oat milk")
	}

	// Renaming to a name another product holds is a conflict
	_, err = ps.Rename(h.ID, p.ID, "Bread")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	// Renaming to its own current name is allowed
	if _, err := ps.Rename(h.ID, p.ID, "Oat milk"); err != nil {
		t.Fatalf("rename to same name: %v", err)
	}

	_, err = ps.Rename(h.ID, 9999, "Anything")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestProductDeleteWhileReferenced(t *testing.T) {
	hs, ps, ss := setupTestDB(t)
	h := createTestHousehold(t, hs, "", "hash-1")

	p, _ := ps.Create(h.ID, "Milk")
	item, _, err := ss.AddItem(h.ID, p.ID, "", "", "")
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	err = ps.Delete(h.ID, p.ID)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict while item references product", err)
	}

	if err := ss.Delete(h.ID, item.ID); err != nil {
		t.Fatalf("delete item: %v", err)
	}

	// With the item gone the product can be deleted
	if err := ps.Delete(h.ID, p.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}

	err = ps.Delete(h.ID, p.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after delete", err)
	}
}

func TestProductReorder(t *testing.T) {
	hs, ps, _ := setupTestDB(t)
	h := createTestHousehold(t, hs, "", "hash-1")

	a, _ := ps.Create(h.ID, "A") // sort 1
	b, _ := ps.Create(h.ID, "B") // sort 2
	c, _ := ps.Create(h.ID, "C") // sort 3

	products, err := ps.Reorder(h.ID, []int64{c.ID, a.ID, b.ID})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}

	want := []struct {
		id   int64
		sort int
	}{{c.ID, 1}, {a.ID, 2}, {b.ID, 3}}
	if len(products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(products))
	}
	for i, w := range want {
		if products[i].ID != w.id {
			t.Errorf("products[%d].ID = %d, want %d", i, products[i].ID, w.id)
		}
		if products[i].SortOrder != w.sort {
			t.Errorf("products[%d].SortOrder = %d, want %d", i, products[i].SortOrder, w.sort)
		}
	}
}

func TestProductReorderSkipsUnknownIDs(t *testing.T) {
	hs, ps, _ := setupTestDB(t)
	h1 := createTestHousehold(t, hs, "", "hash-1")
	h2 := createTestHousehold(t, hs, "", "hash-2")

	a, _ := ps.Create(h1.ID, "A")
	b, _ := ps.Create(h1.ID, "B")
	foreign, _ := ps.Create(h2.ID, "X")

	// Foreign and unknown ids are skipped; b keeps its prior position.
	products, err := ps.Reorder(h1.ID, []int64{foreign.ID, a.ID, 9999})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}

	for _, p := range products {
		switch p.ID {
		case a.ID:
			if p.SortOrder != 2 {
				t.Errorf("a sort = %d, want 2 (rank in sequence)", p.SortOrder)
			}
		case b.ID:
			if p.SortOrder != 2 {
				t.Errorf("b sort = %d, want unchanged 2", p.SortOrder)
			}
		}
	}

	// The other household's catalog is untouched
	otherProducts, _ := ps.ListByHousehold(h2.ID)
	if otherProducts[0].SortOrder != 1 {
		t.Errorf("foreign product sort = %d, want 1", otherProducts[0].SortOrder)
	}
}
