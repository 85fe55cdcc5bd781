package repository

import (
	"testing"
)

func TestUpsertByTextIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewKeywordRepository(db)

	first, err := repo.UpsertByText("grid", "structural")
	if err != nil {
		t.Fatalf("UpsertByText error: %v", err)
	}
	if first.ID == 0 {
		t.Fatal("upserted keyword has no ID")
	}

	// a second upsert keeps the stored row, category included
	second, err := repo.UpsertByText("grid", "uncategorized")
	if err != nil {
		t.Fatalf("second UpsertByText error: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second upsert returned ID %d, want %d", second.ID, first.ID)
	}
	if second.Category != "structural" {
		t.Errorf("second upsert category = %q, want original %q", second.Category, "structural")
	}

	all, err := repo.ListAll()
	if err != nil {
		t.Fatalf("ListAll error: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("ListAll returned %d keywords, want 1", len(all))
	}
}

func TestListAllOrdersByText(t *testing.T) {
	db := setupTestDB(t)
	repo := NewKeywordRepository(db)

	for _, text := range []string{"voronoi", "cellular", "maze"} {
		if _, err := repo.UpsertByText(text, "uncategorized"); err != nil {
			t.Fatalf("UpsertByText(%q) error: %v", text, err)
		}
	}

	all, err := repo.ListAll()
	if err != nil {
		t.Fatalf("ListAll error: %v", err)
	}
	want := []string{"cellular", "maze", "voronoi"}
	if len(all) != len(want) {
		t.Fatalf("ListAll returned %d keywords, want %d", len(all), len(want))
	}
	for i, kw := range all {
		if kw.Text != want[i] {
			t.Errorf("ListAll[%d] = %q, want %q", i, kw.Text, want[i])
		}
	}
}
