package repository

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"texturelab/apperrors"
	"texturelab/models"
)

func TestThemeCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewThemeRepository(db)

	theme := seedTheme(t, db, "organic", "##organic ##cellular pattern")
	if theme.ID == 0 {
		t.Fatal("created theme has no ID")
	}
	if theme.CreatedAt == 0 || theme.UpdatedAt == 0 {
		t.Error("created theme is missing timestamps")
	}

	fetched, err := repo.GetByID(theme.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if fetched.Name != "organic" || fetched.BasePrompt != "##organic ##cellular pattern" {
		t.Errorf("fetched theme = %+v", fetched)
	}

	if _, err := repo.GetByID(9999); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("GetByID(9999) error = %v, want ErrRecordNotFound", err)
	}
}

func TestThemeListChildren(t *testing.T) {
	db := setupTestDB(t)
	repo := NewThemeRepository(db)

	parent := seedTheme(t, db, "parent", "##grid base")
	child := &models.Theme{Name: "child", BasePrompt: "##grid base variant", ParentThemeID: &parent.ID}
	if err := repo.Create(child); err != nil {
		t.Fatalf("create child: %v", err)
	}
	seedTheme(t, db, "unrelated", "##maze base")

	children, err := repo.ListChildren(parent.ID)
	if err != nil {
		t.Fatalf("ListChildren error: %v", err)
	}
	if len(children) != 1 || children[0].Name != "child" {
		t.Errorf("ListChildren = %+v, want just the child", children)
	}
}

func TestThemeUpdatePartial(t *testing.T) {
	db := setupTestDB(t)
	repo := NewThemeRepository(db)

	desc := "initial description"
	theme := &models.Theme{Name: "editable", BasePrompt: "##grid", Description: &desc}
	if err := repo.Create(theme); err != nil {
		t.Fatalf("create: %v", err)
	}

	newPrompt := "##radial pattern"
	if err := repo.Update(theme.ID, nil, nil, &newPrompt); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	fetched, err := repo.GetByID(theme.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if fetched.BasePrompt != newPrompt {
		t.Errorf("base prompt = %q, want %q", fetched.BasePrompt, newPrompt)
	}
	if fetched.Name != "editable" {
		t.Errorf("name changed unexpectedly to %q", fetched.Name)
	}
	if fetched.Description == nil || *fetched.Description != desc {
		t.Error("description changed unexpectedly")
	}

	// empty description clears the field
	empty := ""
	if err := repo.Update(theme.ID, nil, &empty, nil); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	fetched, _ = repo.GetByID(theme.ID)
	if fetched.Description != nil {
		t.Errorf("description = %q, want cleared", *fetched.Description)
	}

	name := "renamed"
	if err := repo.Update(9999, &name, nil, nil); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Update(9999) error = %v, want ErrRecordNotFound", err)
	}
}

func TestThemeDeleteRefusals(t *testing.T) {
	db := setupTestDB(t)
	repo := NewThemeRepository(db)

	withGens := seedTheme(t, db, "has-gens", "##grid")
	seedGeneration(t, db, withGens.ID, "##grid")
	if err := repo.Delete(withGens.ID); !errors.Is(err, ErrThemeHasGenerations) {
		t.Errorf("Delete(theme with generations) error = %v, want ErrThemeHasGenerations", err)
	}

	parent := seedTheme(t, db, "has-children", "##maze")
	child := &models.Theme{Name: "child", BasePrompt: "##maze", ParentThemeID: &parent.ID}
	if err := repo.Create(child); err != nil {
		t.Fatalf("create child: %v", err)
	}
	if err := repo.Delete(parent.ID); !errors.Is(err, ErrThemeHasChildren) {
		t.Errorf("Delete(theme with children) error = %v, want ErrThemeHasChildren", err)
	}

	// the leaf child deletes fine
	if err := repo.Delete(child.ID); err != nil {
		t.Errorf("Delete(leaf) error: %v", err)
	}
	if err := repo.Delete(9999); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Delete(9999) error = %v, want ErrRecordNotFound", err)
	}
}

func TestThemeLineage(t *testing.T) {
	db := setupTestDB(t)
	repo := NewThemeRepository(db)

	root := seedTheme(t, db, "root", "##grid")
	mid := &models.Theme{Name: "mid", BasePrompt: "##grid v2", ParentThemeID: &root.ID}
	if err := repo.Create(mid); err != nil {
		t.Fatalf("create mid: %v", err)
	}
	leaf := &models.Theme{Name: "leaf", BasePrompt: "##grid v3", ParentThemeID: &mid.ID}
	if err := repo.Create(leaf); err != nil {
		t.Fatalf("create leaf: %v", err)
	}

	lineage, err := repo.Lineage(leaf.ID)
	if err != nil {
		t.Fatalf("Lineage error: %v", err)
	}
	if len(lineage) != 3 {
		t.Fatalf("lineage length = %d, want 3", len(lineage))
	}
	for i, want := range []string{"root", "mid", "leaf"} {
		if lineage[i].Name != want {
			t.Errorf("lineage[%d] = %q, want %q", i, lineage[i].Name, want)
		}
	}

	// a root theme's lineage is just itself
	lineage, err = repo.Lineage(root.ID)
	if err != nil {
		t.Fatalf("Lineage(root) error: %v", err)
	}
	if len(lineage) != 1 || lineage[0].Name != "root" {
		t.Errorf("Lineage(root) = %+v", lineage)
	}
}

func TestThemeLineageCycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewThemeRepository(db)

	a := seedTheme(t, db, "a", "##grid")
	b := &models.Theme{Name: "b", BasePrompt: "##grid", ParentThemeID: &a.ID}
	if err := repo.Create(b); err != nil {
		t.Fatalf("create b: %v", err)
	}

	// corrupt the data directly: a's parent becomes b
	if err := db.Model(&models.Theme{}).Where("id = ?", a.ID).Update("parent_theme_id", b.ID).Error; err != nil {
		t.Fatalf("corrupt parent pointer: %v", err)
	}

	_, err := repo.Lineage(b.ID)
	if err == nil {
		t.Fatal("Lineage on cyclic data returned nil error")
	}
	if !apperrors.IsCycle(err) {
		t.Errorf("Lineage error = %v, want CycleError", err)
	}
}
