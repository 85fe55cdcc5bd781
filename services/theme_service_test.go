package services

import (
	"testing"

	"texturelab/apperrors"
	"texturelab/repository"
)

func newTestThemeService(t *testing.T) *ThemeService {
	t.Helper()
	cfg := testConfig(t)
	db := setupTestDB(t, cfg)
	return NewThemeService(repository.NewThemeRepository(db))
}

func TestThemeCreateValidation(t *testing.T) {
	svc := newTestThemeService(t)

	if _, err := svc.Create("", "##grid", nil); !apperrors.IsValidation(err) {
		t.Errorf("empty name error = %v, want ValidationError", err)
	}
	if _, err := svc.Create("grid", "", nil); !apperrors.IsValidation(err) {
		t.Errorf("empty base prompt error = %v, want ValidationError", err)
	}

	theme, err := svc.Create("grid", "##grid pattern", nil)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if theme.ParentThemeID != nil {
		t.Error("root theme has a parent")
	}
}

func TestBranchCopiesParentPrompt(t *testing.T) {
	svc := newTestThemeService(t)

	parent, err := svc.Create("parent", "##grid base pattern", nil)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	child, err := svc.Branch(parent.ID, BranchOverrides{Name: "child"})
	if err != nil {
		t.Fatalf("Branch error: %v", err)
	}
	if child.BasePrompt != parent.BasePrompt {
		t.Errorf("child prompt = %q, want copy of parent %q", child.BasePrompt, parent.BasePrompt)
	}
	if child.ParentThemeID == nil || *child.ParentThemeID != parent.ID {
		t.Error("child does not point at its parent")
	}
	if child.Description == nil || *child.Description == "" {
		t.Error("branched child should carry a default description")
	}

	if _, err := svc.Branch(9999, BranchOverrides{Name: "orphan"}); !apperrors.IsNotFound(err) {
		t.Errorf("Branch(unknown parent) error = %v, want NotFoundError", err)
	}
}

func TestBranchOverrides(t *testing.T) {
	svc := newTestThemeService(t)

	parent, err := svc.Create("parent", "##grid base", nil)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	prompt := "##radial reworked"
	desc := "my experiment"
	child, err := svc.Branch(parent.ID, BranchOverrides{Name: "child", BasePrompt: &prompt, Description: &desc})
	if err != nil {
		t.Fatalf("Branch error: %v", err)
	}
	if child.BasePrompt != prompt {
		t.Errorf("child prompt = %q, want override %q", child.BasePrompt, prompt)
	}
	if child.Description == nil || *child.Description != desc {
		t.Error("description override not applied")
	}
}

func TestChildIndependentOfParentEdits(t *testing.T) {
	svc := newTestThemeService(t)

	parent, err := svc.Create("parent", "##grid original", nil)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	child, err := svc.Branch(parent.ID, BranchOverrides{Name: "child"})
	if err != nil {
		t.Fatalf("Branch error: %v", err)
	}

	newPrompt := "##grid heavily edited"
	if _, err := svc.Update(parent.ID, ThemeUpdate{BasePrompt: &newPrompt}); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	fetched, err := svc.Get(child.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if fetched.BasePrompt != "##grid original" {
		t.Errorf("child prompt = %q, parent edit leaked into the branch", fetched.BasePrompt)
	}
}

func TestLineageOrderRootFirst(t *testing.T) {
	svc := newTestThemeService(t)

	root, err := svc.Create("root", "##grid", nil)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	mid, err := svc.Branch(root.ID, BranchOverrides{Name: "mid"})
	if err != nil {
		t.Fatalf("Branch error: %v", err)
	}
	leaf, err := svc.Branch(mid.ID, BranchOverrides{Name: "leaf"})
	if err != nil {
		t.Fatalf("Branch error: %v", err)
	}

	lineage, err := svc.Lineage(leaf.ID)
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

	if _, err := svc.Lineage(9999); !apperrors.IsNotFound(err) {
		t.Errorf("Lineage(unknown) error = %v, want NotFoundError", err)
	}
}

func TestThemeDelete(t *testing.T) {
	svc := newTestThemeService(t)

	parent, err := svc.Create("parent", "##grid", nil)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	child, err := svc.Branch(parent.ID, BranchOverrides{Name: "child"})
	if err != nil {
		t.Fatalf("Branch error: %v", err)
	}

	if err := svc.Delete(parent.ID); !apperrors.IsValidation(err) {
		t.Errorf("Delete(parent with child) error = %v, want ValidationError", err)
	}
	if err := svc.Delete(child.ID); err != nil {
		t.Errorf("Delete(leaf) error: %v", err)
	}
	if err := svc.Delete(9999); !apperrors.IsNotFound(err) {
		t.Errorf("Delete(unknown) error = %v, want NotFoundError", err)
	}
}
