package repository

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"texturelab/database"
	"texturelab/models"
)

// setupTestDB opens a throwaway sqlite database with the full schema
// migrated. Each test gets its own file under t.TempDir.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.InitGormDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func seedTheme(t *testing.T, db *gorm.DB, name, basePrompt string) *models.Theme {
	t.Helper()
	theme := &models.Theme{Name: name, BasePrompt: basePrompt}
	if err := NewThemeRepository(db).Create(theme); err != nil {
		t.Fatalf("failed to seed theme %s: %v", name, err)
	}
	return theme
}

func seedGeneration(t *testing.T, db *gorm.DB, themeID uint, basePrompt string) *models.Generation {
	t.Helper()
	gen := &models.Generation{
		ThemeID:        themeID,
		BasePrompt:     basePrompt,
		VariationCount: 1,
		Size:           models.SizeSquare,
		Quality:        models.QualityStandard,
	}
	if err := NewGenerationRepository(db).Create(gen); err != nil {
		t.Fatalf("failed to seed generation: %v", err)
	}
	return gen
}

func seedImage(t *testing.T, db *gorm.DB, generationID uint, prompt string, keywords []models.Keyword) *models.Image {
	t.Helper()
	image := &models.Image{
		GenerationID: generationID,
		Filename:     "test.png",
		FilePath:     "textures/test.png",
		Prompt:       prompt,
	}
	if err := NewImageRepository(db).Create(image, keywords); err != nil {
		t.Fatalf("failed to seed image: %v", err)
	}
	return image
}
