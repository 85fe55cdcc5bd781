package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"texturelab/config"
	"texturelab/database"
	"texturelab/generator"
	"texturelab/media"
	"texturelab/prompts"
	"texturelab/repository"
)

// tiny 1x1 PNG, enough to stand in for generated output
var fakePNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0a, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}

// fakeGenerator returns canned results or errors per call, keyed by the
// prompt text it receives.
type fakeGenerator struct {
	generate func(ctx context.Context, prompt string, opts generator.Options) (*generator.Result, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, opts generator.Options) (*generator.Result, error) {
	return f.generate(ctx, prompt, opts)
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	base := t.TempDir()
	return config.Config{
		DatabasePath:         filepath.Join(base, "test.db"),
		MediaStoragePath:     base,
		TexturesPath:         filepath.Join(base, "textures"),
		ThumbnailsPath:       filepath.Join(base, "thumbnails"),
		GenerationTimeout:    5 * time.Second,
		MinVariations:        1,
		MaxVariations:        6,
		HighRatingThreshold:  4,
		MediumConfidenceUses: 3,
		HighConfidenceUses:   10,
		ThumbnailMaxSize:     256,
	}
}

func setupTestDB(t *testing.T, cfg config.Config) *gorm.DB {
	t.Helper()
	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// newTestGenerationService wires a GenerationService against a throwaway
// database and storage dir. The thumbnail pool and hub stay nil; both are
// optional.
func newTestGenerationService(t *testing.T, cfg config.Config, db *gorm.DB, gen generator.Generator) *GenerationService {
	t.Helper()
	store, err := media.NewLocalStorage(cfg.MediaStoragePath, map[media.AssetType]string{
		media.AssetTypeTexture:   "textures",
		media.AssetTypeThumbnail: "thumbnails",
	})
	if err != nil {
		t.Fatalf("failed to initialize media store: %v", err)
	}
	table := prompts.DefaultCategoryTable()
	return &GenerationService{
		Cfg:         cfg,
		Themes:      repository.NewThemeRepository(db),
		Generations: repository.NewGenerationRepository(db),
		Images:      repository.NewImageRepository(db),
		Keywords:    repository.NewKeywordRepository(db),
		Generator:   gen,
		Store:       store,
		Engine:      prompts.NewVariationEngine(table, cfg.MinVariations, cfg.MaxVariations),
		Table:       table,
		Structure:   prompts.LoadStructurePrompt(""),
	}
}
