package services

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"texturelab/apperrors"
	"texturelab/generator"
	"texturelab/models"
	"texturelab/repository"
)

func TestStartSessionValidation(t *testing.T) {
	cfg := testConfig(t)
	db := setupTestDB(t, cfg)
	svc := newTestGenerationService(t, cfg, db, &fakeGenerator{})

	theme := &models.Theme{Name: "organic", BasePrompt: "##organic ##cellular pattern"}
	if err := svc.Themes.Create(theme); err != nil {
		t.Fatalf("create theme: %v", err)
	}

	if _, err := svc.StartSession(9999, 2, SessionParams{}); !apperrors.IsNotFound(err) {
		t.Errorf("unknown theme error = %v, want NotFoundError", err)
	}
	if _, err := svc.StartSession(theme.ID, 0, SessionParams{}); !apperrors.IsValidation(err) {
		t.Errorf("count 0 error = %v, want ValidationError", err)
	}
	if _, err := svc.StartSession(theme.ID, 7, SessionParams{}); !apperrors.IsValidation(err) {
		t.Errorf("count 7 error = %v, want ValidationError", err)
	}
	if _, err := svc.StartSession(theme.ID, 2, SessionParams{Size: "800x600"}); !apperrors.IsValidation(err) {
		t.Errorf("bad size error = %v, want ValidationError", err)
	}
	if _, err := svc.StartSession(theme.ID, 2, SessionParams{Quality: "ultra"}); !apperrors.IsValidation(err) {
		t.Errorf("bad quality error = %v, want ValidationError", err)
	}

	session, err := svc.StartSession(theme.ID, 2, SessionParams{})
	if err != nil {
		t.Fatalf("StartSession error: %v", err)
	}
	if session.Size != models.SizeSquare || session.Quality != models.QualityStandard {
		t.Errorf("defaults not applied: size=%q quality=%q", session.Size, session.Quality)
	}
	if session.BasePrompt != theme.BasePrompt {
		t.Errorf("session base prompt = %q, want snapshot of theme prompt", session.BasePrompt)
	}
}

func TestGeneratePersistsSuccessesAndReportsFailures(t *testing.T) {
	cfg := testConfig(t)
	db := setupTestDB(t, cfg)

	var mu sync.Mutex
	calls := 0
	gen := &fakeGenerator{generate: func(ctx context.Context, prompt string, opts generator.Options) (*generator.Result, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 2 {
			return nil, &apperrors.ExternalServiceError{Kind: apperrors.KindTimeout, Err: context.DeadlineExceeded}
		}
		if strings.Contains(prompt, "##") {
			t.Errorf("prompt sent to generator still has markers: %q", prompt)
		}
		return &generator.Result{Data: fakePNG}, nil
	}}
	svc := newTestGenerationService(t, cfg, db, gen)

	theme := &models.Theme{Name: "organic", BasePrompt: "##organic ##cellular pattern"}
	if err := svc.Themes.Create(theme); err != nil {
		t.Fatalf("create theme: %v", err)
	}

	session, results, err := svc.Generate(context.Background(), theme.ID, 4, SessionParams{})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d slot results, want 4", len(results))
	}

	succeeded, failed := 0, 0
	for i, res := range results {
		if res.Prompt == "" {
			t.Errorf("slot %d has no prompt", i)
		}
		if res.Err != nil {
			failed++
			var extErr *apperrors.ExternalServiceError
			if !errors.As(res.Err, &extErr) {
				t.Errorf("slot %d error = %v, want ExternalServiceError", i, res.Err)
			}
			if res.Image != nil {
				t.Errorf("slot %d has both image and error", i)
			}
			continue
		}
		succeeded++
		if res.Image == nil || res.Image.ID == 0 {
			t.Fatalf("slot %d succeeded but has no persisted image", i)
		}
		fullPath, pathErr := svc.Store.GetFullPath(res.Image.FilePath)
		if pathErr != nil {
			t.Fatalf("slot %d file path %q did not resolve: %v", i, res.Image.FilePath, pathErr)
		}
		if _, statErr := os.Stat(fullPath); statErr != nil {
			t.Errorf("slot %d file missing on disk: %v", i, statErr)
		}
	}
	if succeeded != 3 || failed != 1 {
		t.Errorf("succeeded=%d failed=%d, want 3 and 1", succeeded, failed)
	}

	// the session row holds exactly the successes
	stored, err := svc.GetSession(session.ID)
	if err != nil {
		t.Fatalf("GetSession error: %v", err)
	}
	if len(stored.Images) != 3 {
		t.Errorf("stored session has %d images, want 3", len(stored.Images))
	}
	for _, img := range stored.Images {
		if len(img.Keywords) == 0 {
			t.Errorf("image %d has no keyword associations", img.ID)
		}
	}

	// files land under theme_<id>/gen_<id>
	wantDir := filepath.Join("textures", "theme_1", "gen_1")
	if !strings.HasPrefix(filepath.ToSlash(stored.Images[0].FilePath), filepath.ToSlash(wantDir)) {
		t.Errorf("file path %q not under %q", stored.Images[0].FilePath, wantDir)
	}
}

func TestGenerateAllSlotsFailKeepsSession(t *testing.T) {
	cfg := testConfig(t)
	db := setupTestDB(t, cfg)

	gen := &fakeGenerator{generate: func(ctx context.Context, prompt string, opts generator.Options) (*generator.Result, error) {
		return nil, &apperrors.ExternalServiceError{Kind: apperrors.KindRateLimited, Err: errors.New("429")}
	}}
	svc := newTestGenerationService(t, cfg, db, gen)

	theme := &models.Theme{Name: "organic", BasePrompt: "##organic pattern"}
	if err := svc.Themes.Create(theme); err != nil {
		t.Fatalf("create theme: %v", err)
	}

	session, results, err := svc.Generate(context.Background(), theme.ID, 3, SessionParams{})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	for i, res := range results {
		if res.Err == nil {
			t.Errorf("slot %d unexpectedly succeeded", i)
		}
	}

	// the empty session still exists as history
	stored, err := svc.GetSession(session.ID)
	if err != nil {
		t.Fatalf("GetSession error: %v", err)
	}
	if len(stored.Images) != 0 {
		t.Errorf("all-failed session has %d images, want 0", len(stored.Images))
	}
}

// rejectingImageRepo refuses row creation so a stored file ends up with
// no database row behind it.
type rejectingImageRepo struct {
	repository.ImageRepositoryInterface
}

func (r *rejectingImageRepo) Create(image *models.Image, keywords []models.Keyword) error {
	return errors.New("images table unavailable")
}

func TestFailedRowPersistRemovesStoredFile(t *testing.T) {
	cfg := testConfig(t)
	db := setupTestDB(t, cfg)

	gen := &fakeGenerator{generate: func(ctx context.Context, prompt string, opts generator.Options) (*generator.Result, error) {
		return &generator.Result{Data: fakePNG}, nil
	}}
	svc := newTestGenerationService(t, cfg, db, gen)
	svc.Images = &rejectingImageRepo{ImageRepositoryInterface: svc.Images}

	theme := &models.Theme{Name: "organic", BasePrompt: "##organic pattern"}
	if err := svc.Themes.Create(theme); err != nil {
		t.Fatalf("create theme: %v", err)
	}

	_, results, err := svc.Generate(context.Background(), theme.ID, 1, SessionParams{})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if results[0].Err == nil {
		t.Fatal("slot succeeded despite row creation failing")
	}

	// the generated file must not linger on disk without a row
	texturesDir := filepath.Join(cfg.MediaStoragePath, "textures")
	files := 0
	walkErr := filepath.WalkDir(texturesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files++
		}
		return nil
	})
	if walkErr != nil {
		t.Fatalf("walk textures dir: %v", walkErr)
	}
	if files != 0 {
		t.Errorf("found %d orphaned file(s) under %s, want 0", files, texturesDir)
	}
}

func TestRate(t *testing.T) {
	cfg := testConfig(t)
	db := setupTestDB(t, cfg)

	gen := &fakeGenerator{generate: func(ctx context.Context, prompt string, opts generator.Options) (*generator.Result, error) {
		return &generator.Result{Data: fakePNG}, nil
	}}
	svc := newTestGenerationService(t, cfg, db, gen)

	theme := &models.Theme{Name: "organic", BasePrompt: "##organic pattern"}
	if err := svc.Themes.Create(theme); err != nil {
		t.Fatalf("create theme: %v", err)
	}
	_, results, err := svc.Generate(context.Background(), theme.ID, 1, SessionParams{})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	imageID := results[0].Image.ID

	for _, bad := range []int{0, 6, -1} {
		if _, err := svc.Rate(imageID, bad); !apperrors.IsValidation(err) {
			t.Errorf("Rate(%d) error = %v, want ValidationError", bad, err)
		}
	}
	if _, err := svc.Rate(9999, 3); !apperrors.IsNotFound(err) {
		t.Errorf("Rate(unknown image) error = %v, want NotFoundError", err)
	}

	rated, err := svc.Rate(imageID, 3)
	if err != nil {
		t.Fatalf("Rate error: %v", err)
	}
	if rated.Rating == nil || *rated.Rating != 3 {
		t.Fatalf("rating = %v, want 3", rated.Rating)
	}

	rated, err = svc.Rate(imageID, 5)
	if err != nil {
		t.Fatalf("re-Rate error: %v", err)
	}
	if rated.Rating == nil || *rated.Rating != 5 {
		t.Errorf("rating after overwrite = %v, want 5", rated.Rating)
	}
}
