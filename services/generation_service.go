package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"texturelab/apperrors"
	"texturelab/config"
	"texturelab/generator"
	"texturelab/media"
	"texturelab/models"
	"texturelab/prompts"
	"texturelab/realtime"
	"texturelab/repository"
	"texturelab/workers"
)

// SessionParams are the user-chosen parameters for one generation session.
type SessionParams struct {
	Size        string
	Quality     string
	SessionName *string
}

// SlotResult is the outcome of one prompt slot in a session, aligned to
// the input prompt order. Exactly one of Image and Err is set.
type SlotResult struct {
	Prompt string
	Image  *models.Image
	Err    error
}

// GenerationService records generation sessions: it fans prompt variations
// out to the external image generator, persists whatever succeeds, and
// reports failures per slot.
type GenerationService struct {
	Cfg         config.Config
	Themes      repository.ThemeRepositoryInterface
	Generations repository.GenerationRepositoryInterface
	Images      repository.ImageRepositoryInterface
	Keywords    repository.KeywordRepositoryInterface

	Generator generator.Generator
	Store     media.Store
	Engine    *prompts.VariationEngine
	Table     *prompts.CategoryTable
	Structure string

	Thumbs *workers.ThumbnailGenerator
	Hub    *realtime.Hub

	// sqlite takes one writer at a time; serialize row creation from the
	// fan-out instead of letting workers race on SQLITE_BUSY
	persistMu sync.Mutex
}

// StartSession validates the request and records a new session row. A
// session with zero images is valid; images are added incrementally by
// RecordImages.
func (s *GenerationService) StartSession(themeID uint, variationCount int, params SessionParams) (*models.Generation, error) {
	theme, err := s.Themes.GetByID(themeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("theme", themeID)
		}
		return nil, err
	}

	if variationCount < s.Cfg.MinVariations || variationCount > s.Cfg.MaxVariations {
		return nil, apperrors.NewValidation("variation_count",
			fmt.Sprintf("must be between %d and %d, got %d", s.Cfg.MinVariations, s.Cfg.MaxVariations, variationCount))
	}
	if params.Size == "" {
		params.Size = models.SizeSquare
	}
	if !models.ValidSize(params.Size) {
		return nil, apperrors.NewValidation("size", fmt.Sprintf("invalid image size %q", params.Size))
	}
	if params.Quality == "" {
		params.Quality = models.QualityStandard
	}
	if !models.ValidQuality(params.Quality) {
		return nil, apperrors.NewValidation("quality", fmt.Sprintf("invalid quality %q", params.Quality))
	}

	generation := &models.Generation{
		ThemeID:        theme.ID,
		SessionName:    params.SessionName,
		BasePrompt:     theme.BasePrompt,
		VariationCount: variationCount,
		Size:           params.Size,
		Quality:        params.Quality,
	}
	if err := s.Generations.Create(generation); err != nil {
		return nil, err
	}
	return generation, nil
}

// RecordImages fans the prompts out to the external generator concurrently
// and persists each success as it lands. The returned slice is aligned to
// the input prompt order regardless of completion order. Per-prompt
// failures are recorded in their slot and never abort the batch; a caller
// abort does not cancel in-flight calls, so paid-for results still get
// persisted.
func (s *GenerationService) RecordImages(ctx context.Context, sessionID uint, promptList []string) ([]SlotResult, error) {
	session, err := s.Generations.GetByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("generation", sessionID)
		}
		return nil, err
	}

	results := make([]SlotResult, len(promptList))
	var g errgroup.Group

	for i, prompt := range promptList {
		i, prompt := i, prompt
		results[i].Prompt = prompt
		g.Go(func() error {
			img, err := s.generateSlot(ctx, session, i, prompt)
			if err != nil {
				results[i].Err = err
				s.broadcast(session.ID, i, realtime.StatusFailed, 0, err)
				return nil // a failed slot must not cancel its siblings
			}
			results[i].Image = img
			s.broadcast(session.ID, i, realtime.StatusSaved, img.ID, nil)
			return nil
		})
	}
	_ = g.Wait() // slot errors live in results, never here

	return results, nil
}

// generateSlot runs one external call and persists the outcome: file on
// disk first, then the row with its keyword associations.
func (s *GenerationService) generateSlot(ctx context.Context, session *models.Generation, slot int, prompt string) (*models.Image, error) {
	s.broadcast(session.ID, slot, realtime.StatusGenerating, 0, nil)

	// detach from the caller: an aborted request lets in-flight calls
	// finish so their results are not wasted spend
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.Cfg.GenerationTimeout)
	defer cancel()

	finalPrompt := prompts.StripMarkers(prompts.Combine(prompt, s.Structure))
	result, err := s.Generator.Generate(callCtx, finalPrompt, generator.Options{
		Size:    session.Size,
		Quality: session.Quality,
	})
	if err != nil {
		var extErr *apperrors.ExternalServiceError
		if !errors.As(err, &extErr) {
			err = &apperrors.ExternalServiceError{Kind: apperrors.KindUnknown, Err: err}
		}
		return nil, err
	}

	filename := uuid.NewString() + ".png"
	dirHint := filepath.Join(fmt.Sprintf("theme_%d", session.ThemeID), fmt.Sprintf("gen_%d", session.ID))
	relPath, err := s.Store.Save(media.AssetTypeTexture, dirHint, filename, bytes.NewReader(result.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to store generated image for slot %d: %w", slot, err)
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	keywords, err := s.upsertKeywords(prompt)
	if err != nil {
		s.removeOrphan(relPath)
		return nil, err
	}

	image := &models.Image{
		GenerationID: session.ID,
		Filename:     filename,
		FilePath:     relPath,
		Prompt:       prompt,
	}
	if err := s.Images.Create(image, keywords); err != nil {
		s.removeOrphan(relPath)
		return nil, err
	}

	if s.Thumbs != nil {
		if fullPath, pathErr := s.Store.GetFullPath(relPath); pathErr == nil {
			s.Thumbs.QueueJob(workers.ThumbnailJob{ImageID: image.ID, ImageFullPath: fullPath})
		} else {
			log.Printf("services: could not resolve %s for thumbnailing: %v", relPath, pathErr)
		}
	}

	return image, nil
}

// removeOrphan deletes a stored file whose row never made it into the
// database, so failed slots leave nothing behind on disk.
func (s *GenerationService) removeOrphan(relPath string) {
	if err := s.Store.Delete(relPath); err != nil {
		log.Printf("services: could not remove orphaned file %s: %v", relPath, err)
	}
}

// upsertKeywords extracts ##keywords from the prompt and upserts each one,
// returning the stored rows for association.
func (s *GenerationService) upsertKeywords(prompt string) ([]models.Keyword, error) {
	words := prompts.ExtractKeywords(prompt)
	keywords := make([]models.Keyword, 0, len(words))
	for _, w := range words {
		kw, err := s.Keywords.UpsertByText(w, s.Table.Categorize(w))
		if err != nil {
			return nil, err
		}
		keywords = append(keywords, *kw)
	}
	return keywords, nil
}

// Generate is the full operation behind POST /api/generate: build prompt
// variations for the theme, record a session, and fan out the external
// calls.
func (s *GenerationService) Generate(ctx context.Context, themeID uint, variationCount int, params SessionParams) (*models.Generation, []SlotResult, error) {
	session, err := s.StartSession(themeID, variationCount, params)
	if err != nil {
		return nil, nil, err
	}

	variations, err := s.Engine.Vary(session.BasePrompt, variationCount)
	if err != nil {
		return nil, nil, err
	}

	promptList := make([]string, len(variations))
	for i, v := range variations {
		promptList[i] = v.Prompt
	}

	results, err := s.RecordImages(ctx, session.ID, promptList)
	if err != nil {
		return nil, nil, err
	}
	return session, results, nil
}

// GetSession returns one session with its images and their keywords.
func (s *GenerationService) GetSession(id uint) (*models.Generation, error) {
	session, err := s.Generations.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("generation", id)
		}
		return nil, err
	}
	return session, nil
}

// Rate overwrites the rating on an image. Re-rating replaces the previous
// value; the operation is idempotent per image id.
func (s *GenerationService) Rate(imageID uint, rating int) (*models.Image, error) {
	if rating < models.MinRating || rating > models.MaxRating {
		return nil, apperrors.NewValidation("rating",
			fmt.Sprintf("must be between %d and %d, got %d", models.MinRating, models.MaxRating, rating))
	}

	if err := s.Images.SetRating(imageID, rating); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("image", imageID)
		}
		return nil, err
	}
	return s.Images.GetByID(imageID)
}

func (s *GenerationService) broadcast(generationID uint, slot int, status string, imageID uint, err error) {
	if s.Hub == nil {
		return
	}
	event := realtime.Event{
		Type:         "generation",
		GenerationID: generationID,
		Slot:         slot,
		Status:       status,
		ImageID:      imageID,
		Timestamp:    time.Now().Unix(),
	}
	if err != nil {
		event.Error = err.Error()
	}
	s.Hub.Broadcast(event)
}
