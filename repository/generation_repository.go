package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"texturelab/models"
)

// GenerationRepository handles database operations for Generation entities.
// Generations are append-only: there is deliberately no Update or Delete.
type GenerationRepository struct {
	DB *gorm.DB
}

// NewGenerationRepository creates a new instance of GenerationRepository
func NewGenerationRepository(db *gorm.DB) *GenerationRepository {
	return &GenerationRepository{DB: db}
}

// Create creates a new generation session record in the database
func (r *GenerationRepository) Create(generation *models.Generation) error {
	if generation.CreatedAt == 0 {
		generation.CreatedAt = time.Now().Unix()
	}

	err := r.DB.Create(generation).Error
	if err != nil {
		return fmt.Errorf("failed to create generation for theme %d: %w", generation.ThemeID, err)
	}
	return nil
}

// GetByID retrieves a generation session by its ID, preloading its images
func (r *GenerationRepository) GetByID(id uint) (*models.Generation, error) {
	var generation models.Generation
	err := r.DB.Preload("Images").Preload("Images.Keywords").First(&generation, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get generation by ID %d: %w", id, err)
	}
	return &generation, nil
}

// ListByThemeID retrieves all generation sessions for a theme, newest first
func (r *GenerationRepository) ListByThemeID(themeID uint) ([]models.Generation, error) {
	var generations []models.Generation
	err := r.DB.Where("theme_id = ?", themeID).Order("id DESC").Find(&generations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list generations for theme %d: %w", themeID, err)
	}
	return generations, nil
}

// CountByThemeID returns the number of generation sessions for a theme
func (r *GenerationRepository) CountByThemeID(themeID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Generation{}).Where("theme_id = ?", themeID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count generations for theme %d: %w", themeID, err)
	}
	return count, nil
}
