package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"texturelab/models"
)

// ImageRepository handles database operations for Image entities and their
// keyword associations
type ImageRepository struct {
	DB *gorm.DB
}

// NewImageRepository creates a new instance of ImageRepository
func NewImageRepository(db *gorm.DB) *ImageRepository {
	return &ImageRepository{DB: db}
}

// Create persists an image row together with its keyword associations.
// Keywords must already exist (upserted by KeywordRepository); the join
// rows are created here and never touched again.
func (r *ImageRepository) Create(image *models.Image, keywords []models.Keyword) error {
	if image.CreatedAt == 0 {
		image.CreatedAt = time.Now().Unix()
	}
	image.Keywords = keywords

	err := r.DB.Create(image).Error
	if err != nil {
		return fmt.Errorf("failed to create image %s: %w", image.Filename, err)
	}
	return nil
}

// GetByID retrieves an image by its ID, preloading its keywords
func (r *ImageRepository) GetByID(id uint) (*models.Image, error) {
	var image models.Image
	err := r.DB.Preload("Keywords").First(&image, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get image by ID %d: %w", id, err)
	}
	return &image, nil
}

// ListByGenerationID retrieves all images for a generation session in
// creation order
func (r *ImageRepository) ListByGenerationID(generationID uint) ([]models.Image, error) {
	var images []models.Image
	err := r.DB.Preload("Keywords").Where("generation_id = ?", generationID).Order("id ASC").Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list images for generation %d: %w", generationID, err)
	}
	return images, nil
}

// ListByThemeID retrieves all images under a theme across its generations,
// newest first
func (r *ImageRepository) ListByThemeID(themeID uint) ([]models.Image, error) {
	var images []models.Image
	err := r.DB.Preload("Keywords").
		Joins("JOIN generations ON generations.id = images.generation_id").
		Where("generations.theme_id = ?", themeID).
		Order("images.id DESC").
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list images for theme %d: %w", themeID, err)
	}
	return images, nil
}

// ListRecent retrieves the most recently generated images across all themes
func (r *ImageRepository) ListRecent(limit int) ([]models.Image, error) {
	if limit <= 0 {
		limit = 20
	}
	var images []models.Image
	err := r.DB.Preload("Keywords").Order("id DESC").Limit(limit).Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent images: %w", err)
	}
	return images, nil
}

// TopRatedByTheme retrieves the highest rated images under a theme.
// Unrated images are excluded.
func (r *ImageRepository) TopRatedByTheme(themeID uint, limit int) ([]models.Image, error) {
	if limit <= 0 {
		limit = 10
	}
	var images []models.Image
	err := r.DB.Preload("Keywords").
		Joins("JOIN generations ON generations.id = images.generation_id").
		Where("generations.theme_id = ? AND images.rating IS NOT NULL", themeID).
		Order("images.rating DESC, images.id DESC").
		Limit(limit).
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list top rated images for theme %d: %w", themeID, err)
	}
	return images, nil
}

// SetRating overwrites the rating on an image. Re-rating replaces the
// previous value; no history of prior ratings is kept.
func (r *ImageRepository) SetRating(imageID uint, rating int) error {
	result := r.DB.Model(&models.Image{}).Where("id = ?", imageID).Update("rating", rating)
	if result.Error != nil {
		return fmt.Errorf("failed to set rating for image ID %d: %w", imageID, result.Error)
	}
	if result.RowsAffected == 0 {
		// an overwrite with the same value still affects the row in SQLite,
		// so zero rows means the image does not exist
		var count int64
		r.DB.Model(&models.Image{}).Where("id = ?", imageID).Count(&count)
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

// SetThumbnail records the thumbnail path produced by the worker pool
func (r *ImageRepository) SetThumbnail(imageID uint, thumbnailPath string) error {
	result := r.DB.Model(&models.Image{}).Where("id = ?", imageID).Update("thumbnail_path", thumbnailPath)
	if result.Error != nil {
		return fmt.Errorf("failed to set thumbnail for image ID %d: %w", imageID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
