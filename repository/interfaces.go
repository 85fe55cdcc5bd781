package repository

import (
	"texturelab/models"
)

// ThemeRepositoryInterface defines the methods for theme data operations
type ThemeRepositoryInterface interface {
	Create(theme *models.Theme) error
	GetByID(id uint) (*models.Theme, error)
	ListAll() ([]models.Theme, error)
	ListChildren(parentID uint) ([]models.Theme, error)
	Update(themeID uint, name *string, description *string, basePrompt *string) error
	Delete(id uint) error
	Lineage(id uint) ([]models.Theme, error)
}

// GenerationRepositoryInterface defines the methods for generation session
// data operations
type GenerationRepositoryInterface interface {
	Create(generation *models.Generation) error
	GetByID(id uint) (*models.Generation, error)
	ListByThemeID(themeID uint) ([]models.Generation, error)
	CountByThemeID(themeID uint) (int64, error)
}

// ImageRepositoryInterface defines the methods for image data operations
type ImageRepositoryInterface interface {
	Create(image *models.Image, keywords []models.Keyword) error
	GetByID(id uint) (*models.Image, error)
	ListByGenerationID(generationID uint) ([]models.Image, error)
	ListByThemeID(themeID uint) ([]models.Image, error)
	ListRecent(limit int) ([]models.Image, error)
	TopRatedByTheme(themeID uint, limit int) ([]models.Image, error)
	SetRating(imageID uint, rating int) error
	SetThumbnail(imageID uint, thumbnailPath string) error
}

// KeywordRepositoryInterface defines the methods for keyword data operations
type KeywordRepositoryInterface interface {
	UpsertByText(text, category string) (*models.Keyword, error)
	ListAll() ([]models.Keyword, error)
}
