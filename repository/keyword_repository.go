package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"texturelab/models"
)

// KeywordRepository handles database operations for Keyword entities
type KeywordRepository struct {
	DB *gorm.DB
}

// NewKeywordRepository creates a new instance of KeywordRepository
func NewKeywordRepository(db *gorm.DB) *KeywordRepository {
	return &KeywordRepository{DB: db}
}

// UpsertByText inserts a keyword or returns the existing row for the same
// normalized text. Extraction is deterministic, so the same text plus
// category always maps to the same identity.
func (r *KeywordRepository) UpsertByText(text, category string) (*models.Keyword, error) {
	keyword := models.Keyword{
		Text:      text,
		Category:  category,
		CreatedAt: time.Now().Unix(),
	}

	err := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "text"}},
		DoNothing: true,
	}).Create(&keyword).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert keyword %q: %w", text, err)
	}

	// on conflict the insert is skipped and the struct keeps a zero ID;
	// fetch the existing row either way so callers always see the stored one
	var stored models.Keyword
	if err := r.DB.Where("text = ?", text).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("failed to load keyword %q after upsert: %w", text, err)
	}
	return &stored, nil
}

// ListAll retrieves all known keywords ordered by text
func (r *KeywordRepository) ListAll() ([]models.Keyword, error) {
	var keywords []models.Keyword
	err := r.DB.Order("text ASC").Find(&keywords).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}
	return keywords, nil
}
