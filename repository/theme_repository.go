package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"texturelab/apperrors"
	"texturelab/models"
)

// Deletion refusals callers can branch on.
var (
	ErrThemeHasGenerations = errors.New("theme has generation sessions")
	ErrThemeHasChildren    = errors.New("theme has child themes")
)

// ThemeRepository handles database operations for Theme entities
type ThemeRepository struct {
	DB *gorm.DB
}

// NewThemeRepository creates a new instance of ThemeRepository
func NewThemeRepository(db *gorm.DB) *ThemeRepository {
	return &ThemeRepository{DB: db}
}

// Create creates a new theme record in the database
func (r *ThemeRepository) Create(theme *models.Theme) error {
	now := time.Now().Unix()
	if theme.CreatedAt == 0 {
		theme.CreatedAt = now
	}
	if theme.UpdatedAt == 0 {
		theme.UpdatedAt = now
	}

	err := r.DB.Create(theme).Error
	if err != nil {
		return fmt.Errorf("failed to create theme %s: %w", theme.Name, err)
	}
	return nil
}

// GetByID retrieves a theme by its ID
func (r *ThemeRepository) GetByID(id uint) (*models.Theme, error) {
	var theme models.Theme
	err := r.DB.First(&theme, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get theme by ID %d: %w", id, err)
	}
	return &theme, nil
}

// ListAll retrieves all themes in creation order
func (r *ThemeRepository) ListAll() ([]models.Theme, error) {
	var themes []models.Theme
	err := r.DB.Order("id ASC").Find(&themes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list themes: %w", err)
	}
	return themes, nil
}

// ListChildren retrieves the themes branched directly from the given theme
func (r *ThemeRepository) ListChildren(parentID uint) ([]models.Theme, error) {
	var themes []models.Theme
	err := r.DB.Where("parent_theme_id = ?", parentID).Order("id ASC").Find(&themes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list children of theme %d: %w", parentID, err)
	}
	return themes, nil
}

// Update applies a partial update of name, description and base_prompt.
// Nil fields are left untouched.
func (r *ThemeRepository) Update(themeID uint, name *string, description *string, basePrompt *string) error {
	now := time.Now().Unix()
	updates := map[string]interface{}{
		"updated_at": now,
	}
	if name != nil {
		updates["name"] = *name
	}
	if description != nil {
		if *description == "" { // allow clearing the description
			updates["description"] = gorm.Expr("NULL")
		} else {
			updates["description"] = *description
		}
	}
	if basePrompt != nil {
		updates["base_prompt"] = *basePrompt
	}

	// if only updated_at is present, no actual fields were changed
	if len(updates) == 1 {
		return nil
	}

	result := r.DB.Model(&models.Theme{}).Where("id = ?", themeID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update theme ID %d: %w", themeID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a theme. Themes with recorded generations are refused:
// generation history is append-only and must not be orphaned.
func (r *ThemeRepository) Delete(id uint) error {
	var count int64
	if err := r.DB.Model(&models.Generation{}).Where("theme_id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count generations for theme %d: %w", id, err)
	}
	if count > 0 {
		return ErrThemeHasGenerations
	}

	if err := r.DB.Model(&models.Theme{}).Where("parent_theme_id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count children for theme %d: %w", id, err)
	}
	if count > 0 {
		return ErrThemeHasChildren
	}

	result := r.DB.Delete(&models.Theme{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete theme ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Lineage walks parent pointers from the given theme up to its root and
// returns the chain ordered root first. Branch-only creation makes cycles
// structurally impossible, but the walk keeps a visited set so corrupted
// data surfaces as a CycleError instead of an infinite loop.
func (r *ThemeRepository) Lineage(id uint) ([]models.Theme, error) {
	var chain []models.Theme
	visited := make(map[uint]bool)

	currentID := id
	for {
		if visited[currentID] {
			return nil, &apperrors.CycleError{ThemeID: currentID}
		}
		visited[currentID] = true

		theme, err := r.GetByID(currentID)
		if err != nil {
			return nil, err
		}
		chain = append(chain, *theme)

		if theme.ParentThemeID == nil {
			break
		}
		currentID = *theme.ParentThemeID
	}

	// reverse to root-first order
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}
