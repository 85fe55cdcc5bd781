package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"texturelab/apperrors"
	"texturelab/models"
	"texturelab/repository"
)

// ThemeService owns theme lifecycle: creation, branching, edits and
// lineage reads. Branching is copy-on-branch; edits to a parent never
// retroactively affect children.
type ThemeService struct {
	Themes repository.ThemeRepositoryInterface
}

// NewThemeService creates a new instance of ThemeService
func NewThemeService(themes repository.ThemeRepositoryInterface) *ThemeService {
	return &ThemeService{Themes: themes}
}

// BranchOverrides optionally replace fields copied from the parent theme.
type BranchOverrides struct {
	Name        string
	BasePrompt  *string
	Description *string
}

// ThemeUpdate carries a partial update; nil fields are left untouched.
type ThemeUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	BasePrompt  *string `json:"base_prompt,omitempty"`
}

// Create makes a fresh root theme.
func (s *ThemeService) Create(name, basePrompt string, description *string) (*models.Theme, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.NewValidation("name", "must not be empty")
	}
	if strings.TrimSpace(basePrompt) == "" {
		return nil, apperrors.NewValidation("base_prompt", "must not be empty")
	}

	theme := &models.Theme{
		Name:        name,
		BasePrompt:  basePrompt,
		Description: description,
	}
	if err := s.Themes.Create(theme); err != nil {
		return nil, err
	}
	return theme, nil
}

// Branch creates a new theme as a child of parentID, copying the parent's
// base_prompt (and optionally description) unless overridden. The copy is
// taken at branch time; later parent edits do not propagate.
func (s *ThemeService) Branch(parentID uint, overrides BranchOverrides) (*models.Theme, error) {
	parent, err := s.Themes.GetByID(parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("theme", parentID)
		}
		return nil, err
	}

	if strings.TrimSpace(overrides.Name) == "" {
		return nil, apperrors.NewValidation("name", "must not be empty")
	}

	basePrompt := parent.BasePrompt
	if overrides.BasePrompt != nil && strings.TrimSpace(*overrides.BasePrompt) != "" {
		basePrompt = *overrides.BasePrompt
	}

	description := overrides.Description
	if description == nil {
		defaultDesc := fmt.Sprintf("Branched from %s", parent.Name)
		description = &defaultDesc
	}

	pid := parent.ID
	child := &models.Theme{
		Name:          overrides.Name,
		BasePrompt:    basePrompt,
		Description:   description,
		ParentThemeID: &pid,
	}
	if err := s.Themes.Create(child); err != nil {
		return nil, err
	}
	return child, nil
}

// Update applies a partial edit and returns the updated theme.
func (s *ThemeService) Update(id uint, update ThemeUpdate) (*models.Theme, error) {
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, apperrors.NewValidation("name", "must not be empty")
	}
	if update.BasePrompt != nil && strings.TrimSpace(*update.BasePrompt) == "" {
		return nil, apperrors.NewValidation("base_prompt", "must not be empty")
	}

	err := s.Themes.Update(id, update.Name, update.Description, update.BasePrompt)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("theme", id)
		}
		return nil, err
	}
	return s.Get(id)
}

// Get returns a theme by id.
func (s *ThemeService) Get(id uint) (*models.Theme, error) {
	theme, err := s.Themes.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("theme", id)
		}
		return nil, err
	}
	return theme, nil
}

// Delete removes a theme. Themes with generation sessions or child themes
// are refused so history never dangles.
func (s *ThemeService) Delete(id uint) error {
	err := s.Themes.Delete(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFound("theme", id)
		}
		if errors.Is(err, repository.ErrThemeHasGenerations) {
			return apperrors.NewValidation("theme", "cannot delete a theme that has generation sessions")
		}
		if errors.Is(err, repository.ErrThemeHasChildren) {
			return apperrors.NewValidation("theme", "cannot delete a theme that has child themes")
		}
		return err
	}
	return nil
}

// List returns all themes in creation order.
func (s *ThemeService) List() ([]models.Theme, error) {
	return s.Themes.ListAll()
}

// Lineage returns the chain of themes from the root down to id. A cycle in
// the stored parent pointers surfaces as a CycleError, never an infinite
// walk.
func (s *ThemeService) Lineage(id uint) ([]models.Theme, error) {
	lineage, err := s.Themes.Lineage(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("theme", id)
		}
		return nil, err
	}
	return lineage, nil
}
