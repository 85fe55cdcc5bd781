package services

import (
	"database/sql"
	"errors"
	"math"

	"gorm.io/gorm"

	"texturelab/apperrors"
	"texturelab/config"
	"texturelab/database"
	"texturelab/repository"
)

// Confidence tiers for keyword statistics, driven by sample size.
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// KeywordStats is the derived effectiveness record for one keyword.
type KeywordStats struct {
	Keyword       string  `json:"keyword"`
	Category      string  `json:"category"`
	TotalUses     int     `json:"total_uses"`
	AverageRating float64 `json:"average_rating"`
	SuccessRate   float64 `json:"success_rate"`
	Confidence    string  `json:"confidence"`
}

// ThemeStats is the derived per-theme summary.
type ThemeStats struct {
	ThemeID          uint    `json:"theme_id"`
	ThemeName        string  `json:"theme_name"`
	GenerationsCount int     `json:"generations_count"`
	ImagesCount      int     `json:"images_count"`
	RatedImagesCount int     `json:"rated_images_count"`
	AverageRating    float64 `json:"average_rating"`
	CompletionRate   float64 `json:"completion_rate"`
}

// Summary is the library-wide snapshot.
type Summary struct {
	TotalThemes          int     `json:"total_themes"`
	TotalGenerations     int     `json:"total_generations"`
	TotalImages          int     `json:"total_images"`
	RatedImages          int     `json:"rated_images"`
	AverageRating        float64 `json:"average_rating"`
	MostEffectiveKeyword string  `json:"most_effective_keyword,omitempty"`
}

// AnalyticsService derives keyword and theme statistics from the persisted
// image/keyword join. It is purely read-side: everything is recomputed per
// call, which is fine at this data scale.
type AnalyticsService struct {
	Cfg    config.Config
	SQLDB  *sql.DB
	Themes repository.ThemeRepositoryInterface
}

// NewAnalyticsService creates a new instance of AnalyticsService
func NewAnalyticsService(cfg config.Config, sqlDB *sql.DB, themes repository.ThemeRepositoryInterface) *AnalyticsService {
	return &AnalyticsService{Cfg: cfg, SQLDB: sqlDB, Themes: themes}
}

// KeywordStats computes per-keyword effectiveness, optionally restricted to
// one theme and to keywords with at least minUses uses. Keywords with zero
// rated uses report average 0 and success rate 0 rather than dividing by
// zero.
func (s *AnalyticsService) KeywordStats(themeID *uint, minUses int) ([]KeywordStats, error) {
	if themeID != nil {
		if _, err := s.Themes.GetByID(*themeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NewNotFound("theme", *themeID)
			}
			return nil, err
		}
	}

	aggs, err := database.QueryKeywordAggregates(s.SQLDB, themeID, s.Cfg.HighRatingThreshold)
	if err != nil {
		return nil, err
	}

	stats := make([]KeywordStats, 0, len(aggs))
	for _, agg := range aggs {
		if agg.TotalUses < minUses {
			continue
		}

		successRate := 0.0
		averageRating := 0.0
		if agg.RatedUses > 0 {
			successRate = float64(agg.HighRated) / float64(agg.RatedUses)
			averageRating = agg.AverageRating
		}

		stats = append(stats, KeywordStats{
			Keyword:       agg.Text,
			Category:      agg.Category,
			TotalUses:     agg.TotalUses,
			AverageRating: round2(averageRating),
			SuccessRate:   round2(successRate),
			Confidence:    s.confidence(agg.TotalUses),
		})
	}
	return stats, nil
}

// ThemeStats computes session/image counters and rating aggregates for one
// theme. A theme with no images reports a completion rate of 0.
func (s *AnalyticsService) ThemeStats(themeID uint) (*ThemeStats, error) {
	theme, err := s.Themes.GetByID(themeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("theme", themeID)
		}
		return nil, err
	}

	agg, err := database.QueryThemeAggregate(s.SQLDB, themeID)
	if err != nil {
		return nil, err
	}

	completionRate := 0.0
	averageRating := 0.0
	if agg.ImagesCount > 0 {
		completionRate = float64(agg.RatedImagesCount) / float64(agg.ImagesCount)
	}
	if agg.RatedImagesCount > 0 {
		averageRating = agg.AverageRating
	}

	return &ThemeStats{
		ThemeID:          theme.ID,
		ThemeName:        theme.Name,
		GenerationsCount: agg.GenerationsCount,
		ImagesCount:      agg.ImagesCount,
		RatedImagesCount: agg.RatedImagesCount,
		AverageRating:    round2(averageRating),
		CompletionRate:   round2(completionRate),
	}, nil
}

// Summary computes library-wide totals plus the best performing keyword
// (highest success rate, average rating as tie-break, rated uses required).
func (s *AnalyticsService) Summary() (*Summary, error) {
	agg, err := database.QuerySummaryAggregate(s.SQLDB)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		TotalThemes:      agg.TotalThemes,
		TotalGenerations: agg.TotalGenerations,
		TotalImages:      agg.TotalImages,
		RatedImages:      agg.RatedImages,
	}
	if agg.RatedImages > 0 {
		summary.AverageRating = round2(agg.AverageRating)
	}

	keywordStats, err := s.KeywordStats(nil, 1)
	if err != nil {
		return nil, err
	}
	best := ""
	bestRate := -1.0
	bestAvg := -1.0
	for _, ks := range keywordStats {
		if ks.AverageRating == 0 && ks.SuccessRate == 0 {
			continue // never rated
		}
		if ks.SuccessRate > bestRate || (ks.SuccessRate == bestRate && ks.AverageRating > bestAvg) {
			best = ks.Keyword
			bestRate = ks.SuccessRate
			bestAvg = ks.AverageRating
		}
	}
	summary.MostEffectiveKeyword = best

	return summary, nil
}

// confidence maps a sample size onto a coarse reliability tier. The cutoffs
// are configuration, not scattered magic.
func (s *AnalyticsService) confidence(totalUses int) string {
	switch {
	case totalUses >= s.Cfg.HighConfidenceUses:
		return ConfidenceHigh
	case totalUses >= s.Cfg.MediumConfidenceUses:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
