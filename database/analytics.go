package database

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// KeywordAggregate holds the raw per-keyword aggregation scanned from the
// image/keyword join. Rated counts and sums only ever include rated images;
// AVG skips NULL ratings on its own.
type KeywordAggregate struct {
	Text          string
	Category      string
	TotalUses     int
	RatedUses     int
	AverageRating float64
	HighRated     int
}

// ThemeAggregate holds the raw per-theme counters.
type ThemeAggregate struct {
	GenerationsCount int
	ImagesCount      int
	RatedImagesCount int
	AverageRating    float64
}

// SummaryAggregate holds library-wide totals.
type SummaryAggregate struct {
	TotalThemes      int
	TotalGenerations int
	TotalImages      int
	RatedImages      int
	AverageRating    float64
}

// QueryKeywordAggregates scans the image/keyword join and returns one row
// per keyword. themeID, when non-nil, restricts the scan to images whose
// generation belongs to that theme. highRatingThreshold defines which
// ratings count as high.
func QueryKeywordAggregates(db *sql.DB, themeID *uint, highRatingThreshold int) ([]KeywordAggregate, error) {
	builder := psql.Select(
		"k.text",
		"k.category",
		"COUNT(ik.image_id) AS total_uses",
		"COUNT(i.rating) AS rated_uses",
		"COALESCE(AVG(i.rating), 0) AS average_rating",
	).
		Column(sq.Expr("COALESCE(SUM(CASE WHEN i.rating >= ? THEN 1 ELSE 0 END), 0) AS high_rated", highRatingThreshold)).
		From("keywords k").
		Join("image_keywords ik ON ik.keyword_id = k.id").
		Join("images i ON i.id = ik.image_id").
		Join("generations g ON g.id = i.generation_id").
		GroupBy("k.id").
		OrderBy("total_uses DESC", "k.text ASC")

	if themeID != nil {
		builder = builder.Where(sq.Eq{"g.theme_id": *themeID})
	}

	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for QueryKeywordAggregates: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query keyword aggregates: %w", err)
	}
	defer rows.Close()

	var aggs []KeywordAggregate
	for rows.Next() {
		var agg KeywordAggregate
		if err := rows.Scan(&agg.Text, &agg.Category, &agg.TotalUses, &agg.RatedUses, &agg.AverageRating, &agg.HighRated); err != nil {
			return nil, fmt.Errorf("failed to scan keyword aggregate row: %w", err)
		}
		aggs = append(aggs, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating keyword aggregate rows: %w", err)
	}
	return aggs, nil
}

// QueryThemeAggregate returns session/image counters for a single theme.
// A theme with no generations scans as all zeroes, not as an error.
func QueryThemeAggregate(db *sql.DB, themeID uint) (ThemeAggregate, error) {
	builder := psql.Select(
		"COUNT(DISTINCT g.id) AS generations_count",
		"COUNT(i.id) AS images_count",
		"COUNT(i.rating) AS rated_images_count",
		"COALESCE(AVG(i.rating), 0) AS average_rating",
	).
		From("generations g").
		LeftJoin("images i ON i.generation_id = g.id").
		Where(sq.Eq{"g.theme_id": themeID})

	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return ThemeAggregate{}, fmt.Errorf("failed to build SQL query for QueryThemeAggregate: %w", err)
	}

	var agg ThemeAggregate
	err = db.QueryRow(sqlStr, args...).Scan(&agg.GenerationsCount, &agg.ImagesCount, &agg.RatedImagesCount, &agg.AverageRating)
	if err != nil {
		return ThemeAggregate{}, fmt.Errorf("failed to query theme aggregate for theme %d: %w", themeID, err)
	}
	return agg, nil
}

// QuerySummaryAggregate returns totals across the whole library.
func QuerySummaryAggregate(db *sql.DB) (SummaryAggregate, error) {
	builder := psql.Select(
		"(SELECT COUNT(*) FROM themes) AS total_themes",
		"(SELECT COUNT(*) FROM generations) AS total_generations",
		"COUNT(i.id) AS total_images",
		"COUNT(i.rating) AS rated_images",
		"COALESCE(AVG(i.rating), 0) AS average_rating",
	).From("images i")

	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return SummaryAggregate{}, fmt.Errorf("failed to build SQL query for QuerySummaryAggregate: %w", err)
	}

	var agg SummaryAggregate
	err = db.QueryRow(sqlStr, args...).Scan(&agg.TotalThemes, &agg.TotalGenerations, &agg.TotalImages, &agg.RatedImages, &agg.AverageRating)
	if err != nil {
		return SummaryAggregate{}, fmt.Errorf("failed to query summary aggregate: %w", err)
	}
	return agg, nil
}
