package models

// Generation sizes accepted by the image API.
const (
	SizeSquare    = "1024x1024"
	SizeLandscape = "1792x1024"
	SizePortrait  = "1024x1792"
)

// Generation qualities accepted by the image API.
const (
	QualityStandard = "standard"
	QualityHD       = "hd"
)

// ValidSize reports whether s is a size the image API accepts.
func ValidSize(s string) bool {
	return s == SizeSquare || s == SizeLandscape || s == SizePortrait
}

// ValidQuality reports whether q is a quality the image API accepts.
func ValidQuality(q string) bool {
	return q == QualityStandard || q == QualityHD
}

// Generation represents one generation session: a single "generate N
// variations" action against a theme. Rows are append-only history; a
// session is never mutated after creation, only superseded by newer ones.
type Generation struct {
	ID             uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	ThemeID        uint    `gorm:"not null;index" json:"theme_id"`
	SessionName    *string `gorm:"" json:"session_name,omitempty"` // Nullable, optional user label
	BasePrompt     string  `gorm:"not null" json:"base_prompt"`
	VariationCount int     `gorm:"not null" json:"variation_count"`
	Size           string  `gorm:"not null;default:'1024x1024'" json:"size"`
	Quality        string  `gorm:"not null;default:'standard'" json:"quality"`
	CreatedAt      int64   `gorm:"not null" json:"created_at"` // Stored as INTEGER in SQLite, Unix timestamp

	// Relationships
	Images []Image `gorm:"foreignKey:GenerationID" json:"images,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Generation) TableName() string {
	return "generations"
}
