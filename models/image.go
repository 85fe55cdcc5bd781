package models

// Rating bounds for generated images.
const (
	MinRating = 1
	MaxRating = 5
)

// Image represents a single generated texture. Bytes live on disk at
// FilePath (relative to the media storage root); the row never stores
// image data. Rating is nullable: nil means unrated, and unrated images
// are excluded from every rating aggregate.
type Image struct {
	ID            uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	GenerationID  uint    `gorm:"not null;index" json:"generation_id"`
	Filename      string  `gorm:"not null" json:"filename"`
	FilePath      string  `gorm:"not null" json:"file_path"`
	ThumbnailPath *string `gorm:"" json:"thumbnail_path,omitempty"` // Nullable, set by the thumbnail worker
	Prompt        string  `gorm:"not null" json:"prompt"`           // full prompt actually sent, with ## markers
	Rating        *int    `gorm:"" json:"rating,omitempty"`         // Nullable, 1-5
	CreatedAt     int64   `gorm:"not null" json:"created_at"`       // Stored as INTEGER in SQLite, Unix timestamp

	// Relationships
	Keywords []Keyword `gorm:"many2many:image_keywords" json:"keywords,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Image) TableName() string {
	return "images"
}
