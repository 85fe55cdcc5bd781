package models

// Keyword represents a ##word token extracted from prompt text. Rows are
// derived, never user-created: extraction upserts by normalized lowercase
// text, so the same text always maps to the same identity.
type Keyword struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Text      string `gorm:"not null;unique" json:"text"` // normalized lowercase
	Category  string `gorm:"not null;default:'uncategorized'" json:"category"`
	CreatedAt int64  `gorm:"not null" json:"created_at"` // Stored as INTEGER in SQLite, Unix timestamp
}

// TableName explicitly sets the table name for GORM.
func (Keyword) TableName() string {
	return "keywords"
}

// ImageKeyword is the join row between images and keywords, created at
// extraction time and never mutated afterwards.
type ImageKeyword struct {
	ImageID   uint `gorm:"primaryKey" json:"image_id"`
	KeywordID uint `gorm:"primaryKey" json:"keyword_id"`
}

// TableName explicitly sets the table name for GORM.
func (ImageKeyword) TableName() string {
	return "image_keywords"
}
