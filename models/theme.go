package models

// Theme represents a named lineage of prompt experimentation using GORM.
// It corresponds to the 'themes' table. ParentThemeID forms a forest: a
// branch always creates a new row pointing at an existing parent, never
// rewires an existing row.
type Theme struct {
	ID            uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string  `gorm:"not null;index" json:"name"`
	Description   *string `gorm:"" json:"description,omitempty"` // Nullable
	BasePrompt    string  `gorm:"not null" json:"base_prompt"`
	ParentThemeID *uint   `gorm:"index" json:"parent_theme_id,omitempty"` // Nullable self-reference
	CreatedAt     int64   `gorm:"not null" json:"created_at"`             // Stored as INTEGER in SQLite, Unix timestamp
	UpdatedAt     int64   `gorm:"not null" json:"updated_at"`             // Stored as INTEGER in SQLite, Unix timestamp

	// Relationships
	Generations []Generation `gorm:"foreignKey:ThemeID" json:"generations,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Theme) TableName() string {
	return "themes"
}
