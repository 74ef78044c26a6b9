package models

// Location is a named place that properties belong to
type Location struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(120);not null;uniqueIndex" json:"name"`
	Slug string `gorm:"type:varchar(140);not null;uniqueIndex" json:"slug"`
}

// TableName specifies the table name for Location
func (Location) TableName() string {
	return "locations"
}

// EnsureSlug derives the slug from the name if it has not been set yet.
// An assigned slug is never recomputed.
func (l *Location) EnsureSlug() {
	if l.Slug == "" {
		l.Slug = Slugify(l.Name)
	}
}
