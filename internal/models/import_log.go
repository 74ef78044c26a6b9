package models

import "time"

// ImportLog records one bulk import run
type ImportLog struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RunID      string    `gorm:"type:varchar(36);not null;index" json:"run_id"`
	StartedAt  time.Time `gorm:"not null" json:"started_at"`
	FinishedAt time.Time `gorm:"not null" json:"finished_at"`
	Locations  int       `gorm:"not null;default:0" json:"locations"`
	Properties int       `gorm:"not null;default:0" json:"properties"`
	Images     int       `gorm:"not null;default:0" json:"images"`
	Skipped    int       `gorm:"not null;default:0" json:"skipped"`
	Cleared    bool      `gorm:"not null;default:false" json:"cleared"`
	Status     string    `gorm:"type:varchar(20);not null" json:"status"`
	Error      string    `gorm:"type:text" json:"error,omitempty"`
}

// TableName specifies the table name
func (ImportLog) TableName() string {
	return "import_logs"
}

// ImportStatus constants
const (
	ImportStatusSucceeded = "succeeded"
	ImportStatusFailed    = "failed"
)
