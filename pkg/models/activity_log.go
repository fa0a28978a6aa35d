package models

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// ActivityTimestampFormat is how timestamps are shown in the activity feed,
// e.g. "Oct 18, 2026 14:05".
const ActivityTimestampFormat = "Jan 02, 2006 15:04"

type ActivityLog struct {
	bun.BaseModel `bun:"table:activity_logs,alias:al"`

	ID        int       `bun:",pk,nullzero" json:"-"`
	UserID    int       `bun:",nullzero" json:"-"`
	Action    string    `bun:",nullzero" json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// BookAddedAction is the activity text recorded when a book is saved.
func BookAddedAction(title string) string {
	return fmt.Sprintf("Added '%s' to their tech library", title)
}
