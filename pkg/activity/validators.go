package activity

import "github.com/techshelf/techshelf/pkg/models"

// EntryResponse is a single feed entry as shown on the dashboard.
type EntryResponse struct {
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
}

func newEntryResponse(entry *models.ActivityLog) EntryResponse {
	return EntryResponse{
		Action:    entry.Action,
		Timestamp: entry.Timestamp.UTC().Format(models.ActivityTimestampFormat),
	}
}
