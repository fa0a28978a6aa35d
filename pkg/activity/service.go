package activity

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/techshelf/techshelf/pkg/models"
	"github.com/uptrace/bun"
)

// RecentLimit is the number of entries the feed shows.
const RecentLimit = 10

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// Record appends an entry to the user's feed. Entries are only written as a
// side effect of other mutations, so idb is normally the caller's transaction.
func (svc *Service) Record(ctx context.Context, idb bun.IDB, userID int, action string) (*models.ActivityLog, error) {
	entry := &models.ActivityLog{
		UserID:    userID,
		Action:    action,
		Timestamp: time.Now().UTC(),
	}

	_, err := idb.NewInsert().
		Model(entry).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return entry, nil
}

// ListRecent returns the user's newest entries first, at most RecentLimit.
func (svc *Service) ListRecent(ctx context.Context, userID int) ([]*models.ActivityLog, error) {
	entries := []*models.ActivityLog{}
	err := svc.db.NewSelect().
		Model(&entries).
		Where("al.user_id = ?", userID).
		Order("al.timestamp DESC", "al.id DESC").
		Limit(RecentLimit).
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return entries, nil
}
