package progress

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/techshelf/techshelf/pkg/errcodes"
	"github.com/techshelf/techshelf/pkg/models"
	"github.com/uptrace/bun"
)

type SetProgressOptions struct {
	UserID    int
	CatalogID string
	Page      int
}

type RetrieveProgressOptions struct {
	UserID    int
	CatalogID string
}

// Service must be shared by every caller writing progress, since the
// per-book locks live on it.
type Service struct {
	db    *bun.DB
	locks *keyedMutex
}

func NewService(db *bun.DB) *Service {
	return &Service{
		db:    db,
		locks: newKeyedMutex(),
	}
}

// SetProgress records the page the user is on. Writes for the same book are
// applied in arrival order and the last one wins. last_read is taken under the
// book's lock so it never moves backwards.
func (svc *Service) SetProgress(ctx context.Context, opts SetProgressOptions) (*models.ReadingProgress, error) {
	unlock := svc.locks.Lock(strconv.Itoa(opts.UserID) + ":" + opts.CatalogID)
	defer unlock()

	progress := &models.ReadingProgress{
		UserID:      opts.UserID,
		CatalogID:   opts.CatalogID,
		CurrentPage: opts.Page,
		LastRead:    time.Now().UTC(),
	}

	_, err := svc.db.
		NewInsert().
		Model(progress).
		On("CONFLICT (user_id, catalog_id) DO UPDATE").
		Set("current_page = EXCLUDED.current_page").
		Set("last_read = EXCLUDED.last_read").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return progress, nil
}

func (svc *Service) RetrieveProgress(ctx context.Context, opts RetrieveProgressOptions) (*models.ReadingProgress, error) {
	progress := &models.ReadingProgress{}

	err := svc.db.
		NewSelect().
		Model(progress).
		Where("rp.user_id = ?", opts.UserID).
		Where("rp.catalog_id = ?", opts.CatalogID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Reading progress")
		}
		return nil, errors.WithStack(err)
	}

	return progress, nil
}
