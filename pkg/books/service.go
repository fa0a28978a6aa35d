package books

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/techshelf/techshelf/pkg/activity"
	"github.com/techshelf/techshelf/pkg/database"
	"github.com/techshelf/techshelf/pkg/errcodes"
	"github.com/techshelf/techshelf/pkg/models"
	"github.com/uptrace/bun"
)

type RetrieveBookOptions struct {
	ID     int
	UserID int
}

type Service struct {
	db              *bun.DB
	activityService *activity.Service
}

func NewService(db *bun.DB) *Service {
	return &Service{
		db:              db,
		activityService: activity.NewService(db),
	}
}

// CreateBook saves the book to its owner's library and appends the matching
// activity entry. Both rows are written in one transaction, so a duplicate
// leaves neither behind.
func (svc *Service) CreateBook(ctx context.Context, book *models.Book) error {
	book.CreatedAt = time.Now().UTC()
	book.ApplyDefaults()

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if book.CatalogID != nil {
			exists, err := tx.NewSelect().
				Model((*models.Book)(nil)).
				Where("b.user_id = ?", book.UserID).
				Where("b.catalog_id = ?", *book.CatalogID).
				Exists(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			if exists {
				return errcodes.DuplicateBook()
			}
		}

		_, err := tx.NewInsert().
			Model(book).
			Returning("*").
			Exec(ctx)
		if err != nil {
			// The unique index is authoritative when two saves race past the
			// check above.
			if database.IsUniqueViolation(err) {
				return errcodes.DuplicateBook()
			}
			return errors.WithStack(err)
		}

		_, err = svc.activityService.Record(ctx, tx, book.UserID, models.BookAddedAction(book.Title))
		return errors.WithStack(err)
	})
}

// RetrieveBook returns a book owned by opts.UserID. Books owned by someone else
// are reported as not found.
func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	err := svc.db.
		NewSelect().
		Model(book).
		Where("b.id = ?", opts.ID).
		Where("b.user_id = ?", opts.UserID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

// ListBooks returns the user's saved books, newest first.
func (svc *Service) ListBooks(ctx context.Context, userID int) ([]*models.Book, error) {
	books := []*models.Book{}

	err := svc.db.
		NewSelect().
		Model(&books).
		Where("b.user_id = ?", userID).
		Order("b.created_at DESC", "b.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return books, nil
}

// DeleteBook removes a book owned by opts.UserID.
func (svc *Service) DeleteBook(ctx context.Context, opts RetrieveBookOptions) error {
	res, err := svc.db.
		NewDelete().
		Model((*models.Book)(nil)).
		Where("id = ?", opts.ID).
		Where("user_id = ?", opts.UserID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if rows == 0 {
		return errcodes.NotFound("Book")
	}

	return nil
}
