package users

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/techshelf/techshelf/pkg/auth"
	"github.com/techshelf/techshelf/pkg/database"
	"github.com/techshelf/techshelf/pkg/errcodes"
	"github.com/techshelf/techshelf/pkg/models"
	"github.com/uptrace/bun"
)

// Service handles user operations.
type Service struct {
	db *bun.DB
}

// NewService creates a new users service.
func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// RegisterOptions contains options for registering a user.
type RegisterOptions struct {
	Username  string
	FirstName string
	LastName  string
	Email     *string
	Password  string
}

// Register creates a user together with its profile. Either both rows exist
// afterwards or neither does.
func (s *Service) Register(ctx context.Context, opts RegisterOptions) (*models.User, error) {
	// Hash outside the transaction, bcrypt is slow.
	hashedPassword, err := auth.HashPassword(opts.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		CreatedAt:    now,
		UpdatedAt:    now,
		Username:     opts.Username,
		FirstName:    opts.FirstName,
		LastName:     opts.LastName,
		Email:        opts.Email,
		PasswordHash: hashedPassword,
	}

	err = s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		// Check if username already exists
		exists, err := tx.NewSelect().
			Model((*models.User)(nil)).
			Where("username = ? COLLATE NOCASE", opts.Username).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if exists {
			return errcodes.ValidationError("A user with that username already exists.")
		}

		_, err = tx.NewInsert().Model(user).Exec(ctx)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return errcodes.ValidationError("A user with that username already exists.")
			}
			return errors.WithStack(err)
		}

		return s.EnsureProfile(ctx, tx, user.ID)
	})
	if err != nil {
		return nil, err
	}

	// Reload with relations
	return s.Retrieve(ctx, user.ID)
}

// EnsureProfile creates the user's profile with the default avatar unless
// one already exists.
func (s *Service) EnsureProfile(ctx context.Context, idb bun.IDB, userID int) error {
	now := time.Now().UTC()
	avatar := models.DefaultAvatar
	profile := &models.Profile{
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    userID,
		Avatar:    &avatar,
	}

	_, err := idb.NewInsert().
		Model(profile).
		On("CONFLICT (user_id) DO NOTHING").
		Exec(ctx)
	return errors.WithStack(err)
}

// Retrieve gets a user by ID.
func (s *Service) Retrieve(ctx context.Context, id int) (*models.User, error) {
	user := &models.User{}
	err := s.db.NewSelect().
		Model(user).
		Relation("Profile").
		Where("u.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("User")
		}
		return nil, errors.WithStack(err)
	}
	return user, nil
}

// DeleteAll removes every user and returns how many there were. Books,
// progress, and activity go with them.
func (s *Service) DeleteAll(ctx context.Context) (int, error) {
	res, err := s.db.NewDelete().
		Model((*models.User)(nil)).
		Where("1 = 1").
		Exec(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return int(deleted), nil
}
