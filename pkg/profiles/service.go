package profiles

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/techshelf/techshelf/pkg/errcodes"
	"github.com/techshelf/techshelf/pkg/media"
	"github.com/techshelf/techshelf/pkg/models"
	"github.com/techshelf/techshelf/pkg/users"
	"github.com/uptrace/bun"
)

// Limits bounds what an avatar upload may cost. MaxPixels caps the decoded
// size so a small, highly compressed file can't allocate unbounded memory.
type Limits struct {
	MaxBytes  int64
	MaxPixels int
}

type Service struct {
	db          *bun.DB
	storage     *media.Storage
	userService *users.Service
	limits      Limits
}

func NewService(db *bun.DB, storage *media.Storage, limits Limits) *Service {
	if limits.MaxPixels <= 0 {
		limits.MaxPixels = DefaultMaxAvatarPixels
	}
	return &Service{
		db:          db,
		storage:     storage,
		userService: users.NewService(db),
		limits:      limits,
	}
}

// UpdateAvatar stores a new avatar image for the user and points the profile
// at it. The previous image is deleted unless it's the shared default.
func (svc *Service) UpdateAvatar(ctx context.Context, userID int, data []byte) (*models.Profile, error) {
	log := logger.FromContext(ctx)

	if len(data) == 0 {
		return nil, errcodes.ValidationError(`"avatar" is required`)
	}
	if svc.limits.MaxBytes > 0 && int64(len(data)) > svc.limits.MaxBytes {
		return nil, errcodes.ValidationError(`"avatar" is too large`)
	}

	processed, ext, err := processAvatar(data, svc.limits.MaxPixels)
	if err != nil {
		return nil, err
	}

	name := "avatars/" + uuid.NewString() + ext
	if err := svc.storage.Save(name, processed); err != nil {
		return nil, errors.WithStack(err)
	}

	profile := &models.Profile{}
	var previous *string
	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := svc.userService.EnsureProfile(ctx, tx, userID); err != nil {
			return err
		}

		err := tx.NewSelect().
			Model(profile).
			Where("p.user_id = ?", userID).
			Scan(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if profile.HasCustomAvatar() {
			old := *profile.Avatar
			previous = &old
		}

		profile.Avatar = &name
		profile.UpdatedAt = time.Now().UTC()
		_, err = tx.NewUpdate().
			Model(profile).
			Column("avatar", "updated_at").
			WherePK().
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		if rmErr := svc.storage.Remove(name); rmErr != nil {
			log.Warn("failed to remove orphaned avatar", logger.Data{"avatar": name, "error": rmErr.Error()})
		}
		return nil, err
	}

	if previous != nil {
		if err := svc.storage.Remove(*previous); err != nil {
			log.Warn("failed to remove previous avatar", logger.Data{"avatar": *previous, "error": err.Error()})
		}
	}

	return profile, nil
}
