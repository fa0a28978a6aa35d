package models

import (
	"time"

	"github.com/uptrace/bun"
)

// DefaultAvatar is the media-relative path every new profile starts with.
const DefaultAvatar = "avatars/default.png"

type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:p"`

	ID        int       `bun:",pk,nullzero" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	UserID    int       `bun:",nullzero" json:"-"`
	Avatar    *string   `json:"avatar"`
}

// HasCustomAvatar reports whether the avatar was uploaded by the user, as
// opposed to the shared placeholder.
func (p *Profile) HasCustomAvatar() bool {
	return p.Avatar != nil && *p.Avatar != "" && *p.Avatar != DefaultAvatar
}
