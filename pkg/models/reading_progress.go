package models

import (
	"time"

	"github.com/uptrace/bun"
)

type ReadingProgress struct {
	bun.BaseModel `bun:"table:reading_progress,alias:rp"`

	ID          int       `bun:",pk,nullzero" json:"-"`
	UserID      int       `bun:",nullzero" json:"-"`
	CatalogID   string    `bun:",nullzero" json:"catalog_id"`
	CurrentPage int       `json:"current_page"`
	LastRead    time.Time `json:"last_read"`
}
