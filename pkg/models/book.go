package models

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

const (
	DefaultBookAuthors  = "Technical Author"
	DefaultBookCategory = "Technology"
	DefaultBookTitle    = "Untitled"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID            int       `bun:",pk,nullzero" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UserID        int       `bun:",nullzero" json:"-"`
	CatalogID     *string   `json:"catalog_id"`
	Title         string    `bun:",nullzero" json:"title"`
	Authors       string    `json:"authors"`
	Description   *string   `json:"description"`
	ImageURL      *string   `json:"image_url"`
	PreviewLink   *string   `json:"preview_link"`
	WebReaderLink *string   `json:"web_reader_link"`
	IsEbook       bool      `json:"is_ebook"`
	Category      string    `json:"category"`
}

// ApplyDefaults fills in the authors and category placeholders used when the
// client leaves them blank.
func (b *Book) ApplyDefaults() {
	if strings.TrimSpace(b.Authors) == "" {
		b.Authors = DefaultBookAuthors
	}
	if strings.TrimSpace(b.Category) == "" {
		b.Category = DefaultBookCategory
	}
}

// WebReaderURL builds the embeddable viewer link for a catalog ID, e.g.
// https://books.google.com/books?vid=ISBN9780132350884&printsec=frontcover&output=embed.
func WebReaderURL(viewerBase, catalogID string) string {
	return fmt.Sprintf("%s?vid=ISBN%s&printsec=frontcover&output=embed", viewerBase, url.QueryEscape(catalogID))
}
