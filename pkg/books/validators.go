package books

import (
	"strings"

	"github.com/techshelf/techshelf/pkg/models"
)

// CreateBookPayload accepts a catalog candidate as returned by search, or a
// manually entered book. google_book_id is the older name for catalog_id.
type CreateBookPayload struct {
	CatalogID     *string `json:"catalog_id,omitempty" validate:"omitempty,max=64"`
	GoogleBookID  *string `json:"google_book_id,omitempty" validate:"omitempty,max=64"`
	Title         string  `json:"title" mod:"trim" validate:"required,max=300"`
	Authors       string  `json:"authors" mod:"trim" validate:"max=500"`
	Description   *string `json:"description,omitempty"`
	ImageURL      *string `json:"image_url,omitempty" validate:"omitempty,url"`
	PreviewLink   *string `json:"preview_link,omitempty" validate:"omitempty,url"`
	WebReaderLink *string `json:"web_reader_link,omitempty" validate:"omitempty,url"`
	IsEbook       *bool   `json:"is_ebook,omitempty"`
	Category      string  `json:"category" mod:"trim" validate:"max=100"`

	// Search result markers. Accepted so candidates can be posted back
	// unchanged, never stored.
	IsReadable     bool `json:"is_readable,omitempty"`
	IsSearchResult bool `json:"is_search_result,omitempty"`
}

func (p *CreateBookPayload) catalogID() *string {
	if id := trimmed(p.CatalogID); id != nil {
		return id
	}
	return trimmed(p.GoogleBookID)
}

// toModel builds the book to insert. A missing web reader link is derived
// from the catalog ID.
func (p *CreateBookPayload) toModel(userID int, viewerURL string) *models.Book {
	isEbook := true
	if p.IsEbook != nil {
		isEbook = *p.IsEbook
	}

	book := &models.Book{
		UserID:        userID,
		CatalogID:     p.catalogID(),
		Title:         p.Title,
		Authors:       p.Authors,
		Description:   trimmed(p.Description),
		ImageURL:      trimmed(p.ImageURL),
		PreviewLink:   trimmed(p.PreviewLink),
		WebReaderLink: trimmed(p.WebReaderLink),
		IsEbook:       isEbook,
		Category:      p.Category,
	}

	if book.WebReaderLink == nil && book.CatalogID != nil && viewerURL != "" {
		link := models.WebReaderURL(viewerURL, *book.CatalogID)
		book.WebReaderLink = &link
	}

	return book
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
