package progress

import (
	"github.com/techshelf/techshelf/pkg/errcodes"
)

// UpdateProgressPayload also accepts the older google_book_id and
// current_page names.
type UpdateProgressPayload struct {
	CatalogID    string `json:"catalog_id" mod:"trim" validate:"max=64"`
	GoogleBookID string `json:"google_book_id" mod:"trim" validate:"max=64"`
	Page         *int   `json:"page" validate:"omitnil,min=1"`
	CurrentPage  *int   `json:"current_page" validate:"omitnil,min=1"`
}

func (p *UpdateProgressPayload) resolve() (string, int, error) {
	catalogID := p.CatalogID
	if catalogID == "" {
		catalogID = p.GoogleBookID
	}
	if catalogID == "" {
		return "", 0, errcodes.ValidationError(`"catalog_id" is required`)
	}

	page := p.Page
	if page == nil {
		page = p.CurrentPage
	}
	if page == nil {
		return "", 0, errcodes.ValidationError(`"page" is required`)
	}

	return catalogID, *page, nil
}

type ProgressQuery struct {
	CatalogID    string `query:"catalog_id" json:"catalog_id" mod:"trim" validate:"max=64"`
	GoogleBookID string `query:"google_book_id" json:"google_book_id" mod:"trim" validate:"max=64"`
}

func (q *ProgressQuery) resolve() (string, error) {
	catalogID := q.CatalogID
	if catalogID == "" {
		catalogID = q.GoogleBookID
	}
	if catalogID == "" {
		return "", errcodes.ValidationError(`"catalog_id" is required`)
	}
	return catalogID, nil
}
