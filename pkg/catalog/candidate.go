package catalog

import (
	"github.com/techshelf/techshelf/pkg/models"
)

// Candidate is an unsaved book returned by a search. Its JSON shape matches
// the create-book payload so clients can post it back as-is, minus the
// is_readable and is_search_result markers.
type Candidate struct {
	CatalogID      string `json:"catalog_id"`
	Title          string `json:"title"`
	Authors        string `json:"authors"`
	Description    string `json:"description"`
	ImageURL       string `json:"image_url"`
	PreviewLink    string `json:"preview_link"`
	WebReaderLink  string `json:"web_reader_link"`
	Category       string `json:"category"`
	IsEbook        bool   `json:"is_ebook"`
	IsReadable     bool   `json:"is_readable"`
	IsSearchResult bool   `json:"is_search_result"`
}

func newCandidate(rec *record, viewerURL string) *Candidate {
	title := rec.Title
	if title == "" {
		title = models.DefaultBookTitle
	}
	authors := rec.Subtitle
	if authors == "" {
		authors = models.DefaultBookAuthors
	}

	return &Candidate{
		CatalogID:      rec.ISBN13,
		Title:          title,
		Authors:        authors,
		Description:    rec.Subtitle,
		ImageURL:       rec.Image,
		PreviewLink:    rec.URL,
		WebReaderLink:  models.WebReaderURL(viewerURL, rec.ISBN13),
		Category:       models.DefaultBookCategory,
		IsEbook:        true,
		IsReadable:     true,
		IsSearchResult: true,
	}
}
