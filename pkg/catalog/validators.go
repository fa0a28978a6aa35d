package catalog

// SearchQuery is the query string for GET /books/search.
type SearchQuery struct {
	Q string `query:"q" mod:"trim"`
}
