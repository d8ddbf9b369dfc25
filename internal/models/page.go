package models

// Page is an offset/limit window converted to page-number semantics:
// an offset that is not a multiple of Limit is rounded down to the
// start of its page.
type Page struct {
	Offset int
	Limit  int
}

// Number returns the zero-based page index.
func (p Page) Number() int {
	if p.Limit <= 0 {
		return 0
	}
	return p.Offset / p.Limit
}

// Skip is the number of rows preceding the page.
func (p Page) Skip() int {
	return p.Number() * p.Limit
}

// Valid reports whether the page can be queried.
func (p Page) Valid() bool {
	return p.Offset >= 0 && p.Limit >= 1
}
