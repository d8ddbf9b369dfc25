package models

const (
	// UserIDHeader carries the trusted id of the acting user.
	UserIDHeader = "X-Sharer-User-Id"

	DefaultBookingsPageSize = 10
	DefaultItemsPageSize    = 5
	DefaultRequestsPageSize = 5

	// MaxExportRows caps the owner booking export.
	MaxExportRows = 10000
)
