package folder

import "errors"

var (
	// ErrTooManyFilters is returned when the account reached its folder quota.
	ErrTooManyFilters = errors.New("too many folders")
	// ErrNotFound is returned for unknown folder ids.
	ErrNotFound = errors.New("folder not found")
	// ErrTitleRequired rejects saving a folder whose trimmed title is empty.
	ErrTitleRequired = errors.New("folder name required")
)
