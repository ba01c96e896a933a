package shelf

import "errors"

var (
	// ErrKeyNotFound is returned by a Store when a key has never been written.
	ErrKeyNotFound = errors.New("key not found")

	ErrBookmarkNotFound    = errors.New("bookmark not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCategoryHasChildren = errors.New("category has child categories")
	ErrLastCategory        = errors.New("cannot delete the last category")
	ErrInvalidImport       = errors.New("invalid import payload: bookmarks and categories must both be lists")

	// ErrStorage wraps every persistence failure surfaced by the Repository.
	// The in-memory state is rolled back before it is returned.
	ErrStorage = errors.New("storage unavailable")
)
