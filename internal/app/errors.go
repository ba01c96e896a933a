package app

import (
	"errors"
	"fmt"

	"shelf-go/internal/encryption"
	"shelf-go/internal/shelf"
)

// ErrMoveCycle is returned when a category would become its own ancestor.
var ErrMoveCycle = errors.New("category cannot be moved under itself or its descendants")

// MessageKey returns the translation key describing err to a user, or ""
// when err has no dedicated message.
func MessageKey(err error) string {
	switch {
	case errors.Is(err, shelf.ErrBookmarkNotFound):
		return "bookmark.not_found"
	case errors.Is(err, shelf.ErrCategoryNotFound):
		return "category.not_found"
	case errors.Is(err, shelf.ErrCategoryHasChildren):
		return "category.has_children"
	case errors.Is(err, shelf.ErrLastCategory):
		return "category.last"
	case errors.Is(err, ErrMoveCycle):
		return "category.move_cycle"
	case errors.Is(err, shelf.ErrInvalidImport):
		return "import.invalid"
	case errors.Is(err, encryption.ErrWrongPassphrase):
		return "restore.wrong_passphrase"
	case errors.Is(err, ErrBackupNotConfigured):
		return "backup.not_configured"
	case errors.Is(err, shelf.ErrStorage):
		return "storage.error"
	default:
		return ""
	}
}

// Localize prefixes err with its message in the current language. Errors
// without a dedicated message are returned unchanged.
func (a *ShelfApp) Localize(err error) error {
	key := MessageKey(err)
	if key == "" {
		return err
	}
	return fmt.Errorf("%s: %w", a.T(key), err)
}

// CheckMove reports whether category id may be placed under parentID. An
// empty parentID means the root level.
func (a *ShelfApp) CheckMove(id, parentID string) error {
	if _, ok := a.repo.Category(id); !ok {
		return fmt.Errorf("%w: %s", shelf.ErrCategoryNotFound, id)
	}
	if parentID == "" {
		return nil
	}
	if _, ok := a.repo.Category(parentID); !ok {
		return fmt.Errorf("%w: parent %s", shelf.ErrCategoryNotFound, parentID)
	}
	if a.repo.CreatesCycle(id, parentID) {
		return fmt.Errorf("%w: %s under %s", ErrMoveCycle, id, parentID)
	}
	return nil
}

// MoveCategory re-parents category id after CheckMove approves it.
func (a *ShelfApp) MoveCategory(id, parentID string) error {
	if err := a.CheckMove(id, parentID); err != nil {
		return err
	}
	return a.repo.UpdateCategory(id, shelf.CategoryPatch{ParentID: &parentID})
}
