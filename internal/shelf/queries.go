package shelf

import (
	"cmp"
	"slices"
)

// Bookmarks returns all bookmarks in storage order.
func (r *Repository) Bookmarks() []Bookmark {
	return cloneBookmarks(r.bookmarks)
}

// AllBookmarks returns all bookmarks, newest first. Bookmarks with equal
// timestamps keep their storage order.
func (r *Repository) AllBookmarks() []Bookmark {
	out := cloneBookmarks(r.bookmarks)
	slices.SortStableFunc(out, func(a, b Bookmark) int {
		return cmp.Compare(b.CreatedAt, a.CreatedAt)
	})
	return out
}

// BookmarksByCategory returns the bookmarks filed directly under categoryID.
func (r *Repository) BookmarksByCategory(categoryID string) []Bookmark {
	out := []Bookmark{}
	for _, b := range r.bookmarks {
		if b.CategoryID == categoryID {
			out = append(out, b)
		}
	}
	return out
}

// Bookmark looks up a bookmark by id.
func (r *Repository) Bookmark(id string) (Bookmark, bool) {
	i := r.bookmarkIndex(id)
	if i < 0 {
		return Bookmark{}, false
	}
	return r.bookmarks[i], true
}

// Category looks up a category by id.
func (r *Repository) Category(id string) (Category, bool) {
	i := r.categoryIndex(id)
	if i < 0 {
		return Category{}, false
	}
	return cloneCategory(r.categories[i]), true
}

// Categories returns all categories in storage order.
func (r *Repository) Categories() []Category {
	return cloneCategories(r.categories)
}

// ChildCategories returns the categories whose parent is parentID.
// A nil parentID selects the roots.
func (r *Repository) ChildCategories(parentID *string) []Category {
	out := []Category{}
	for _, c := range r.categories {
		if parentID == nil && c.IsRoot() || parentID != nil && c.HasParent(*parentID) {
			out = append(out, cloneCategory(c))
		}
	}
	return out
}

// CategoryPath returns the ancestry of id, root first, ending with the
// category itself. An unknown id yields an empty path. Each category appears
// at most once, so corrupt parent cycles terminate.
func (r *Repository) CategoryPath(id string) []Category {
	path := []Category{}
	visited := make(map[string]bool)

	current, ok := r.Category(id)
	for ok && !visited[current.ID] {
		visited[current.ID] = true
		path = append(path, current)
		if current.ParentID == nil {
			break
		}
		current, ok = r.Category(*current.ParentID)
	}

	slices.Reverse(path)
	return path
}

// CreatesCycle reports whether making newParentID the parent of id would put
// id among its own ancestors. An empty newParentID means "move to root" and
// never creates a cycle.
func (r *Repository) CreatesCycle(id, newParentID string) bool {
	if newParentID == "" {
		return false
	}
	for _, c := range r.CategoryPath(newParentID) {
		if c.ID == id {
			return true
		}
	}
	return false
}

// DefaultCategoryID returns the id of the first category, which is where new
// bookmarks go when the caller names none.
func (r *Repository) DefaultCategoryID() string {
	if len(r.categories) == 0 {
		return ""
	}
	return r.categories[0].ID
}

// Counts returns the number of bookmarks and categories.
func (r *Repository) Counts() (bookmarks, categories int) {
	return len(r.bookmarks), len(r.categories)
}
