package shelf

// Storage keys owned by the Repository. No other component may write them.
const (
	BookmarksKey  = "bookmarks"
	CategoriesKey = "categories"
)

// Bookmark is a single saved link.
type Bookmark struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	CategoryID string `json:"categoryId"`
	CreatedAt  int64  `json:"createdAt"` // epoch millis
}

// Category is a node in the folder forest. ParentID is nil for roots.
type Category struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	ParentID  *string `json:"parentId"`
	CreatedAt int64   `json:"createdAt"` // epoch millis
}

// IsRoot reports whether the category has no parent.
func (c Category) IsRoot() bool {
	return c.ParentID == nil
}

// HasParent reports whether the category's parent is id.
func (c Category) HasParent(id string) bool {
	return c.ParentID != nil && *c.ParentID == id
}

// NewBookmark holds the caller-supplied fields of a bookmark.
type NewBookmark struct {
	Title      string
	URL        string
	CategoryID string
}

// NewCategory holds the caller-supplied fields of a category.
type NewCategory struct {
	Name     string
	ParentID *string
}

// BookmarkPatch is a partial update. Nil fields are left unchanged.
type BookmarkPatch struct {
	Title      *string
	URL        *string
	CategoryID *string
}

// CategoryPatch is a partial update. Nil fields are left unchanged.
// A non-nil empty ParentID moves the category to the root.
type CategoryPatch struct {
	Name     *string
	ParentID *string
}

// Data is the full bookmark/category payload used for JSON export and import.
type Data struct {
	Bookmarks  []Bookmark `json:"bookmarks"`
	Categories []Category `json:"categories"`
}

// StringPtr returns a pointer to s. Handy for patches and parent ids.
func StringPtr(s string) *string {
	return &s
}

func cloneBookmarks(in []Bookmark) []Bookmark {
	if in == nil {
		return nil
	}
	out := make([]Bookmark, len(in))
	copy(out, in)
	return out
}

func cloneCategories(in []Category) []Category {
	if in == nil {
		return nil
	}
	out := make([]Category, len(in))
	for i, c := range in {
		out[i] = cloneCategory(c)
	}
	return out
}

func cloneCategory(c Category) Category {
	if c.ParentID != nil {
		p := *c.ParentID
		c.ParentID = &p
	}
	return c
}
