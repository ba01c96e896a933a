package shelf

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// DefaultCategoryName names the category synthesized when none exist.
const DefaultCategoryName = "My Bookmarks"

// Repository owns the bookmark and category collections. It is the single
// source of truth for a session: every mutation is applied in memory and then
// persisted to the Store before the call returns.
//
// A Repository is not safe for concurrent use; callers that share one across
// goroutines must serialize access.
type Repository struct {
	store       Store
	logger      Logger
	clock       Clock
	idgen       IDGenerator
	defaultName string

	bookmarks  []Bookmark
	categories []Category
}

// Option configures a Repository.
type Option func(*Repository)

// WithDefaultCategoryName overrides the name of synthesized default categories.
func WithDefaultCategoryName(name string) Option {
	return func(r *Repository) {
		if name != "" {
			r.defaultName = name
		}
	}
}

// Open loads both collections from store. A missing or undecodable collection
// starts empty. If no category exists afterwards, a default category is
// created and persisted immediately.
func Open(store Store, logger Logger, clock Clock, idgen IDGenerator, opts ...Option) (*Repository, error) {
	r := &Repository{
		store:       store,
		logger:      logger,
		clock:       clock,
		idgen:       idgen,
		defaultName: DefaultCategoryName,
	}
	for _, opt := range opts {
		opt(r)
	}

	var err error
	if r.bookmarks, err = load[Bookmark](store, BookmarksKey, logger); err != nil {
		return nil, err
	}
	if r.categories, err = load[Category](store, CategoriesKey, logger); err != nil {
		return nil, err
	}

	if len(r.categories) == 0 {
		prev := r.snapshot()
		r.categories = append(r.categories, r.newDefaultCategory())
		if err := r.commit(prev, CategoriesKey); err != nil {
			return nil, fmt.Errorf("creating default category: %w", err)
		}
		r.logger.Info("default category created", "id", r.categories[0].ID, "name", r.categories[0].Name)
	}

	r.logger.Debug("repository loaded", "bookmarks", len(r.bookmarks), "categories", len(r.categories))
	return r, nil
}

func load[T any](store Store, key string, logger Logger) ([]T, error) {
	raw, err := store.Get(key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("%w: reading %s: %w", ErrStorage, key, err)
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		logger.Warn("stored collection is corrupt, starting empty", "key", key, "error", err)
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Bookmark operations

// AddBookmark creates a bookmark with a fresh id and the current timestamp.
func (r *Repository) AddBookmark(in NewBookmark) (Bookmark, error) {
	b := Bookmark{
		ID:         r.idgen.New(),
		Title:      in.Title,
		URL:        in.URL,
		CategoryID: in.CategoryID,
		CreatedAt:  Millis(r.clock),
	}

	prev := r.snapshot()
	r.bookmarks = append(r.bookmarks, b)
	if err := r.commit(prev, BookmarksKey); err != nil {
		return Bookmark{}, err
	}

	r.logger.Info("bookmark added", "id", b.ID, "category", b.CategoryID)
	return b, nil
}

// UpdateBookmark merges patch into the bookmark with the given id.
// The id and creation time never change.
func (r *Repository) UpdateBookmark(id string, patch BookmarkPatch) error {
	i := r.bookmarkIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrBookmarkNotFound, id)
	}

	prev := r.snapshot()
	b := &r.bookmarks[i]
	if patch.Title != nil {
		b.Title = *patch.Title
	}
	if patch.URL != nil {
		b.URL = *patch.URL
	}
	if patch.CategoryID != nil {
		b.CategoryID = *patch.CategoryID
	}
	if err := r.commit(prev, BookmarksKey); err != nil {
		return err
	}

	r.logger.Info("bookmark updated", "id", id)
	return nil
}

// DeleteBookmark removes the bookmark with the given id.
func (r *Repository) DeleteBookmark(id string) error {
	i := r.bookmarkIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrBookmarkNotFound, id)
	}

	prev := r.snapshot()
	r.bookmarks = slices.Delete(r.bookmarks, i, i+1)
	if err := r.commit(prev, BookmarksKey); err != nil {
		return err
	}

	r.logger.Info("bookmark deleted", "id", id)
	return nil
}

// Category operations

// AddCategory creates a category with a fresh id and the current timestamp.
func (r *Repository) AddCategory(in NewCategory) (Category, error) {
	c := Category{
		ID:        r.idgen.New(),
		Name:      in.Name,
		CreatedAt: Millis(r.clock),
	}
	if in.ParentID != nil {
		c.ParentID = StringPtr(*in.ParentID)
	}

	prev := r.snapshot()
	r.categories = append(r.categories, c)
	if err := r.commit(prev, CategoriesKey); err != nil {
		return Category{}, err
	}

	r.logger.Info("category added", "id", c.ID, "name", c.Name)
	return cloneCategory(c), nil
}

// UpdateCategory merges patch into the category with the given id.
// Cycles are not checked here; callers moving a category should consult
// CreatesCycle first.
func (r *Repository) UpdateCategory(id string, patch CategoryPatch) error {
	i := r.categoryIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrCategoryNotFound, id)
	}

	prev := r.snapshot()
	c := &r.categories[i]
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.ParentID != nil {
		if *patch.ParentID == "" {
			c.ParentID = nil
		} else {
			c.ParentID = StringPtr(*patch.ParentID)
		}
	}
	if err := r.commit(prev, CategoriesKey); err != nil {
		return err
	}

	r.logger.Info("category updated", "id", id)
	return nil
}

// DeleteCategory removes a leaf category. Bookmarks filed under it move to the
// first remaining category. Categories with children and the last remaining
// category cannot be deleted.
func (r *Repository) DeleteCategory(id string) error {
	i := r.categoryIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrCategoryNotFound, id)
	}
	if slices.ContainsFunc(r.categories, func(c Category) bool { return c.ID != id && c.HasParent(id) }) {
		return fmt.Errorf("%w: %s", ErrCategoryHasChildren, id)
	}
	if len(r.categories) <= 1 {
		return ErrLastCategory
	}

	fallback := ""
	for _, c := range r.categories {
		if c.ID != id {
			fallback = c.ID
			break
		}
	}

	prev := r.snapshot()
	moved := 0
	for j := range r.bookmarks {
		if r.bookmarks[j].CategoryID == id {
			r.bookmarks[j].CategoryID = fallback
			moved++
		}
	}
	r.categories = slices.Delete(r.categories, i, i+1)
	if err := r.commit(prev, CategoriesKey, BookmarksKey); err != nil {
		return err
	}

	r.logger.Info("category deleted", "id", id, "fallback", fallback, "moved_bookmarks", moved)
	return nil
}

// Import and export

// ExportData returns copies of both collections.
func (r *Repository) ExportData() Data {
	return Data{
		Bookmarks:  cloneBookmarks(r.bookmarks),
		Categories: cloneCategories(r.categories),
	}
}

// ImportData replaces both collections wholesale. The payload must pass the
// shape check; an empty category list gets a synthesized default category.
func (r *Repository) ImportData(d Data) error {
	if err := d.Validate(); err != nil {
		return err
	}

	bookmarks := cloneBookmarks(d.Bookmarks)
	categories := cloneCategories(d.Categories)
	if len(categories) == 0 {
		categories = append(categories, r.newDefaultCategory())
	}

	prev := r.snapshot()
	r.bookmarks = bookmarks
	r.categories = categories
	if err := r.commit(prev, BookmarksKey, CategoriesKey); err != nil {
		return err
	}

	r.logger.Info("data imported", "bookmarks", len(bookmarks), "categories", len(categories))
	return nil
}

// MergeData upserts both collections by id. Existing entries keep their
// position; unknown entries are appended in payload order.
func (r *Repository) MergeData(d Data) error {
	if err := d.Validate(); err != nil {
		return err
	}

	prev := r.snapshot()
	added, updated := 0, 0
	for _, b := range d.Bookmarks {
		if i := r.bookmarkIndex(b.ID); i >= 0 {
			r.bookmarks[i] = b
			updated++
		} else {
			r.bookmarks = append(r.bookmarks, b)
			added++
		}
	}
	for _, c := range d.Categories {
		c = cloneCategory(c)
		if i := r.categoryIndex(c.ID); i >= 0 {
			r.categories[i] = c
			updated++
		} else {
			r.categories = append(r.categories, c)
			added++
		}
	}
	if err := r.commit(prev, BookmarksKey, CategoriesKey); err != nil {
		return err
	}

	r.logger.Info("data merged", "added", added, "updated", updated)
	return nil
}

// Flush re-persists both collections.
func (r *Repository) Flush() error {
	if err := r.saveKey(BookmarksKey); err != nil {
		return err
	}
	return r.saveKey(CategoriesKey)
}

// Close flushes the collections. The Store itself belongs to the caller.
func (r *Repository) Close() error {
	return r.Flush()
}

// persistence helpers

type snapshot struct {
	bookmarks  []Bookmark
	categories []Category
}

func (r *Repository) snapshot() snapshot {
	return snapshot{
		bookmarks:  cloneBookmarks(r.bookmarks),
		categories: cloneCategories(r.categories),
	}
}

// commit persists the given keys in order. If any write fails, memory is
// restored to prev and keys already written are rewritten from prev so that
// memory and storage stay in agreement.
func (r *Repository) commit(prev snapshot, keys ...string) error {
	for i, key := range keys {
		err := r.saveKey(key)
		if err == nil {
			continue
		}

		r.bookmarks, r.categories = prev.bookmarks, prev.categories
		for _, done := range keys[:i] {
			if rerr := r.saveKey(done); rerr != nil {
				r.logger.Error("restoring collection after failed write", "key", done, "error", rerr)
			}
		}
		r.logger.Error("write failed, change rolled back", "key", key, "error", err)
		return err
	}
	return nil
}

func (r *Repository) saveKey(key string) error {
	var v any
	switch key {
	case BookmarksKey:
		v = r.bookmarks
	case CategoriesKey:
		v = r.categories
	default:
		return fmt.Errorf("unknown collection key: %s", key)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := r.store.Set(key, data); err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrStorage, key, err)
	}
	return nil
}

func (r *Repository) newDefaultCategory() Category {
	return Category{
		ID:        r.idgen.New(),
		Name:      r.defaultName,
		ParentID:  nil,
		CreatedAt: Millis(r.clock),
	}
}

func (r *Repository) bookmarkIndex(id string) int {
	return slices.IndexFunc(r.bookmarks, func(b Bookmark) bool { return b.ID == id })
}

func (r *Repository) categoryIndex(id string) int {
	return slices.IndexFunc(r.categories, func(c Category) bool { return c.ID == id })
}
