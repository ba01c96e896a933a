package shelf_test

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
	"time"

	"shelf-go/internal/shelf"
	"shelf-go/internal/testutil"
)

type fixture struct {
	repo  *shelf.Repository
	store shelf.Store
	clock *testutil.StubClock
	ids   *testutil.StubIDGenerator
	log   *testutil.RecordingLogger
}

func open(t *testing.T, store shelf.Store, opts ...shelf.Option) fixture {
	t.Helper()
	f := fixture{
		store: store,
		clock: testutil.FixedClock(),
		ids:   testutil.NewStubIDGenerator(),
		log:   testutil.NewRecordingLogger(),
	}
	repo, err := shelf.Open(store, f.log, f.clock, f.ids, opts...)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	f.repo = repo
	return f
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	return open(t, testutil.NewTestStore(t))
}

// seed writes raw collections to store before the repository opens it.
func seed(t *testing.T, store shelf.Store, bookmarks []shelf.Bookmark, categories []shelf.Category) {
	t.Helper()
	for key, v := range map[string]any{shelf.BookmarksKey: bookmarks, shelf.CategoriesKey: categories} {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("json.Marshal() error = %v", err)
		}
		if err := store.Set(key, data); err != nil {
			t.Fatalf("Set(%q) error = %v", key, err)
		}
	}
}

func stored[T any](t *testing.T, store shelf.Store, key string) []T {
	t.Helper()
	data, err := store.Get(key)
	if err != nil {
		t.Fatalf("Get(%q) error = %v", key, err)
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("stored %s is not valid JSON: %v", key, err)
	}
	return out
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = id(it)
	}
	return out
}

func bookmarkIDs(bs []shelf.Bookmark) []string { return ids(bs, func(b shelf.Bookmark) string { return b.ID }) }
func categoryIDs(cs []shelf.Category) []string { return ids(cs, func(c shelf.Category) string { return c.ID }) }

var fixedMillis = testutil.FixedTime.UnixMilli()

func TestOpen(t *testing.T) {
	t.Run("empty store gets a persisted default category", func(t *testing.T) {
		f := newFixture(t)

		cats := f.repo.Categories()
		if len(cats) != 1 {
			t.Fatalf("len(Categories()) = %d, want 1", len(cats))
		}
		want := shelf.Category{ID: "id-1", Name: shelf.DefaultCategoryName, CreatedAt: fixedMillis}
		if cats[0] != want {
			t.Errorf("default category = %+v, want %+v", cats[0], want)
		}
		if got := stored[shelf.Category](t, f.store, shelf.CategoriesKey); len(got) != 1 || got[0].ID != "id-1" {
			t.Errorf("stored categories = %+v, want the default category", got)
		}
		if got := f.repo.DefaultCategoryID(); got != "id-1" {
			t.Errorf("DefaultCategoryID() = %q, want %q", got, "id-1")
		}
	})

	t.Run("custom default name", func(t *testing.T) {
		f := open(t, testutil.NewTestStore(t), shelf.WithDefaultCategoryName("我的书签"))
		if got := f.repo.Categories()[0].Name; got != "我的书签" {
			t.Errorf("default name = %q, want %q", got, "我的书签")
		}
	})

	t.Run("existing data is loaded unchanged", func(t *testing.T) {
		store := testutil.NewTestStore(t)
		seed(t, store,
			[]shelf.Bookmark{{ID: "b1", Title: "Go", URL: "https://go.dev", CategoryID: "c1", CreatedAt: 5}},
			[]shelf.Category{{ID: "c1", Name: "Dev", CreatedAt: 1}},
		)

		f := open(t, store)
		if got := bookmarkIDs(f.repo.Bookmarks()); !slices.Equal(got, []string{"b1"}) {
			t.Errorf("Bookmarks() ids = %v, want [b1]", got)
		}
		if got := categoryIDs(f.repo.Categories()); !slices.Equal(got, []string{"c1"}) {
			t.Errorf("Categories() ids = %v, want [c1]", got)
		}
		if n := f.ids.Issued(); n != 0 {
			t.Errorf("ids issued on load = %d, want 0", n)
		}
	})

	t.Run("corrupt collections start empty", func(t *testing.T) {
		store := testutil.NewTestStore(t)
		store.Set(shelf.BookmarksKey, []byte("{not json"))
		store.Set(shelf.CategoriesKey, []byte(`{"an":"object"}`))

		f := open(t, store)
		if n := len(f.repo.Bookmarks()); n != 0 {
			t.Errorf("len(Bookmarks()) = %d, want 0", n)
		}
		if n := len(f.repo.Categories()); n != 1 {
			t.Errorf("len(Categories()) = %d, want 1 (synthesized default)", n)
		}
		if n := len(f.log.Entries("warn")); n != 2 {
			t.Errorf("warn entries = %d, want 2\n%s", n, f.log)
		}
	})

	t.Run("read failure aborts", func(t *testing.T) {
		store := testutil.NewFailingStore(testutil.NewTestStore(t))
		store.FailGet(shelf.CategoriesKey)

		_, err := shelf.Open(store, shelf.NewNopLogger(), testutil.FixedClock(), testutil.NewStubIDGenerator())
		if !errors.Is(err, shelf.ErrStorage) {
			t.Errorf("Open() error = %v, want %v", err, shelf.ErrStorage)
		}
		if store.Sets() != 0 {
			t.Errorf("Open() wrote %d values to an unreadable store", store.Sets())
		}
	})

	t.Run("default category write failure", func(t *testing.T) {
		store := testutil.NewFailingStore(testutil.NewTestStore(t))
		store.FailSet()

		_, err := shelf.Open(store, shelf.NewNopLogger(), testutil.FixedClock(), testutil.NewStubIDGenerator())
		if !errors.Is(err, shelf.ErrStorage) {
			t.Errorf("Open() error = %v, want %v", err, shelf.ErrStorage)
		}
	})
}

func TestRepository_Bookmarks(t *testing.T) {
	t.Run("add assigns id and timestamp and persists", func(t *testing.T) {
		f := newFixture(t)
		cat := f.repo.DefaultCategoryID()

		b, err := f.repo.AddBookmark(shelf.NewBookmark{Title: "Go", URL: "https://go.dev", CategoryID: cat})
		if err != nil {
			t.Fatalf("AddBookmark() error = %v", err)
		}
		want := shelf.Bookmark{ID: "id-2", Title: "Go", URL: "https://go.dev", CategoryID: cat, CreatedAt: fixedMillis}
		if b != want {
			t.Errorf("AddBookmark() = %+v, want %+v", b, want)
		}

		if got := stored[shelf.Bookmark](t, f.store, shelf.BookmarksKey); len(got) != 1 || got[0] != want {
			t.Errorf("stored bookmarks = %+v, want [%+v]", got, want)
		}

		// A fresh repository over the same store sees the bookmark.
		reopened := open(t, f.store)
		if got, ok := reopened.repo.Bookmark("id-2"); !ok || got != want {
			t.Errorf("reopened Bookmark() = %+v, %v", got, ok)
		}
	})

	t.Run("update merges patch", func(t *testing.T) {
		f := newFixture(t)
		b, _ := f.repo.AddBookmark(shelf.NewBookmark{Title: "Old", URL: "https://old.example", CategoryID: "id-1"})

		err := f.repo.UpdateBookmark(b.ID, shelf.BookmarkPatch{Title: shelf.StringPtr("New")})
		if err != nil {
			t.Fatalf("UpdateBookmark() error = %v", err)
		}

		got, _ := f.repo.Bookmark(b.ID)
		want := b
		want.Title = "New"
		if got != want {
			t.Errorf("after update = %+v, want %+v", got, want)
		}
	})

	t.Run("update and delete unknown id", func(t *testing.T) {
		f := newFixture(t)
		if err := f.repo.UpdateBookmark("nope", shelf.BookmarkPatch{}); !errors.Is(err, shelf.ErrBookmarkNotFound) {
			t.Errorf("UpdateBookmark() error = %v, want %v", err, shelf.ErrBookmarkNotFound)
		}
		if err := f.repo.DeleteBookmark("nope"); !errors.Is(err, shelf.ErrBookmarkNotFound) {
			t.Errorf("DeleteBookmark() error = %v, want %v", err, shelf.ErrBookmarkNotFound)
		}
	})

	t.Run("delete removes only the target", func(t *testing.T) {
		f := newFixture(t)
		a, _ := f.repo.AddBookmark(shelf.NewBookmark{Title: "A"})
		b, _ := f.repo.AddBookmark(shelf.NewBookmark{Title: "B"})

		if err := f.repo.DeleteBookmark(a.ID); err != nil {
			t.Fatalf("DeleteBookmark() error = %v", err)
		}
		if got := bookmarkIDs(f.repo.Bookmarks()); !slices.Equal(got, []string{b.ID}) {
			t.Errorf("Bookmarks() ids = %v, want [%s]", got, b.ID)
		}
		if got := bookmarkIDs(stored[shelf.Bookmark](t, f.store, shelf.BookmarksKey)); !slices.Equal(got, []string{b.ID}) {
			t.Errorf("stored ids = %v, want [%s]", got, b.ID)
		}
	})

	t.Run("AllBookmarks is newest first and stable", func(t *testing.T) {
		f := newFixture(t)
		first, _ := f.repo.AddBookmark(shelf.NewBookmark{Title: "first"})
		tie, _ := f.repo.AddBookmark(shelf.NewBookmark{Title: "same instant"})
		f.clock.Advance(time.Second)
		newest, _ := f.repo.AddBookmark(shelf.NewBookmark{Title: "newest"})

		want := []string{newest.ID, first.ID, tie.ID}
		if got := bookmarkIDs(f.repo.AllBookmarks()); !slices.Equal(got, want) {
			t.Errorf("AllBookmarks() ids = %v, want %v", got, want)
		}
		// Storage order is untouched.
		if got := bookmarkIDs(f.repo.Bookmarks()); !slices.Equal(got, []string{first.ID, tie.ID, newest.ID}) {
			t.Errorf("Bookmarks() ids = %v", got)
		}
	})

	t.Run("BookmarksByCategory filters", func(t *testing.T) {
		f := newFixture(t)
		work, _ := f.repo.AddCategory(shelf.NewCategory{Name: "Work"})
		inWork, _ := f.repo.AddBookmark(shelf.NewBookmark{Title: "jira", CategoryID: work.ID})
		f.repo.AddBookmark(shelf.NewBookmark{Title: "home", CategoryID: "id-1"})

		if got := bookmarkIDs(f.repo.BookmarksByCategory(work.ID)); !slices.Equal(got, []string{inWork.ID}) {
			t.Errorf("BookmarksByCategory() ids = %v, want [%s]", got, inWork.ID)
		}
		if got := f.repo.BookmarksByCategory("missing"); got == nil || len(got) != 0 {
			t.Errorf("BookmarksByCategory(missing) = %#v, want empty slice", got)
		}
	})
}

func TestRepository_Categories(t *testing.T) {
	t.Run("add, rename and move", func(t *testing.T) {
		f := newFixture(t)
		root, _ := f.repo.AddCategory(shelf.NewCategory{Name: "Dev"})
		child, err := f.repo.AddCategory(shelf.NewCategory{Name: "Go", ParentID: shelf.StringPtr(root.ID)})
		if err != nil {
			t.Fatalf("AddCategory() error = %v", err)
		}
		if !child.HasParent(root.ID) {
			t.Fatalf("child parent = %v, want %s", child.ParentID, root.ID)
		}

		if err := f.repo.UpdateCategory(child.ID, shelf.CategoryPatch{Name: shelf.StringPtr("Golang")}); err != nil {
			t.Fatalf("UpdateCategory(rename) error = %v", err)
		}
		got, _ := f.repo.Category(child.ID)
		if got.Name != "Golang" || !got.HasParent(root.ID) {
			t.Errorf("after rename = %+v", got)
		}

		if err := f.repo.UpdateCategory(child.ID, shelf.CategoryPatch{ParentID: shelf.StringPtr("")}); err != nil {
			t.Fatalf("UpdateCategory(move to root) error = %v", err)
		}
		got, _ = f.repo.Category(child.ID)
		if !got.IsRoot() {
			t.Errorf("after move ParentID = %v, want nil", *got.ParentID)
		}

		data, _ := f.store.Get(shelf.CategoriesKey)
		if !strings.Contains(string(data), `"parentId":null`) {
			t.Errorf("stored categories should serialize root parent as null: %s", data)
		}
	})

	t.Run("update unknown id", func(t *testing.T) {
		f := newFixture(t)
		err := f.repo.UpdateCategory("nope", shelf.CategoryPatch{Name: shelf.StringPtr("x")})
		if !errors.Is(err, shelf.ErrCategoryNotFound) {
			t.Errorf("UpdateCategory() error = %v, want %v", err, shelf.ErrCategoryNotFound)
		}
	})

	t.Run("ChildCategories", func(t *testing.T) {
		f := newFixture(t)
		dev, _ := f.repo.AddCategory(shelf.NewCategory{Name: "Dev"})
		goCat, _ := f.repo.AddCategory(shelf.NewCategory{Name: "Go", ParentID: &dev.ID})

		if got := categoryIDs(f.repo.ChildCategories(nil)); !slices.Equal(got, []string{"id-1", dev.ID}) {
			t.Errorf("ChildCategories(nil) = %v", got)
		}
		if got := categoryIDs(f.repo.ChildCategories(&dev.ID)); !slices.Equal(got, []string{goCat.ID}) {
			t.Errorf("ChildCategories(dev) = %v", got)
		}
	})

	t.Run("returned categories do not alias repository state", func(t *testing.T) {
		f := newFixture(t)
		dev, _ := f.repo.AddCategory(shelf.NewCategory{Name: "Dev"})
		child, _ := f.repo.AddCategory(shelf.NewCategory{Name: "Go", ParentID: &dev.ID})

		exported := f.repo.ExportData()
		for i := range exported.Categories {
			if exported.Categories[i].ParentID != nil {
				*exported.Categories[i].ParentID = "hijacked"
			}
		}

		got, _ := f.repo.Category(child.ID)
		if !got.HasParent(dev.ID) {
			t.Errorf("ParentID changed through exported copy: %v", *got.ParentID)
		}
	})
}

func TestRepository_DeleteCategory(t *testing.T) {
	t.Run("bookmarks move to the first remaining category", func(t *testing.T) {
		f := newFixture(t)
		def := f.repo.DefaultCategoryID()
		work, _ := f.repo.AddCategory(shelf.NewCategory{Name: "Work"})
		b1, _ := f.repo.AddBookmark(shelf.NewBookmark{Title: "a", CategoryID: work.ID})
		b2, _ := f.repo.AddBookmark(shelf.NewBookmark{Title: "b", CategoryID: work.ID})

		if err := f.repo.DeleteCategory(work.ID); err != nil {
			t.Fatalf("DeleteCategory() error = %v", err)
		}

		if _, ok := f.repo.Category(work.ID); ok {
			t.Error("deleted category still present")
		}
		for _, id := range []string{b1.ID, b2.ID} {
			b, _ := f.repo.Bookmark(id)
			if b.CategoryID != def {
				t.Errorf("bookmark %s CategoryID = %q, want %q", id, b.CategoryID, def)
			}
		}
		for _, b := range stored[shelf.Bookmark](t, f.store, shelf.BookmarksKey) {
			if b.CategoryID != def {
				t.Errorf("stored bookmark %s CategoryID = %q, want %q", b.ID, b.CategoryID, def)
			}
		}
		if got := categoryIDs(stored[shelf.Category](t, f.store, shelf.CategoriesKey)); !slices.Equal(got, []string{def}) {
			t.Errorf("stored categories = %v, want [%s]", got, def)
		}
	})

	t.Run("deleting the first category falls back to the next one", func(t *testing.T) {
		f := newFixture(t)
		def := f.repo.DefaultCategoryID()
		second, _ := f.repo.AddCategory(shelf.NewCategory{Name: "Second"})
		f.repo.AddCategory(shelf.NewCategory{Name: "Third"})
		b, _ := f.repo.AddBookmark(shelf.NewBookmark{Title: "x", CategoryID: def})

		if err := f.repo.DeleteCategory(def); err != nil {
			t.Fatalf("DeleteCategory() error = %v", err)
		}
		got, _ := f.repo.Bookmark(b.ID)
		if got.CategoryID != second.ID {
			t.Errorf("CategoryID = %q, want %q", got.CategoryID, second.ID)
		}
		if f.repo.DefaultCategoryID() != second.ID {
			t.Errorf("DefaultCategoryID() = %q, want %q", f.repo.DefaultCategoryID(), second.ID)
		}
	})

	tests := []struct {
		name    string
		setup   func(f fixture) string
		wantErr error
	}{
		{
			name: "category with children",
			setup: func(f fixture) string {
				parent, _ := f.repo.AddCategory(shelf.NewCategory{Name: "Parent"})
				f.repo.AddCategory(shelf.NewCategory{Name: "Child", ParentID: &parent.ID})
				return parent.ID
			},
			wantErr: shelf.ErrCategoryHasChildren,
		},
		{
			name:    "last category",
			setup:   func(f fixture) string { return f.repo.DefaultCategoryID() },
			wantErr: shelf.ErrLastCategory,
		},
		{
			name:    "unknown category",
			setup:   func(f fixture) string { return "nope" },
			wantErr: shelf.ErrCategoryNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			id := tt.setup(f)
			before := f.repo.ExportData()

			if err := f.repo.DeleteCategory(id); !errors.Is(err, tt.wantErr) {
				t.Fatalf("DeleteCategory() error = %v, want %v", err, tt.wantErr)
			}
			after := f.repo.ExportData()
			if !slices.Equal(categoryIDs(after.Categories), categoryIDs(before.Categories)) {
				t.Errorf("categories changed on failed delete: %v -> %v",
					categoryIDs(before.Categories), categoryIDs(after.Categories))
			}
		})
	}
}

func TestRepository_DeleteSelfParentedCategory(t *testing.T) {
	store := testutil.NewTestStore(t)
	seed(t, store,
		[]shelf.Bookmark{{ID: "b1", Title: "x", CategoryID: "s"}},
		[]shelf.Category{
			{ID: "root", Name: "Root"},
			{ID: "s", Name: "Self", ParentID: shelf.StringPtr("s")},
		},
	)
	f := open(t, store)

	if err := f.repo.DeleteCategory("s"); err != nil {
		t.Fatalf("DeleteCategory() error = %v", err)
	}
	if got := categoryIDs(f.repo.Categories()); !slices.Equal(got, []string{"root"}) {
		t.Errorf("Categories() ids = %v, want [root]", got)
	}
	if b, _ := f.repo.Bookmark("b1"); b.CategoryID != "root" {
		t.Errorf("bookmark CategoryID = %q, want root", b.CategoryID)
	}
}

func TestRepository_CategoriesNeverEmpty(t *testing.T) {
	f := newFixture(t)
	rng := rand.New(rand.NewPCG(42, 7))

	pick := func() string {
		cats := f.repo.Categories()
		return cats[rng.IntN(len(cats))].ID
	}

	ops := []struct {
		name string
		run  func() error
	}{
		{"add root category", func() error {
			_, err := f.repo.AddCategory(shelf.NewCategory{Name: "root"})
			return err
		}},
		{"add child category", func() error {
			parent := pick()
			_, err := f.repo.AddCategory(shelf.NewCategory{Name: "child", ParentID: &parent})
			return err
		}},
		{"rename category", func() error {
			return f.repo.UpdateCategory(pick(), shelf.CategoryPatch{Name: shelf.StringPtr("renamed")})
		}},
		{"move category to root", func() error {
			return f.repo.UpdateCategory(pick(), shelf.CategoryPatch{ParentID: shelf.StringPtr("")})
		}},
		{"delete category", func() error { return f.repo.DeleteCategory(pick()) }},
		{"delete category", func() error { return f.repo.DeleteCategory(pick()) }},
		{"add bookmark", func() error {
			_, err := f.repo.AddBookmark(shelf.NewBookmark{Title: "b", CategoryID: pick()})
			return err
		}},
		{"import without categories", func() error {
			return f.repo.ImportData(shelf.Data{Bookmarks: []shelf.Bookmark{}, Categories: []shelf.Category{}})
		}},
		{"merge nothing", func() error {
			return f.repo.MergeData(shelf.Data{Bookmarks: []shelf.Bookmark{}, Categories: []shelf.Category{}})
		}},
	}

	allowed := []error{shelf.ErrCategoryHasChildren, shelf.ErrLastCategory}
	for step := range 500 {
		op := ops[rng.IntN(len(ops))]
		err := op.run()
		if err != nil && !slices.ContainsFunc(allowed, func(e error) bool { return errors.Is(err, e) }) {
			t.Fatalf("step %d (%s): unexpected error %v", step, op.name, err)
		}

		if n := len(f.repo.Categories()); n < 1 {
			t.Fatalf("step %d (%s): %d categories in memory", step, op.name, n)
		}
		if n := len(stored[shelf.Category](t, f.store, shelf.CategoriesKey)); n < 1 {
			t.Fatalf("step %d (%s): %d categories stored", step, op.name, n)
		}
		if f.repo.DefaultCategoryID() == "" {
			t.Fatalf("step %d (%s): no default category", step, op.name)
		}
	}
}

func TestRepository_StorageFailureRollsBack(t *testing.T) {
	t.Run("add bookmark", func(t *testing.T) {
		store := testutil.NewFailingStore(testutil.NewTestStore(t))
		f := open(t, store)
		store.FailSet(shelf.BookmarksKey)

		_, err := f.repo.AddBookmark(shelf.NewBookmark{Title: "lost"})
		if !errors.Is(err, shelf.ErrStorage) {
			t.Fatalf("AddBookmark() error = %v, want %v", err, shelf.ErrStorage)
		}
		if !errors.Is(err, testutil.ErrInjected) {
			t.Errorf("AddBookmark() error = %v, should wrap the backend error", err)
		}
		if n := len(f.repo.Bookmarks()); n != 0 {
			t.Errorf("len(Bookmarks()) = %d after failed add, want 0", n)
		}
		if len(f.log.Entries("error")) == 0 {
			t.Error("failed write was not logged")
		}
	})

	t.Run("update category", func(t *testing.T) {
		store := testutil.NewFailingStore(testutil.NewTestStore(t))
		f := open(t, store)
		id := f.repo.DefaultCategoryID()
		store.FailSet(shelf.CategoriesKey)

		err := f.repo.UpdateCategory(id, shelf.CategoryPatch{Name: shelf.StringPtr("renamed")})
		if !errors.Is(err, shelf.ErrStorage) {
			t.Fatalf("UpdateCategory() error = %v, want %v", err, shelf.ErrStorage)
		}
		if got, _ := f.repo.Category(id); got.Name != shelf.DefaultCategoryName {
			t.Errorf("Name = %q after failed update, want %q", got.Name, shelf.DefaultCategoryName)
		}
	})

	t.Run("delete category restores both collections", func(t *testing.T) {
		store := testutil.NewFailingStore(testutil.NewTestStore(t))
		f := open(t, store)
		work, _ := f.repo.AddCategory(shelf.NewCategory{Name: "Work"})
		b, _ := f.repo.AddBookmark(shelf.NewBookmark{Title: "x", CategoryID: work.ID})

		// Categories are written first; failing the bookmark write forces the
		// already-written categories to be restored.
		store.FailSet(shelf.BookmarksKey)
		if err := f.repo.DeleteCategory(work.ID); !errors.Is(err, shelf.ErrStorage) {
			t.Fatalf("DeleteCategory() error = %v, want %v", err, shelf.ErrStorage)
		}

		if _, ok := f.repo.Category(work.ID); !ok {
			t.Error("category missing from memory after failed delete")
		}
		if got, _ := f.repo.Bookmark(b.ID); got.CategoryID != work.ID {
			t.Errorf("bookmark CategoryID = %q after failed delete, want %q", got.CategoryID, work.ID)
		}
		if got := categoryIDs(stored[shelf.Category](t, store, shelf.CategoriesKey)); !slices.Contains(got, work.ID) {
			t.Errorf("stored categories = %v, want %s restored", got, work.ID)
		}
	})

	t.Run("import", func(t *testing.T) {
		store := testutil.NewFailingStore(testutil.NewTestStore(t))
		f := open(t, store)
		before := f.repo.ExportData()
		store.FailSet(shelf.CategoriesKey)

		err := f.repo.ImportData(shelf.Data{
			Bookmarks:  []shelf.Bookmark{{ID: "b9", Title: "new"}},
			Categories: []shelf.Category{{ID: "c9", Name: "new"}},
		})
		if !errors.Is(err, shelf.ErrStorage) {
			t.Fatalf("ImportData() error = %v, want %v", err, shelf.ErrStorage)
		}
		after := f.repo.ExportData()
		if len(after.Bookmarks) != len(before.Bookmarks) || after.Categories[0].ID != before.Categories[0].ID {
			t.Errorf("state changed after failed import: %+v", after)
		}
		if got := stored[shelf.Bookmark](t, store, shelf.BookmarksKey); len(got) != 0 {
			t.Errorf("stored bookmarks = %+v, want restored empty list", got)
		}
	})
}

func TestRepository_CategoryPath(t *testing.T) {
	f := newFixture(t)
	a, _ := f.repo.AddCategory(shelf.NewCategory{Name: "A"})
	b, _ := f.repo.AddCategory(shelf.NewCategory{Name: "B", ParentID: &a.ID})
	c, _ := f.repo.AddCategory(shelf.NewCategory{Name: "C", ParentID: &b.ID})

	tests := []struct {
		name string
		id   string
		want []string
	}{
		{name: "root", id: a.ID, want: []string{a.ID}},
		{name: "nested", id: c.ID, want: []string{a.ID, b.ID, c.ID}},
		{name: "unknown", id: "nope", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := categoryIDs(f.repo.CategoryPath(tt.id)); !slices.Equal(got, tt.want) {
				t.Errorf("CategoryPath(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestRepository_CategoryPathCycle(t *testing.T) {
	store := testutil.NewTestStore(t)
	seed(t, store, []shelf.Bookmark{}, []shelf.Category{
		{ID: "x", Name: "X", ParentID: shelf.StringPtr("y")},
		{ID: "y", Name: "Y", ParentID: shelf.StringPtr("z")},
		{ID: "z", Name: "Z", ParentID: shelf.StringPtr("x")},
		{ID: "self", Name: "Self", ParentID: shelf.StringPtr("self")},
	})
	f := open(t, store)

	tests := []struct {
		id   string
		want []string
	}{
		{id: "x", want: []string{"z", "y", "x"}},
		{id: "y", want: []string{"x", "z", "y"}},
		{id: "self", want: []string{"self"}},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := categoryIDs(f.repo.CategoryPath(tt.id)); !slices.Equal(got, tt.want) {
				t.Errorf("CategoryPath(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestRepository_CreatesCycle(t *testing.T) {
	f := newFixture(t)
	a, _ := f.repo.AddCategory(shelf.NewCategory{Name: "A"})
	b, _ := f.repo.AddCategory(shelf.NewCategory{Name: "B", ParentID: &a.ID})
	c, _ := f.repo.AddCategory(shelf.NewCategory{Name: "C"})

	tests := []struct {
		name      string
		id        string
		newParent string
		want      bool
	}{
		{name: "onto itself", id: a.ID, newParent: a.ID, want: true},
		{name: "onto own descendant", id: a.ID, newParent: b.ID, want: true},
		{name: "onto unrelated", id: a.ID, newParent: c.ID, want: false},
		{name: "child onto other root", id: b.ID, newParent: c.ID, want: false},
		{name: "to root", id: b.ID, newParent: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.repo.CreatesCycle(tt.id, tt.newParent); got != tt.want {
				t.Errorf("CreatesCycle(%q, %q) = %v, want %v", tt.id, tt.newParent, got, tt.want)
			}
		})
	}
}

func TestRepository_ImportData(t *testing.T) {
	t.Run("replaces both collections", func(t *testing.T) {
		f := newFixture(t)
		f.repo.AddBookmark(shelf.NewBookmark{Title: "old"})

		in := shelf.Data{
			Bookmarks:  []shelf.Bookmark{{ID: "b1", Title: "new", CategoryID: "c1", CreatedAt: 10}},
			Categories: []shelf.Category{{ID: "c1", Name: "Imported", CreatedAt: 10}},
		}
		if err := f.repo.ImportData(in); err != nil {
			t.Fatalf("ImportData() error = %v", err)
		}

		if got := bookmarkIDs(f.repo.Bookmarks()); !slices.Equal(got, []string{"b1"}) {
			t.Errorf("Bookmarks() ids = %v, want [b1]", got)
		}
		if got := categoryIDs(stored[shelf.Category](t, f.store, shelf.CategoriesKey)); !slices.Equal(got, []string{"c1"}) {
			t.Errorf("stored categories = %v, want [c1]", got)
		}
	})

	t.Run("empty categories get a default", func(t *testing.T) {
		f := newFixture(t)
		if err := f.repo.ImportData(shelf.Data{Bookmarks: []shelf.Bookmark{}, Categories: []shelf.Category{}}); err != nil {
			t.Fatalf("ImportData() error = %v", err)
		}
		cats := f.repo.Categories()
		if len(cats) != 1 || cats[0].Name != shelf.DefaultCategoryName || !cats[0].IsRoot() {
			t.Errorf("Categories() = %+v, want one default root", cats)
		}
		if cats[0].ID == "id-1" {
			t.Error("synthesized default reused the previous default's id")
		}
	})

	t.Run("shape check", func(t *testing.T) {
		f := newFixture(t)
		f.repo.AddBookmark(shelf.NewBookmark{Title: "keep"})
		before := f.repo.ExportData()

		for _, in := range []shelf.Data{
			{Bookmarks: nil, Categories: []shelf.Category{}},
			{Bookmarks: []shelf.Bookmark{}, Categories: nil},
			{},
		} {
			if err := f.repo.ImportData(in); !errors.Is(err, shelf.ErrInvalidImport) {
				t.Errorf("ImportData(%+v) error = %v, want %v", in, err, shelf.ErrInvalidImport)
			}
		}
		if got := bookmarkIDs(f.repo.Bookmarks()); !slices.Equal(got, bookmarkIDs(before.Bookmarks)) {
			t.Errorf("bookmarks changed after rejected import: %v", got)
		}
	})

	t.Run("export then import round-trips", func(t *testing.T) {
		f := newFixture(t)
		dev, _ := f.repo.AddCategory(shelf.NewCategory{Name: "Dev"})
		f.repo.AddCategory(shelf.NewCategory{Name: "Go", ParentID: &dev.ID})
		f.repo.AddBookmark(shelf.NewBookmark{Title: "go.dev", URL: "https://go.dev", CategoryID: dev.ID})
		exported := f.repo.ExportData()

		other := newFixture(t)
		if err := other.repo.ImportData(exported); err != nil {
			t.Fatalf("ImportData() error = %v", err)
		}
		got := other.repo.ExportData()
		if !slices.Equal(got.Bookmarks, exported.Bookmarks) {
			t.Errorf("bookmarks = %+v, want %+v", got.Bookmarks, exported.Bookmarks)
		}
		if !slices.Equal(categoryIDs(got.Categories), categoryIDs(exported.Categories)) {
			t.Errorf("categories = %v, want %v", categoryIDs(got.Categories), categoryIDs(exported.Categories))
		}
	})
}

func TestRepository_MergeData(t *testing.T) {
	f := newFixture(t)
	existing, _ := f.repo.AddBookmark(shelf.NewBookmark{Title: "before", CategoryID: "id-1"})

	err := f.repo.MergeData(shelf.Data{
		Bookmarks: []shelf.Bookmark{
			{ID: existing.ID, Title: "after", CategoryID: "id-1", CreatedAt: existing.CreatedAt},
			{ID: "b-new", Title: "added", CategoryID: "c-new"},
		},
		Categories: []shelf.Category{{ID: "c-new", Name: "New"}},
	})
	if err != nil {
		t.Fatalf("MergeData() error = %v", err)
	}

	if got := bookmarkIDs(f.repo.Bookmarks()); !slices.Equal(got, []string{existing.ID, "b-new"}) {
		t.Errorf("Bookmarks() ids = %v", got)
	}
	if got, _ := f.repo.Bookmark(existing.ID); got.Title != "after" {
		t.Errorf("existing bookmark Title = %q, want %q", got.Title, "after")
	}
	if got := categoryIDs(f.repo.Categories()); !slices.Equal(got, []string{"id-1", "c-new"}) {
		t.Errorf("Categories() ids = %v", got)
	}

	if err := f.repo.MergeData(shelf.Data{}); !errors.Is(err, shelf.ErrInvalidImport) {
		t.Errorf("MergeData(empty) error = %v, want %v", err, shelf.ErrInvalidImport)
	}
}

func TestRepository_Flush(t *testing.T) {
	store := testutil.NewTestStore(t)
	f := open(t, store)
	f.repo.AddBookmark(shelf.NewBookmark{Title: "x"})

	// Simulate an external wipe; Close must write the collections back.
	store.Delete(shelf.BookmarksKey)
	if err := f.repo.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := stored[shelf.Bookmark](t, store, shelf.BookmarksKey); len(got) != 1 {
		t.Errorf("stored bookmarks after Close() = %+v, want 1", got)
	}
}
