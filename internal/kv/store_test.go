package kv

import (
	"bytes"
	"errors"
	"testing"

	"shelf-go/internal/shelf"
)

// exerciseStore runs the behaviour every shelf.Store must share.
func exerciseStore(t *testing.T, s shelf.Store) {
	t.Helper()

	t.Run("missing key", func(t *testing.T) {
		_, err := s.Get("never-written")
		if !errors.Is(err, shelf.ErrKeyNotFound) {
			t.Errorf("Get() error = %v, want %v", err, shelf.ErrKeyNotFound)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		want := []byte(`[{"id":"b1"}]`)
		if err := s.Set(shelf.BookmarksKey, want); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, err := s.Get(shelf.BookmarksKey)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("Get() = %q, want %q", got, want)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		if err := s.Set(shelf.CategoriesKey, []byte("first")); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if err := s.Set(shelf.CategoriesKey, []byte("second")); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, err := s.Get(shelf.CategoriesKey)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(got) != "second" {
			t.Errorf("Get() = %q, want %q", got, "second")
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := s.Set("doomed", []byte("x")); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if err := s.Delete("doomed"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := s.Get("doomed"); !errors.Is(err, shelf.ErrKeyNotFound) {
			t.Errorf("Get() after Delete() error = %v, want %v", err, shelf.ErrKeyNotFound)
		}
		if err := s.Delete("doomed"); err != nil {
			t.Errorf("Delete() of missing key error = %v, want nil", err)
		}
	})
}
