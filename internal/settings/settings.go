// Package settings persists the user's display preferences (theme, layout
// and language) in the same Store as the bookmark collections, each under
// its own key.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"

	"shelf-go/internal/shelf"
)

// Storage keys. Each preference group is a single JSON document.
const (
	ThemeKey    = "browser-bookmarks-theme-settings"
	LayoutKey   = "bookmark-layout-settings"
	LanguageKey = "bookmark-language"
)

// ErrInvalidSetting is returned by setters given a value outside the
// accepted set.
var ErrInvalidSetting = errors.New("invalid setting")

// Settings reads and writes preference documents. Reads never fail: a
// missing or unreadable document yields the defaults.
type Settings struct {
	store  shelf.Store
	logger shelf.Logger
}

func New(store shelf.Store, logger shelf.Logger) *Settings {
	return &Settings{store: store, logger: logger}
}

// load decodes key over the value already in dst. It reports whether the
// stored document was used.
func (s *Settings) load(key string, dst any) bool {
	raw, err := s.store.Get(key)
	if errors.Is(err, shelf.ErrKeyNotFound) {
		return false
	}
	if err != nil {
		s.logger.Warn("failed to read settings, using defaults", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.logger.Warn("corrupt settings, using defaults", "key", key, "error", err)
		return false
	}
	return true
}

func (s *Settings) save(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.store.Set(key, raw); err != nil {
		return fmt.Errorf("%w: saving %s: %w", shelf.ErrStorage, key, err)
	}
	s.logger.Debug("settings saved", "key", key)
	return nil
}

// Layout controls how many bookmark cards are shown per row.
type Layout struct {
	BookmarksPerRow int `json:"bookmarksPerRow"`
}

const DefaultBookmarksPerRow = 3

func DefaultLayout() Layout {
	return Layout{BookmarksPerRow: DefaultBookmarksPerRow}
}

func (s *Settings) Layout() Layout {
	l := DefaultLayout()
	if !s.load(LayoutKey, &l) || l.BookmarksPerRow < 1 {
		return DefaultLayout()
	}
	return l
}

func (s *Settings) SetBookmarksPerRow(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: bookmarks per row must be at least 1, got %d", ErrInvalidSetting, n)
	}
	l := s.Layout()
	l.BookmarksPerRow = n
	return s.save(LayoutKey, l)
}

// Supported interface languages.
const (
	LanguageChinese = "cn"
	LanguageEnglish = "en"
)

func validLanguage(lang string) bool {
	return lang == LanguageChinese || lang == LanguageEnglish
}

// Language returns the stored interface language, or "cn".
func (s *Settings) Language() string {
	return s.LanguageOr(LanguageChinese)
}

// LanguageOr returns the stored interface language, or fallback when none
// is stored. An unsupported fallback is replaced by "cn".
func (s *Settings) LanguageOr(fallback string) string {
	var lang string
	if s.load(LanguageKey, &lang) && validLanguage(lang) {
		return lang
	}
	if validLanguage(fallback) {
		return fallback
	}
	return LanguageChinese
}

func (s *Settings) SetLanguage(lang string) error {
	if !validLanguage(lang) {
		return fmt.Errorf("%w: unsupported language %q", ErrInvalidSetting, lang)
	}
	return s.save(LanguageKey, lang)
}

// ToggleLanguage switches between Chinese and English and returns the new
// language.
func (s *Settings) ToggleLanguage() (string, error) {
	next := LanguageEnglish
	if s.Language() == LanguageEnglish {
		next = LanguageChinese
	}
	return next, s.SetLanguage(next)
}
