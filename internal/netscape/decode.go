// Package netscape reads and writes the Netscape bookmark file format, the
// nested <DL>/<DT> HTML dialect every major browser uses for bookmark
// import and export.
package netscape

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"shelf-go/internal/shelf"
)

// Default names used by Parse. The application overrides them with
// localized strings.
const (
	RootName         = "Imported Bookmarks"
	UntitledBookmark = "Untitled bookmark"
	UntitledFolder   = "Untitled folder"
)

const fileMarker = "NETSCAPE-Bookmark-file-1"

// ParseOption configures Parse.
type ParseOption func(*parser)

// WithRootName sets the name of the synthetic root category.
func WithRootName(name string) ParseOption {
	return func(p *parser) { p.rootName = name }
}

// WithUntitledBookmark sets the title given to links without text.
func WithUntitledBookmark(title string) ParseOption {
	return func(p *parser) { p.untitledBookmark = title }
}

// WithUntitledFolder sets the name given to folders without a heading text.
func WithUntitledFolder(name string) ParseOption {
	return func(p *parser) { p.untitledFolder = name }
}

type parser struct {
	idgen            shelf.IDGenerator
	now              int64
	rootName         string
	untitledBookmark string
	untitledFolder   string

	data shelf.Data
}

// Parse reads a bookmark file. The result always starts with one synthetic
// root category; top-level links are filed under it and top-level folders
// become root categories next to it. Every id is freshly generated and every
// timestamp is the clock's current time.
func Parse(r io.Reader, clock shelf.Clock, idgen shelf.IDGenerator, opts ...ParseOption) (shelf.Data, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return shelf.Data{}, fmt.Errorf("parsing bookmark html: %w", err)
	}

	p := &parser{
		idgen:            idgen,
		now:              shelf.Millis(clock),
		rootName:         RootName,
		untitledBookmark: UntitledBookmark,
		untitledFolder:   UntitledFolder,
		data: shelf.Data{
			Bookmarks:  []shelf.Bookmark{},
			Categories: []shelf.Category{},
		},
	}
	for _, opt := range opts {
		opt(p)
	}

	root := p.addCategory(p.rootName, nil)

	// Nested lists are reached through their folder, so only the outermost
	// lists are walked from here.
	doc.Find("dl").
		FilterFunction(func(_ int, dl *goquery.Selection) bool {
			return dl.ParentsFiltered("dl").Length() == 0
		}).
		Each(func(_ int, dl *goquery.Selection) {
			p.walk(dl, root.ID, nil)
		})

	return p.data, nil
}

// walk visits the items of one list. categoryID receives the list's links;
// parentID is the parent for the list's folders (nil at the top level).
func (p *parser) walk(dl *goquery.Selection, categoryID string, parentID *string) {
	dl.ChildrenFiltered("dt").Each(func(_ int, dt *goquery.Selection) {
		first := dt.Children().First()
		switch goquery.NodeName(first) {
		case "a":
			href, _ := first.Attr("href")
			p.data.Bookmarks = append(p.data.Bookmarks, shelf.Bookmark{
				ID:         p.idgen.New(),
				Title:      textOr(first, p.untitledBookmark),
				URL:        href,
				CategoryID: categoryID,
				CreatedAt:  p.now,
			})
		case "h3":
			folder := p.addCategory(textOr(first, p.untitledFolder), parentID)
			if sub := dt.Find("dl").First(); sub.Length() > 0 {
				p.walk(sub, folder.ID, shelf.StringPtr(folder.ID))
			}
		}
	})
}

func (p *parser) addCategory(name string, parentID *string) shelf.Category {
	c := shelf.Category{
		ID:        p.idgen.New(),
		Name:      name,
		ParentID:  parentID,
		CreatedAt: p.now,
	}
	p.data.Categories = append(p.data.Categories, c)
	return c
}

// textOr returns the element text unchanged, or fallback when it is blank.
func textOr(s *goquery.Selection, fallback string) string {
	text := s.Text()
	if strings.TrimSpace(text) == "" {
		return fallback
	}
	return text
}

// IsBookmarkFile reports whether text looks like a bookmark file: it either
// carries the Netscape doctype marker or contains both a <DL> and a <DT> tag.
// This is a cheap content sniff, not a parse.
func IsBookmarkFile(text string) bool {
	if strings.Contains(text, fileMarker) {
		return true
	}
	return strings.Contains(text, "<DL>") && strings.Contains(text, "<DT>")
}
