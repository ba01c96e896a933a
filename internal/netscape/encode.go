package netscape

import (
	"bufio"
	"io"
	"strings"

	"shelf-go/internal/shelf"
)

const preamble = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<!-- This is an automatically generated file.
     It will be read and overwritten.
     DO NOT EDIT! -->
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
`

const (
	closing = "</DL><p>\n"
	step    = "    "
)

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML escapes the five HTML-significant characters.
func EscapeHTML(s string) string {
	return escaper.Replace(s)
}

// Serialize writes data as a bookmark file. Categories are emitted as nested
// folders starting from the roots, each followed by its bookmarks in
// collection order and then its subfolders. Bookmarks whose category is
// empty or unknown are written as top-level links after the folders.
// Categories no root reaches (unknown parent, parent cycle) are written as
// top-level folders after the roots, so no bookmark is dropped.
func Serialize(w io.Writer, data shelf.Data) error {
	e := &encoder{
		w:          bufio.NewWriter(w),
		byParent:   make(map[string][]shelf.Category),
		byCategory: make(map[string][]shelf.Bookmark),
		visited:    make(map[string]bool),
	}

	known := make(map[string]bool, len(data.Categories))
	var roots []shelf.Category
	for _, c := range data.Categories {
		known[c.ID] = true
		if c.IsRoot() {
			roots = append(roots, c)
		} else {
			e.byParent[*c.ParentID] = append(e.byParent[*c.ParentID], c)
		}
	}

	var loose []shelf.Bookmark
	for _, b := range data.Bookmarks {
		if b.CategoryID == "" || !known[b.CategoryID] {
			loose = append(loose, b)
			continue
		}
		e.byCategory[b.CategoryID] = append(e.byCategory[b.CategoryID], b)
	}

	e.str(preamble)
	for _, c := range roots {
		e.folder(c, step)
	}
	for _, c := range data.Categories {
		e.folder(c, step)
	}
	for _, b := range loose {
		e.link(b, step)
	}
	e.str(closing)

	if e.err != nil {
		return e.err
	}
	return e.w.Flush()
}

// SerializeString returns data as a bookmark file.
func SerializeString(data shelf.Data) string {
	var b strings.Builder
	// strings.Builder never fails to write.
	_ = Serialize(&b, data)
	return b.String()
}

type encoder struct {
	w          *bufio.Writer
	err        error
	byParent   map[string][]shelf.Category
	byCategory map[string][]shelf.Bookmark
	visited    map[string]bool
}

func (e *encoder) folder(c shelf.Category, indent string) {
	if e.visited[c.ID] {
		return
	}
	e.visited[c.ID] = true

	e.str(indent, "<DT><H3>", EscapeHTML(c.Name), "</H3>\n")
	e.str(indent, "<DL><p>\n")
	for _, b := range e.byCategory[c.ID] {
		e.link(b, indent+step)
	}
	for _, child := range e.byParent[c.ID] {
		e.folder(child, indent+step)
	}
	e.str(indent, closing)
}

func (e *encoder) link(b shelf.Bookmark, indent string) {
	e.str(indent, `<DT><A HREF="`, EscapeHTML(b.URL), `">`, EscapeHTML(b.Title), "</A>\n")
}

func (e *encoder) str(parts ...string) {
	for _, s := range parts {
		if e.err != nil {
			return
		}
		_, e.err = e.w.WriteString(s)
	}
}
