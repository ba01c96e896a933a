package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"shelf-go/internal/favicon"
	"shelf-go/internal/shelf"
)

type healthzResponse struct {
	Status     string `json:"status"`
	Bookmarks  int    `json:"bookmarks"`
	Categories int    `json:"categories"`
	Operation  string `json:"operation"`
	Uptime     string `json:"uptime"`
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	nb, nc := s.app.Repository().Counts()
	s.mu.Unlock()

	op := s.app.Operation()
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, healthzResponse{
		Status:     "ok",
		Bookmarks:  nb,
		Categories: nc,
		Operation:  op.ID,
		Uptime:     time.Since(op.Started).Round(time.Second).String(),
	})
}

// bookmarkView is a bookmark plus the presentation fields a front end shows
// next to it.
type bookmarkView struct {
	shelf.Bookmark
	Favicon string `json:"favicon"`
	Domain  string `json:"domain"`
	Initial string `json:"initial"`
}

func viewBookmark(b shelf.Bookmark) bookmarkView {
	return bookmarkView{
		Bookmark: b,
		Favicon:  favicon.URL(b.URL),
		Domain:   favicon.Domain(b.URL),
		Initial:  favicon.Initial(b.Title),
	}
}

func viewBookmarks(bs []shelf.Bookmark) []bookmarkView {
	out := make([]bookmarkView, len(bs))
	for i, b := range bs {
		out[i] = viewBookmark(b)
	}
	return out
}

// listBookmarks returns every bookmark newest first, or the bookmarks of
// one category in collection order when ?category= is given.
func (s *Server) listBookmarks(w http.ResponseWriter, r *http.Request) {
	repo := s.app.Repository()
	if id := r.URL.Query().Get("category"); id != "" {
		writeJSON(w, http.StatusOK, viewBookmarks(repo.BookmarksByCategory(id)))
		return
	}
	writeJSON(w, http.StatusOK, viewBookmarks(repo.AllBookmarks()))
}

type bookmarkRequest struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	CategoryID string `json:"categoryId"`
}

func (s *Server) createBookmark(w http.ResponseWriter, r *http.Request) {
	var req bookmarkRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.URL = strings.TrimSpace(req.URL)
	if req.Title == "" || req.URL == "" {
		s.writeError(w, r, fmt.Errorf("%w: title and url are required", errBadRequest))
		return
	}

	b, err := s.app.Repository().AddBookmark(shelf.NewBookmark{
		Title:      req.Title,
		URL:        req.URL,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewBookmark(b))
}

type bookmarkPatchRequest struct {
	Title      *string `json:"title"`
	URL        *string `json:"url"`
	CategoryID *string `json:"categoryId"`
}

func (s *Server) updateBookmark(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req bookmarkPatchRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	repo := s.app.Repository()
	if err := repo.UpdateBookmark(id, shelf.BookmarkPatch{
		Title:      req.Title,
		URL:        req.URL,
		CategoryID: req.CategoryID,
	}); err != nil {
		s.writeError(w, r, err)
		return
	}
	b, _ := repo.Bookmark(id)
	writeJSON(w, http.StatusOK, viewBookmark(b))
}

func (s *Server) deleteBookmark(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Repository().DeleteBookmark(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
