package httpapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"shelf-go/internal/app"
	"shelf-go/internal/settings"
)

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = app.FormatJSON
	}

	var buf bytes.Buffer
	if err := s.app.Export(&buf, format); err != nil {
		s.writeError(w, r, err)
		return
	}

	contentType, name := "application/json; charset=utf-8", "bookmarks.json"
	if format == app.FormatHTML {
		contentType, name = "text/html; charset=utf-8", "bookmarks.html"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type importResponse struct {
	Format     string `json:"format"`
	Merged     bool   `json:"merged"`
	Bookmarks  int    `json:"bookmarks"`
	Categories int    `json:"categories"`
	Message    string `json:"message"`
}

// importData accepts a browser bookmark file or a JSON export as the raw
// request body. ?merge=true upserts instead of replacing.
func (s *Server) importData(w http.ResponseWriter, r *http.Request) {
	merge := false
	if v := r.URL.Query().Get("merge"); v != "" {
		var err error
		if merge, err = strconv.ParseBool(v); err != nil {
			s.writeError(w, r, fmt.Errorf("%w: merge=%q", errBadRequest, v))
			return
		}
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	res, err := s.app.Import(body, merge)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	key := "settings.importSuccess"
	if merge {
		key = "import.merged"
	}
	writeJSON(w, http.StatusOK, importResponse{
		Format:     res.Format,
		Merged:     res.Merged,
		Bookmarks:  res.Bookmarks,
		Categories: res.Categories,
		Message:    s.app.T(key),
	})
}

type themeResponse struct {
	Settings     settings.Theme        `json:"settings"`
	Presentation settings.Presentation `json:"presentation"`
}

// getTheme returns the stored theme and its resolved presentation. The
// client passes its own color scheme preference as ?systemDark=true.
func (s *Server) getTheme(w http.ResponseWriter, r *http.Request) {
	systemDark, _ := strconv.ParseBool(r.URL.Query().Get("systemDark"))
	t := s.app.Settings().Theme()
	writeJSON(w, http.StatusOK, themeResponse{
		Settings:     t,
		Presentation: settings.ResolveTheme(t, systemDark),
	})
}

// putTheme replaces the theme. Fields missing from the body keep their
// current values.
func (s *Server) putTheme(w http.ResponseWriter, r *http.Request) {
	st := s.app.Settings()
	t := st.Theme()
	if err := decode(w, r, &t); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := st.SaveTheme(t); err != nil {
		s.writeError(w, r, err)
		return
	}
	systemDark, _ := strconv.ParseBool(r.URL.Query().Get("systemDark"))
	writeJSON(w, http.StatusOK, themeResponse{
		Settings:     t,
		Presentation: settings.ResolveTheme(t, systemDark),
	})
}

func (s *Server) getLayout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Settings().Layout())
}

func (s *Server) putLayout(w http.ResponseWriter, r *http.Request) {
	var l settings.Layout
	if err := decode(w, r, &l); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.app.Settings().SetBookmarksPerRow(l.BookmarksPerRow); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.app.Settings().Layout())
}

type languageBody struct {
	Language string `json:"language"`
}

func (s *Server) getLanguage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, languageBody{Language: s.app.Language()})
}

func (s *Server) putLanguage(w http.ResponseWriter, r *http.Request) {
	var req languageBody
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.app.Settings().SetLanguage(req.Language); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, languageBody{Language: s.app.Language()})
}

// catalog returns every message of lang, filled in from the default
// language where lang has no entry.
func (s *Server) catalog(w http.ResponseWriter, r *http.Request) {
	lang := chi.URLParam(r, "lang")
	tr := s.app.Translator()
	if !tr.Has(lang) {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, tr.Catalog(lang))
}
