package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"shelf-go/internal/shelf"
)

// categoryView adds the count of bookmarks filed directly in the category.
type categoryView struct {
	shelf.Category
	Bookmarks int `json:"bookmarks"`
}

func (s *Server) viewCategories(cats []shelf.Category) []categoryView {
	counts := make(map[string]int)
	for _, b := range s.app.Repository().Bookmarks() {
		counts[b.CategoryID]++
	}
	out := make([]categoryView, len(cats))
	for i, c := range cats {
		out[i] = categoryView{Category: c, Bookmarks: counts[c.ID]}
	}
	return out
}

// listCategories returns all categories, or the roots only with ?roots=true.
func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	repo := s.app.Repository()
	if r.URL.Query().Get("roots") == "true" {
		writeJSON(w, http.StatusOK, s.viewCategories(repo.ChildCategories(nil)))
		return
	}
	writeJSON(w, http.StatusOK, s.viewCategories(repo.Categories()))
}

type categoryRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		s.writeError(w, r, fmt.Errorf("%w: name is required", errBadRequest))
		return
	}
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}
	if req.ParentID != nil {
		if _, ok := s.app.Repository().Category(*req.ParentID); !ok {
			s.writeError(w, r, fmt.Errorf("%w: parent %s", shelf.ErrCategoryNotFound, *req.ParentID))
			return
		}
	}

	c, err := s.app.Repository().AddCategory(shelf.NewCategory{Name: req.Name, ParentID: req.ParentID})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.viewCategories([]shelf.Category{c})[0])
}

// categoryPatchRequest uses optional for parentId so that an explicit null
// moves the category to the root while an absent field leaves it alone.
type categoryPatchRequest struct {
	Name     *string          `json:"name"`
	ParentID optional[string] `json:"parentId"`
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req categoryPatchRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	repo := s.app.Repository()
	patch := shelf.CategoryPatch{Name: req.Name}
	if req.ParentID.Set {
		parent := ""
		if req.ParentID.Value != nil {
			parent = *req.ParentID.Value
		}
		if err := s.app.CheckMove(id, parent); err != nil {
			s.writeError(w, r, err)
			return
		}
		patch.ParentID = &parent
	}

	if err := repo.UpdateCategory(id, patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, _ := repo.Category(id)
	writeJSON(w, http.StatusOK, s.viewCategories([]shelf.Category{c})[0])
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Repository().DeleteCategory(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) categoryPath(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	repo := s.app.Repository()
	if _, ok := repo.Category(id); !ok {
		s.writeError(w, r, fmt.Errorf("%w: %s", shelf.ErrCategoryNotFound, id))
		return
	}
	writeJSON(w, http.StatusOK, repo.CategoryPath(id))
}

func (s *Server) childCategories(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	repo := s.app.Repository()
	if _, ok := repo.Category(id); !ok {
		s.writeError(w, r, fmt.Errorf("%w: %s", shelf.ErrCategoryNotFound, id))
		return
	}
	writeJSON(w, http.StatusOK, s.viewCategories(repo.ChildCategories(&id)))
}
