package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/model"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.collections.ReadCategories()
	if err != nil {
		s.logger.Error("reading categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load categories")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleListCategoriesByType(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "type")

	categories, err := s.collections.ReadCategories()
	if err != nil {
		s.logger.Error("reading categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load categories")
		return
	}

	filtered := make([]model.Category, 0, len(categories))
	for _, cat := range categories {
		if cat.Type == kind {
			filtered = append(filtered, cat)
		}
	}
	writeJSON(w, http.StatusOK, filtered)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var cat model.Category
	if err := decodeBody(r, &cat); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	categories, err := s.collections.ReadCategories()
	if err != nil {
		s.logger.Error("reading categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load categories")
		return
	}

	cat.ID = strconv.FormatInt(time.Now().UnixMilli(), 10)
	categories = append(categories, cat)
	if err := s.collections.WriteCategories(categories); err != nil {
		s.logger.Error("writing categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save category")
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// handleUpdateCategory updates a category and rewrites the denormalized
// name and icon on every record referencing it.
func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch model.Category
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	categories, err := s.collections.ReadCategories()
	if err != nil {
		s.logger.Error("reading categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load categories")
		return
	}

	var updated *model.Category
	for i := range categories {
		if categories[i].ID != id {
			continue
		}
		if patch.Name != "" {
			categories[i].Name = patch.Name
		}
		if patch.Type != "" {
			categories[i].Type = patch.Type
		}
		if patch.Icon != "" {
			categories[i].Icon = patch.Icon
		}
		updated = &categories[i]
		break
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	if err := s.collections.WriteCategories(categories); err != nil {
		s.logger.Error("writing categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save category")
		return
	}

	records, err := s.collections.ReadRecords()
	if err != nil {
		s.logger.Error("reading records failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update records")
		return
	}
	changed := false
	for i := range records {
		if records[i].CategoryID != id {
			continue
		}
		records[i].CategoryName = updated.Name
		records[i].CategoryIcon = updated.Icon
		changed = true
	}
	if changed {
		if err := s.collections.WriteRecords(records); err != nil {
			s.logger.Error("writing records failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update records")
			return
		}
	}

	writeJSON(w, http.StatusOK, updated)
}

// handleDeleteCategory refuses to delete a category that records still
// reference, so no record is left pointing at a missing category.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	records, err := s.collections.ReadRecords()
	if err != nil {
		s.logger.Error("reading records failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load records")
		return
	}
	for _, rec := range records {
		if rec.CategoryID == id {
			writeError(w, http.StatusBadRequest, "category still has records and cannot be deleted")
			return
		}
	}

	categories, err := s.collections.ReadCategories()
	if err != nil {
		s.logger.Error("reading categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load categories")
		return
	}

	kept := categories[:0]
	for _, cat := range categories {
		if cat.ID != id {
			kept = append(kept, cat)
		}
	}
	if err := s.collections.WriteCategories(kept); err != nil {
		s.logger.Error("writing categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
