package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/model"
)

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.collections.ReadRecords()
	if err != nil {
		s.logger.Error("reading records failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load records")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	records, err := s.collections.ReadRecords()
	if err != nil {
		s.logger.Error("reading records failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load records")
		return
	}
	for _, rec := range records {
		if rec.ID == id {
			writeJSON(w, http.StatusOK, rec)
			return
		}
	}
	writeError(w, http.StatusNotFound, "record not found")
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var rec model.Record
	if err := decodeBody(r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	records, err := s.collections.ReadRecords()
	if err != nil {
		s.logger.Error("reading records failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load records")
		return
	}

	now := time.Now()
	rec.ID = strconv.FormatInt(now.UnixMilli(), 10)
	rec.CreatedAt = now.UTC().Format(time.RFC3339)
	if rec.Date == "" {
		rec.Date = now.Format("2006-01-02")
	}
	if rec.Type == "" {
		rec.Type = "expense"
	}
	s.denormalizeCategory(&rec)

	records = append([]model.Record{rec}, records...)
	if err := s.collections.WriteRecords(records); err != nil {
		s.logger.Error("writing records failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save record")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch model.Record
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	records, err := s.collections.ReadRecords()
	if err != nil {
		s.logger.Error("reading records failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load records")
		return
	}

	for i := range records {
		if records[i].ID != id {
			continue
		}
		patch.ID = id
		if patch.CreatedAt == "" {
			patch.CreatedAt = records[i].CreatedAt
		}
		s.denormalizeCategory(&patch)
		records[i] = patch

		if err := s.collections.WriteRecords(records); err != nil {
			s.logger.Error("writing records failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to save record")
			return
		}
		writeJSON(w, http.StatusOK, records[i])
		return
	}
	writeError(w, http.StatusNotFound, "record not found")
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	records, err := s.collections.ReadRecords()
	if err != nil {
		s.logger.Error("reading records failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load records")
		return
	}

	kept := records[:0]
	for _, rec := range records {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	if err := s.collections.WriteRecords(kept); err != nil {
		s.logger.Error("writing records failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete record")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// denormalizeCategory copies the category name and icon onto a record when
// its categoryId resolves.
func (s *Server) denormalizeCategory(rec *model.Record) {
	if rec.CategoryID == "" {
		return
	}
	categories, err := s.collections.ReadCategories()
	if err != nil {
		s.logger.Warn("reading categories for denormalization failed", "error", err)
		return
	}
	for _, cat := range categories {
		if cat.ID == rec.CategoryID {
			rec.CategoryName = cat.Name
			rec.CategoryIcon = cat.Icon
			return
		}
	}
}
