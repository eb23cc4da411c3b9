package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/backup"
	"fintrack/internal/model"
)

type createBackupRequest struct {
	Description string `json:"description"`
}

func (s *Server) handleCreateBackup(w http.ResponseWriter, r *http.Request) {
	var req createBackupRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	desc, err := s.backups.Create(req.Description, model.BackupManual)
	if err != nil {
		s.logger.Error("creating backup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create backup")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"backupId":    desc.ID,
		"description": desc.Description,
		"createdAt":   desc.CreatedAt,
	})
}

func (s *Server) handleListBackups(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	list, err := s.backups.List(page, pageSize)
	if err != nil {
		s.logger.Error("listing backups failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list backups")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetBackupSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.backups.Settings().Get()
	if err != nil {
		s.logger.Error("loading backup settings failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load backup settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleUpdateBackupSettings(w http.ResponseWriter, r *http.Request) {
	var input backup.SettingsInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := s.backups.Settings().Update(input)
	if err != nil {
		s.logger.Error("updating backup settings failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save backup settings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "settings": settings})
}

func (s *Server) handleRestoreBackup(w http.ResponseWriter, r *http.Request) {
	backupID := chi.URLParam(r, "backupId")

	desc, err := s.backups.Restore(backupID)
	if err != nil {
		switch {
		case errors.Is(err, backup.ErrBackupNotFound):
			writeError(w, http.StatusNotFound, "backup not found")
		case errors.Is(err, backup.ErrArchiveFileMissing):
			writeError(w, http.StatusNotFound, "backup file not found")
		default:
			s.logger.Error("restoring backup failed", "id", backupID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to restore backup")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "backup restored",
		"backupId":   desc.ID,
		"backupInfo": desc,
	})
}

func (s *Server) handleDeleteBackup(w http.ResponseWriter, r *http.Request) {
	backupID := chi.URLParam(r, "backupId")

	if _, err := s.backups.Delete(backupID); err != nil {
		if errors.Is(err, backup.ErrBackupNotFound) {
			writeError(w, http.StatusNotFound, "backup not found")
			return
		}
		s.logger.Error("deleting backup failed", "id", backupID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete backup")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "backup deleted"})
}

func (s *Server) handleDownloadBackup(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	// Buffer before writing headers so a mid-stream failure can still
	// produce a proper error status.
	var buf bytes.Buffer
	if _, err := s.backups.Download(filename, &buf); err != nil {
		switch {
		case errors.Is(err, backup.ErrInvalidSnapshotName):
			writeError(w, http.StatusBadRequest, "invalid backup filename")
		case errors.Is(err, backup.ErrArchiveFileMissing):
			writeError(w, http.StatusNotFound, "backup file not found")
		default:
			s.logger.Error("downloading backup failed", "file", filename, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to download backup")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}
