package server

import (
	"crypto/subtle"
	"net/http"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleLogin verifies the admin credentials and issues a bearer token.
// Refuses to run with empty configured credentials rather than allowing
// empty-string logins.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest,
			map[string]any{"success": false, "message": "invalid request body"})
		return
	}

	wantUser := s.cfg.AdminUsername()
	wantPass := s.cfg.AdminPassword()
	if wantUser == "" || wantPass == "" {
		s.logger.Error("admin credentials not configured")
		writeJSON(w, http.StatusInternalServerError,
			map[string]any{"success": false, "message": "server configuration error"})
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(wantUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(wantPass)) == 1
	if !userOK || !passOK {
		s.logger.Warn("login failed", "username", req.Username)
		writeJSON(w, http.StatusUnauthorized,
			map[string]any{"success": false, "message": "invalid username or password"})
		return
	}

	token, err := s.tokens.Issue(req.Username)
	if err != nil {
		s.logger.Error("issuing token failed", "error", err)
		writeJSON(w, http.StatusInternalServerError,
			map[string]any{"success": false, "message": "failed to issue token"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"token":     token,
		"username":  req.Username,
		"expiresIn": int(s.tokens.TTL().Seconds()),
	})
}
