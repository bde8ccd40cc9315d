package server

import (
	"encoding/json"
	"net/http"
	"strings"
)

const adminRole = "admin"

type tokenRequest struct {
	Password string `json:"password"`
}

// handleToken exchanges the admin password for a JWT. Registered only when
// auth is enabled.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !s.authConfig.VerifyPassword(req.Password) {
		s.errorResponse(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.jwtService.GenerateToken(adminRole)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   s.authConfig.ExpirationHours * 3600,
	})
}

// requireAdmin guards a handler with Bearer-token admin auth. When auth is
// disabled the handler is returned unchanged, matching the original open
// setup.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	if !s.authConfig.Enabled() {
		return next
	}

	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			s.errorResponse(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			s.errorResponse(w, http.StatusUnauthorized, "authorization header must use Bearer scheme")
			return
		}

		claims, err := s.jwtService.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			s.errorResponse(w, http.StatusUnauthorized, "invalid token")
			return
		}
		if claims.Role != adminRole {
			s.errorResponse(w, http.StatusForbidden, "insufficient privileges")
			return
		}

		next(w, r)
	}
}
