package server

import (
	"fmt"
	"net/http"
	"strings"

	"jsonblob/internal/api"
	"jsonblob/internal/auth"
)

func (s *Server) handleAdminCleanup(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	var req api.CleanupRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}
	if !req.DryRun && r.Header.Get("X-Confirm") != "true" {
		s.writeError(w, r, badRequestCode(fmt.Errorf("non-dry-run requires X-Confirm: true header"), ErrCodeMissingRequired))
		return
	}

	result, err := s.manager.Sweep(r.Context(), req.DryRun)
	if err != nil {
		s.writeError(w, r, storeFailure(err))
		return
	}

	s.writeJSON(w, http.StatusOK, api.CleanupResponse{
		Examined: result.Examined,
		Removed:  result.Removed,
		DryRun:   result.DryRun,
		BlobIDs:  result.BlobIDs,
	})
}

// requireAdmin verifies the admin token when one is configured. With no
// configured hash the admin surface stays open for local use.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if s.adminTokenHash == "" {
		return true
	}

	candidate := strings.TrimSpace(r.Header.Get("X-Admin-Token"))
	if candidate == "" {
		s.writeError(w, r, unauthorized(fmt.Errorf("admin token required")))
		return false
	}
	if !auth.VerifyToken(s.adminTokenHash, candidate) {
		s.writeError(w, r, forbidden(fmt.Errorf("admin token mismatch")))
		return false
	}
	return true
}
