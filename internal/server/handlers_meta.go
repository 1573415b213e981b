package server

import (
	"net/http"

	"jsonblob/internal/api"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	count, err := s.manager.Count(r.Context())
	if err != nil {
		s.writeError(w, r, storeFailure(err))
		return
	}

	resp := api.InfoResponse{
		Version:             s.version,
		Engine:              s.engine,
		BlobCount:           count,
		PendingAccessWrites: s.manager.PendingAccessWrites(),
		BlobAccessTTL:       s.manager.AccessTTL().String(),
		CacheEnabled:        s.cacheEnabled,
	}

	s.writeJSON(w, http.StatusOK, resp)
}
