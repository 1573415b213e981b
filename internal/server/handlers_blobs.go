package server

import (
	"net/http"

	"jsonblob/internal/api"
	"jsonblob/internal/blobid"
)

func (s *Server) handleCreateBlob(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readDocument(w, r)
	if !ok {
		return
	}

	id, err := s.manager.Create(r.Context(), body)
	if err != nil {
		s.writeError(w, r, managerError(err))
		return
	}

	w.Header().Set("Location", "/api/jsonBlob/"+id.Hex())
	w.Header().Set(api.BlobIDHeader, id.Hex())
	s.writeDocument(w, http.StatusCreated, body)
}

func (s *Server) handleGetBlob(w http.ResponseWriter, r *http.Request) {
	id, ok := s.blobID(w, r)
	if !ok {
		return
	}

	body, err := s.manager.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, managerError(err))
		return
	}

	s.writeDocument(w, http.StatusOK, body)
}

func (s *Server) handleUpdateBlob(w http.ResponseWriter, r *http.Request) {
	id, ok := s.blobID(w, r)
	if !ok {
		return
	}

	body, ok := s.readDocument(w, r)
	if !ok {
		return
	}

	if err := s.manager.Update(r.Context(), id, body); err != nil {
		s.writeError(w, r, managerError(err))
		return
	}

	s.writeDocument(w, http.StatusOK, body)
}

func (s *Server) handleDeleteBlob(w http.ResponseWriter, r *http.Request) {
	id, ok := s.blobID(w, r)
	if !ok {
		return
	}

	if err := s.manager.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, managerError(err))
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) blobID(w http.ResponseWriter, r *http.Request) (blobid.ID, bool) {
	id, err := blobid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, managerError(err))
		return blobid.Nil, false
	}
	return id, true
}
