package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"jsonblob/internal/api"
)

const (
	// blobMaxBody bounds document bodies on create/update.
	blobMaxBody = 10 << 20 // 10 MiB

	adminJSONMaxBody = 1 << 20 // 1 MiB
)

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromError(err)
	if err == nil {
		err = errors.New(http.StatusText(status))
	}

	code := errorCode(status, err)
	numericCode := errorNumericCode(status, err)
	message := err.Error()

	fields := []any{"status", status, "code", code, "error_code", numericCode, "error", err}
	if r != nil {
		fields = append(fields, "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)
	}

	switch {
	case status >= 500:
		s.log().Error("request error", fields...)
		message = "internal error"
	case status >= 400 && shouldWarnClientError(status):
		s.log().Warn("request rejected", fields...)
	case status >= 400:
		s.log().Debug("request rejected", fields...)
	}

	s.writeJSON(w, status, api.ErrorResponse{Error: message, Code: code, ErrorCode: numericCode})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("write json response", "status", status, "error", err)
	}
}

// writeDocument writes an already-validated JSON document verbatim.
func (s *Server) writeDocument(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := io.WriteString(w, body); err != nil {
		s.log().Error("write document response", "status", status, "error", err)
	}
}

// readDocument reads a request body as an opaque document, bounded by
// blobMaxBody. Syntactic validation happens in the manager.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, blobMaxBody)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, r, badRequestCode(fmt.Errorf("request body exceeds %d bytes", maxErr.Limit), ErrCodeRequestTooLarge))
			return "", false
		}
		s.writeError(w, r, badRequest(fmt.Errorf("read request body: %w", err)))
		return "", false
	}
	return string(payload), true
}

func (s *Server) decodeJSONReq(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, adminJSONMaxBody)

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		s.writeError(w, r, badRequestCode(fmt.Errorf("invalid json body: %w", err), ErrCodeInvalidJSON))
		return false
	}
	if decoder.More() {
		s.writeError(w, r, badRequestCode(errors.New("unexpected trailing data"), ErrCodeInvalidJSON))
		return false
	}
	return true
}
