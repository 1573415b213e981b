package api

// ErrorResponse is a generic JSON error wrapper.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// InfoResponse describes the running server.
type InfoResponse struct {
	Version             string `json:"version"`
	Engine              string `json:"engine"`
	BlobCount           int64  `json:"blob_count"`
	PendingAccessWrites int    `json:"pending_access_writes"`
	BlobAccessTTL       string `json:"blob_access_ttl"`
	CacheEnabled        bool   `json:"cache_enabled"`
}

// CleanupRequest triggers a manual sweep of expired blobs.
type CleanupRequest struct {
	DryRun bool `json:"dry_run"`
}

// CleanupResponse summarizes a sweep pass.
type CleanupResponse struct {
	Examined int      `json:"examined"`
	Removed  int      `json:"removed"`
	DryRun   bool     `json:"dry_run"`
	BlobIDs  []string `json:"blob_ids,omitempty"`
}
