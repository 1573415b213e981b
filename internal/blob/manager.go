// Package blob implements the blob manager: the create/read/update/delete
// contract over a BlobStore, batched write-back of access timestamps, and
// background expiry of blobs that have not been read within the TTL.
package blob

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"jsonblob/internal/blobid"
	"jsonblob/internal/cache"
	"jsonblob/internal/models"
	"jsonblob/internal/store"
)

const (
	// flushInterval is how often pending access times are written back.
	flushInterval = time.Minute

	sweepBatchSize = 500

	flushWriteBudget = 30 * time.Second

	defaultCleanupFrequency = 2 * time.Hour
	defaultAccessTTL        = 90 * 24 * time.Hour
)

// Options configures a Manager.
type Options struct {
	// CleanupFrequency is the period of the stale-blob sweep.
	CleanupFrequency time.Duration
	// AccessTTL is the maximum age since last access before a blob is
	// eligible for expiry.
	AccessTTL time.Duration
	// Cache is an optional read cache; nil disables caching.
	Cache *cache.Cache
	// Registerer receives the manager's metrics; nil skips registration.
	Registerer prometheus.Registerer

	Logger *slog.Logger
}

// Manager owns blob lifecycle and consistency handling.
type Manager struct {
	store  store.BlobStore
	cache  *cache.Cache
	logger *slog.Logger

	access  *accessLog
	metrics *managerMetrics

	cleanupFrequency time.Duration
	accessTTL        time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a manager over the given store.
func NewManager(st store.BlobStore, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.CleanupFrequency <= 0 {
		opts.CleanupFrequency = defaultCleanupFrequency
	}
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = defaultAccessTTL
	}

	m := &Manager{
		store:            st,
		cache:            opts.Cache,
		logger:           logger,
		access:           newAccessLog(),
		cleanupFrequency: opts.CleanupFrequency,
		accessTTL:        opts.AccessTTL,
	}
	m.metrics = newManagerMetrics(opts.Registerer, st.Count)
	return m
}

// Create validates and stores a new JSON document, returning its id.
func (m *Manager) Create(ctx context.Context, body string) (blobid.ID, error) {
	defer m.metrics.observe("create", time.Now())

	if !ValidJSON(body) {
		return blobid.Nil, ErrInvalidJSON
	}

	now := time.Now().UTC()
	rec := &models.BlobRecord{
		ID:         blobid.New(),
		Body:       body,
		CreatedAt:  now,
		UpdatedAt:  now,
		AccessedAt: now,
	}

	if err := m.store.Insert(ctx, rec); err != nil {
		return blobid.Nil, fmt.Errorf("insert blob: %w", err)
	}
	if rec.ID.IsZero() {
		return blobid.Nil, fmt.Errorf("%w: inserted blob has no id", ErrInternal)
	}

	m.cacheSet(ctx, rec.ID, body)
	m.logger.Debug("created blob", "id", rec.ID.Hex())
	return rec.ID, nil
}

// Get returns the stored body for id. The read itself never writes: the
// access timestamp is queued for the next flush.
func (m *Manager) Get(ctx context.Context, id blobid.ID) (string, error) {
	defer m.metrics.observe("read", time.Now())

	if body, ok := m.cacheGet(ctx, id); ok {
		m.access.Record(id, time.Now().UTC())
		return body, nil
	}

	rec, err := m.store.FindByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("find blob: %w", err)
	}
	if rec == nil {
		return "", ErrBlobNotFound
	}

	m.access.Record(id, time.Now().UTC())
	m.cacheSet(ctx, id, rec.Body)
	return rec.Body, nil
}

// Update replaces the stored body at id, resetting updated/accessed and
// preserving created and the id itself. The atomic replace doubles as the
// existence check: zero matched rows means the blob is gone.
func (m *Manager) Update(ctx context.Context, id blobid.ID, body string) error {
	defer m.metrics.observe("update", time.Now())

	if !ValidJSON(body) {
		return ErrInvalidJSON
	}

	now := time.Now().UTC()
	rec := &models.BlobRecord{
		ID:         id,
		Body:       body,
		UpdatedAt:  now,
		AccessedAt: now,
	}

	matched, err := m.store.Replace(ctx, rec)
	if err != nil {
		return fmt.Errorf("replace blob: %w", err)
	}
	if matched == 0 {
		return ErrBlobNotFound
	}

	m.cacheSet(ctx, id, body)
	m.logger.Debug("updated blob", "id", id.Hex())
	return nil
}

// Delete removes the blob at id. A removal that reports zero affected
// records after the existence check lost a race with a concurrent delete
// and is treated as not found.
func (m *Manager) Delete(ctx context.Context, id blobid.ID) error {
	defer m.metrics.observe("delete", time.Now())

	rec, err := m.store.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find blob: %w", err)
	}
	if rec == nil {
		return ErrBlobNotFound
	}

	removed, err := m.store.Remove(ctx, id)
	if err != nil {
		return fmt.Errorf("remove blob: %w", err)
	}
	if removed == 0 {
		return ErrBlobNotFound
	}

	m.cacheDelete(ctx, id)
	m.logger.Debug("deleted blob", "id", id.Hex())
	return nil
}

// Count returns the number of stored blobs.
func (m *Manager) Count(ctx context.Context) (int64, error) {
	return m.store.Count(ctx)
}

// PendingAccessWrites returns the number of queued access-time updates.
func (m *Manager) PendingAccessWrites() int {
	return m.access.Len()
}

// AccessTTL returns the configured expiry TTL.
func (m *Manager) AccessTTL() time.Duration {
	return m.accessTTL
}

// Start launches the background sweep and flush loops.
func (m *Manager) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	m.wg.Add(2)
	go m.sweepLoop(ctx)
	go m.flushLoop(ctx)
}

// Stop halts the background loops and performs one final synchronous
// flush so no access-time updates are lost.
func (m *Manager) Stop(ctx context.Context) {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.Flush(ctx)
}

func (m *Manager) flushLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			flushCtx, cancel := context.WithTimeout(context.Background(), flushWriteBudget)
			m.Flush(flushCtx)
			cancel()
		}
	}
}

// Flush drains the pending access-time map and applies each entry to the
// store. Entries are applied independently: one failed write is logged and
// skipped, never aborting the rest of the batch.
func (m *Manager) Flush(ctx context.Context) {
	updates := m.access.Drain()
	if len(updates) == 0 {
		return
	}

	m.logger.Debug("flushing access times", "count", len(updates))
	for id, accessed := range updates {
		if err := m.store.SetAccessed(ctx, id, accessed); err != nil {
			m.logger.Warn("flush access time", "id", id.Hex(), "error", err)
		}
	}
}

func (m *Manager) sweepLoop(ctx context.Context) {
	defer m.wg.Done()

	// First sweep runs immediately on startup.
	m.runScheduledSweep(ctx)

	ticker := time.NewTicker(m.cleanupFrequency)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.runScheduledSweep(ctx)
		}
	}
}

func (m *Manager) runScheduledSweep(ctx context.Context) {
	result, err := m.Sweep(ctx, false)
	if err != nil {
		m.logger.Error("cleanup sweep failed", "error", err)
		return
	}
	if result.Removed > 0 {
		m.logger.Info("cleanup sweep complete", "examined", result.Examined, "removed", result.Removed)
	}
}

// SweepResult summarizes one sweep pass.
type SweepResult struct {
	Examined int      `json:"examined"`
	Removed  int      `json:"removed"`
	DryRun   bool     `json:"dry_run"`
	BlobIDs  []string `json:"blob_ids,omitempty"`
}

// Sweep removes blobs whose last access is older than the TTL. In dry-run
// mode it reports at most one batch of candidates without deleting.
func (m *Manager) Sweep(ctx context.Context, dryRun bool) (SweepResult, error) {
	cutoff := time.Now().UTC().Add(-m.accessTTL)
	result := SweepResult{DryRun: dryRun}

	for {
		records, err := m.store.ListAccessedBefore(ctx, cutoff, sweepBatchSize)
		if err != nil {
			return result, fmt.Errorf("scan stale blobs: %w", err)
		}
		if len(records) == 0 {
			return result, nil
		}

		result.Examined += len(records)

		if dryRun {
			for _, rec := range records {
				result.BlobIDs = append(result.BlobIDs, rec.ID.Hex())
			}
			return result, nil
		}

		removedThisBatch := 0
		for _, rec := range records {
			removed, err := m.store.Remove(ctx, rec.ID)
			if err != nil {
				m.logger.Warn("sweep remove failed", "id", rec.ID.Hex(), "error", err)
				continue
			}
			if removed == 0 {
				// Concurrent delete or update beat us to it; expected.
				m.logger.Debug("sweep candidate already gone", "id", rec.ID.Hex())
				continue
			}
			removedThisBatch++
			result.Removed++
			m.cacheDelete(ctx, rec.ID)
		}

		// No forward progress means every candidate failed or raced away;
		// leave the remainder for the next scheduled sweep.
		if removedThisBatch == 0 || len(records) < sweepBatchSize {
			return result, nil
		}
	}
}

func (m *Manager) cacheGet(ctx context.Context, id blobid.ID) (string, bool) {
	body, ok, err := m.cache.Get(ctx, id)
	if err != nil {
		m.logger.Debug("cache get failed", "id", id.Hex(), "error", err)
		return "", false
	}
	return body, ok
}

func (m *Manager) cacheSet(ctx context.Context, id blobid.ID, body string) {
	if err := m.cache.Set(ctx, id, body); err != nil {
		m.logger.Debug("cache set failed", "id", id.Hex(), "error", err)
	}
}

func (m *Manager) cacheDelete(ctx context.Context, id blobid.ID) {
	if err := m.cache.Delete(ctx, id); err != nil {
		m.logger.Debug("cache delete failed", "id", id.Hex(), "error", err)
	}
}
