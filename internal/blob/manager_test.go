package blob

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"jsonblob/internal/blobid"
	"jsonblob/internal/models"
	"jsonblob/internal/store"
)

func testManager(t *testing.T, opts Options) (*Manager, *store.Store) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewManager(st, opts), st
}

func TestCreateAndGetRoundtrip(t *testing.T) {
	m, _ := testManager(t, Options{})
	ctx := context.Background()

	body := `{"name":"roundtrip","values":[1,2,3]}`
	id, err := m.Create(ctx, body)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == blobid.Nil {
		t.Fatal("expected non-nil id")
	}

	got, err := m.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != body {
		t.Fatalf("expected body returned verbatim, got %q", got)
	}
}

func TestCreateRejectsInvalidJSON(t *testing.T) {
	m, _ := testManager(t, Options{})
	ctx := context.Background()

	for _, body := range []string{"", "   ", `{"broken":`, "not json"} {
		if _, err := m.Create(ctx, body); !errors.Is(err, ErrInvalidJSON) {
			t.Fatalf("Create(%q): expected ErrInvalidJSON, got %v", body, err)
		}
	}

	count, err := m.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected creates must not insert; count=%d", count)
	}
}

func TestGetUnknownBlob(t *testing.T) {
	m, _ := testManager(t, Options{})

	if _, err := m.Get(context.Background(), blobid.New()); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound, got %v", err)
	}
}

func TestUpdatePreservesCreatedAdvancesUpdated(t *testing.T) {
	m, st := testManager(t, Options{})
	ctx := context.Background()

	id, err := m.Create(ctx, `{"v":1}`)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	before, err := st.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if err := m.Update(ctx, id, `{"v":2}`); err != nil {
		t.Fatalf("update: %v", err)
	}

	after, err := st.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if after.Body != `{"v":2}` {
		t.Fatalf("expected updated body, got %q", after.Body)
	}
	if !after.CreatedAt.Equal(before.CreatedAt) {
		t.Fatalf("created_at changed on update: %v != %v", after.CreatedAt, before.CreatedAt)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Fatalf("updated_at did not advance: %v <= %v", after.UpdatedAt, before.UpdatedAt)
	}
}

func TestUpdateMissingBlob(t *testing.T) {
	m, _ := testManager(t, Options{})

	err := m.Update(context.Background(), blobid.New(), `{"v":1}`)
	if !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound, got %v", err)
	}
}

func TestUpdateRejectsInvalidJSON(t *testing.T) {
	m, _ := testManager(t, Options{})
	ctx := context.Background()

	id, err := m.Create(ctx, `{"v":1}`)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := m.Update(ctx, id, `{"broken":`); !errors.Is(err, ErrInvalidJSON) {
		t.Fatalf("expected ErrInvalidJSON, got %v", err)
	}

	got, err := m.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != `{"v":1}` {
		t.Fatalf("rejected update must not modify the blob, got %q", got)
	}
}

func TestDeleteBlob(t *testing.T) {
	m, _ := testManager(t, Options{})
	ctx := context.Background()

	id, err := m.Create(ctx, `{"v":1}`)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := m.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := m.Get(ctx, id); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound after delete, got %v", err)
	}
	if err := m.Delete(ctx, id); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound on double delete, got %v", err)
	}
}

func TestGetBatchesAccessWrite(t *testing.T) {
	m, st := testManager(t, Options{})
	ctx := context.Background()

	id, err := m.Create(ctx, `{"v":1}`)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	created, err := st.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := m.Get(ctx, id); err != nil {
		t.Fatalf("get: %v", err)
	}
	if m.PendingAccessWrites() != 1 {
		t.Fatalf("expected 1 pending access write, got %d", m.PendingAccessWrites())
	}

	// The access time is batched, not written through.
	mid, err := st.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !mid.AccessedAt.Equal(created.AccessedAt) {
		t.Fatal("access write should be deferred until flush")
	}

	m.Flush(ctx)

	if m.PendingAccessWrites() != 0 {
		t.Fatalf("expected 0 pending access writes after flush, got %d", m.PendingAccessWrites())
	}
	after, err := st.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !after.AccessedAt.After(created.AccessedAt) {
		t.Fatalf("expected accessed_at to advance after flush: %v <= %v", after.AccessedAt, created.AccessedAt)
	}
}

func TestFlushKeepsLatestAccessPerBlob(t *testing.T) {
	m, st := testManager(t, Options{})
	ctx := context.Background()

	id, err := m.Create(ctx, `{"v":1}`)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Repeated reads of the same blob collapse into one pending write.
	for i := 0; i < 5; i++ {
		time.Sleep(2 * time.Millisecond)
		if _, err := m.Get(ctx, id); err != nil {
			t.Fatalf("get: %v", err)
		}
	}
	if m.PendingAccessWrites() != 1 {
		t.Fatalf("expected 1 pending access write, got %d", m.PendingAccessWrites())
	}

	before := time.Now().UTC()
	m.Flush(ctx)

	got, err := st.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.AccessedAt.After(before) {
		t.Fatalf("accessed_at in the future: %v > %v", got.AccessedAt, before)
	}
	if before.Sub(got.AccessedAt) > time.Second {
		t.Fatalf("expected accessed_at near the last read, got %v", got.AccessedAt)
	}
}

func TestSweepRemovesStaleKeepsFresh(t *testing.T) {
	m, st := testManager(t, Options{AccessTTL: 24 * time.Hour})
	ctx := context.Background()
	now := time.Now().UTC()

	stale := &models.BlobRecord{
		ID:         blobid.New(),
		Body:       `{"age":"stale"}`,
		CreatedAt:  now.Add(-48 * time.Hour),
		UpdatedAt:  now.Add(-48 * time.Hour),
		AccessedAt: now.Add(-48 * time.Hour),
	}
	if err := st.Insert(ctx, stale); err != nil {
		t.Fatalf("insert stale: %v", err)
	}

	freshID, err := m.Create(ctx, `{"age":"fresh"}`)
	if err != nil {
		t.Fatalf("create fresh: %v", err)
	}

	result, err := m.Sweep(ctx, false)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Removed != 1 {
		t.Fatalf("expected 1 removed, got %d", result.Removed)
	}
	if result.DryRun {
		t.Fatal("expected dry_run false")
	}

	if _, err := m.Get(ctx, stale.ID); !errors.Is(err, ErrBlobNotFound) {
		t.Fatalf("expected stale blob to be gone, got %v", err)
	}
	if _, err := m.Get(ctx, freshID); err != nil {
		t.Fatalf("fresh blob must survive sweep: %v", err)
	}
}

func TestSweepDryRunReportsWithoutDeleting(t *testing.T) {
	m, st := testManager(t, Options{AccessTTL: 24 * time.Hour})
	ctx := context.Background()
	old := time.Now().UTC().Add(-48 * time.Hour)

	stale := &models.BlobRecord{
		ID:         blobid.New(),
		Body:       `{"age":"stale"}`,
		CreatedAt:  old,
		UpdatedAt:  old,
		AccessedAt: old,
	}
	if err := st.Insert(ctx, stale); err != nil {
		t.Fatalf("insert: %v", err)
	}

	result, err := m.Sweep(ctx, true)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if !result.DryRun {
		t.Fatal("expected dry_run true")
	}
	if result.Removed != 0 {
		t.Fatalf("dry run must not delete, removed=%d", result.Removed)
	}
	if len(result.BlobIDs) != 1 || result.BlobIDs[0] != stale.ID.Hex() {
		t.Fatalf("expected candidate id %s, got %v", stale.ID.Hex(), result.BlobIDs)
	}

	if _, err := m.Get(ctx, stale.ID); err != nil {
		t.Fatalf("blob must survive a dry run: %v", err)
	}
}

func TestSweepEmptyStore(t *testing.T) {
	m, _ := testManager(t, Options{AccessTTL: 24 * time.Hour})

	result, err := m.Sweep(context.Background(), false)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Examined != 0 || result.Removed != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestConcurrentCreatesMintDistinctIDs(t *testing.T) {
	m, _ := testManager(t, Options{})
	ctx := context.Background()

	const workers = 8
	var mu sync.Mutex
	ids := make(map[blobid.ID]struct{})

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				id, err := m.Create(ctx, `{"concurrent":true}`)
				if err != nil {
					t.Errorf("create: %v", err)
					return
				}
				mu.Lock()
				ids[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(ids) != workers*10 {
		t.Fatalf("expected %d distinct ids, got %d", workers*10, len(ids))
	}

	count, err := m.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != workers*10 {
		t.Fatalf("expected %d stored blobs, got %d", workers*10, count)
	}
}

func TestStartStopFlushesPendingWrites(t *testing.T) {
	m, st := testManager(t, Options{})
	ctx := context.Background()

	id, err := m.Create(ctx, `{"v":1}`)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	created, err := st.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find: %v", err)
	}

	m.Start()
	time.Sleep(10 * time.Millisecond)
	if _, err := m.Get(ctx, id); err != nil {
		t.Fatalf("get: %v", err)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	m.Stop(stopCtx)

	after, err := st.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !after.AccessedAt.After(created.AccessedAt) {
		t.Fatal("expected pending access write to be flushed on stop")
	}
	if m.PendingAccessWrites() != 0 {
		t.Fatalf("expected 0 pending after stop, got %d", m.PendingAccessWrites())
	}
}
