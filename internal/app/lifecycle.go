package app

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"docuchat/internal/model"
	"docuchat/internal/store"
)

const (
	ReclaimReasonClear    = "clear"
	ReclaimReasonExpired  = "expired"
	ReclaimReasonShutdown = "shutdown"
)

// LifecycleManager reclaims per-session storage and index entries on
// explicit clear, idle expiry, and shutdown. Reclamation order is
// fixed: storage namespace, index entries, then the session record,
// so a crash mid-cleanup leaves a trace the next sweep can re-clean
// instead of an orphaned resource.
type LifecycleManager struct {
	store  *store.SessionStore
	index  VectorIndex
	cache  AnswerCache
	events EventPublisher

	ttl           time.Duration
	sweepInterval time.Duration

	shuttingDown atomic.Bool
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

func NewLifecycleManager(
	sessionStore *store.SessionStore,
	index VectorIndex,
	cache AnswerCache,
	events EventPublisher,
	ttl, sweepInterval time.Duration,
) *LifecycleManager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}
	return &LifecycleManager{
		store:         sessionStore,
		index:         index,
		cache:         cache,
		events:        events,
		ttl:           ttl,
		sweepInterval: sweepInterval,
	}
}

// Start wipes residue left by a previous process and launches the
// periodic idle sweep.
func (m *LifecycleManager) Start(ctx context.Context) {
	if m.cancel != nil {
		return
	}
	m.cleanUploadRoot()

	sweepCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				m.Sweep(time.Now().UTC())
			}
		}
	}()
}

// Sweep reclaims every session idle for at least the configured TTL.
// A session destroyed concurrently by an explicit clear is reclaimed
// as a no-op.
func (m *LifecycleManager) Sweep(now time.Time) {
	for _, id := range m.store.ExpireIdle(now, m.ttl) {
		if err := m.reclaim(context.Background(), id, ReclaimReasonExpired); err != nil {
			log.Printf("evict idle session %s failed: %v", id, err)
		}
	}
}

// ClearSession synchronously reclaims one session. Unknown sessions
// are a no-op, not an error.
func (m *LifecycleManager) ClearSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return m.reclaim(ctx, sessionID, ReclaimReasonClear)
}

// BeginShutdown flags the manager so new ingest and answer calls are
// rejected, and stops the idle sweep. The hosting process calls this
// before draining in-flight requests.
func (m *LifecycleManager) BeginShutdown() {
	m.shuttingDown.Store(true)
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

// Shutdown reclaims every active session, clears the whole index and
// wipes the upload root so no residue survives a restart. Callers
// bound it with the context deadline.
func (m *LifecycleManager) Shutdown(ctx context.Context) {
	m.BeginShutdown()

	for _, id := range m.store.ActiveIDs() {
		if ctx.Err() != nil {
			log.Printf("shutdown reclamation interrupted: %v", ctx.Err())
			break
		}
		if err := m.reclaim(ctx, id, ReclaimReasonShutdown); err != nil {
			log.Printf("reclaim session %s on shutdown failed: %v", id, err)
		}
	}

	m.index.ClearAll()
	m.cleanUploadRoot()
}

// Reset reclaims every active session, clears the whole index and
// wipes the upload root, without entering shutdown. Residue from a
// crashed prior process is removed along with the live sessions.
func (m *LifecycleManager) Reset(ctx context.Context) error {
	for _, id := range m.store.ActiveIDs() {
		if err := m.reclaim(ctx, id, ReclaimReasonClear); err != nil {
			return err
		}
	}
	m.index.ClearAll()
	m.cleanUploadRoot()
	return nil
}

// ShuttingDown reports whether graceful shutdown has begun.
func (m *LifecycleManager) ShuttingDown() bool {
	return m.shuttingDown.Load()
}

// reclaim removes the session's storage namespace, then its index
// entries, then the session record. Each step is idempotent; a
// storage error is logged but does not block the next sweep from
// retrying because the record survives until everything else is gone.
func (m *LifecycleManager) reclaim(ctx context.Context, sessionID, reason string) error {
	if err := os.RemoveAll(m.store.Dir(sessionID)); err != nil {
		return err
	}
	removed := m.index.Delete(sessionID)

	if m.cache != nil {
		if err := m.cache.DeleteSession(ctx, sessionID); err != nil {
			log.Printf("drop cached answers for %s failed: %v", sessionID, err)
		}
	}

	m.store.Destroy(sessionID)

	if m.events != nil {
		event := model.Event{
			Type:       model.EventSessionReclaimed,
			SessionID:  sessionID,
			Passages:   removed,
			Reason:     reason,
			OccurredAt: time.Now().UTC(),
		}
		if err := m.events.Publish(ctx, event); err != nil {
			log.Printf("publish reclaim event failed: %v", err)
		}
	}
	return nil
}

func (m *LifecycleManager) cleanUploadRoot() {
	root := m.store.Root()
	entries, err := os.ReadDir(root)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("read upload root failed: %v", err)
		}
		return
	}
	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			log.Printf("remove leftover %s failed: %v", path, err)
		}
	}
}
