package app

import (
	"context"
	"os"
	"testing"
	"time"

	"docuchat/internal/model"
	"docuchat/internal/store"
	"docuchat/internal/vectorindex"
)

func seedSession(t *testing.T, sessions *store.SessionStore, index *vectorindex.Memory) string {
	t.Helper()
	sess, _, err := sessions.GetOrCreate("")
	if err != nil {
		t.Fatal(err)
	}
	index.Insert([]vectorindex.Entry{{
		Vector:    []float32{1, 0},
		Passage:   model.Passage{Text: "content", SourceFile: "f.txt"},
		SessionID: sess.ID,
	}})
	if err := os.WriteFile(sessions.Dir(sess.ID)+"/f.txt", []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}
	return sess.ID
}

func TestClearSessionReclaimsEverything(t *testing.T) {
	sessions := store.NewSessionStore(t.TempDir())
	index := vectorindex.NewMemory()
	publisher := &stubPublisher{}
	m := NewLifecycleManager(sessions, index, nil, publisher, time.Hour, time.Hour)

	id := seedSession(t, sessions, index)
	if err := m.ClearSession(context.Background(), id); err != nil {
		t.Fatal(err)
	}

	if index.SessionCount(id) != 0 {
		t.Fatal("index entries survived the clear")
	}
	if _, err := os.Stat(sessions.Dir(id)); !os.IsNotExist(err) {
		t.Fatal("storage namespace survived the clear")
	}
	if _, created, _ := sessions.GetOrCreate(id); !created {
		t.Fatal("session record survived the clear")
	}
	events := publisher.byType("session.reclaimed")
	if len(events) != 1 || events[0].Reason != "clear" {
		t.Fatalf("unexpected reclaim events: %+v", events)
	}
}

func TestClearUnknownSessionIsNoOp(t *testing.T) {
	sessions := store.NewSessionStore(t.TempDir())
	m := NewLifecycleManager(sessions, vectorindex.NewMemory(), nil, nil, time.Hour, time.Hour)
	if err := m.ClearSession(context.Background(), "ghost"); err != nil {
		t.Fatalf("clear of unknown session errored: %v", err)
	}
	if err := m.ClearSession(context.Background(), ""); err != nil {
		t.Fatalf("clear of empty id errored: %v", err)
	}
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	sessions := store.NewSessionStore(t.TempDir())
	index := vectorindex.NewMemory()
	ttl := 50 * time.Millisecond
	m := NewLifecycleManager(sessions, index, nil, nil, ttl, time.Hour)

	idle := seedSession(t, sessions, index)
	time.Sleep(2 * ttl)
	active := seedSession(t, sessions, index)

	m.Sweep(time.Now().UTC())

	if index.SessionCount(idle) != 0 {
		t.Fatal("idle session kept its index entries")
	}
	if _, err := os.Stat(sessions.Dir(idle)); !os.IsNotExist(err) {
		t.Fatal("idle session kept its storage")
	}
	if _, created, _ := sessions.GetOrCreate(idle); !created {
		t.Fatal("idle session record survived the sweep")
	}
	if index.SessionCount(active) != 1 {
		t.Fatal("active session was evicted")
	}
}

func TestShutdownLeavesNoResidue(t *testing.T) {
	sessions := store.NewSessionStore(t.TempDir())
	index := vectorindex.NewMemory()
	m := NewLifecycleManager(sessions, index, nil, nil, time.Hour, time.Hour)

	var ids []string
	for i := 0; i < 3; i++ {
		ids = append(ids, seedSession(t, sessions, index))
	}
	if index.Count() != 3 {
		t.Fatalf("expected 3 entries before shutdown, got %d", index.Count())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	m.Shutdown(ctx)

	if index.Count() != 0 {
		t.Fatalf("index not empty after shutdown: %d entries", index.Count())
	}
	for _, id := range ids {
		if _, err := os.Stat(sessions.Dir(id)); !os.IsNotExist(err) {
			t.Fatalf("storage for %s survived shutdown", id)
		}
	}
	entries, err := os.ReadDir(sessions.Root())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("upload root not empty after shutdown: %d entries", len(entries))
	}
	if !m.ShuttingDown() {
		t.Fatal("manager does not report shutting down")
	}
}

func TestResetReclaimsSessionsAndStrayDirs(t *testing.T) {
	sessions := store.NewSessionStore(t.TempDir())
	index := vectorindex.NewMemory()
	m := NewLifecycleManager(sessions, index, nil, nil, time.Hour, time.Hour)

	id := seedSession(t, sessions, index)
	// residue a crashed prior process would leave behind
	stray := sessions.Root() + "/session_orphan"
	if err := os.MkdirAll(stray, 0o755); err != nil {
		t.Fatal(err)
	}

	if err := m.Reset(context.Background()); err != nil {
		t.Fatal(err)
	}

	if index.Count() != 0 {
		t.Fatalf("index not empty after reset: %d", index.Count())
	}
	entries, err := os.ReadDir(sessions.Root())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("upload root not empty after reset: %d entries", len(entries))
	}
	if _, created, _ := sessions.GetOrCreate(id); !created {
		t.Fatal("session record survived the reset")
	}
	if m.ShuttingDown() {
		t.Fatal("reset must not put the manager into shutdown")
	}
}

func TestStartCleansLeftoverUploads(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(root+"/session_stale", 0o755); err != nil {
		t.Fatal(err)
	}
	sessions := store.NewSessionStore(root)
	m := NewLifecycleManager(sessions, vectorindex.NewMemory(), nil, nil, time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	defer m.BeginShutdown()

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("leftover session dirs survived start: %d", len(entries))
	}
}

func TestShuttingDownRejectsNewWork(t *testing.T) {
	sessions := store.NewSessionStore(t.TempDir())
	index := vectorindex.NewMemory()
	m := NewLifecycleManager(sessions, index, nil, nil, time.Hour, time.Hour)
	m.BeginShutdown()

	ingest := NewIngestService(sessions, index, nil, &stubEmbedder{}, nil, nil, nil, m)
	if _, err := ingest.Ingest(context.Background(), "s", []UploadFile{{Name: "a.txt"}}); err != ErrShuttingDown {
		t.Fatalf("expected ErrShuttingDown from ingest, got %v", err)
	}

	answer := NewAnswerService(index, &stubEmbedder{}, &stubCompleter{}, nil, 3, m)
	if _, err := answer.Answer(context.Background(), "s", "q"); err != ErrShuttingDown {
		t.Fatalf("expected ErrShuttingDown from answer, got %v", err)
	}
}
