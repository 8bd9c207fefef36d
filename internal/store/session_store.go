// Package store tracks active upload sessions and their file
// metadata. It owns the mapping from session id to the isolated
// on-disk namespace where that session's files live.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"docuchat/internal/model"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps every active session in memory. The mutex covers
// only map and record mutation; callers never hold it across disk or
// network operations.
type SessionStore struct {
	mu       sync.RWMutex
	root     string
	sessions map[string]*model.Session
}

func NewSessionStore(root string) *SessionStore {
	return &SessionStore{
		root:     root,
		sessions: make(map[string]*model.Session),
	}
}

// GetOrCreate resolves an external token to a session. An empty or
// unknown token mints a fresh session with its own storage directory;
// a known token refreshes the session's last-active timestamp. The
// second return reports whether a new session was created.
func (s *SessionStore) GetOrCreate(token string) (model.Session, bool, error) {
	now := time.Now().UTC()

	s.mu.Lock()
	if token != "" {
		if sess, ok := s.sessions[token]; ok {
			sess.LastActiveAt = now
			snapshot := *sess
			s.mu.Unlock()
			return snapshot, false, nil
		}
	}
	id := uuid.NewString()
	sess := &model.Session{ID: id, CreatedAt: now, LastActiveAt: now}
	s.sessions[id] = sess
	snapshot := *sess
	s.mu.Unlock()

	if err := os.MkdirAll(s.Dir(id), 0o755); err != nil {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return model.Session{}, false, fmt.Errorf("create session storage failed: %w", err)
	}
	return snapshot, true, nil
}

// Refresh updates the session's last-active timestamp. Unknown
// sessions are ignored.
func (s *SessionStore) Refresh(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.LastActiveAt = time.Now().UTC()
	}
}

// RecordUpload appends a file record to the session and refreshes its
// last-active timestamp.
func (s *SessionStore) RecordUpload(id string, rec model.FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	sess.Files = append(sess.Files, rec)
	sess.LastActiveAt = time.Now().UTC()
	return nil
}

// ListFiles returns the session's file records in upload order, empty
// for an unknown session.
func (s *SessionStore) ListFiles(id string) []model.FileRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	files := make([]model.FileRecord, len(sess.Files))
	copy(files, sess.Files)
	return files
}

// ExpireIdle reports the ids of sessions idle for at least ttl as of
// now. Detection only; reclamation is the lifecycle manager's job.
func (s *SessionStore) ExpireIdle(now time.Time, ttl time.Duration) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var expired []string
	for id, sess := range s.sessions {
		if now.Sub(sess.LastActiveAt) >= ttl {
			expired = append(expired, id)
		}
	}
	return expired
}

// ActiveIDs returns the ids of all live sessions.
func (s *SessionStore) ActiveIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Destroy forgets the session record. Callers must reclaim the
// session's storage and index entries first, so that a crash between
// the two leaves a re-cleanable trace instead of an orphan.
func (s *SessionStore) Destroy(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Dir returns the storage namespace for a session id. The path is
// deterministic so cleanup can locate it even for a forgotten session.
func (s *SessionStore) Dir(id string) string {
	return filepath.Join(s.root, "session_"+id)
}

// Root returns the directory under which all session namespaces live.
func (s *SessionStore) Root() string {
	return s.root
}
