// Package vectorindex provides the in-memory similarity index backing
// retrieval. Entries are bucketed by session so one caller's passages
// are structurally invisible to every other caller.
package vectorindex

import (
	"math"
	"sort"
	"sync"

	"docuchat/internal/model"
)

// Entry is one indexed passage with its embedding and owning session.
type Entry struct {
	Vector    []float32
	Passage   model.Passage
	SessionID string
}

// Memory is a brute-force cosine-similarity index. Buckets keyed by
// session id make Delete proportional to the session's own entries
// and keep Search from ever touching another session's data.
type Memory struct {
	mu      sync.RWMutex
	buckets map[string][]Entry
}

func NewMemory() *Memory {
	return &Memory{buckets: make(map[string][]Entry)}
}

// Insert adds a batch of entries. The whole batch becomes visible to
// concurrent Search calls at once, or not at all.
func (m *Memory) Insert(entries []Entry) {
	if len(entries) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.buckets[e.SessionID] = append(m.buckets[e.SessionID], e)
	}
}

// Search returns up to k passages from sessionID's bucket ordered by
// descending cosine similarity, ties broken by insertion order. An
// empty index or unknown session yields an empty result, never an
// error.
func (m *Memory) Search(query []float32, k int, sessionID string) []model.ScoredPassage {
	if k <= 0 {
		return nil
	}

	m.mu.RLock()
	bucket := m.buckets[sessionID]
	scored := make([]model.ScoredPassage, len(bucket))
	for i, e := range bucket {
		scored[i] = model.ScoredPassage{
			Passage: e.Passage,
			Score:   cosineSimilarity(query, e.Vector),
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}

// Delete removes every entry tagged with sessionID and reports how
// many were removed. Deleting an unknown session returns 0.
func (m *Memory) Delete(sessionID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := len(m.buckets[sessionID])
	delete(m.buckets, sessionID)
	return removed
}

// ClearAll drops every entry regardless of session.
func (m *Memory) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buckets = make(map[string][]Entry)
}

// Count reports the total number of entries across all sessions.
func (m *Memory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, bucket := range m.buckets {
		total += len(bucket)
	}
	return total
}

// SessionCount reports the number of entries tagged with sessionID.
func (m *Memory) SessionCount(sessionID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.buckets[sessionID])
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
