package app

import (
	"context"
	"errors"

	"docuchat/internal/model"
	"docuchat/internal/vectorindex"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrShuttingDown         = errors.New("service is shutting down")
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// Embedder maps text to fixed-dimension vectors. The same embedder
// must serve ingestion and queries so similarity scores line up.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer is the opaque text-completion service behind answers.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// VectorIndex stores session-tagged passage embeddings.
type VectorIndex interface {
	Insert(entries []vectorindex.Entry)
	Search(query []float32, k int, sessionID string) []model.ScoredPassage
	SessionCount(sessionID string) int
	Delete(sessionID string) int
	ClearAll()
	Count() int
}

// AnswerCache memoizes answers per session. Implementations may be
// absent; callers treat a nil cache as a pass-through.
type AnswerCache interface {
	GetAnswer(ctx context.Context, sessionID, query string) (string, bool, error)
	SetAnswer(ctx context.Context, sessionID, query, answer string) error
	DeleteSession(ctx context.Context, sessionID string) error
}

// EventPublisher emits session lifecycle events. May be absent.
type EventPublisher interface {
	Publish(ctx context.Context, event model.Event) error
}
