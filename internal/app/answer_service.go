package app

import (
	"context"
	"log"
	"strings"

	"docuchat/internal/model"
)

const (
	defaultTopK = 3

	// NoDocumentsAnswer is returned without calling the completion
	// service when the session has nothing indexed.
	NoDocumentsAnswer = "Please upload documents so I can answer your question."

	// DegradedAnswer is the user-facing reply when the embedding or
	// completion service fails. Chat must always return something.
	DegradedAnswer = "Sorry, I could not generate an answer right now. Please try again in a moment."
)

// AnswerService retrieves the passages most similar to a query within
// one session and asks the completion service for a grounded answer.
type AnswerService struct {
	index     VectorIndex
	embedder  Embedder
	completer Completer
	cache     AnswerCache
	topK      int
	lifecycle *LifecycleManager
}

func NewAnswerService(
	index VectorIndex,
	embedder Embedder,
	completer Completer,
	cache AnswerCache,
	topK int,
	lifecycle *LifecycleManager,
) *AnswerService {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &AnswerService{
		index:     index,
		embedder:  embedder,
		completer: completer,
		cache:     cache,
		topK:      topK,
		lifecycle: lifecycle,
	}
}

// Answer returns a grounded answer for the query, scoped to the
// session's own documents. Dependency failures degrade to a fixed
// message instead of an error: this is a chat surface.
func (s *AnswerService) Answer(ctx context.Context, sessionID, query string) (string, error) {
	if s.lifecycle != nil && s.lifecycle.ShuttingDown() {
		return "", ErrShuttingDown
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrInvalidInput
	}

	if s.cache != nil && sessionID != "" {
		if answer, ok, err := s.cache.GetAnswer(ctx, sessionID, query); err != nil {
			log.Printf("answer cache lookup failed: %v", err)
		} else if ok {
			return answer, nil
		}
	}

	// an empty session never costs an embedding round trip, and the
	// no-documents answer stays deterministic when the embedder is down
	if s.index.SessionCount(sessionID) == 0 {
		return NoDocumentsAnswer, nil
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("embed query failed: %v", err)
		return DegradedAnswer, nil
	}

	passages := s.index.Search(queryVec, s.topK, sessionID)
	if len(passages) == 0 {
		return NoDocumentsAnswer, nil
	}

	answer, err := s.completer.Complete(ctx, buildPrompt(passages, query))
	if err != nil {
		log.Printf("completion failed: %v", err)
		return DegradedAnswer, nil
	}
	answer = strings.TrimSpace(answer)

	if s.cache != nil && sessionID != "" {
		if err := s.cache.SetAnswer(ctx, sessionID, query, answer); err != nil {
			log.Printf("answer cache store failed: %v", err)
		}
	}
	return answer, nil
}

// buildPrompt stitches the ranked passages into a context block ahead
// of the question.
func buildPrompt(passages []model.ScoredPassage, query string) string {
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Passage.Text
	}
	var b strings.Builder
	b.WriteString("Use the following documents to answer the question:\n\n")
	b.WriteString(strings.Join(texts, "\n\n"))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(query)
	return b.String()
}
