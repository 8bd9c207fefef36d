package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docuchat/internal/model"
	"docuchat/internal/vectorindex"
)

func seedIndex(index *vectorindex.Memory, sessionID string, texts ...string) {
	entries := make([]vectorindex.Entry, len(texts))
	for i, text := range texts {
		entries[i] = vectorindex.Entry{
			Vector:    []float32{1, 0},
			Passage:   model.Passage{Text: text, SourceFile: "seed.txt", ChunkIndex: i},
			SessionID: sessionID,
		}
	}
	index.Insert(entries)
}

func TestAnswerNoDocuments(t *testing.T) {
	index := vectorindex.NewMemory()
	completer := &stubCompleter{}
	svc := NewAnswerService(index, &stubEmbedder{}, completer, nil, 3, nil)

	answer, err := svc.Answer(context.Background(), "empty-session", "what is this about?")
	if err != nil {
		t.Fatal(err)
	}
	if answer != NoDocumentsAnswer {
		t.Fatalf("expected the no-documents answer, got %q", answer)
	}
	if completer.callCount() != 0 {
		t.Fatalf("completion service was called %d times for an empty session", completer.callCount())
	}
}

func TestAnswerNoDocumentsSkipsEmbedding(t *testing.T) {
	index := vectorindex.NewMemory()
	embedder := &stubEmbedder{fail: true}
	completer := &stubCompleter{}
	svc := NewAnswerService(index, embedder, completer, nil, 3, nil)

	answer, err := svc.Answer(context.Background(), "empty-session", "anything?")
	if err != nil {
		t.Fatal(err)
	}
	if answer != NoDocumentsAnswer {
		t.Fatalf("empty session must answer deterministically even with the embedder down, got %q", answer)
	}
	if embedder.callCount() != 0 {
		t.Fatalf("embedder was called %d times for an empty session", embedder.callCount())
	}
}

func TestAnswerGroundedInSessionPassages(t *testing.T) {
	index := vectorindex.NewMemory()
	seedIndex(index, "s1", "Paris is the capital of France.")
	seedIndex(index, "s2", "Berlin is the capital of Germany.")
	completer := &stubCompleter{}
	svc := NewAnswerService(index, &stubEmbedder{}, completer, nil, 3, nil)

	answer, err := svc.Answer(context.Background(), "s1", "capital of France?")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(answer, "Paris is the capital of France.") {
		t.Fatalf("prompt did not include the session passage: %q", answer)
	}
	if strings.Contains(answer, "Berlin") {
		t.Fatalf("prompt leaked another session's passage: %q", answer)
	}
	if !strings.Contains(answer, "capital of France?") {
		t.Fatalf("prompt did not include the question: %q", answer)
	}
}

func TestAnswerDegradesOnCompletionFailure(t *testing.T) {
	index := vectorindex.NewMemory()
	seedIndex(index, "s1", "some context")
	completer := &stubCompleter{fail: true}
	svc := NewAnswerService(index, &stubEmbedder{}, completer, nil, 3, nil)

	answer, err := svc.Answer(context.Background(), "s1", "a question")
	if err != nil {
		t.Fatal(err)
	}
	if answer != DegradedAnswer {
		t.Fatalf("expected degraded answer, got %q", answer)
	}
}

func TestAnswerDegradesOnEmbedderFailure(t *testing.T) {
	index := vectorindex.NewMemory()
	seedIndex(index, "s1", "some context")
	completer := &stubCompleter{}
	svc := NewAnswerService(index, &stubEmbedder{fail: true}, completer, nil, 3, nil)

	answer, err := svc.Answer(context.Background(), "s1", "a question")
	if err != nil {
		t.Fatal(err)
	}
	if answer != DegradedAnswer {
		t.Fatalf("expected degraded answer, got %q", answer)
	}
	if completer.callCount() != 0 {
		t.Fatal("completion must not be called when the query embedding fails")
	}
}

func TestAnswerRejectsEmptyQuery(t *testing.T) {
	svc := NewAnswerService(vectorindex.NewMemory(), &stubEmbedder{}, &stubCompleter{}, nil, 3, nil)
	if _, err := svc.Answer(context.Background(), "s1", "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAnswerHonorsTopK(t *testing.T) {
	index := vectorindex.NewMemory()
	seedIndex(index, "s1", "p0", "p1", "p2", "p3", "p4")
	completer := &stubCompleter{}
	svc := NewAnswerService(index, &stubEmbedder{}, completer, nil, 3, nil)

	answer, err := svc.Answer(context.Background(), "s1", "q")
	if err != nil {
		t.Fatal(err)
	}
	for _, present := range []string{"p0", "p1", "p2"} {
		if !strings.Contains(answer, present) {
			t.Fatalf("expected %s in prompt, got %q", present, answer)
		}
	}
	if strings.Contains(answer, "p3") || strings.Contains(answer, "p4") {
		t.Fatalf("prompt includes more than top-k passages: %q", answer)
	}
}
