package app

import (
	"context"
	"errors"
	"sync"

	"docuchat/internal/model"
)

// stubEmbedder maps each text to a deterministic 2-d vector so cosine
// ordering in tests is predictable.
type stubEmbedder struct {
	mu    sync.Mutex
	calls int
	fail  bool
	byKey map[string][]float32
}

func (e *stubEmbedder) vector(text string) []float32 {
	if v, ok := e.byKey[text]; ok {
		return v
	}
	return []float32{1, 0}
}

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.fail {
		return nil, errors.New("embedder down")
	}
	return e.vector(text), nil
}

func (e *stubEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func (e *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.fail {
		return nil, errors.New("embedder down")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

type stubCompleter struct {
	mu     sync.Mutex
	calls  int
	fail   bool
	answer string
}

func (c *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if c.fail {
		return "", errors.New("completion service down")
	}
	if c.answer != "" {
		return c.answer, nil
	}
	return "answer for: " + prompt, nil
}

func (c *stubCompleter) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type stubPublisher struct {
	mu     sync.Mutex
	events []model.Event
}

func (p *stubPublisher) Publish(_ context.Context, event model.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *stubPublisher) byType(eventType string) []model.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []model.Event
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
