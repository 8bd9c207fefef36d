package chunker

import (
	"errors"

	"docuchat/internal/model"
)

var ErrBadOverlap = errors.New("chunk overlap must be smaller than chunk size")

// Chunker splits document text into fixed-size passages measured in
// runes, each repeating the trailing runes of its predecessor.
type Chunker struct {
	size    int
	overlap int
}

func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, errors.New("chunk size must be positive")
	}
	if overlap < 0 || overlap >= size {
		return nil, ErrBadOverlap
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split cuts text into overlapping passages tagged with sourceFile.
// Empty input yields no passages; text no longer than the chunk size
// yields exactly one.
func (c *Chunker) Split(sourceFile, text string) []model.Passage {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= c.size {
		return []model.Passage{{
			Text:       text,
			SourceFile: sourceFile,
			ChunkIndex: 0,
		}}
	}

	step := c.size - c.overlap
	var passages []model.Passage
	for start := 0; start < len(runes); start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		passages = append(passages, model.Passage{
			Text:       string(runes[start:end]),
			SourceFile: sourceFile,
			ChunkIndex: len(passages),
		})
	}
	return passages
}
