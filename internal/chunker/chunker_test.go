package chunker

import (
	"strings"
	"testing"
)

func TestNewRejectsBadOverlap(t *testing.T) {
	if _, err := New(100, 100); err == nil {
		t.Fatal("expected error for overlap == size")
	}
	if _, err := New(100, 200); err == nil {
		t.Fatal("expected error for overlap > size")
	}
	if _, err := New(0, 0); err == nil {
		t.Fatal("expected error for zero size")
	}
}

func TestSplitEmptyInput(t *testing.T) {
	c, err := New(1000, 200)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Split("a.txt", ""); len(got) != 0 {
		t.Fatalf("expected no passages, got %d", len(got))
	}
}

func TestSplitShortDocumentSinglePassage(t *testing.T) {
	c, _ := New(1000, 200)
	passages := c.Split("a.txt", "short document")
	if len(passages) != 1 {
		t.Fatalf("expected 1 passage, got %d", len(passages))
	}
	if passages[0].Text != "short document" {
		t.Fatalf("unexpected text %q", passages[0].Text)
	}
	if passages[0].SourceFile != "a.txt" || passages[0].ChunkIndex != 0 {
		t.Fatalf("unexpected passage metadata: %+v", passages[0])
	}
}

func TestSplitExactSizeSinglePassage(t *testing.T) {
	c, _ := New(1000, 200)
	passages := c.Split("a.txt", strings.Repeat("y", 1000))
	if len(passages) != 1 {
		t.Fatalf("expected 1 passage for a chunk-size document, got %d", len(passages))
	}
}

func TestSplitFourPassagesAt2500Chars(t *testing.T) {
	c, _ := New(1000, 200)
	text := strings.Repeat("x", 2500)
	passages := c.Split("big.txt", text)
	if len(passages) != 4 {
		t.Fatalf("expected 4 passages, got %d", len(passages))
	}
	// windows at 0, 800, 1600 and 2400, the last two clamped
	wantLens := []int{1000, 1000, 900, 100}
	for i, p := range passages {
		if len(p.Text) != wantLens[i] {
			t.Fatalf("passage %d is %d chars, want %d", i, len(p.Text), wantLens[i])
		}
		if p.ChunkIndex != i {
			t.Fatalf("passage %d has index %d", i, p.ChunkIndex)
		}
	}
}

func TestSplitCoversOriginalText(t *testing.T) {
	const size, overlap = 50, 10
	c, _ := New(size, overlap)
	text := strings.Repeat("abcdefghij", 37) // 370 chars, not step-aligned
	passages := c.Split("doc.txt", text)

	var rebuilt strings.Builder
	for i, p := range passages {
		if i == 0 {
			rebuilt.WriteString(p.Text)
			continue
		}
		runes := []rune(p.Text)
		if len(runes) > overlap {
			rebuilt.WriteString(string(runes[overlap:]))
		}
	}
	if rebuilt.String() != text {
		t.Fatalf("reassembled text does not match original (%d vs %d chars)",
			rebuilt.Len(), len(text))
	}
}

func TestSplitOverlapRepeatsTail(t *testing.T) {
	c, _ := New(10, 4)
	passages := c.Split("d.txt", "0123456789abcdefghij")
	if len(passages) < 2 {
		t.Fatalf("expected at least 2 passages, got %d", len(passages))
	}
	first, second := passages[0].Text, passages[1].Text
	if !strings.HasPrefix(second, first[len(first)-4:]) {
		t.Fatalf("second passage %q does not start with tail of first %q", second, first)
	}
}
