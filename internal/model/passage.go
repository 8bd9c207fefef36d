package model

// Passage is a bounded slice of source-document text used as a
// retrieval unit. Neighboring passages from the same file overlap so
// that context crossing a chunk boundary survives retrieval.
type Passage struct {
	Text       string `json:"text"`
	SourceFile string `json:"source_file"`
	ChunkIndex int    `json:"chunk_index"`
}

// ScoredPassage pairs a retrieved passage with its similarity score.
type ScoredPassage struct {
	Passage Passage `json:"passage"`
	Score   float32 `json:"score"`
}
