package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"docuchat/internal/chunker"
	"docuchat/internal/loader"
	"docuchat/internal/model"
	"docuchat/internal/store"
	"docuchat/internal/vectorindex"
)

const embeddingBatchSize = 10 // embedding APIs commonly cap batch size

// UploadFile is one raw file blob handed in by the transport layer.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// FileIssue reports a single file the pipeline could not use.
type FileIssue struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// IngestResult summarizes one ingestion run. Stored == 0 with no
// error means every file was unsupported or corrupt; the caller
// decides whether that is a problem.
type IngestResult struct {
	SessionID string      `json:"session_id"`
	Stored    int         `json:"stored_passages"`
	Ingested  []string    `json:"ingested_files"`
	Skipped   []FileIssue `json:"skipped_files,omitempty"`
}

// IngestService runs the upload pipeline: persist each file into the
// session namespace, decode it, chunk, embed in batches, and insert
// the tagged entries into the vector index.
type IngestService struct {
	store     *store.SessionStore
	index     VectorIndex
	loaders   *loader.Registry
	embedder  Embedder
	splitter  *chunker.Chunker
	cache     AnswerCache
	events    EventPublisher
	lifecycle *LifecycleManager
}

func NewIngestService(
	sessionStore *store.SessionStore,
	index VectorIndex,
	loaders *loader.Registry,
	embedder Embedder,
	splitter *chunker.Chunker,
	cache AnswerCache,
	events EventPublisher,
	lifecycle *LifecycleManager,
) *IngestService {
	return &IngestService{
		store:     sessionStore,
		index:     index,
		loaders:   loaders,
		embedder:  embedder,
		splitter:  splitter,
		cache:     cache,
		events:    events,
		lifecycle: lifecycle,
	}
}

// Ingest processes the uploaded files for sessionID. A failure in one
// file never aborts the rest; unsupported and corrupt files are
// reported in the result. Files are persisted before decoding so a
// later cleanup can always find them, ingestion outcome aside.
func (s *IngestService) Ingest(ctx context.Context, sessionID string, files []UploadFile) (*IngestResult, error) {
	if s.lifecycle != nil && s.lifecycle.ShuttingDown() {
		return nil, ErrShuttingDown
	}
	if sessionID == "" || len(files) == 0 {
		return nil, ErrInvalidInput
	}

	result := &IngestResult{SessionID: sessionID}
	var passages []model.Passage

	for _, file := range files {
		name := filepath.Base(strings.TrimSpace(file.Name))
		if name == "" || name == "." {
			result.Skipped = append(result.Skipped, FileIssue{Name: file.Name, Reason: "empty file name"})
			continue
		}

		storagePath, err := s.persist(sessionID, name, file.Data)
		if err != nil {
			log.Printf("persist upload %s failed: %v", name, err)
			result.Skipped = append(result.Skipped, FileIssue{Name: name, Reason: "storing file failed"})
			continue
		}
		if err := s.store.RecordUpload(sessionID, model.FileRecord{
			OriginalName: name,
			StoragePath:  storagePath,
			ContentType:  file.ContentType,
			UploadedAt:   time.Now().UTC(),
		}); err != nil {
			return nil, err
		}

		ext := strings.ToLower(filepath.Ext(name))
		if !s.loaders.Supported(ext) {
			result.Skipped = append(result.Skipped, FileIssue{Name: name, Reason: "unsupported file type"})
			continue
		}

		text, err := s.loaders.Load(storagePath, ext)
		if err != nil {
			log.Printf("load %s failed: %v", name, err)
			result.Skipped = append(result.Skipped, FileIssue{Name: name, Reason: "file could not be read"})
			continue
		}
		if strings.TrimSpace(text) == "" {
			result.Skipped = append(result.Skipped, FileIssue{Name: name, Reason: "no extractable text"})
			continue
		}

		filePassages := s.splitter.Split(name, text)
		passages = append(passages, filePassages...)
		result.Ingested = append(result.Ingested, name)
	}

	if len(passages) == 0 {
		return result, nil
	}

	vectors, err := s.embedAll(ctx, passages)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}

	entries := make([]vectorindex.Entry, len(passages))
	for i := range passages {
		entries[i] = vectorindex.Entry{
			Vector:    vectors[i],
			Passage:   passages[i],
			SessionID: sessionID,
		}
	}
	s.index.Insert(entries)
	result.Stored = len(entries)

	if s.cache != nil {
		if err := s.cache.DeleteSession(ctx, sessionID); err != nil {
			log.Printf("invalidate answer cache for %s failed: %v", sessionID, err)
		}
	}
	s.publishIngested(ctx, result)

	return result, nil
}

// persist writes the blob into the session namespace under a
// uuid-prefixed name so repeated uploads of the same file never
// collide.
func (s *IngestService) persist(sessionID, name string, data []byte) (string, error) {
	dir := s.store.Dir(sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, uuid.NewString()+"_"+name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// embedAll embeds passages in bounded batches. No session or index
// lock is held here; the network round trip runs unguarded.
func (s *IngestService) embedAll(ctx context.Context, passages []model.Passage) ([][]float32, error) {
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}

	var vectors [][]float32
	for i := 0; i < len(texts); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := s.embedder.EmbedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: %d texts, %d vectors", len(texts), len(vectors))
	}
	return vectors, nil
}

func (s *IngestService) publishIngested(ctx context.Context, result *IngestResult) {
	if s.events == nil {
		return
	}
	event := model.Event{
		Type:       model.EventSessionIngested,
		SessionID:  result.SessionID,
		Files:      len(result.Ingested),
		Passages:   result.Stored,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		log.Printf("publish ingest event failed: %v", err)
	}
}
