package model

import "time"

// Session groups the files one caller uploaded and the index entries
// derived from them. The ID doubles as the storage namespace key.
type Session struct {
	ID           string       `json:"id"`
	CreatedAt    time.Time    `json:"created_at"`
	LastActiveAt time.Time    `json:"last_active_at"`
	Files        []FileRecord `json:"files"`
}

// FileRecord describes a single uploaded file. Immutable once created;
// its lifetime is bounded by the owning session.
type FileRecord struct {
	OriginalName string    `json:"original_name"`
	StoragePath  string    `json:"storage_path"`
	ContentType  string    `json:"content_type"`
	UploadedAt   time.Time `json:"uploaded_at"`
}
