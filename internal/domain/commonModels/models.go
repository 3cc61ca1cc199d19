package commonModels

import (
	"context"
	"path/filepath"
	"strings"
	"time"
)

// DocumentRecord is the relational identity of an uploaded document.
type DocumentRecord struct {
	Id         int64     `json:"id"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploaded_timestamp"`
}

// Chunk is a window of document text on its way into the index. It is never persisted as-is.
type Chunk struct {
	Text    string `json:"content"`
	FileId  int64  `json:"file_id"`
	Ordinal int    `json:"ordinal"`
	Segment int    `json:"segment"`
}

// VectorEntry is what a vector backend stores for one chunk.
type VectorEntry struct {
	Id        string    `json:"id"`
	Embedding []float32 `json:"-"`
	FileId    int64     `json:"file_id"`
	Ordinal   int       `json:"ordinal"`
	Segment   int       `json:"segment"`
	Content   string    `json:"content"`
	Filename  string    `json:"filename"`
}

// ScoredChunk is a retrieval hit; higher Score is more similar.
type ScoredChunk struct {
	Entry VectorEntry `json:"entry"`
	Score float32     `json:"score"`
}

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var HTML DocType = "HTML"
var ERR DocType = "ERROR"

// AllowedExtensions is the upload allow-list; anything else is rejected before a store is touched.
var AllowedExtensions = map[string]DocType{
	".pdf":  PDF,
	".docx": DOCX,
	".html": HTML,
}

func GetDocType(filename string) DocType {
	if t, ok := AllowedExtensions[strings.ToLower(filepath.Ext(filename))]; ok {
		return t
	}
	return ERR
}

type Outcome string

const (
	Deleted  Outcome = "Deleted"
	NotFound Outcome = "NotFound"
)

// MetadataStore owns DocumentRecords. Implementations must be safe for concurrent use.
type MetadataStore interface {
	Insert(ctx context.Context, filename string, uploadedAt time.Time) (DocumentRecord, error)
	Get(ctx context.Context, id int64) (DocumentRecord, error)
	// List returns records newest first.
	List(ctx context.Context) ([]DocumentRecord, error)
	// Delete reports whether a record was removed; a missing id is not an error.
	Delete(ctx context.Context, id int64) (bool, error)
	Close() error
}
