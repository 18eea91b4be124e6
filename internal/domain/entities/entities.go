// Package entities contains core business entities.
// These are the enterprise business rules - pure domain objects with no external dependencies.
package entities

import (
	"errors"
	"time"
)

// Loader failure modes. Both are fatal at startup, but they are reported
// differently: a missing file names the exact path, a broken file names the
// extraction problem. Checked with errors.Is.
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrExtractionFailed = errors.New("text extraction failed")
)

// Document represents the source document (PDF, TXT, MD).
// Created once at startup from the loaded file, immutable afterward.
type Document struct {
	ID       string
	Name     string
	Path     string
	Content  string
	LoadedAt time.Time
}

// Chunk is a piece of a document prepared for embedding.
// Index is the chunk's position in the document; it also fixes the tie-break
// order for equally-scored search results.
type Chunk struct {
	ID         string
	DocumentID string
	Content    string
	Index      int
	Embedding  []float32
}

// QueryResult is a retrieved chunk with its similarity score.
type QueryResult struct {
	Chunk     Chunk
	Score     float64
	SourceDoc string
}

// ChatResponse is the assistant's answer for a single turn, with the
// passages it was grounded on. Turns carry no state into the next one.
type ChatResponse struct {
	Answer  string
	Sources []QueryResult
}
