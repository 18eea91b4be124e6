// Package loader provides document loading adapters.
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/teknokeras/perso/internal/domain/entities"
	"github.com/teknokeras/perso/internal/domain/ports"
)

// TextLoader loads plain text documents (.txt, .md).
type TextLoader struct{}

// NewTextLoader creates a new text document loader.
func NewTextLoader() *TextLoader {
	return &TextLoader{}
}

// Load reads a text document from the given path.
func (l *TextLoader) Load(ctx context.Context, path string) (*entities.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", entities.ErrDocumentNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return newDocument(path, string(content)), nil
}

// SupportedExtensions returns file extensions this loader handles.
func (l *TextLoader) SupportedExtensions() []string {
	return []string{".txt", ".md", ".markdown"}
}

// PDFLoader loads PDF documents through a DocumentParser.
type PDFLoader struct {
	parser ports.DocumentParser
}

// NewPDFLoader creates a PDF loader backed by the given parser.
func NewPDFLoader(parser ports.DocumentParser) *PDFLoader {
	return &PDFLoader{parser: parser}
}

// Load reads a PDF and extracts its text. The file must exist and its text
// must extract cleanly; there is no partial result.
func (l *PDFLoader) Load(ctx context.Context, path string) (*entities.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", entities.ErrDocumentNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	text, err := l.parser.Parse(ctx, data, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrExtractionFailed, err)
	}

	return newDocument(path, text), nil
}

// SupportedExtensions returns file extensions this loader handles.
func (l *PDFLoader) SupportedExtensions() []string {
	return []string{".pdf"}
}

// MultiLoader dispatches to a loader by file extension.
type MultiLoader struct {
	loaders  map[string]ports.DocumentLoader
	fallback ports.DocumentLoader
}

// NewMultiLoader creates a loader that handles text and PDF documents.
// Unknown extensions fall back to the text loader.
func NewMultiLoader(parser ports.DocumentParser) *MultiLoader {
	text := NewTextLoader()
	pdf := NewPDFLoader(parser)

	loaders := make(map[string]ports.DocumentLoader)
	for _, l := range []ports.DocumentLoader{text, pdf} {
		for _, ext := range l.SupportedExtensions() {
			loaders[ext] = l
		}
	}

	return &MultiLoader{loaders: loaders, fallback: text}
}

// Load dispatches to the appropriate loader based on extension.
func (m *MultiLoader) Load(ctx context.Context, path string) (*entities.Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	l, ok := m.loaders[ext]
	if !ok {
		l = m.fallback
	}
	return l.Load(ctx, path)
}

// SupportedExtensions returns all supported extensions.
func (m *MultiLoader) SupportedExtensions() []string {
	exts := make([]string, 0, len(m.loaders))
	for ext := range m.loaders {
		exts = append(exts, ext)
	}
	return exts
}

func newDocument(path, content string) *entities.Document {
	return &entities.Document{
		ID:       uuid.NewString(),
		Name:     filepath.Base(path),
		Path:     path,
		Content:  content,
		LoadedAt: time.Now(),
	}
}
