// Package loader turns stored upload files into plain text. One
// loader per supported extension; everything else is rejected before
// the ingestion pipeline touches it.
package loader

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrUnsupported = errors.New("unsupported file type")

// LoadFunc extracts the plain text of the file at path.
type LoadFunc func(path string) (string, error)

// Registry resolves a loader by lowercase file extension (".pdf").
type Registry struct {
	loaders map[string]LoadFunc
}

// NewRegistry returns a registry with the built-in pdf, docx, pptx
// and txt loaders.
func NewRegistry() *Registry {
	return &Registry{loaders: map[string]LoadFunc{
		".pdf":  loadPDF,
		".docx": loadDOCX,
		".pptx": loadPPTX,
		".txt":  loadTXT,
	}}
}

// Supported reports whether ext has a registered loader.
func (r *Registry) Supported(ext string) bool {
	_, ok := r.loaders[strings.ToLower(ext)]
	return ok
}

// Load extracts text from path using the loader registered for ext.
func (r *Registry) Load(path, ext string) (string, error) {
	load, ok := r.loaders[strings.ToLower(ext)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
	return load(path)
}

func loadTXT(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
