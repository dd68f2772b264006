package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/coldfinder/internal/models"
	"github.com/hyperjump/coldfinder/internal/storage"
)

// ErrUnsupportedFormat is returned when a catalog file extension is not recognized.
var ErrUnsupportedFormat = errors.New("unsupported catalog format")

// ErrEmptyCatalog is returned by the loaders when a catalog holds no facilities.
// It wraps ErrInvalidCatalog.
var ErrEmptyCatalog = fmt.Errorf("%w: no facilities", ErrInvalidCatalog)

//go:embed data/default.yaml
var defaultCatalog []byte

// Document is the on-disk shape of a catalog asset (YAML or JSON).
type Document struct {
	Version    string               `json:"version" yaml:"version"`
	Crops      []models.CropProfile `json:"crops" yaml:"crops"`
	Facilities []models.Facility    `json:"facilities" yaml:"facilities"`
}

// Build validates the document and returns its knowledge base.
func (d *Document) Build() (*KnowledgeBase, error) {
	return New(d.Version, d.Facilities, d.Crops)
}

// Default returns the catalog bundled with the binary.
func Default() (*KnowledgeBase, error) {
	doc, err := ParseYAML(bytes.NewReader(defaultCatalog))
	if err != nil {
		return nil, fmt.Errorf("failed to parse default catalog: %w", err)
	}
	return doc.Build()
}

// ParseYAML decodes a catalog document from YAML.
func ParseYAML(r io.Reader) (*Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing YAML catalog: %w", err)
	}
	return &doc, nil
}

// ParseJSON decodes a catalog document from JSON.
func ParseJSON(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing JSON catalog: %w", err)
	}
	return &doc, nil
}

// ReadFile reads a catalog document from path. The format is chosen by extension:
// .yaml/.yml, .json or .xlsx.
func ReadFile(path string) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".xlsx" {
		return ReadXLSX(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	switch ext {
	case ".yaml", ".yml":
		return ParseYAML(f)
	case ".json":
		return ParseJSON(f)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// LoadFile reads and validates the catalog file at path.
func LoadFile(path string) (*KnowledgeBase, error) {
	doc, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	kb, err := doc.Build()
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	if kb.Len() == 0 {
		return nil, fmt.Errorf("catalog %s: %w", path, ErrEmptyCatalog)
	}
	return kb, nil
}

// LoadSQLite reads and validates the catalog stored in the SQLite database at dbPath.
// The database must already exist; use the import command to create one.
func LoadSQLite(ctx context.Context, dbPath string) (*KnowledgeBase, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("catalog database: %w", err)
	}
	store, err := storage.NewSQLiteCatalog(dbPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	snap, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	kb, err := New(snap.Version, snap.Facilities, snap.Crops)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", dbPath, err)
	}
	if kb.Len() == 0 {
		return nil, fmt.Errorf("catalog %s: %w", dbPath, ErrEmptyCatalog)
	}
	return kb, nil
}

// Document returns the knowledge base contents as a document, e.g. for export or import.
func (kb *KnowledgeBase) Document() *Document {
	doc := &Document{
		Version:    kb.version,
		Facilities: make([]models.Facility, len(kb.facilities)),
		Crops:      make([]models.CropProfile, len(kb.crops)),
	}
	for i, f := range kb.facilities {
		doc.Facilities[i] = *f.Clone()
	}
	for i, c := range kb.crops {
		doc.Crops[i] = *c
	}
	return doc
}
