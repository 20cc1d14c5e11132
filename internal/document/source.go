package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrNoDocuments is returned when a source yields nothing.
	ErrNoDocuments = errors.New("no documents found")
)

// Source yields already-parsed documents for ingestion.
type Source interface {
	// Load returns all documents available from this source.
	Load(ctx context.Context) ([]Document, error)
}

// DirSource loads plain-text documents (.txt, .md) from a directory.
// Files are returned in lexical path order so ingestion is deterministic.
type DirSource struct {
	dir    string
	logger *zap.Logger
}

// NewDirSource creates a DirSource for the given directory.
func NewDirSource(dir string, logger *zap.Logger) *DirSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirSource{dir: dir, logger: logger}
}

// Load reads every .txt and .md file under the directory.
func (s *DirSource) Load(ctx context.Context) ([]Document, error) {
	var paths []string
	err := filepath.WalkDir(s.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".txt" || ext == ".md" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", s.dir, err)
	}
	sort.Strings(paths)

	docs := make([]Document, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		docs = append(docs, New(string(content), path))
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDocuments, s.dir)
	}

	s.logger.Debug("loaded documents from directory",
		zap.String("dir", s.dir),
		zap.Int("count", len(docs)),
	)

	return docs, nil
}

var _ Source = (*DirSource)(nil)

// StaticSource wraps a fixed set of in-memory documents, mainly for tests
// and programmatic ingestion.
type StaticSource struct {
	docs []Document
}

// NewStaticSource creates a StaticSource over the given documents.
func NewStaticSource(docs ...Document) *StaticSource {
	return &StaticSource{docs: docs}
}

// Load returns the wrapped documents.
func (s *StaticSource) Load(ctx context.Context) ([]Document, error) {
	if len(s.docs) == 0 {
		return nil, ErrNoDocuments
	}
	out := make([]Document, len(s.docs))
	copy(out, s.docs)
	return out, nil
}

var _ Source = (*StaticSource)(nil)
