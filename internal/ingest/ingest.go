// Package ingest runs the indexing pipeline: split documents into
// segments, embed the segments in batches, and index each document's
// segments with one atomic store insert. A query concurrent with ingestion
// sees a document either fully indexed or not at all.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/ayamoughit/Tp4testMoughit/internal/document"
	"github.com/ayamoughit/Tp4testMoughit/internal/embedding"
	"github.com/ayamoughit/Tp4testMoughit/internal/splitter"
	"github.com/ayamoughit/Tp4testMoughit/internal/vectorstore"
)

var ingestTracer = otel.Tracer("ragchat.ingest")

// ErrInvalidConfig indicates invalid pipeline configuration.
var ErrInvalidConfig = errors.New("invalid ingest configuration")

// Config holds pipeline parameters.
type Config struct {
	// BatchSize is the number of segment texts sent per embedding request.
	// Default: 32.
	BatchSize int `koanf:"batch_size"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.BatchSize == 0 {
		c.BatchSize = 32
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("%w: batch size must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// Pipeline indexes documents into a vector store.
type Pipeline struct {
	splitter *splitter.Splitter
	embedder embedding.Embedder
	store    vectorstore.Store
	config   Config
	logger   *zap.Logger
}

// New creates a Pipeline.
func New(config Config, sp *splitter.Splitter, embedder embedding.Embedder, store vectorstore.Store, logger *zap.Logger) (*Pipeline, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if sp == nil {
		return nil, fmt.Errorf("%w: splitter is required", ErrInvalidConfig)
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfig)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		splitter: sp,
		embedder: embedder,
		store:    store,
		config:   config,
		logger:   logger,
	}, nil
}

// IngestSource loads documents from the source and ingests them. Returns
// the number of segments indexed.
func (p *Pipeline) IngestSource(ctx context.Context, src document.Source) (int, error) {
	docs, err := src.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading documents: %w", err)
	}
	return p.Ingest(ctx, docs)
}

// Ingest splits, embeds, and indexes the documents in order. A document is
// indexed with a single atomic insert; a failure mid-way leaves documents
// already processed indexed and the failing one absent.
func (p *Pipeline) Ingest(ctx context.Context, docs []document.Document) (int, error) {
	ctx, span := ingestTracer.Start(ctx, "Pipeline.Ingest")
	defer span.End()
	span.SetAttributes(attribute.Int("documents", len(docs)))

	total := 0
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		segs := p.splitter.Split(doc)
		if len(segs) == 0 {
			p.logger.Debug("skipping empty document", zap.String("document_id", doc.ID))
			continue
		}

		vecs, err := p.embedSegments(ctx, segs)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return total, fmt.Errorf("embedding document %s: %w", doc.ID, err)
		}

		if err := p.store.AddAll(ctx, vecs, segs); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return total, fmt.Errorf("indexing document %s: %w", doc.ID, err)
		}

		total += len(segs)
		p.logger.Info("ingested document",
			zap.String("document_id", doc.ID),
			zap.String("path", doc.Path),
			zap.Int("segments", len(segs)),
		)
	}

	span.SetAttributes(attribute.Int("segments", total))
	return total, nil
}

// embedSegments embeds segment texts in batches, preserving segment order.
func (p *Pipeline) embedSegments(ctx context.Context, segs []document.Segment) ([][]float32, error) {
	vecs := make([][]float32, 0, len(segs))
	for start := 0; start < len(segs); start += p.config.BatchSize {
		end := start + p.config.BatchSize
		if end > len(segs) {
			end = len(segs)
		}
		texts := make([]string, 0, end-start)
		for _, seg := range segs[start:end] {
			texts = append(texts, seg.Text)
		}
		batch, err := p.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return nil, err
		}
		vecs = append(vecs, batch...)
	}
	return vecs, nil
}
