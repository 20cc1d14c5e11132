// Package document defines the core document and segment types shared by the
// ingestion and retrieval layers, plus sources that yield already-parsed
// documents. Raw format parsing (PDF extraction etc.) happens outside this
// process; a Source only ever hands over plain text.
package document

import (
	"github.com/google/uuid"
)

// Document is a unit of ingested content. It is immutable once loaded.
type Document struct {
	// ID uniquely identifies the document.
	ID string

	// Text is the full plain text of the document.
	Text string

	// Path is the origin of the document (file path, URL), for provenance only.
	Path string
}

// New creates a Document with a generated ID.
func New(text, path string) Document {
	return Document{
		ID:   uuid.NewString(),
		Text: text,
		Path: path,
	}
}

// Segment is a bounded slice of a document's text, the unit of embedding and
// retrieval. Offsets are rune positions into the owning document's text, so a
// segment stays valid regardless of the document object's lifetime.
type Segment struct {
	// DocumentID references the owning document.
	DocumentID string

	// Index is the ordinal position of the segment within its document.
	Index int

	// Start and End are rune offsets into the document text (End exclusive).
	Start int
	End   int

	// Text is the segment content.
	Text string
}
