// Package ingest discovers the cadastral documents of an input directory.
package ingest

import "context"

// Document is one discovered source file.
type Document struct {
	SourcePath string
	Name       string // base name, used as the record source
	FileExt    string
	Format     string // constants.PDF | constants.IMAGE
	HashHex    string
	Size       int64
	Err        string
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Ingestor is the behavior the batch runner depends on.
type Ingestor interface {
	// IngestPath hashes a single path.
	IngestPath(ctx context.Context, path string) (Document, error)
	// IngestDirectory returns the matching files under root in path order.
	IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]Document, DirStats, error)
}
