package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/cadastre-extractor/constants"
)

// FSIngestor reads from the local filesystem.
type FSIngestor struct {
	logger *slog.Logger
}

func NewFSIngestor(logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{logger: logger}
}

func (i *FSIngestor) IngestPath(ctx context.Context, path string) (Document, error) {
	var out Document
	if err := ctx.Err(); err != nil {
		return out, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return out, fmt.Errorf("abs path: %w", err)
	}

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext) {
		return out, fmt.Errorf("unsupported or missing extension: %q", ext)
	}

	f, err := os.Open(abs)
	if err != nil {
		return out, fmt.Errorf("open: %w", err)
	}
	defer func(f *os.File) {
		if err := f.Close(); err != nil {
			i.logger.Warn("ingest.close_error", "path", abs, "error", err)
		}
	}(f)

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return out, fmt.Errorf("hash: %w", err)
	}

	return Document{
		SourcePath: abs,
		Name:       filepath.Base(abs),
		FileExt:    ext,
		Format:     constants.MapExtToFormat(ext),
		HashHex:    hex.EncodeToString(h.Sum(nil)),
		Size:       n,
	}, nil
}

// IngestDirectory walks root, skips hidden entries if requested and hashes
// every supported file. Files whose content was already seen in this scan
// are counted as deduplicated and left out.
func (i *FSIngestor) IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]Document, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}

	var paths []string
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			i.logger.Warn("ingest.walk_error", "path", path, "error", walkErr)
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, stats, fmt.Errorf("walk: %w", err)
	}

	sort.Strings(paths)
	seen := make(map[string]string, len(paths))
	docs := make([]Document, 0, len(paths))
	for _, p := range paths {
		doc, err := i.IngestPath(ctx, p)
		if err != nil {
			if ctx.Err() != nil {
				return docs, stats, ctx.Err()
			}
			i.logger.Warn("ingest.file_error", "path", p, "error", err)
			stats.Failed++
			continue
		}
		if first, dup := seen[doc.HashHex]; dup {
			i.logger.Info("ingest.duplicate_content", "path", doc.SourcePath, "same_as", first)
			stats.Deduplicated++
			continue
		}
		seen[doc.HashHex] = doc.SourcePath
		docs = append(docs, doc)
		stats.Succeeded++
	}

	i.logger.Info("ingest.scan.ok",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"documents", len(docs),
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed,
	)
	return docs, stats, nil
}
