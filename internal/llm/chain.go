package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/cadastre-extractor/constants"
	"github.com/joseph-ayodele/cadastre-extractor/internal/entity"
)

// ChainConfig configures a Chain.
type ChainConfig struct {
	Variants []PromptVariant
	// MinOwners is the count a variant must exceed to win immediately.
	MinOwners int
	Lenient   bool
}

// ChainResult describes how a page was read.
type ChainResult struct {
	Variant  PromptVariant
	Attempts int
	Failures int
	Owners   int
	// Won reports whether a variant cleared MinOwners; otherwise the largest
	// result was kept.
	Won bool
}

// Chain tries prompt variants in order; the first one whose owner count
// exceeds MinOwners wins and the remaining variants are not called.
type Chain struct {
	extractor OwnerExtractor
	cfg       ChainConfig
	log       *slog.Logger
}

// NewChain builds a Chain over extractor.
func NewChain(extractor OwnerExtractor, cfg ChainConfig, logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Variants) == 0 {
		cfg.Variants = DefaultVariants
	}
	if cfg.MinOwners <= 0 {
		cfg.MinOwners = constants.MinVisionOwners
	}
	return &Chain{extractor: extractor, cfg: cfg, log: logger}
}

// ExtractPage reads the owners of one page image. A page where every variant
// fails yields no owners and no error.
func (c *Chain) ExtractPage(ctx context.Context, document, imagePath string, page int) ([]entity.RawOwnerEntry, ChainResult) {
	start := time.Now()
	var res ChainResult

	data, mediaType, err := ReadImage(imagePath)
	if err != nil {
		c.log.Error("llm.chain.image_error",
			"document", document, "page", page, "path", imagePath, "error", err)
		return nil, res
	}

	var best []entity.RawOwnerEntry
	for _, v := range c.cfg.Variants {
		if ctx.Err() != nil {
			break
		}
		res.Attempts++
		req := VisionRequest{
			Document:    document,
			Page:        page,
			ImagePath:   imagePath,
			MediaType:   mediaType,
			ImageBase64: data,
			Variant:     v,
		}
		raw, err := c.extractor.ExtractOwners(ctx, req)
		if err != nil {
			res.Failures++
			c.log.Warn("llm.chain.variant_failed",
				"document", document, "page", page, "variant", string(v),
				"backend", c.extractor.Name(), "error", err)
			continue
		}
		owners, err := ParseOwners(raw, c.cfg.Lenient, c.log)
		if err != nil {
			res.Failures++
			c.log.Warn("llm.chain.variant_failed",
				"document", document, "page", page, "variant", string(v),
				"backend", c.extractor.Name(), "error", err, "raw_bytes", len(raw))
			continue
		}
		for i := range owners {
			owners[i].Page = page
		}
		if len(owners) > c.cfg.MinOwners {
			best, res.Variant, res.Won = owners, v, true
			break
		}
		if len(owners) > len(best) {
			best, res.Variant = owners, v
		}
	}
	res.Owners = len(best)

	if res.Owners == 0 {
		c.log.Warn("llm.chain.no_owners",
			"document", document, "page", page,
			"attempts", res.Attempts, "failures", res.Failures,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, res
	}
	c.log.Info("llm.chain.ok",
		"document", document, "page", page,
		"variant", string(res.Variant), "won", res.Won,
		"owners", res.Owners, "attempts", res.Attempts,
		"elapsed_ms", time.Since(start).Milliseconds())
	return best, res
}
