// Package anthropic reads owner tables through the Claude Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"github.com/joseph-ayodele/cadastre-extractor/internal/common"
	"github.com/joseph-ayodele/cadastre-extractor/internal/llm"
)

// Messager is the slice of the SDK client the extractor uses.
type Messager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

func defaultMessager(apiKey string) Messager {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &c.Messages
}

var newMessager = defaultMessager

// Config for the Anthropic client.
type Config struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int64
	Timeout     time.Duration
}

type Client struct {
	cfg      Config
	messages Messager
	log      *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not configured")
	}
	if cfg.Model == "" {
		cfg.Model = string(anthropic.ModelClaudeSonnet4_20250514)
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, messages: newMessager(cfg.APIKey), log: logger}, nil
}

// Name identifies the backend in logs.
func (c *Client) Name() string { return "anthropic:" + c.cfg.Model }

// ExtractOwners implements llm.OwnerExtractor. The text blocks of the reply
// are concatenated and returned unparsed.
func (c *Client) ExtractOwners(ctx context.Context, req llm.VisionRequest) ([]byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"document", req.Document,
		"page", req.Page,
		"variant", string(req.Variant),
	)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: c.cfg.MaxTokens,
		System:    []anthropic.TextBlockParam{{Text: llm.BuildSystemPrompt(req.Variant)}},
		Messages: []anthropic.MessageParam{anthropic.NewUserMessage(
			anthropic.NewImageBlockBase64(req.MediaType, req.ImageBase64),
			anthropic.NewTextBlock(llm.BuildUserPrompt(req)),
		)},
		Temperature: anthropic.Float(c.cfg.Temperature),
	})
	if err != nil {
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("%w: anthropic: %v", common.ErrExtraction, err)
	}

	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	content := strings.TrimSpace(sb.String())
	if content == "" {
		c.log.Error("llm.extract.empty_response", "req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("%w: empty anthropic response", common.ErrExtraction)
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return []byte(content), nil
}
