// Package provider builds the vision chain for the configured backend.
package provider

import (
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/cadastre-extractor/internal/common"
	"github.com/joseph-ayodele/cadastre-extractor/internal/llm"
	"github.com/joseph-ayodele/cadastre-extractor/internal/llm/anthropic"
	"github.com/joseph-ayodele/cadastre-extractor/internal/llm/openai"
)

// Backend returns the OwnerExtractor named by cfg.Provider.
func Backend(cfg common.LLMConfig, logger *slog.Logger) (llm.OwnerExtractor, error) {
	switch cfg.Provider {
	case "anthropic":
		c, err := anthropic.NewClient(anthropic.Config{
			APIKey:      cfg.AnthropicKey,
			Model:       cfg.AnthropicModel,
			Temperature: float64(cfg.Temperature),
			Timeout:     cfg.Timeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "openai", "":
		return openai.NewClient(openai.Config{
			APIKey:      cfg.OpenAIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.OpenAIModel,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown LLM provider %q", common.ErrInvalidInput, cfg.Provider)
	}
}

// NewChain wires the configured backend into an llm.Chain.
func NewChain(cfg common.LLMConfig, logger *slog.Logger) (*llm.Chain, error) {
	if logger == nil {
		logger = slog.Default()
	}
	backend, err := Backend(cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("llm.backend", "name", backend.Name())
	return llm.NewChain(backend, llm.ChainConfig{
		Variants:  llm.ParseVariants(cfg.Variants),
		MinOwners: cfg.MinOwners,
		Lenient:   cfg.LenientOptional,
	}, logger), nil
}
