package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/cadastre-extractor/constants"
)

// Config holds all application configuration
type Config struct {
	LLM       LLMConfig
	OCR       OCRConfig
	Pipeline  PipelineConfig
	Store     StoreConfig
	Export    ExportConfig
	Telemetry TelemetryConfig
}

// LLMConfig holds vision-service configuration
type LLMConfig struct {
	Provider        string // openai | anthropic
	OpenAIKey       string
	OpenAIModel     string
	OpenAIBaseURL   string
	AnthropicKey    string
	AnthropicModel  string
	Temperature     float32
	Timeout         time.Duration
	MinOwners       int
	LenientOptional bool
	Variants        []string
}

// OCRConfig holds page rendering and header-text configuration
type OCRConfig struct {
	TessdataDir      string
	TesseractLang    string
	DPI              int
	MaxPages         int
	ArtifactCacheDir string
}

// PipelineConfig holds consolidation thresholds and policies
type PipelineConfig struct {
	Workers                 int
	GeoPolicy               string // majority | first_valid
	GeoFillBlanks           bool
	FillFields              []string
	MaxRawOwners            int
	OwnerHardCap            int
	MaxCombinations         int
	SingleOwnerRowThreshold int
	SparseOwnerRatio        float64
	DenseOwnerRatio         float64
}

// StoreConfig holds run-ledger configuration; an empty DSN disables the ledger.
type StoreConfig struct {
	DSN          string
	MaxOpenConns int
}

// ExportConfig holds export configuration
type ExportConfig struct {
	XLSX bool
}

// TelemetryConfig holds tracing configuration
type TelemetryConfig struct {
	Enabled     bool
	ServiceName string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:        strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
			OpenAIKey:       getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o"),
			OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			AnthropicKey:    getEnv("ANTHROPIC_API_KEY", ""),
			AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
			Temperature:     getEnvAsFloat32("LLM_TEMPERATURE", 0.0),
			Timeout:         getEnvAsDuration("LLM_TIMEOUT", 90*time.Second),
			MinOwners:       getEnvAsInt("LLM_MIN_OWNERS", constants.MinVisionOwners),
			LenientOptional: getEnvAsBool("LLM_LENIENT", true),
			Variants:        getEnvAsList("LLM_VARIANTS", nil),
		},
		OCR: OCRConfig{
			TessdataDir:      getEnv("TESSDATA_PREFIX", ""),
			TesseractLang:    getEnv("OCR_LANG", "fra"),
			DPI:              getEnvAsInt("OCR_DPI", 200),
			MaxPages:         getEnvAsInt("OCR_MAX_PAGES", 0),
			ArtifactCacheDir: getEnv("ARTIFACT_CACHE_DIR", "./tmp"),
		},
		Pipeline: PipelineConfig{
			Workers:                 getEnvAsInt("PIPELINE_WORKERS", 1),
			GeoPolicy:               strings.ToLower(getEnv("GEO_POLICY", "majority")),
			GeoFillBlanks:           getEnvAsBool("GEO_FILL_BLANKS", true),
			FillFields:              getEnvAsList("FILL_FIELDS", []string{"prefix", "area_ha", "area_a", "area_ca"}),
			MaxRawOwners:            getEnvAsInt("MERGE_MAX_RAW_OWNERS", constants.MaxRawOwners),
			OwnerHardCap:            getEnvAsInt("MERGE_OWNER_CAP", constants.OwnerHardCap),
			MaxCombinations:         getEnvAsInt("MERGE_MAX_COMBINATIONS", constants.MaxCombinations),
			SingleOwnerRowThreshold: getEnvAsInt("MERGE_SINGLE_OWNER_ROWS", constants.SingleOwnerRowThreshold),
			SparseOwnerRatio:        getEnvAsFloat64("MERGE_SPARSE_RATIO", constants.SparseOwnerRatio),
			DenseOwnerRatio:         getEnvAsFloat64("MERGE_DENSE_RATIO", constants.DenseOwnerRatio),
		},
		Store: StoreConfig{
			DSN:          getEnv("STORE_DSN", ""),
			MaxOpenConns: getEnvAsInt("STORE_MAX_OPEN_CONNS", 4),
		},
		Export: ExportConfig{
			XLSX: getEnvAsBool("EXPORT_XLSX", false),
		},
		Telemetry: TelemetryConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "cadastre-extractor"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("LLM_PROVIDER", c.LLM.Provider, OneOf("openai", "anthropic")).
		Field("GEO_POLICY", c.Pipeline.GeoPolicy, OneOf("majority", "first_valid"))
	if err := v.Error(); err != nil {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	switch c.LLM.Provider {
	case "openai":
		if c.LLM.OpenAIKey == "" {
			return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
		}
	case "anthropic":
		if c.LLM.AnthropicKey == "" {
			return NewAppError("CONFIG_ERROR", "ANTHROPIC_API_KEY is required", ErrInvalidInput)
		}
	}
	if c.Pipeline.Workers < 1 {
		return NewAppError("CONFIG_ERROR", "PIPELINE_WORKERS must be at least 1", ErrInvalidInput)
	}
	if c.Pipeline.MaxCombinations < 1 || c.Pipeline.OwnerHardCap < 1 {
		return NewAppError("CONFIG_ERROR", "merge thresholds must be positive", ErrInvalidInput)
	}
	return nil
}
