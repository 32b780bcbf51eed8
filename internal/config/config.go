package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the CLI and services read from the environment.
type Config struct {
	LogLevel  string
	LogFormat string

	ProjectID           string
	DocumentStore       string
	FirestoreCollection string

	LLMProvider    string
	LLMModel       string
	VertexAIRegion string
	GeminiAPIKey   string
	OllamaURL      string

	CaptionProvider string
	CaptionModel    string

	OCREngine             string
	OCRLanguage           string
	OCRMinChars           int
	ImageWorkers          int
	SkipUndecodableImages bool

	FetchTimeout time.Duration
	RenderDPI    float64
}

// GetEnv reads an environment variable or returns fallback.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// Load reads envFiles, or an optional .env when none are named, and then the
// process environment. A named file that does not exist is an error.
func Load(envFiles ...string) (*Config, error) {
	err := godotenv.Load(envFiles...)
	if errors.Is(err, os.ErrNotExist) && len(envFiles) == 0 {
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds and validates a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel:            GetEnv("LOG_LEVEL", "info"),
		LogFormat:           GetEnv("LOG_FORMAT", "json"),
		ProjectID:           GetEnv("PROJECT_ID", ""),
		DocumentStore:       strings.ToLower(GetEnv("DOCUMENT_STORE", "firestore")),
		FirestoreCollection: GetEnv("FIRESTORE_COLLECTION", "pdfs"),
		LLMProvider:         strings.ToLower(GetEnv("LLM_PROVIDER", "vertex")),
		LLMModel:            GetEnv("LLM_MODEL", "gemini-2.5-flash"),
		VertexAIRegion:      GetEnv("VERTEX_AI_REGION", "us-central1"),
		GeminiAPIKey:        GetEnv("GEMINI_API_KEY", ""),
		OllamaURL:           GetEnv("OLLAMA_URL", "http://localhost:11434"),
		OCREngine:           strings.ToLower(GetEnv("OCR_ENGINE", "tesseract")),
		OCRLanguage:         GetEnv("OCR_LANGUAGE", "eng"),
	}
	cfg.CaptionProvider = strings.ToLower(GetEnv("CAPTION_PROVIDER", cfg.LLMProvider))
	cfg.CaptionModel = GetEnv("CAPTION_MODEL", cfg.LLMModel)

	var err error
	if cfg.OCRMinChars, err = intEnv("OCR_MIN_CHARS", 9); err != nil {
		return nil, err
	}
	if cfg.ImageWorkers, err = intEnv("IMAGE_WORKERS", 4); err != nil {
		return nil, err
	}
	if cfg.SkipUndecodableImages, err = boolEnv("SKIP_UNDECODABLE_IMAGES", false); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = durationEnv("FETCH_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.RenderDPI, err = floatEnv("RENDER_DPI", 144); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks provider names and the settings each provider requires.
func (c *Config) Validate() error {
	switch c.DocumentStore {
	case "firestore":
		if c.ProjectID == "" {
			return fmt.Errorf("PROJECT_ID environment variable must be set for the firestore document store")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown DOCUMENT_STORE %q", c.DocumentStore)
	}

	if err := c.validateModelProvider("LLM_PROVIDER", c.LLMProvider, false); err != nil {
		return err
	}
	if err := c.validateModelProvider("CAPTION_PROVIDER", c.CaptionProvider, true); err != nil {
		return err
	}

	switch c.OCREngine {
	case "tesseract", "none":
	default:
		return fmt.Errorf("unknown OCR_ENGINE %q", c.OCREngine)
	}
	if c.OCRMinChars < 1 {
		return fmt.Errorf("OCR_MIN_CHARS must be positive, got %d", c.OCRMinChars)
	}
	if c.ImageWorkers < 1 {
		return fmt.Errorf("IMAGE_WORKERS must be positive, got %d", c.ImageWorkers)
	}
	if c.RenderDPI <= 0 {
		return fmt.Errorf("RENDER_DPI must be positive, got %v", c.RenderDPI)
	}
	return nil
}

func (c *Config) validateModelProvider(key, provider string, allowNone bool) error {
	switch provider {
	case "vertex":
		if c.ProjectID == "" {
			return fmt.Errorf("PROJECT_ID environment variable must be set when %s=vertex", key)
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY environment variable must be set when %s=gemini", key)
		}
	case "ollama":
	case "none":
		if !allowNone {
			return fmt.Errorf("%s cannot be none", key)
		}
	default:
		return fmt.Errorf("unknown %s %q", key, provider)
	}
	return nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := GetEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	raw := GetEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	raw := GetEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := GetEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
