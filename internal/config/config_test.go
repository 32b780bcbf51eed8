package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"LOG_LEVEL", "LOG_FORMAT", "PROJECT_ID", "DOCUMENT_STORE", "FIRESTORE_COLLECTION",
	"LLM_PROVIDER", "LLM_MODEL", "VERTEX_AI_REGION", "GEMINI_API_KEY", "OLLAMA_URL",
	"CAPTION_PROVIDER", "CAPTION_MODEL", "OCR_ENGINE", "OCR_LANGUAGE", "OCR_MIN_CHARS",
	"IMAGE_WORKERS", "SKIP_UNDECODABLE_IMAGES", "FETCH_TIMEOUT", "RENDER_DPI",
}

// clearEnv unsets every key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROJECT_ID", "study-project")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "firestore", cfg.DocumentStore)
	assert.Equal(t, "pdfs", cfg.FirestoreCollection)
	assert.Equal(t, "vertex", cfg.LLMProvider)
	assert.Equal(t, "vertex", cfg.CaptionProvider)
	assert.Equal(t, cfg.LLMModel, cfg.CaptionModel)
	assert.Equal(t, "tesseract", cfg.OCREngine)
	assert.Equal(t, 9, cfg.OCRMinChars)
	assert.Equal(t, 4, cfg.ImageWorkers)
	assert.False(t, cfg.SkipUndecodableImages)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 144.0, cfg.RenderDPI)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOCUMENT_STORE", "Memory")
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("CAPTION_PROVIDER", "none")
	t.Setenv("OCR_ENGINE", "none")
	t.Setenv("OCR_MIN_CHARS", "12")
	t.Setenv("IMAGE_WORKERS", "1")
	t.Setenv("SKIP_UNDECODABLE_IMAGES", "true")
	t.Setenv("FETCH_TIMEOUT", "5s")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.DocumentStore)
	assert.Equal(t, "ollama", cfg.LLMProvider)
	assert.Equal(t, "none", cfg.CaptionProvider)
	assert.Equal(t, 12, cfg.OCRMinChars)
	assert.Equal(t, 1, cfg.ImageWorkers)
	assert.True(t, cfg.SkipUndecodableImages)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "firestore without project", env: map[string]string{}},
		{name: "unknown store", env: map[string]string{"DOCUMENT_STORE": "mongo"}},
		{name: "gemini without key", env: map[string]string{"DOCUMENT_STORE": "memory", "LLM_PROVIDER": "gemini"}},
		{name: "llm cannot be none", env: map[string]string{"DOCUMENT_STORE": "memory", "LLM_PROVIDER": "none"}},
		{name: "unknown ocr engine", env: map[string]string{"DOCUMENT_STORE": "memory", "LLM_PROVIDER": "ollama", "OCR_ENGINE": "easyocr"}},
		{name: "bad int", env: map[string]string{"DOCUMENT_STORE": "memory", "LLM_PROVIDER": "ollama", "IMAGE_WORKERS": "many"}},
		{name: "zero workers", env: map[string]string{"DOCUMENT_STORE": "memory", "LLM_PROVIDER": "ollama", "IMAGE_WORKERS": "0"}},
		{name: "bad duration", env: map[string]string{"DOCUMENT_STORE": "memory", "LLM_PROVIDER": "ollama", "FETCH_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := FromEnv()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DOCUMENT_STORE=memory\nLLM_PROVIDER=ollama\nOCR_LANGUAGE=hin\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("DOCUMENT_STORE")
		os.Unsetenv("LLM_PROVIDER")
		os.Unsetenv("OCR_LANGUAGE")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.DocumentStore)
	assert.Equal(t, "hin", cfg.OCRLanguage)
}

func TestLoad_MissingDefaultEnvFileIsIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOCUMENT_STORE", "memory")
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Chdir(t.TempDir())

	_, err := Load()
	assert.NoError(t, err)
}

func TestLoad_MissingNamedEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOCUMENT_STORE", "memory")
	t.Setenv("LLM_PROVIDER", "ollama")

	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
