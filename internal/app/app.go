// Package app builds the engines, stores and services named by a Config.
package app

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/studymate/internal/ai"
	"github.com/Lllllllleong/studymate/internal/config"
	"github.com/Lllllllleong/studymate/internal/extract"
	"github.com/Lllllllleong/studymate/internal/gcp"
	"github.com/Lllllllleong/studymate/internal/ocr"
	"github.com/Lllllllleong/studymate/internal/render"
	"github.com/Lllllllleong/studymate/internal/services"
	"github.com/Lllllllleong/studymate/internal/store"
	"github.com/rs/zerolog/log"
)

// App owns every client it creates; Close releases them.
type App struct {
	cfg     *config.Config
	vertex  *gcp.VertexClient
	gcs     *storage.Client
	closers []func() error
}

func New(cfg *config.Config) *App {
	return &App{cfg: cfg}
}

// Extractor builds a PageExtractor with the configured OCR and captioner.
func (a *App) Extractor(ctx context.Context) (*extract.PageExtractor, error) {
	recognizer, err := a.ocrEngine()
	if err != nil {
		return nil, err
	}
	captioner, err := a.captioner(ctx)
	if err != nil {
		return nil, err
	}
	return extract.NewPageExtractor(recognizer, captioner, extract.Config{
		MinOCRChars:           a.cfg.OCRMinChars,
		Workers:               a.cfg.ImageWorkers,
		SkipUndecodableImages: a.cfg.SkipUndecodableImages,
	}), nil
}

func (a *App) Renderer() *render.Renderer {
	return render.NewRenderer(a.cfg.RenderDPI)
}

// PageParser builds the page services on top of the configured store, fetcher,
// extractor and language model.
func (a *App) PageParser(ctx context.Context) (*services.PageParserFunction, error) {
	documents, err := a.documentStore(ctx)
	if err != nil {
		return nil, err
	}
	extractor, err := a.Extractor(ctx)
	if err != nil {
		return nil, err
	}
	explainer, err := a.languageModel(ctx)
	if err != nil {
		return nil, err
	}
	return services.NewPageParser(documents, a.Fetcher(ctx), extractor, a.Renderer(), explainer), nil
}

// Fetcher routes document URLs. gs:// URLs are rejected when no storage
// client can be created, so local runs work without credentials.
func (a *App) Fetcher(ctx context.Context) store.Fetcher {
	router := &store.Router{
		HTTP: store.NewHTTPFetcher(a.cfg.FetchTimeout),
		File: store.FileFetcher{},
	}
	if a.gcs == nil {
		client, err := storage.NewClient(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Cloud Storage unavailable, gs:// URLs will be rejected.")
			return router
		}
		a.gcs = client
		a.closers = append(a.closers, client.Close)
	}
	router.GCS = store.NewGCSFetcher(a.gcs)
	return router
}

func (a *App) documentStore(ctx context.Context) (store.DocumentStore, error) {
	switch a.cfg.DocumentStore {
	case "memory":
		return store.NewMemory(), nil
	case "firestore":
		client, err := gcp.NewFirestoreClient(ctx, a.cfg.ProjectID)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		return store.NewFirestoreDocuments(client, a.cfg.FirestoreCollection), nil
	}
	return nil, fmt.Errorf("unknown DOCUMENT_STORE %q", a.cfg.DocumentStore)
}

func (a *App) ocrEngine() (extract.OCR, error) {
	switch a.cfg.OCREngine {
	case "none":
		return ocr.Noop{}, nil
	case "tesseract":
		t, err := ocr.NewTesseract(a.cfg.OCRLanguage)
		if err != nil {
			return nil, fmt.Errorf("failed to start tesseract: %w", err)
		}
		a.closers = append(a.closers, t.Close)
		return t, nil
	}
	return nil, fmt.Errorf("unknown OCR_ENGINE %q", a.cfg.OCREngine)
}

func (a *App) captioner(ctx context.Context) (extract.Captioner, error) {
	switch a.cfg.CaptionProvider {
	case "none":
		return ai.Noop{}, nil
	case "vertex":
		return a.vertexClient(ctx)
	case "gemini":
		return ai.NewGemini(ctx, a.cfg.GeminiAPIKey, a.cfg.CaptionModel)
	case "ollama":
		return ai.NewOllama(a.cfg.OllamaURL, a.cfg.CaptionModel)
	}
	return nil, fmt.Errorf("unknown CAPTION_PROVIDER %q", a.cfg.CaptionProvider)
}

func (a *App) languageModel(ctx context.Context) (services.LanguageModel, error) {
	switch a.cfg.LLMProvider {
	case "vertex":
		return a.vertexClient(ctx)
	case "gemini":
		return ai.NewGemini(ctx, a.cfg.GeminiAPIKey, a.cfg.LLMModel)
	case "ollama":
		return ai.NewOllama(a.cfg.OllamaURL, a.cfg.LLMModel)
	}
	return nil, fmt.Errorf("unknown LLM_PROVIDER %q", a.cfg.LLMProvider)
}

// vertexClient is shared by the explainer and the captioner.
func (a *App) vertexClient(ctx context.Context) (*gcp.VertexClient, error) {
	if a.vertex != nil {
		return a.vertex, nil
	}
	client, err := gcp.NewVertexClient(ctx, a.cfg.ProjectID, a.cfg.VertexAIRegion, a.cfg.LLMModel, a.cfg.CaptionModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex client: %w", err)
	}
	a.vertex = client
	a.closers = append(a.closers, client.Close)
	return client, nil
}

// Close releases clients in reverse creation order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
