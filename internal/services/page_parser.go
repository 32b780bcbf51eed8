package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/Lllllllleong/studymate/internal/extract"
	"github.com/Lllllllleong/studymate/internal/logging"
	"github.com/Lllllllleong/studymate/internal/models"
	"github.com/Lllllllleong/studymate/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// PageExtractor extracts the text of one page.
type PageExtractor interface {
	ExtractPage(ctx context.Context, doc []byte, pageNumber int) (*extract.PageExtractionResult, error)
}

// PageRenderer rasterizes one page to PNG.
type PageRenderer interface {
	RenderPage(ctx context.Context, doc []byte, pageNumber int) ([]byte, error)
}

// LanguageModel answers a text prompt.
type LanguageModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// PageParserFunction holds the dependencies of the page services.
type PageParserFunction struct {
	documents  store.DocumentStore
	fetcher    store.Fetcher
	extractor  PageExtractor
	renderer   PageRenderer
	explainer  LanguageModel
	countPages func(doc []byte) (int, error)
}

// NewPageParser wires the page services. Page counting uses pdfcpu.
func NewPageParser(documents store.DocumentStore, fetcher store.Fetcher, extractor PageExtractor, renderer PageRenderer, explainer LanguageModel) *PageParserFunction {
	return &PageParserFunction{
		documents:  documents,
		fetcher:    fetcher,
		extractor:  extractor,
		renderer:   renderer,
		explainer:  explainer,
		countPages: extract.PageCount,
	}
}

// RegisterDocument records a PDF that has already been uploaded to pdfUrl.
func (f *PageParserFunction) RegisterDocument(ctx context.Context, req *models.RegisterDocumentRequest) (*models.RegisterDocumentResponse, error) {
	if strings.TrimSpace(req.PDFURL) == "" {
		return nil, fmt.Errorf("%w: pdfUrl is required", ErrInvalidRequest)
	}
	id, err := f.documents.Create(ctx, models.PDFDocument{FileName: req.FileName, PDFURL: req.PDFURL})
	if err != nil {
		return nil, fmt.Errorf("failed to register document: %w", err)
	}
	log.Info().Str("pdfId", id).Str("fileName", req.FileName).Msg("Document registered.")
	return &models.RegisterDocumentResponse{PDFID: id}, nil
}

// Process parses one page: it returns the stored result when the page was
// parsed before, and otherwise extracts, explains and persists it.
func (f *PageParserFunction) Process(ctx context.Context, req *models.ParsePageRequest) (*models.ParsePageResponse, error) {
	logCtx := logging.Component("page-parser").With().
		Str("requestId", uuid.NewString()).
		Str("pdfId", req.PDFID).
		Int("pageNumber", req.PageNumber).
		Logger()

	if req.PageNumber <= 0 {
		return nil, fmt.Errorf("%w: page number must be positive, got %d", ErrInvalidRequest, req.PageNumber)
	}

	doc, err := f.documents.Get(ctx, req.PDFID)
	if err != nil {
		return nil, f.handleError(logCtx, "failed to load document", err)
	}
	if page, ok := doc.Page(req.PageNumber); ok {
		logCtx.Info().Msg("Page already parsed.")
		return alreadyParsed(page), nil
	}

	pdfBytes, err := f.fetcher.Fetch(ctx, doc.PDFURL)
	if err != nil {
		return nil, f.handleError(logCtx, "failed to fetch PDF", err)
	}
	f.recordPageCount(ctx, logCtx, doc, pdfBytes)

	result, err := f.extractor.ExtractPage(ctx, pdfBytes, req.PageNumber)
	if err != nil {
		if errors.Is(err, extract.ErrInvalidPageNumber) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return nil, f.handleError(logCtx, "failed to extract page", err)
	}

	explanation, err := f.explain(ctx, logCtx, result.Text, req.Language)
	if err != nil {
		return nil, f.handleError(logCtx, "failed to generate explanation", err)
	}

	page := models.ParsedPage{PageNumber: req.PageNumber, Text: result.Text, Explanation: explanation}
	if err := f.documents.AppendPage(ctx, req.PDFID, page); err != nil {
		if !errors.Is(err, store.ErrPageExists) {
			return nil, f.handleError(logCtx, "failed to save page", err)
		}
		// A concurrent request stored the page first; its copy wins.
		logCtx.Warn().Msg("Page was parsed concurrently, returning the stored copy.")
		return f.storedPage(ctx, req)
	}

	logCtx.Info().Int("images", len(result.Images)).Msg("Page parsed and saved.")
	return &models.ParsePageResponse{
		Status:      models.StatusNewlyParsed,
		PageNumber:  req.PageNumber,
		Text:        page.Text,
		Explanation: page.Explanation,
	}, nil
}

func (f *PageParserFunction) explain(ctx context.Context, logCtx zerolog.Logger, pageText, language string) (string, error) {
	answer, err := f.explainer.Generate(ctx, StudentExplanationPrompt(pageText, language))
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		logCtx.Warn().Msg("Empty explanation from model, using fallback.")
		return FallbackExplanation, nil
	}
	if looksLikeRefusal(answer) {
		logCtx.Warn().Str("explanation", answer).Msg("Explanation reads like a refusal.")
	}
	return answer, nil
}

func (f *PageParserFunction) storedPage(ctx context.Context, req *models.ParsePageRequest) (*models.ParsePageResponse, error) {
	doc, err := f.documents.Get(ctx, req.PDFID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload document: %w", err)
	}
	page, ok := doc.Page(req.PageNumber)
	if !ok {
		return nil, fmt.Errorf("page %d missing after concurrent save", req.PageNumber)
	}
	return alreadyParsed(page), nil
}

func alreadyParsed(page models.ParsedPage) *models.ParsePageResponse {
	return &models.ParsePageResponse{
		Status:      models.StatusAlreadyParsed,
		PageNumber:  page.PageNumber,
		Text:        page.Text,
		Explanation: page.Explanation,
	}
}

// DocumentInfo summarises a stored PDF. An unknown page count is computed from
// the PDF and cached; if that fails the count is reported as 1.
func (f *PageParserFunction) DocumentInfo(ctx context.Context, pdfID string) (*models.DocumentInfoResponse, error) {
	logCtx := logging.Component("page-parser").With().Str("pdfId", pdfID).Logger()

	doc, err := f.documents.Get(ctx, pdfID)
	if err != nil {
		return nil, f.handleError(logCtx, "failed to load document", err)
	}

	totalPages := doc.PageCount
	if totalPages == 0 {
		totalPages = 1
		if pdfBytes, err := f.fetcher.Fetch(ctx, doc.PDFURL); err != nil {
			logCtx.Warn().Err(err).Msg("Could not fetch PDF to count pages, reporting 1.")
		} else if n := f.recordPageCount(ctx, logCtx, doc, pdfBytes); n > 0 {
			totalPages = n
		}
	}

	fileName := doc.FileName
	if fileName == "" {
		fileName = "Unknown"
	}
	return &models.DocumentInfoResponse{
		PDFID:       doc.ID,
		FileName:    fileName,
		TotalPages:  totalPages,
		ParsedPages: len(doc.Pages),
		PDFURL:      doc.PDFURL,
	}, nil
}

// recordPageCount counts pages once per document and caches the result.
// It returns 0 when counting fails.
func (f *PageParserFunction) recordPageCount(ctx context.Context, logCtx zerolog.Logger, doc *models.PDFDocument, pdfBytes []byte) int {
	if doc.PageCount > 0 {
		return doc.PageCount
	}
	n, err := f.countPages(pdfBytes)
	if err != nil {
		logCtx.Warn().Err(err).Msg("Could not count pages.")
		return 0
	}
	if err := f.documents.SetPageCount(ctx, doc.ID, n); err != nil {
		logCtx.Warn().Err(err).Msg("Could not cache page count.")
	}
	doc.PageCount = n
	return n
}

// PageImage renders a page and returns it as a PNG data URL.
func (f *PageParserFunction) PageImage(ctx context.Context, req *models.PageImageRequest) (*models.PageImageResponse, error) {
	logCtx := logging.Component("page-parser").With().Str("pdfId", req.PDFID).Int("pageNumber", req.PageNumber).Logger()

	if req.PageNumber <= 0 {
		return nil, fmt.Errorf("%w: page number must be positive, got %d", ErrInvalidRequest, req.PageNumber)
	}
	doc, err := f.documents.Get(ctx, req.PDFID)
	if err != nil {
		return nil, f.handleError(logCtx, "failed to load document", err)
	}
	pdfBytes, err := f.fetcher.Fetch(ctx, doc.PDFURL)
	if err != nil {
		return nil, f.handleError(logCtx, "failed to fetch PDF", err)
	}

	png, err := f.renderer.RenderPage(ctx, pdfBytes, req.PageNumber)
	if err != nil {
		if errors.Is(err, extract.ErrInvalidPageNumber) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return nil, f.handleError(logCtx, "failed to render page", err)
	}
	logCtx.Info().Int("bytes", len(png)).Msg("Page rendered.")
	return &models.PageImageResponse{Image: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)}, nil
}

func (f *PageParserFunction) handleError(logCtx zerolog.Logger, message string, err error) error {
	logCtx.Error().Err(err).Msg(message)
	return fmt.Errorf("%s: %w", message, err)
}
