package gcp

import (
	"context"
	"fmt"
	"image"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/Lllllllleong/studymate/internal/ai"
)

// --- Explainer Model Prompts ---
const ExplainerSystemPrompt = "You are a patient tutor helping a student understand one page of their study material. Explain clearly and accurately, and never invent facts that are not supported by the page."

// --- Captioner Model Prompts ---
const CaptionerSystemPrompt = "You describe images from textbooks and lecture notes in a single short factual sentence."

// VertexClient holds the pre-configured generative models for our app.
type VertexClient struct {
	ExplainerModel *genai.GenerativeModel
	CaptionerModel *genai.GenerativeModel
	baseClient     *genai.Client
}

// NewVertexClient creates a new client holding all necessary models.
func NewVertexClient(ctx context.Context, projectID, region, explainerModel, captionerModel string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	explainer := baseClient.GenerativeModel(explainerModel)
	explainer.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(ExplainerSystemPrompt)},
	}

	captioner := baseClient.GenerativeModel(captionerModel)
	captioner.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(CaptionerSystemPrompt)},
	}
	captioner.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0.0),
	}

	return &VertexClient{
		ExplainerModel: explainer,
		CaptionerModel: captioner,
		baseClient:     baseClient,
	}, nil
}

// Generate runs prompt through the explainer model.
func (c *VertexClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.ExplainerModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}
	return responseText(resp), nil
}

// Describe captions img with the captioner model.
func (c *VertexClient) Describe(ctx context.Context, img image.Image) (string, error) {
	data, err := ai.EncodePNG(img)
	if err != nil {
		return "", err
	}
	resp, err := c.CaptionerModel.GenerateContent(ctx, genai.ImageData("png", data), genai.Text(ai.CaptionPrompt))
	if err != nil {
		return "", fmt.Errorf("failed to caption image with gemini: %w", err)
	}
	return responseText(resp), nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return ai.CleanText(sb.String())
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}
