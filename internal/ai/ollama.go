package ai

import (
	"context"
	"fmt"
	"image"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// Ollama runs prompts against a local Ollama server. Captioning needs a
// multimodal model such as llava.
type Ollama struct {
	llm   *ollama.LLM
	model string
}

func NewOllama(serverURL, model string) (*Ollama, error) {
	llm, err := ollama.New(ollama.WithModel(model), ollama.WithServerURL(serverURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}
	return &Ollama{llm: llm, model: model}, nil
}

func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	log.Debug().Str("model", o.model).Int("promptChars", len(prompt)).Msg("Generating content")
	out, err := llms.GenerateFromSinglePrompt(ctx, o.llm, prompt)
	if err != nil {
		return "", fmt.Errorf("ollama generate failed: %w", err)
	}
	return CleanText(out), nil
}

func (o *Ollama) Describe(ctx context.Context, img image.Image) (string, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	resp, err := o.llm.GenerateContent(ctx, []llms.MessageContent{{
		Role: llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{
			llms.BinaryPart("image/png", data),
			llms.TextPart(CaptionPrompt),
		},
	}})
	if err != nil {
		return "", fmt.Errorf("ollama caption call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("ollama returned no choices")
	}
	return CleanText(resp.Choices[0].Content), nil
}
