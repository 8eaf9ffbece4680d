package glyph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GenAIDecoder calls a Gemini model directly through the Google GenAI SDK.
type GenAIDecoder struct {
	client *genai.Client
	model  string
}

type GenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

func NewGenAIDecoder(ctx context.Context, cfg GenAIConfig) (*GenAIDecoder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("GenAI API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create GenAI client: %w", err)
	}
	return &GenAIDecoder{client: client, model: cfg.Model}, nil
}

func (d *GenAIDecoder) Decode(ctx context.Context, prompt string, params DecodeParams) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		CandidateCount:  int32(params.Beams),
		MaxOutputTokens: int32(params.MaxTokens),
	}
	if params.Sample {
		genCfg.Temperature = genai.Ptr(float32(params.Temperature))
	} else {
		genCfg.Temperature = genai.Ptr[float32](0)
	}

	resp, err := d.client.Models.GenerateContent(ctx, d.model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no candidates returned")
	}

	// Candidates arrive best-first; the first one plays the role of the top beam.
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}

func (d *GenAIDecoder) Name() string {
	return "genai:" + d.model
}
