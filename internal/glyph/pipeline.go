package glyph

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// PipelineDecoder reaches the model through langchaingo's generation pipeline, against any
// OpenAI-compatible endpoint (hosted API or a local inference server).
type PipelineDecoder struct {
	llm   llms.Model
	model string
}

type PipelineConfig struct {
	BaseURL string
	Model   string
	APIKey  string
}

func NewPipelineDecoder(cfg PipelineConfig) (*PipelineDecoder, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("pipeline base URL is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("pipeline model is required")
	}
	apiKey := cfg.APIKey
	if apiKey == "" {
		// langchaingo requires a token even for servers that ignore it.
		apiKey = "placeholder"
	}

	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("create pipeline client: %w", err)
	}
	return &PipelineDecoder{llm: llm, model: cfg.Model}, nil
}

func (d *PipelineDecoder) Decode(ctx context.Context, prompt string, params DecodeParams) (string, error) {
	opts := []llms.CallOption{llms.WithMaxTokens(params.MaxTokens)}
	if params.Sample {
		opts = append(opts, llms.WithTemperature(params.Temperature))
	} else {
		opts = append(opts, llms.WithTemperature(0))
	}
	out, err := llms.GenerateFromSinglePrompt(ctx, d.llm, prompt, opts...)
	if err != nil {
		return "", fmt.Errorf("pipeline generate: %w", err)
	}
	return out, nil
}

func (d *PipelineDecoder) Name() string {
	return "pipeline:" + d.model
}
