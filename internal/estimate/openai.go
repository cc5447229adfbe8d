package estimate

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ppiankov/veracity/internal/util"
	"github.com/sashabaranov/go-openai"
)

// OpenAIEstimator asks an OpenAI chat model for a fake probability
type OpenAIEstimator struct {
	client *openai.Client
	config Config
}

// NewOpenAIEstimator creates a new OpenAI estimator
func NewOpenAIEstimator(config Config) (*OpenAIEstimator, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = newHTTPClient(config, 30*time.Second)

	return &OpenAIEstimator{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIEstimator) Name() string {
	return "openai"
}

// Estimate uses the Chat Completions API in JSON mode
func (p *OpenAIEstimator) Estimate(ctx context.Context, text string) (float64, error) {
	model := p.config.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	maxTokens := p.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 200
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(text)},
		},
		MaxTokens:   maxTokens,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("%w: no choices in OpenAI response", ErrMalformed)
	}

	return ParseProbability(resp.Choices[0].Message.Content)
}

// newHTTPClient builds a proxied client with the configured timeout
func newHTTPClient(config Config, fallback time.Duration) *http.Client {
	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = fallback
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		},
	}
}
