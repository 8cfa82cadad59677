// Package openai generates policy answers with an OpenAI-compatible chat
// completion API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/benepick/benepick/internal/logging"
	"github.com/benepick/benepick/pkg/domain"
	sdk "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = sdk.GPT4oMini

// maxContextSources is how many search results are given to the model.
const maxContextSources = 3

const systemPrompt = `당신은 복지 정책 안내 챗봇입니다.
사용자의 질문에 대해 제공된 정책 정보를 바탕으로 친절하게 답변해주세요.

참조 정책:
%s

답변 가이드라인:
1. 간결하고 명확하게 답변하세요
2. 관련 정책이 있으면 1-2개를 중점적으로 소개하세요
3. 신청 방법이나 문의처가 있으면 안내해주세요
4. 반드시 한국어로 답변하세요`

// Generator implements ports.AnswerGenerator.
type Generator struct {
	client *sdk.Client
	model  string
	logger *slog.Logger
}

// Option configures a Generator.
type Option func(*options)

type options struct {
	baseURL string
	model   string
	logger  *slog.Logger
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = url
	}
}

// WithModel selects the chat model.
func WithModel(model string) Option {
	return func(o *options) {
		if model != "" {
			o.model = model
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New returns a generator authenticated with apiKey.
func New(apiKey string, opts ...Option) *Generator {
	o := options{model: DefaultModel, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := sdk.DefaultConfig(apiKey)
	if o.baseURL != "" {
		cfg.BaseURL = o.baseURL
	}
	return &Generator{
		client: sdk.NewClientWithConfig(cfg),
		model:  o.model,
		logger: o.logger,
	}
}

// Generate answers query grounded on the top search results.
func (g *Generator) Generate(ctx context.Context, query string, sources []domain.PolicySource) (string, error) {
	ref, err := json.MarshalIndent(sources[:min(len(sources), maxContextSources)], "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode sources: %w", err)
	}

	resp, err := g.client.CreateChatCompletion(ctx, sdk.ChatCompletionRequest{
		Model: g.model,
		Messages: []sdk.ChatCompletionMessage{
			{Role: sdk.ChatMessageRoleSystem, Content: fmt.Sprintf(systemPrompt, ref)},
			{Role: sdk.ChatMessageRoleUser, Content: query},
		},
	})
	if err != nil {
		var apiErr *sdk.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode >= 500 {
			return "", fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}

	g.logger.Debug("answer generated", "model", g.model, "total_tokens", resp.Usage.TotalTokens)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
