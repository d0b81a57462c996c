// Package ai wraps the hosted text generation API used by the tutor.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/apperr"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/config"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OpenAICompatGenerator calls any chat-completions endpoint that speaks the
// OpenAI wire format. Gemini exposes one under /v1beta/openai/.
type OpenAICompatGenerator struct {
	client      openai.Client
	model       string
	maxTokens   int64
	temperature float64
	timeout     time.Duration
}

func NewGenerator(cfg config.AIConfig) *OpenAICompatGenerator {
	client := openai.NewClient(
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	)
	return &OpenAICompatGenerator{
		client:      client,
		model:       cfg.Model,
		maxTokens:   cfg.MaxOutputTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}
}

func (g *OpenAICompatGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:       g.model,
		MaxTokens:   openai.Int(g.maxTokens),
		Temperature: openai.Float(g.temperature),
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		return "", Classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", Classify(errors.New("model returned no choices"))
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", Classify(errors.New("model returned an empty response"))
	}
	return text, nil
}

// Classify turns a generation failure into an UpstreamError, or into a
// QuotaExceededError when it looks like rate or quota exhaustion.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if IsQuotaExhausted(err) {
		return apperr.QuotaExceeded(QuotaExceededMessage, err)
	}

	code := ""
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		code = strconv.Itoa(apiErr.StatusCode)
	}
	return apperr.Upstream("Failed to generate AI response", code, err)
}
