// Package llm turns a simulated call conversation into a single assistant
// reply using an OpenAI-compatible chat completion API (Groq by default).
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"call-center-simulator/pkg/constants"
	"call-center-simulator/pkg/metrics"
	"call-center-simulator/pkg/models"
)

var errEmptyCompletion = errors.New("completion returned no choices")

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Gateway never returns an error to its callers: any failure becomes
// constants.FallbackReply.
type Gateway struct {
	client  *openai.Client
	config  Config
	logger  *logrus.Logger
	metrics *metrics.Metrics
}

func NewGateway(cfg Config, logger *logrus.Logger, metrics *metrics.Metrics) *Gateway {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Gateway{
		client:  openai.NewClientWithConfig(clientConfig),
		config:  cfg,
		logger:  logger,
		metrics: metrics,
	}
}

// GetResponse asks the model for the next assistant turn of history.
func (g *Gateway) GetResponse(ctx context.Context, history []models.ChatMessage) string {
	start := time.Now()

	reply, err := g.complete(ctx, history)
	if err != nil {
		g.metrics.LLMRequestDuration.WithLabelValues("fallback").Observe(time.Since(start).Seconds())
		g.logger.WithError(err).WithFields(logrus.Fields{
			"model":         g.config.Model,
			"history_depth": len(history),
		}).Error("Error in LLM service")
		return constants.FallbackReply
	}

	g.metrics.LLMRequestDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())
	return reply
}

func (g *Gateway) complete(ctx context.Context, history []models.ChatMessage) (string, error) {
	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.config.Model,
		Messages:    FormatConversationHistory(history),
		MaxTokens:   g.config.MaxTokens,
		Temperature: float32(g.config.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errEmptyCompletion
	}

	return resp.Choices[0].Message.Content, nil
}

// FormatConversationHistory prepends the assistant persona to history.
func FormatConversationHistory(history []models.ChatMessage) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: constants.SystemPrompt,
	})

	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	return messages
}
