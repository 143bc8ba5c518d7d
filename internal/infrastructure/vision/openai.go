package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/foodlens/backend/internal/domain"
	"github.com/foodlens/backend/internal/logger"
)

const defaultModel = "gpt-4o-mini"

// Options configures the OpenAI client
type Options struct {
	APIKey            string
	BaseURL           string
	Model             string
	MaxTokens         int
	RequestsPerMinute int // 0 disables the limiter
}

// Client sends food photos to an OpenAI-compatible chat completions API.
// One call per Describe, no retries.
type Client struct {
	api         *openai.Client
	model       string
	maxTokens   int
	rateLimiter *rate.Limiter
	log         logrus.FieldLogger
}

// NewClient creates a new vision client
func NewClient(opts Options, log logrus.FieldLogger) *Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}

	model := opts.Model
	if model == "" {
		model = defaultModel
	}

	var limiter *rate.Limiter
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), opts.RequestsPerMinute)
	}

	return &Client{
		api:         openai.NewClientWithConfig(cfg),
		model:       model,
		maxTokens:   opts.MaxTokens,
		rateLimiter: limiter,
		log:         logger.Component(log, "vision"),
	}
}

// Describe implements domain.VisionClient. The image travels as a base64 data URL.
func (c *Client) Describe(ctx context.Context, image []byte, mimeType, prompt string) (string, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: rate limiter: %v", domain.ErrExternalCallFailed, err)
		}
	}

	started := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, c.buildRequest(image, mimeType, prompt))
	if err != nil {
		entry := c.log.WithError(err)
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			entry = entry.WithField("status", apiErr.HTTPStatusCode)
		}
		entry.Error("chat completion failed")
		return "", fmt.Errorf("%w: %v", domain.ErrExternalCallFailed, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", domain.ErrExternalCallFailed)
	}

	c.log.WithFields(logrus.Fields{
		"model":             resp.Model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"duration":          time.Since(started).String(),
	}).Info("chat completion finished")

	return resp.Choices[0].Message.Content, nil
}

func (c *Client) buildRequest(image []byte, mimeType, prompt string) openai.ChatCompletionRequest {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	}

	// Reasoning models take MaxCompletionTokens instead of MaxTokens
	if usesCompletionTokens(c.model) {
		req.MaxCompletionTokens = c.maxTokens
	} else {
		req.MaxTokens = c.maxTokens
	}

	return req
}

func usesCompletionTokens(model string) bool {
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}
