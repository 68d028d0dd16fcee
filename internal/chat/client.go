package chat

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/pfrankov/vibe-scribe-sub000/internal/domain"
)

// Client is a stateless wrapper around one chat-completion call, used for
// summarization and title generation.
type Client struct {
	// No client-side timeout: summarizing a long transcript can take
	// minutes. Callers cancel through the context.
	httpClient *http.Client
	log        *logrus.Logger
}

// NewClient creates a chat-completion client.
func NewClient(log *logrus.Logger) *Client {
	return &Client{
		httpClient: &http.Client{},
		log:        log,
	}
}

// Complete sends one user prompt and returns the model's reply text.
func (c *Client) Complete(ctx context.Context, cfg domain.ChatConfig, prompt string) (string, error) {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	apiCfg.HTTPClient = c.httpClient

	client := openai.NewClientWithConfig(apiCfg)
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", classify(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", domain.NewError(domain.KindInvalidResponse, "invalid response format: no completion choices")
	}

	c.log.WithFields(logrus.Fields{
		"model":             cfg.Model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
	}).Debug("chat completion finished")

	return resp.Choices[0].Message.Content, nil
}

// classify maps go-openai failures onto the processing error taxonomy.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return domain.NewHTTPError(apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode > 0 {
			return domain.NewHTTPError(reqErr.HTTPStatusCode, reqErr.Error())
		}
	}

	return domain.WrapError(domain.KindNetwork, "chat completion request failed", err)
}
