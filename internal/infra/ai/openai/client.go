package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/inspekta/internal/domain/ai"
)

const maxTokens = 1024

type Client struct {
	*openai.Client
	model string
}

// NewClient fails with ai.ErrMissingCredentials when apiKey is empty, so a
// batch never starts without credentials.
func NewClient(apiKey, model, baseURL string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ai.ErrMissingCredentials
	}
	if model == "" {
		model = openai.GPT4o
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &Client{Client: openai.NewClientWithConfig(cfg), model: model}, nil
}

func (c *Client) Model() string { return c.model }

// DescribeImage sends one image as a data URL together with the instruction
// and returns the raw text answer.
func (c *Client) DescribeImage(ctx context.Context, in ai.ImageRequest) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: in.System},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: in.Prompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL(in.ImageMIME, in.Image),
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
	}
	// reasoning models (o1/o3/o4/gpt-5*) pakai MaxCompletionTokens
	if strings.HasPrefix(c.model, "o1") || strings.HasPrefix(c.model, "o3") || strings.HasPrefix(c.model, "o4") || strings.HasPrefix(c.model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
		req.Temperature = 0
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", ai.ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// classify maps provider status codes onto the domain errors.
func classify(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %v", ai.ErrUnauthorized, err)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, err)
	}
	return fmt.Errorf("failed to create chat completion: %w", err)
}

func dataURL(mime string, b []byte) string {
	if mime == "" {
		mime = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(b))
}
