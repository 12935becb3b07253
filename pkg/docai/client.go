package docai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-restaurant-onboarding/config"

	openai "github.com/sashabaranov/go-openai"
)

// requestTimeout bounds every call to the document-understanding service.
// Calls are best-effort enrichments; they must never hang a wizard step.
const requestTimeout = 8 * time.Second

// Client talks to an OpenAI-compatible chat-completions endpoint used for
// document validation and text extraction
type Client struct {
	api    *openai.Client
	model  string
	hasKey bool
}

// NewClient creates a document-understanding client from configuration
func NewClient(cfg *config.Config) *Client {
	apiCfg := openai.DefaultConfig(cfg.DocAIAPIKey)
	if cfg.DocAIBaseURL != "" {
		apiCfg.BaseURL = cfg.DocAIBaseURL
	}
	return &Client{
		api:    openai.NewClientWithConfig(apiCfg),
		model:  cfg.DocAIModel,
		hasKey: cfg.DocAIAPIKey != "",
	}
}

// IsConfigured reports whether an API key is present
func (c *Client) IsConfigured() bool {
	return c != nil && c.hasKey && c.model != ""
}

// CompleteJSON sends a system instruction plus user text and returns the raw
// JSON response content. The response format is pinned to JSON so the model
// cannot answer with prose.
func (c *Client) CompleteJSON(ctx context.Context, instruction, userContent string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: instruction},
			{Role: openai.ChatMessageRoleUser, Content: userContent},
		},
	})
	if err != nil {
		return "", fmt.Errorf("docai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("docai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// ExtractTextFromImage runs OCR-style extraction over a base64 image or
// scanned PDF page rendered as an image. mimeType is e.g. "image/png".
func (c *Client) ExtractTextFromImage(ctx context.Context, imageBase64, mimeType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	dataURI := fmt.Sprintf("data:%s;base64,%s", mimeType, imageBase64)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.1,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "Extract all readable text from the provided document image. Return the raw text only, preserving line breaks. If no text is readable, return an empty response.",
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURI},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("docai image extraction failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("docai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
