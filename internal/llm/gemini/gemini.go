// Package gemini adapts the Google Gemini API to the llm.Generator port.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"sintesi/internal/llm"
)

// Client generates text through a single Gemini model.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

var _ llm.Generator = (*Client)(nil)

// New creates a Gemini-backed generator. The API key is required; the model
// name defaults to gemini-2.5-flash.
func New(ctx context.Context, apiKey, modelName string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("missing Gemini API key")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &Client{
		client: client,
		model:  client.GenerativeModel(modelName),
		name:   modelName,
	}, nil
}

// Generate sends the prompt to the model and returns the first candidate's
// text. Overload-class failures are wrapped with llm.ErrOverloaded so the
// retry layer can classify them.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		if isOverloaded(err) {
			return "", fmt.Errorf("%w: %s: %v", llm.ErrOverloaded, c.name, err)
		}
		return "", fmt.Errorf("generate content with %s: %w", c.name, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("model %s returned no candidates", c.name)
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("model %s returned a non-text part", c.name)
	}

	return strings.TrimSpace(string(text)), nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// isOverloaded classifies provider errors into the transient-overload bucket:
// rate limiting and capacity-class server failures.
func isOverloaded(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusServiceUnavailable:
			return true
		}
	}
	return false
}
