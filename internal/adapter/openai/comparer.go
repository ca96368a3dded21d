// Package openai compares two flights with a chat completion model.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mmcdole/flightdeck/internal/domain"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4.1-mini"

	// FallbackMessage is returned whenever a comparison cannot be produced
	FallbackMessage = "Unable to compare flights at this time."

	temperature = 0.7
)

// Comparer implements domain.Comparer
type Comparer struct {
	client openai.Client
	apiKey string
	model  string
	logger *slog.Logger
}

var _ domain.Comparer = (*Comparer)(nil)

// NewComparer creates a comparer. Empty baseURL or model use the defaults.
func NewComparer(baseURL, apiKey, model string, httpClient *http.Client, logger *slog.Logger) *Comparer {
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Comparer{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"),
			option.WithHTTPClient(httpClient),
			option.WithMaxRetries(0),
		),
		apiKey: apiKey,
		model:  model,
		logger: logger,
	}
}

// Compare asks the model which flight is better. It never fails; any error
// yields FallbackMessage.
func (c *Comparer) Compare(ctx context.Context, a, b domain.FlightOffer) string {
	text, err := c.compare(ctx, a, b)
	if err != nil {
		c.logger.Warn("AI comparison failed", "a", a.ID, "b", b.ID, "error", err)
		return FallbackMessage
	}
	return text
}

func (c *Comparer) compare(ctx context.Context, a, b domain.FlightOffer) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("no API key configured")
	}

	prompt, err := buildPrompt(a, b)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Temperature: openai.Float(temperature),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("chat completion returned no content")
	}
	return resp.Choices[0].Message.Content, nil
}

func buildPrompt(a, b domain.FlightOffer) (string, error) {
	ja, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "", err
	}
	jb, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`Compare these two flights and determine which is better overall for a traveler. Consider price, duration, stops, airline, legroom, seat, and any other relevant info.

Flight A: %s
Flight B: %s

Give a concise summary and declare which flight you recommend.`, ja, jb), nil
}
