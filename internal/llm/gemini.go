package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/madhu-yavar/table-extraction/internal/logger"
)

const defaultGeminiModel = "gemini-2.5-flash"

// geminiClient implements Client over the Gen AI SDK.
type geminiClient struct {
	apiKey string
	model  string
}

func newGeminiClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}

	return &geminiClient{apiKey: cfg.APIKey, model: model}, nil
}

// Invoke sends the prompt as a single user turn at temperature 0. An empty
// or whitespace-only reply is an invocation failure, not "zero results".
func (c *geminiClient) Invoke(ctx context.Context, prompt string) (string, error) {
	log := logger.For(logger.FromContext(ctx), "gemini")
	start := time.Now()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      c.apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", &InvocationError{Provider: "gemini", Err: fmt.Errorf("create genai client: %w", err)}
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	}

	resp, err := client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", &InvocationError{Provider: "gemini", Err: fmt.Errorf("generate content: %w", err)}
	}

	rawText := resp.Text()
	if strings.TrimSpace(rawText) == "" {
		return "", &InvocationError{Provider: "gemini", Err: fmt.Errorf("empty response from model")}
	}

	log.Debug().Str("model", c.model).Int("response_len", len(rawText)).
		Dur("elapsed", time.Since(start)).Msg("Received model response")

	return rawText, nil
}
