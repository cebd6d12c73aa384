package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/madhu-yavar/table-extraction/internal/logger"
)

const (
	defaultDeepSeekBaseURL = "https://api.deepseek.com"
	defaultDeepSeekModel   = "deepseek-chat"
)

// deepSeekClient implements Client over the DeepSeek chat completions API.
type deepSeekClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

func newDeepSeekClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("deepseek API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = defaultDeepSeekModel
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultDeepSeekBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	return &deepSeekClient{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// Invoke sends the prompt as a single user turn at temperature 0 and
// returns the assistant's raw text.
func (c *deepSeekClient) Invoke(ctx context.Context, prompt string) (string, error) {
	log := logger.For(logger.FromContext(ctx), "deepseek")
	reqID := uuid.NewString()
	start := time.Now()

	requestBody := map[string]any{
		"model":       c.model,
		"temperature": 0,
		"stream":      false,
		"messages": []map[string]string{
			{
				"role":    "user",
				"content": prompt,
			},
		},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", strings.NewReader(string(jsonBody)))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	log.Debug().Str("req_id", reqID).Str("model", c.model).Int("prompt_len", len(prompt)).Msg("Sending chat completion request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &InvocationError{Provider: "deepseek", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &InvocationError{Provider: "deepseek", Err: fmt.Errorf("read response: %w", err)}
	}

	log.Debug().Str("req_id", reqID).Int("status", resp.StatusCode).Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).Msg("Received chat completion response")

	if resp.StatusCode != http.StatusOK {
		return "", &InvocationError{Provider: "deepseek", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var envelope struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", &InvocationError{Provider: "deepseek", Body: string(body), Err: fmt.Errorf("decode response envelope: %w", err)}
	}
	if len(envelope.Choices) == 0 {
		return "", &InvocationError{Provider: "deepseek", Body: string(body), Err: fmt.Errorf("no choices in response")}
	}

	return envelope.Choices[0].Message.Content, nil
}
