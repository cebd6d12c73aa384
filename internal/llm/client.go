// Package llm holds the model invocation adapters. Each backend turns one
// prompt into one raw text response; all response cleanup happens downstream.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Client is the capability the pipeline depends on: one prompt in, the
// backend's raw text out, untouched.
type Client interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Config selects and configures a backend. The provider is chosen once at
// configuration time; the pipeline never branches on it.
type Config struct {
	Provider string // "deepseek" or "gemini"
	APIKey   string
	Model    string // backend default used when empty
	BaseURL  string // HTTP backends only
	Timeout  time.Duration
}

// New creates a client for the configured provider.
func New(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "deepseek":
		return newDeepSeekClient(cfg)
	case "gemini":
		return newGeminiClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
