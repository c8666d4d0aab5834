// Package ai talks to hosted text-generation APIs.
package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"inkpipe/internal/domain/config"
)

var ErrDisabled = errors.New("ai: text generation disabled")

// Client is a provider-agnostic single-shot generator. One attempt per call,
// no retry.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Provider() string
}

// NewClient resolves the configured provider. A provider that cannot run
// (explicit "none", missing key) yields an error wrapping ErrDisabled.
func NewClient(cfg config.AIConfig) (Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	hc := &http.Client{Timeout: timeout}

	switch provider := normalizeProvider(cfg.Provider); provider {
	case "gemini":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("gemini requires an API key: %w", ErrDisabled)
		}
		return &geminiClient{
			httpClient: hc,
			baseURL:    orDefault(cfg.BaseURL, defaultGeminiBaseURL),
			model:      orDefault(cfg.Model, defaultGeminiModel),
			apiKey:     strings.TrimSpace(cfg.APIKey),
		}, nil
	case "openai":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, fmt.Errorf("openai requires an API key: %w", ErrDisabled)
		}
		return &openAIClient{
			provider:   provider,
			httpClient: hc,
			baseURL:    orDefault(cfg.BaseURL, defaultOpenAIBaseURL),
			model:      orDefault(cfg.Model, defaultOpenAIModel),
			apiKey:     strings.TrimSpace(cfg.APIKey),
		}, nil
	case "openai-compatible":
		if strings.TrimSpace(cfg.BaseURL) == "" {
			return nil, fmt.Errorf("openai-compatible requires a base URL: %w", ErrDisabled)
		}
		return &openAIClient{
			provider:   provider,
			httpClient: hc,
			baseURL:    strings.TrimSpace(cfg.BaseURL),
			model:      orDefault(cfg.Model, defaultOpenAIModel),
			apiKey:     strings.TrimSpace(cfg.APIKey),
		}, nil
	case "none":
		return nil, fmt.Errorf("provider set to none: %w", ErrDisabled)
	default:
		return nil, fmt.Errorf("unknown ai provider: %q", cfg.Provider)
	}
}

func normalizeProvider(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return "gemini"
	}
	return p
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

func readError(provider string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%s: status %d: %s", provider, resp.StatusCode, strings.TrimSpace(string(body)))
}
