package aimux

import (
	"context"
	"fmt"
	"net/http"
	"os"

	a "github.com/anthropics/anthropic-sdk-go"
	aoption "github.com/anthropics/anthropic-sdk-go/option"
	oai "github.com/openai/openai-go/v3"
	ooption "github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Config describes which strategy to build. The factory performs pure
// wiring: no network calls happen at construction time.
type Config struct {
	// Provider selects the strategy: a single provider family, or
	// ProviderHybrid for the stock failover chain.
	Provider Provider

	// Model overrides the provider's default model. For ProviderPollinations
	// it replaces the whole priority list with this single model. Ignored by
	// ProviderHybrid, whose chain is policy-locked.
	Model string

	// BaseURL overrides the provider endpoint for single-provider
	// selectors. Ignored by ProviderHybrid.
	BaseURL string

	// APIKey is the provider credential. Empty means "use the provider's
	// environment variable, or anonymous access where supported".
	APIKey string

	// HTTPClient overrides the HTTP client used for outbound calls.
	HTTPClient *http.Client

	// Logger receives failover diagnostics. If nil, logging is disabled.
	Logger *zap.Logger
}

// BuildCompleter constructs the text completion strategy described by cfg.
//
// ProviderHybrid composes exactly: the Pollinations model priority list
// first, then the GLM adapter. The order is policy; callers needing a
// different chain compose NewFallbackCompleter directly.
func BuildCompleter(cfg Config) (Completer, error) {
	fc := &FallbackConfig{Logger: cfg.Logger}

	switch cfg.Provider {
	case ProviderPollinations:
		models := DefaultPollinationsModels
		if cfg.Model != "" {
			models = []string{cfg.Model}
		}
		adapter := NewPollinationsCompleter(cfg.HTTPClient, cfg.BaseURL, "", cfg.APIKey)
		return NewModelListCompleter(adapter, models, fc)

	case ProviderGLM:
		return NewGLMCompleter(glmCompletionService(cfg.BaseURL, cfg.APIKey, cfg.HTTPClient), cfg.Model), nil

	case ProviderGemini:
		key := cfg.APIKey
		if key == "" {
			key = os.Getenv("GEMINI_API_KEY")
		}
		client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:     key,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: cfg.HTTPClient,
		})
		if err != nil {
			return nil, ConfigurationErr(fmt.Sprintf("gemini client: %v", err))
		}
		return NewGeminiCompleter(client.Models, cfg.Model), nil

	case ProviderAnthropic:
		opts := []aoption.RequestOption{}
		if cfg.APIKey != "" {
			opts = append(opts, aoption.WithAPIKey(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, aoption.WithBaseURL(cfg.BaseURL))
		}
		if cfg.HTTPClient != nil {
			opts = append(opts, aoption.WithHTTPClient(cfg.HTTPClient))
		}
		client := a.NewClient(opts...)
		return NewAnthropicCompleter(&client.Messages, cfg.Model), nil

	case ProviderHybrid:
		adapter := NewPollinationsCompleter(cfg.HTTPClient, "", "", cfg.APIKey)
		primary, err := NewModelListCompleter(adapter, DefaultPollinationsModels, fc)
		if err != nil {
			return nil, err
		}
		secondary := NewGLMCompleter(glmCompletionService("", "", cfg.HTTPClient), "")
		return NewFallbackCompleter([]Completer{primary, secondary}, fc)

	default:
		return nil, ConfigurationErr(fmt.Sprintf(
			"completion provider %q is not supported, use %q, %q, %q, %q or %q",
			cfg.Provider, ProviderPollinations, ProviderGLM, ProviderGemini, ProviderAnthropic, ProviderHybrid))
	}
}

// BuildImageGenerator constructs the image generation strategy described by
// cfg. An empty provider selects ProviderHybrid: the Pollinations adapter
// first, then GLM, in that fixed order.
func BuildImageGenerator(cfg Config) (ImageGenerator, error) {
	fc := &FallbackConfig{Logger: cfg.Logger}

	switch cfg.Provider {
	case ProviderPollinations:
		return NewPollinationsImageGenerator(cfg.HTTPClient, cfg.BaseURL, cfg.Model, cfg.APIKey), nil

	case ProviderGLM:
		return NewGLMImageGenerator(glmImageService(cfg.BaseURL, cfg.APIKey, cfg.HTTPClient), cfg.Model), nil

	case ProviderHybrid, "":
		primary := NewPollinationsImageGenerator(cfg.HTTPClient, "", "", cfg.APIKey)
		secondary := NewGLMImageGenerator(glmImageService("", "", cfg.HTTPClient), "")
		return NewFallbackImageGenerator([]ImageGenerator{primary, secondary}, fc)

	default:
		return nil, ConfigurationErr(fmt.Sprintf(
			"image provider %q is not supported, use %q, %q or %q",
			cfg.Provider, ProviderPollinations, ProviderGLM, ProviderHybrid))
	}
}

func glmClientOptions(baseURL, apiKey string, httpClient *http.Client) []ooption.RequestOption {
	if baseURL == "" {
		baseURL = DefaultGLMBaseURL
	}
	if apiKey == "" {
		apiKey = os.Getenv("ZHIPUAI_API_KEY")
	}
	opts := []ooption.RequestOption{
		ooption.WithBaseURL(baseURL),
		ooption.WithAPIKey(apiKey),
	}
	if httpClient != nil {
		opts = append(opts, ooption.WithHTTPClient(httpClient))
	}
	return opts
}

func glmCompletionService(baseURL, apiKey string, httpClient *http.Client) OpenAICompletionService {
	client := oai.NewClient(glmClientOptions(baseURL, apiKey, httpClient)...)
	return &client.Chat.Completions
}

func glmImageService(baseURL, apiKey string, httpClient *http.Client) OpenAIImageService {
	client := oai.NewClient(glmClientOptions(baseURL, apiKey, httpClient)...)
	return &client.Images
}
