package aimux

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiModelService is the subset of the Gemini SDK model client that the
// Gemini adapter depends on. It is implemented by *genai.Models and can be
// mocked in tests.
type GeminiModelService interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var _ GeminiModelService = (*genai.Models)(nil)

// GeminiCompleter implements Completer against the first-party Google
// Gemini API. It is an optional provider family for deployments that hold a
// direct Gemini API key; the stock hybrid chain does not include it.
//
// Example:
//
//	client, err := genai.NewClient(ctx, &genai.ClientConfig{
//	    APIKey:  os.Getenv("GEMINI_API_KEY"),
//	    Backend: genai.BackendGeminiAPI,
//	})
//	completer := aimux.NewGeminiCompleter(client.Models, "")
type GeminiCompleter struct {
	models GeminiModelService
	model  string
}

// NewGeminiCompleter creates a Gemini text adapter. If model is empty,
// "gemini-2.0-flash" is used.
func NewGeminiCompleter(models GeminiModelService, model string) *GeminiCompleter {
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiCompleter{models: models, model: model}
}

// Identity implements the identity contract used by fallback chains.
func (g *GeminiCompleter) Identity() (Provider, string) {
	return ProviderGemini, g.model
}

// Complete implements Completer.
func (g *GeminiCompleter) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	if g.models == nil {
		return Completion{}, fmt.Errorf("gemini: client not initialized")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return Completion{}, EmptyPromptErr
	}

	model := req.Model
	if model == "" {
		model = g.model
	}
	temperature := defaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(temperature)),
		MaxOutputTokens: int32(maxTokens),
	}

	resp, err := g.models.GenerateContent(ctx, model, genai.Text(req.Prompt), config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return Completion{}, ProviderErr{
				StatusCode: apiErr.Code,
				Type:       statusType(apiErr.Code),
				Message:    apiErr.Message,
			}
		}
		return Completion{}, TransportErr{Cause: err}
	}

	if len(resp.Candidates) > 0 {
		switch resp.Candidates[0].FinishReason {
		case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent:
			return Completion{}, ContentPolicyErr("generation blocked by safety filters")
		}
	}
	text := resp.Text()
	if text == "" {
		return Completion{}, MalformedResponseErr("response has no text candidates")
	}

	return Completion{
		Text:     text,
		Provider: ProviderGemini,
		Model:    model,
	}, nil
}

var _ Completer = (*GeminiCompleter)(nil)
