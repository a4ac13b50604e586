package aimux

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
)

const (
	defaultPollinationsTextURL  = "https://text.pollinations.ai/openai"
	defaultPollinationsImageURL = "https://image.pollinations.ai"

	defaultPollinationsModel      = "openai-large"
	defaultPollinationsImageModel = "flux"
)

// DefaultPollinationsModels is the stock model priority family for the
// Pollinations text service, richest model first.
var DefaultPollinationsModels = []string{"openai-large", "gemini", "openai", "deepseek"}

// PollinationsCompleter implements Completer against the Pollinations text
// service, an OpenAI-compatible chat completions endpoint.
// Endpoint: POST {baseURL} (default https://text.pollinations.ai/openai).
//
// One invocation performs exactly one outbound call; retry and fallback
// belong to the wrapping strategies.
type PollinationsCompleter struct {
	client  *http.Client
	baseURL string
	token   string
	model   string
}

// NewPollinationsCompleter creates a Pollinations text adapter.
// If httpClient is nil, http.DefaultClient is used.
// If baseURL is empty, the public Pollinations endpoint is used.
// If model is empty, "openai-large" is used.
// token is read from PAI_TOKEN if empty; an empty token means anonymous
// access.
func NewPollinationsCompleter(httpClient *http.Client, baseURL, model, token string) *PollinationsCompleter {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = defaultPollinationsTextURL
	}
	if model == "" {
		model = defaultPollinationsModel
	}
	if token == "" {
		token = os.Getenv("PAI_TOKEN")
	}
	return &PollinationsCompleter{
		client:  httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		model:   model,
	}
}

// Identity implements the identity contract used by fallback chains.
func (g *PollinationsCompleter) Identity() (Provider, string) {
	return ProviderPollinations, g.model
}

type pollinationsChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type pollinationsChatRequest struct {
	Model       string                    `json:"model"`
	Messages    []pollinationsChatMessage `json:"messages"`
	MaxTokens   int                       `json:"max_tokens"`
	Temperature float64                   `json:"temperature"`
	Stream      bool                      `json:"stream"`
	Token       string                    `json:"token,omitempty"`
}

type pollinationsChatResponse struct {
	Choices []struct {
		FinishReason string `json:"finish_reason"`
		Message      struct {
			Content string `json:"content"`
			Refusal string `json:"refusal,omitempty"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete implements Completer.
func (g *PollinationsCompleter) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	if g.client == nil {
		return Completion{}, fmt.Errorf("pollinations: client not initialized")
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

	body, err := json.Marshal(pollinationsChatRequest{
		Model:       model,
		Messages:    []pollinationsChatMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Stream:      false,
		Token:       g.token,
	})
	if err != nil {
		return Completion{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(body))
	if err != nil {
		return Completion{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return Completion{}, TransportErr{Cause: err}
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Completion{}, ProviderErr{
			StatusCode: resp.StatusCode,
			Type:       statusType(resp.StatusCode),
			Message:    strings.TrimSpace(string(respBody)),
		}
	}

	var cr pollinationsChatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return Completion{}, MalformedResponseErr(fmt.Sprintf("unparseable body: %v", err))
	}
	if len(cr.Choices) == 0 {
		return Completion{}, MalformedResponseErr("response has no choices")
	}
	choice := cr.Choices[0]
	if choice.FinishReason == "content_filter" {
		refusal := choice.Message.Refusal
		if refusal == "" {
			refusal = "content policy violation detected"
		}
		return Completion{}, ContentPolicyErr(refusal)
	}
	if choice.Message.Content == "" {
		return Completion{}, MalformedResponseErr("choice has empty content")
	}

	return Completion{
		Text:     choice.Message.Content,
		Provider: ProviderPollinations,
		Model:    model,
	}, nil
}

// Count implements TokenCounter with a local tokenizer estimate.
func (g *PollinationsCompleter) Count(ctx context.Context, prompt string) (uint, error) {
	return estimateTokens(prompt)
}

var _ Completer = (*PollinationsCompleter)(nil)
var _ TokenCounter = (*PollinationsCompleter)(nil)

// PollinationsImageGenerator implements ImageGenerator against the
// Pollinations image service.
// Endpoint: GET {baseURL}/prompt/{description}?model=...&width=...
type PollinationsImageGenerator struct {
	client  *http.Client
	baseURL string
	token   string
	model   string
}

// NewPollinationsImageGenerator creates a Pollinations image adapter.
// Defaults mirror NewPollinationsCompleter; the default model is "flux".
func NewPollinationsImageGenerator(httpClient *http.Client, baseURL, model, token string) *PollinationsImageGenerator {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = defaultPollinationsImageURL
	}
	if model == "" {
		model = defaultPollinationsImageModel
	}
	if token == "" {
		token = os.Getenv("PAI_TOKEN")
	}
	return &PollinationsImageGenerator{
		client:  httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		model:   model,
	}
}

// Identity implements the identity contract used by fallback chains.
func (g *PollinationsImageGenerator) Identity() (Provider, string) {
	return ProviderPollinations, g.model
}

// GenerateImage implements ImageGenerator.
func (g *PollinationsImageGenerator) GenerateImage(ctx context.Context, req ImageRequest) (Image, error) {
	if g.client == nil {
		return Image{}, fmt.Errorf("pollinations: client not initialized")
	}
	if strings.TrimSpace(req.Description) == "" {
		return Image{}, EmptyDescriptionErr
	}

	model := req.Model
	if model == "" {
		model = g.model
	}
	width, height := req.Width, req.Height
	if width == 0 {
		width = defaultImageSize
	}
	if height == 0 {
		height = defaultImageSize
	}

	params := url.Values{}
	if g.token != "" {
		params.Set("token", g.token)
	}
	params.Set("model", model)
	params.Set("width", strconv.Itoa(width))
	params.Set("height", strconv.Itoa(height))
	params.Set("nologo", "true")
	if req.Seed != 0 {
		params.Set("seed", strconv.Itoa(req.Seed))
	}
	if req.Enhance {
		params.Set("enhance", "true")
	}

	endpoint := g.baseURL + "/prompt/" + url.PathEscape(req.Description) + "?" + params.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Image{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return Image{}, TransportErr{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Image{}, ProviderErr{
			StatusCode: resp.StatusCode,
			Type:       statusType(resp.StatusCode),
			Message:    strings.TrimSpace(string(respBody)),
		}
	}
	// The service may redirect to the stored image; report the final URL.
	finalURL := endpoint
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return Image{
		URL:      finalURL,
		Provider: ProviderPollinations,
		Model:    model,
	}, nil
}

var _ ImageGenerator = (*PollinationsImageGenerator)(nil)
