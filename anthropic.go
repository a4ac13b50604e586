package aimux

import (
	"context"
	"errors"
	"fmt"
	"strings"

	a "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-3-5-haiku-latest"

// AnthropicSvc is the subset of the Anthropic SDK message client that the
// Anthropic adapter depends on. It is implemented by *a.MessageService and
// can be mocked in tests.
type AnthropicSvc interface {
	New(ctx context.Context, body a.MessageNewParams, opts ...option.RequestOption) (res *a.Message, err error)
}

var _ AnthropicSvc = (*a.MessageService)(nil)

// AnthropicCompleter implements Completer against the first-party Anthropic
// Messages API. Like the Gemini adapter, it is an optional provider family
// outside the stock hybrid chain.
//
// Example:
//
//	client := a.NewClient(option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")))
//	completer := aimux.NewAnthropicCompleter(&client.Messages, "")
type AnthropicCompleter struct {
	client AnthropicSvc
	model  string
}

// NewAnthropicCompleter creates an Anthropic text adapter. If model is
// empty, "claude-3-5-haiku-latest" is used.
func NewAnthropicCompleter(client AnthropicSvc, model string) *AnthropicCompleter {
	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicCompleter{client: client, model: model}
}

// Identity implements the identity contract used by fallback chains.
func (g *AnthropicCompleter) Identity() (Provider, string) {
	return ProviderAnthropic, g.model
}

// Complete implements Completer.
func (g *AnthropicCompleter) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	if g.client == nil {
		return Completion{}, fmt.Errorf("anthropic: client not initialized")
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

	params := a.MessageNewParams{
		Model:     a.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []a.MessageParam{
			a.NewUserMessage(a.NewTextBlock(req.Prompt)),
		},
		Temperature: a.Float(temperature),
	}

	resp, err := g.client.New(ctx, params)
	if err != nil {
		var apierr *a.Error
		if errors.As(err, &apierr) {
			return Completion{}, ProviderErr{
				StatusCode: apierr.StatusCode,
				Type:       statusType(apierr.StatusCode),
				Message:    apierr.Error(),
			}
		}
		return Completion{}, TransportErr{Cause: err}
	}

	if resp.StopReason == a.StopReasonRefusal {
		return Completion{}, ContentPolicyErr("model refused to generate a response")
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return Completion{}, MalformedResponseErr("response has no text content")
	}

	return Completion{
		Text:     b.String(),
		Provider: ProviderAnthropic,
		Model:    model,
	}, nil
}

var _ Completer = (*AnthropicCompleter)(nil)
