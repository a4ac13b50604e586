package aimux

import (
	"context"
	"errors"
	"fmt"
	"strings"

	oai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	// DefaultGLMBaseURL is the Zhipu open platform endpoint. GLM exposes an
	// OpenAI-compatible API, so both adapters drive it through the OpenAI SDK
	// with this base URL.
	DefaultGLMBaseURL = "https://open.bigmodel.cn/api/paas/v4"

	defaultGLMModel      = "glm-4-flash-250414"
	defaultGLMImageModel = "cogview-3-flash"
)

// OpenAICompletionService is the subset of the OpenAI SDK chat completion
// client that the OpenAI-compatible adapters depend on. It is implemented by
// *oai.ChatCompletionService and can be mocked in tests.
type OpenAICompletionService interface {
	New(ctx context.Context, body oai.ChatCompletionNewParams, opts ...option.RequestOption) (res *oai.ChatCompletion, err error)
}

var _ OpenAICompletionService = (*oai.ChatCompletionService)(nil)

// OpenAIImageService is the subset of the OpenAI SDK image client that the
// GLM image adapter depends on. It is implemented by *oai.ImageService.
type OpenAIImageService interface {
	Generate(ctx context.Context, body oai.ImageGenerateParams, opts ...option.RequestOption) (res *oai.ImagesResponse, err error)
}

var _ OpenAIImageService = (*oai.ImageService)(nil)

// GLMCompleter implements Completer against the Zhipu GLM chat completions
// API via the OpenAI SDK.
//
// Example:
//
//	client := oai.NewClient(
//	    option.WithBaseURL(aimux.DefaultGLMBaseURL),
//	    option.WithAPIKey(os.Getenv("ZHIPUAI_API_KEY")),
//	)
//	completer := aimux.NewGLMCompleter(&client.Chat.Completions, "")
type GLMCompleter struct {
	client OpenAICompletionService
	model  string
}

// NewGLMCompleter creates a GLM text adapter. If model is empty,
// "glm-4-flash-250414" is used.
func NewGLMCompleter(client OpenAICompletionService, model string) *GLMCompleter {
	if model == "" {
		model = defaultGLMModel
	}
	return &GLMCompleter{client: client, model: model}
}

// Identity implements the identity contract used by fallback chains.
func (g *GLMCompleter) Identity() (Provider, string) {
	return ProviderGLM, g.model
}

// Complete implements Completer.
func (g *GLMCompleter) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	if g.client == nil {
		return Completion{}, fmt.Errorf("glm: client not initialized")
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

	params := oai.ChatCompletionNewParams{
		Model: oai.ChatModel(model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.UserMessage(req.Prompt),
		},
		Temperature: oai.Float(temperature),
		MaxTokens:   oai.Int(int64(maxTokens)),
	}

	resp, err := g.client.New(ctx, params)
	if err != nil {
		return Completion{}, normalizeOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, MalformedResponseErr("response has no choices")
	}
	choice := resp.Choices[0]
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
		Provider: ProviderGLM,
		Model:    model,
	}, nil
}

// Count implements TokenCounter with a local tokenizer estimate.
func (g *GLMCompleter) Count(ctx context.Context, prompt string) (uint, error) {
	return estimateTokens(prompt)
}

var _ Completer = (*GLMCompleter)(nil)
var _ TokenCounter = (*GLMCompleter)(nil)

// GLMImageGenerator implements ImageGenerator against the GLM image
// generations API (CogView) via the OpenAI SDK.
// Endpoint: POST {baseURL}/images/generations.
type GLMImageGenerator struct {
	client OpenAIImageService
	model  string
}

// NewGLMImageGenerator creates a GLM image adapter. If model is empty,
// "cogview-3-flash" is used.
func NewGLMImageGenerator(client OpenAIImageService, model string) *GLMImageGenerator {
	if model == "" {
		model = defaultGLMImageModel
	}
	return &GLMImageGenerator{client: client, model: model}
}

// Identity implements the identity contract used by fallback chains.
func (g *GLMImageGenerator) Identity() (Provider, string) {
	return ProviderGLM, g.model
}

// GenerateImage implements ImageGenerator.
func (g *GLMImageGenerator) GenerateImage(ctx context.Context, req ImageRequest) (Image, error) {
	if g.client == nil {
		return Image{}, fmt.Errorf("glm: client not initialized")
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

	params := oai.ImageGenerateParams{
		Prompt: req.Description,
		Model:  oai.ImageModel(model),
		Size:   oai.ImageGenerateParamsSize(fmt.Sprintf("%dx%d", width, height)),
	}
	if req.Quality != "" {
		params.Quality = oai.ImageGenerateParamsQuality(req.Quality)
	}

	resp, err := g.client.Generate(ctx, params)
	if err != nil {
		return Image{}, normalizeOpenAIError(err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return Image{}, MalformedResponseErr("response has no image data")
	}

	return Image{
		URL:      resp.Data[0].URL,
		Provider: ProviderGLM,
		Model:    model,
	}, nil
}

var _ ImageGenerator = (*GLMImageGenerator)(nil)

// normalizeOpenAIError converts OpenAI SDK errors into the adapter error
// taxonomy. API errors (non-2xx responses) become ProviderErr; anything else
// is a transport-level failure.
func normalizeOpenAIError(err error) error {
	var apierr *oai.Error
	if errors.As(err, &apierr) {
		return ProviderErr{
			StatusCode: apierr.StatusCode,
			Type:       statusType(apierr.StatusCode),
			Message:    apierr.Error(),
		}
	}
	return TransportErr{Cause: err}
}
