package aimux

import "context"

// Request defaults applied by adapters when the corresponding
// CompletionRequest or ImageRequest field is zero.
const (
	defaultTemperature = 0.5
	defaultMaxTokens   = 8192
	defaultImageSize   = 1024
)

// Provider identifies an upstream generative AI service family.
type Provider string

const (
	// ProviderPollinations is the Pollinations.AI service (text and image).
	ProviderPollinations Provider = "pollinations"
	// ProviderGLM is the Zhipu GLM service (text and image).
	ProviderGLM Provider = "glm"
	// ProviderGemini is the first-party Google Gemini API (text).
	ProviderGemini Provider = "gemini"
	// ProviderAnthropic is the first-party Anthropic API (text).
	ProviderAnthropic Provider = "anthropic"
	// ProviderHybrid selects the stock failover chain: the Pollinations
	// model priority list first, then GLM. It is a factory selector, not
	// an adapter identity; no Completion or Image is ever tagged with it.
	ProviderHybrid Provider = "hybrid"
)

// CompletionRequest is the input for one text completion call. It is passed
// by value and never shared between attempts; strategies copy it to
// substitute candidate models.
type CompletionRequest struct {
	// Prompt is the user prompt. Must be non-empty.
	Prompt string

	// Model overrides the adapter's default model for this call.
	// Priority-list strategies set this per candidate.
	Model string

	// Temperature is the sampling temperature. Nil means the adapter
	// default (0.5); an explicit zero requests greedy sampling.
	Temperature *float64

	// MaxTokens caps the generated token count. Zero means the adapter
	// default (8192).
	MaxTokens int
}

// Completion is a successful text completion, tagged with the provider and
// model that actually served it.
type Completion struct {
	Text     string
	Provider Provider
	Model    string
}

// ImageRequest is the input for one image generation call.
type ImageRequest struct {
	// Description is the image prompt. Must be non-empty.
	Description string

	// Model overrides the adapter's default model for this call.
	Model string

	// Width and Height select the output dimensions. Zero means 1024.
	Width  int
	Height int

	// Seed fixes the generation seed when non-zero (Pollinations only).
	Seed int

	// Enhance asks the provider to rewrite the prompt for quality
	// (Pollinations only).
	Enhance bool

	// Quality selects the provider's quality tier when non-empty
	// (GLM only).
	Quality string
}

// Image is a successful image generation result. URL locates the generated
// image on the provider that served it.
type Image struct {
	URL      string
	Provider Provider
	Model    string
}

// Completer is the uniform attempt contract for text completion. One call
// performs at most one upstream attempt per candidate; implementations must
// be stateless between calls and safe for concurrent use.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}

// ImageGenerator is the uniform attempt contract for image generation.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) (Image, error)
}

// identified is implemented by adapters that know which (provider, model)
// pair an attempt against them represents. Fallback chains use it to tag
// failure records for bare adapter units.
type identified interface {
	Identity() (Provider, string)
}

// identityOf reports the (provider, model) identity of a unit, if it has one.
func identityOf(v any) (Provider, string) {
	if id, ok := v.(identified); ok {
		return id.Identity()
	}
	return "", ""
}

// Ptr returns a pointer to v, for optional request fields such as
// CompletionRequest.Temperature.
func Ptr[T any](v T) *T {
	return &v
}
