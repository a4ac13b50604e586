// Package aimux provides a uniform interface to heterogeneous generative AI
// services (text completion and image generation) with multi-provider
// failover.
//
// Callers request a completion or an image without knowing which upstream
// provider serves it. Providers are wrapped behind two small contracts:
//
//	type Completer interface {
//		Complete(ctx context.Context, req CompletionRequest) (Completion, error)
//	}
//
//	type ImageGenerator interface {
//		GenerateImage(ctx context.Context, req ImageRequest) (Image, error)
//	}
//
// Concrete adapters exist for Pollinations, GLM (Zhipu), Google Gemini and
// Anthropic. Composition wrappers implement the failover policy:
//
//   - ModelListCompleter tries an ordered priority list of models on one
//     provider and stops at the first success.
//   - FallbackCompleter and FallbackImageGenerator chain units across
//     different providers, switching only when a unit has fully exhausted
//     its own candidates.
//   - RetryCompleter retries transient failures with exponential backoff.
//
// When every candidate in a chain fails, the caller receives an
// *AggregateErr enumerating each attempted (provider, model) pair and the
// reason it failed, in attempt order.
//
// # Basic usage
//
//	completer, err := aimux.BuildCompleter(aimux.Config{Provider: aimux.ProviderHybrid})
//	if err != nil {
//		log.Fatal(err)
//	}
//	out, err := completer.Complete(ctx, aimux.CompletionRequest{
//		Prompt: "Describe the morning routine of a village baker.",
//	})
//
// For more examples, see the example test files.
package aimux
