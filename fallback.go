package aimux

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// FallbackConfig configures the failover strategies.
type FallbackConfig struct {
	// Logger receives one entry per failed attempt and per provider
	// switch. If nil, logging is disabled.
	Logger *zap.Logger
}

func (c *FallbackConfig) logger() *zap.Logger {
	if c == nil || c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// ModelListCompleter tries an ordered priority list of models on a single
// provider adapter, stopping at the first success. A later-ranked model is
// attempted if and only if every earlier-ranked model failed; when the whole
// list fails the result is an *AggregateErr with one entry per model, in
// list order.
//
// The list is static: there is no reordering or promotion based on runtime
// signals. The completer holds no per-call state and is safe for concurrent
// use.
type ModelListCompleter struct {
	adapter Completer
	models  []string
	logger  *zap.Logger
}

// NewModelListCompleter creates a priority-list strategy over one adapter.
// The adapter must honor CompletionRequest.Model. It returns an error if the
// adapter is nil or the model list is empty.
func NewModelListCompleter(adapter Completer, models []string, config *FallbackConfig) (*ModelListCompleter, error) {
	if adapter == nil {
		return nil, errors.New("model list completer requires an adapter")
	}
	if len(models) == 0 {
		return nil, errors.New("model list completer requires at least 1 model")
	}
	return &ModelListCompleter{
		adapter: adapter,
		models:  append([]string(nil), models...),
		logger:  config.logger(),
	}, nil
}

// Identity reports the adapter's provider and the top-ranked model.
func (m *ModelListCompleter) Identity() (Provider, string) {
	provider, _ := identityOf(m.adapter)
	return provider, m.models[0]
}

// Complete implements Completer. Each candidate attempt gets the caller's
// request with the candidate model substituted in.
func (m *ModelListCompleter) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return Completion{}, EmptyPromptErr
	}

	provider, _ := identityOf(m.adapter)
	var attempts []Attempt
	for _, model := range m.models {
		candidateReq := req
		candidateReq.Model = model

		completion, err := m.adapter.Complete(ctx, candidateReq)
		if err == nil {
			return completion, nil
		}
		m.logger.Warn("completion attempt failed",
			zap.String("provider", string(provider)),
			zap.String("model", model),
			zap.Error(err))
		attempts = append(attempts, Attempt{Provider: provider, Model: model, Err: err})
	}

	m.logger.Warn("model priority list exhausted",
		zap.String("provider", string(provider)),
		zap.Int("attempts", len(attempts)))
	return Completion{}, &AggregateErr{Attempts: attempts}
}

var _ Completer = (*ModelListCompleter)(nil)

// FallbackCompleter composes an ordered chain of completion units across
// different providers. Each unit is either a bare adapter or a
// ModelListCompleter; a unit runs to completion, fully exhausting its own
// candidates, before the chain switches to the next one. The first unit
// success is returned as-is; when every unit fails the chain surfaces an
// *AggregateErr holding every recorded failure, ordered unit by unit and
// candidate by candidate within a unit.
//
// The two-level structure lets a provider family exhaust its cheaper models
// before the chain pays the cost of switching to a structurally different
// provider.
type FallbackCompleter struct {
	units  []Completer
	logger *zap.Logger
}

// NewFallbackCompleter creates a failover chain from the provided units. It
// returns an error if fewer than 2 units are provided.
func NewFallbackCompleter(units []Completer, config *FallbackConfig) (*FallbackCompleter, error) {
	if len(units) < 2 {
		return nil, errors.New("fallback completer requires at least 2 units")
	}
	return &FallbackCompleter{
		units:  append([]Completer(nil), units...),
		logger: config.logger(),
	}, nil
}

// Complete implements Completer.
func (f *FallbackCompleter) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return Completion{}, EmptyPromptErr
	}

	var attempts []Attempt
	for i, unit := range f.units {
		completion, err := unit.Complete(ctx, req)
		if err == nil {
			return completion, nil
		}
		attempts = appendFailure(attempts, unit, req.Model, err)
		if i+1 < len(f.units) {
			provider, _ := identityOf(f.units[i+1])
			f.logger.Warn("completion unit exhausted, switching provider",
				zap.Int("unit", i),
				zap.String("next_provider", string(provider)),
				zap.Error(err))
		}
	}

	f.logger.Warn("all completion units exhausted", zap.Int("attempts", len(attempts)))
	return Completion{}, &AggregateErr{Attempts: attempts}
}

var _ Completer = (*FallbackCompleter)(nil)

// FallbackImageGenerator composes an ordered chain of image generation units
// across different providers, with the same exhaustion and aggregation
// semantics as FallbackCompleter.
type FallbackImageGenerator struct {
	units  []ImageGenerator
	logger *zap.Logger
}

// NewFallbackImageGenerator creates an image failover chain from the
// provided units. It returns an error if fewer than 2 units are provided.
func NewFallbackImageGenerator(units []ImageGenerator, config *FallbackConfig) (*FallbackImageGenerator, error) {
	if len(units) < 2 {
		return nil, errors.New("fallback image generator requires at least 2 units")
	}
	return &FallbackImageGenerator{
		units:  append([]ImageGenerator(nil), units...),
		logger: config.logger(),
	}, nil
}

// GenerateImage implements ImageGenerator.
func (f *FallbackImageGenerator) GenerateImage(ctx context.Context, req ImageRequest) (Image, error) {
	if strings.TrimSpace(req.Description) == "" {
		return Image{}, EmptyDescriptionErr
	}

	var attempts []Attempt
	for i, unit := range f.units {
		image, err := unit.GenerateImage(ctx, req)
		if err == nil {
			return image, nil
		}
		attempts = appendFailure(attempts, unit, req.Model, err)
		if i+1 < len(f.units) {
			provider, _ := identityOf(f.units[i+1])
			f.logger.Warn("image unit exhausted, switching provider",
				zap.Int("unit", i),
				zap.String("next_provider", string(provider)),
				zap.Error(err))
		}
	}

	f.logger.Warn("all image units exhausted", zap.Int("attempts", len(attempts)))
	return Image{}, &AggregateErr{Attempts: attempts}
}

var _ ImageGenerator = (*FallbackImageGenerator)(nil)
