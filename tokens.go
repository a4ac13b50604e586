package aimux

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter is implemented by completers that can estimate the token
// count of a prompt without performing a generation. The Pollinations and
// GLM adapters estimate locally with a tokenizer; the estimate is intended
// for prompt budgeting, not billing.
type TokenCounter interface {
	Count(ctx context.Context, prompt string) (uint, error)
}

// The upstream model families are OpenAI-lineage, so the o200k_base
// encoding is a close enough estimator for all of them.
const estimatorEncoding = "o200k_base"

var (
	estimatorOnce sync.Once
	estimatorEnc  *tiktoken.Tiktoken
	estimatorErr  error
)

// estimateTokens counts prompt tokens with a process-wide tokenizer,
// initialized on first use.
func estimateTokens(prompt string) (uint, error) {
	estimatorOnce.Do(func() {
		estimatorEnc, estimatorErr = tiktoken.GetEncoding(estimatorEncoding)
	})
	if estimatorErr != nil {
		return 0, fmt.Errorf("failed to load %s encoding: %w", estimatorEncoding, estimatorErr)
	}
	return uint(len(estimatorEnc.Encode(prompt, nil, nil))), nil
}
