package aimux

import (
	"context"
	"fmt"
)

// ExampleNewFallbackCompleter demonstrates a hybrid chain where the primary
// provider family is exhausted and the secondary serves the request.
func ExampleNewFallbackCompleter() {
	// Every pollinations candidate fails.
	pollinations := &mockCompleter{provider: ProviderPollinations}
	primary, err := NewModelListCompleter(pollinations, DefaultPollinationsModels, nil)
	if err != nil {
		fmt.Println(err)
		return
	}

	// The GLM adapter answers.
	glm := &mockCompleter{
		provider:  ProviderGLM,
		model:     "glm-4-flash-250414",
		responses: map[string]string{"glm-4-flash-250414": "It is a quiet morning in the village."},
	}

	chain, err := NewFallbackCompleter([]Completer{primary, glm}, nil)
	if err != nil {
		fmt.Println(err)
		return
	}

	completion, err := chain.Complete(context.Background(), CompletionRequest{
		Prompt: "Describe the morning.",
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(completion.Provider)
	fmt.Println(completion.Text)
	// Output:
	// glm
	// It is a quiet morning in the village.
}
