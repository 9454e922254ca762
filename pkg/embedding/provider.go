package embedding

import (
	"context"
	"errors"
	"fmt"
)

// ErrMissingAPIKey means the provider was constructed without a credential.
// This is a configuration problem and is never retried.
var ErrMissingAPIKey = errors.New("embedding: api key is not configured")

// ApiError wraps the last failure observed after the retry budget is spent.
type ApiError struct {
	Attempts int
	Cause    error
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("embedding: api failure after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *ApiError) Unwrap() error {
	return e.Cause
}

type EmbeddingResponse struct {
	Values []float32
}

// EmbeddingProvider defines the interface for generating text embeddings.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string) (*EmbeddingResponse, error)
}
