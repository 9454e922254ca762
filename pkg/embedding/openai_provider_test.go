package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*OpenAIProvider, *[]time.Duration) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider := NewOpenAIProvider("test-key", server.URL, "test-model")
	var sleeps []time.Duration
	provider.sleep = func(d time.Duration) {
		sleeps = append(sleeps, d)
	}
	return provider, &sleeps
}

func TestGenerateMissingAPIKey(t *testing.T) {
	provider := NewOpenAIProvider("", "http://localhost:0", "test-model")

	_, err := provider.Generate(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestGenerateSuccess(t *testing.T) {
	var attempts int32
	provider, sleeps := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openAIEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, "hello world", req.Input)

		json.NewEncoder(w).Encode(openAIEmbeddingResponse{
			Data: []openAIEmbeddingData{{Embedding: []float32{0.1, 0.2, 0.3}}},
		})
	})

	res, err := provider.Generate(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, res.Values)
	assert.Equal(t, int32(1), attempts)
	assert.Empty(t, *sleeps)
}

func TestGenerateRetryBound(t *testing.T) {
	var attempts int32
	provider, sleeps := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := provider.Generate(context.Background(), "hello")
	require.Error(t, err)

	var apiErr *ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 3, apiErr.Attempts)

	// Exactly 3 attempts against a permanently failing backend
	assert.Equal(t, int32(3), attempts)

	// Exponential backoff between attempts
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, *sleeps)
}

func TestGenerateRecoversOnSecondAttempt(t *testing.T) {
	var attempts int32
	provider, sleeps := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(openAIEmbeddingResponse{
			Data: []openAIEmbeddingData{{Embedding: []float32{0.5}}},
		})
	})

	res, err := provider.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5}, res.Values)
	assert.Equal(t, int32(2), attempts)
	assert.Equal(t, []time.Duration{1 * time.Second}, *sleeps)
}

func TestCachedProviderSkipsSecondCall(t *testing.T) {
	var attempts int32
	inner, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		json.NewEncoder(w).Encode(openAIEmbeddingResponse{
			Data: []openAIEmbeddingData{{Embedding: []float32{0.9}}},
		})
	})
	cached := NewCachedProvider(inner)

	first, err := cached.Generate(context.Background(), "same text")
	require.NoError(t, err)
	second, err := cached.Generate(context.Background(), "same text")
	require.NoError(t, err)

	assert.Equal(t, first.Values, second.Values)
	assert.Equal(t, int32(1), attempts)

	// A different text misses the cache
	_, err = cached.Generate(context.Background(), "other text")
	require.NoError(t, err)
	assert.Equal(t, int32(2), attempts)
}
