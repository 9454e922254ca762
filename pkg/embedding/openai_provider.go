package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com"
	defaultOpenAIModel   = "text-embedding-3-small"

	maxAttempts = 3
)

// OpenAIProvider implements EmbeddingProvider against the OpenAI embeddings API.
// Transient failures are retried with exponential backoff (1s, 2s, 4s).
type OpenAIProvider struct {
	ApiKey  string
	BaseURL string
	Model   string

	client *http.Client
	sleep  func(time.Duration) // replaced in tests
}

func NewOpenAIProvider(apiKey string, baseURL string, model string) *OpenAIProvider {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIProvider{
		ApiKey:  apiKey,
		BaseURL: baseURL,
		Model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
		sleep:   time.Sleep,
	}
}

type openAIEmbeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type openAIEmbeddingData struct {
	Embedding []float32 `json:"embedding"`
}

type openAIEmbeddingResponse struct {
	Data []openAIEmbeddingData `json:"data"`
}

func (p *OpenAIProvider) Generate(ctx context.Context, text string) (*EmbeddingResponse, error) {
	if p.ApiKey == "" {
		return nil, ErrMissingAPIKey
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			// 2^(attempt-1) seconds: 1s before the 2nd attempt, 2s before the 3rd
			delay := time.Duration(1<<(attempt-2)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			p.sleep(delay)
		}

		res, err := p.generateOnce(ctx, text)
		if err == nil {
			return res, nil
		}
		lastErr = err
	}

	return nil, &ApiError{Attempts: maxAttempts, Cause: lastErr}
}

func (p *OpenAIProvider) generateOnce(ctx context.Context, text string) (*EmbeddingResponse, error) {
	reqBody := openAIEmbeddingRequest{
		Model: p.Model,
		Input: text,
	}
	reqJson, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1/embeddings", p.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(reqJson))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resByte, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error from embeddings response, code %d, body %s", res.StatusCode, string(resByte))
	}

	var parsed openAIEmbeddingResponse
	if err := json.Unmarshal(resByte, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("embeddings response contained no data")
	}

	return &EmbeddingResponse{Values: parsed.Data[0].Embedding}, nil
}
