package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

type resolutionState int

const (
	stateUnresolved resolutionState = iota
	stateResolving
	stateResolved
)

// Client is the single point of contact with the remote vector store. It owns
// the cached collection id; the id is a soft cache, the store is authoritative.
// When the store rejects the cached id, the client re-resolves once and retries
// the failed operation once before surfacing an error.
type Client struct {
	BaseURL        string
	CollectionName string

	client *http.Client

	mu    sync.Mutex
	state resolutionState
	colId string
}

func NewClient(baseURL string, collectionName string) *Client {
	return &Client{
		BaseURL:        baseURL,
		CollectionName: collectionName,
		client:         &http.Client{Timeout: 15 * time.Second},
	}
}

// EnsureCollection resolves the collection id, creating the collection if the
// store does not have one under the configured name.
func (c *Client) EnsureCollection(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ensureCollectionLocked(ctx)
}

func (c *Client) ensureCollectionLocked(ctx context.Context) error {
	if c.state == stateResolved {
		return nil
	}
	c.state = stateResolving

	id, err := c.findCollectionId(ctx)
	if err != nil {
		c.state = stateUnresolved
		return err
	}

	if id == "" {
		// Not listed yet: create, then re-list to learn the assigned id.
		if err := c.createCollection(ctx); err != nil {
			c.state = stateUnresolved
			return fmt.Errorf("%w: %v", ErrCollectionUnavailable, err)
		}
		id, err = c.findCollectionId(ctx)
		if err != nil {
			c.state = stateUnresolved
			return err
		}
	}

	if id == "" {
		c.state = stateUnresolved
		return ErrCollectionUnavailable
	}

	c.colId = id
	c.state = stateResolved
	return nil
}

func (c *Client) findCollectionId(ctx context.Context) (string, error) {
	var collections []collectionInfo
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/collections", nil, &collections); err != nil {
		return "", err
	}
	for _, col := range collections {
		if col.Name == c.CollectionName {
			return col.Id, nil
		}
	}
	return "", nil
}

func (c *Client) createCollection(ctx context.Context) error {
	req := createCollectionRequest{
		Name:     c.CollectionName,
		Metadata: map[string]interface{}{"hnsw:space": "cosine"},
	}
	return c.doJSON(ctx, http.MethodPost, "/api/v1/collections", req, nil)
}

// resolvedId returns the cached id, resolving first when necessary.
func (c *Client) resolvedId(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateResolved {
		if err := c.ensureCollectionLocked(ctx); err != nil {
			return "", fmt.Errorf("%w: %v", ErrNotInitialized, err)
		}
	}
	return c.colId, nil
}

// invalidate drops the cached id after the store rejected it.
func (c *Client) invalidate() {
	c.mu.Lock()
	c.state = stateUnresolved
	c.colId = ""
	c.mu.Unlock()
}

// withCollection runs op against the resolved collection id. On evidence the id
// is stale it re-resolves and retries exactly once; the second failure is returned.
func (c *Client) withCollection(ctx context.Context, op func(colId string) error) error {
	id, err := c.resolvedId(ctx)
	if err != nil {
		return err
	}

	err = op(id)
	if !errors.Is(err, ErrCollectionNotFound) {
		return err
	}

	c.invalidate()
	id, rerr := c.resolvedId(ctx)
	if rerr != nil {
		return rerr
	}
	return op(id)
}

// Upsert inserts or replaces a single record by id.
func (c *Client) Upsert(ctx context.Context, record IndexRecord) error {
	return c.withCollection(ctx, func(colId string) error {
		req := addRequest{
			Ids:        []string{record.Id},
			Embeddings: [][]float32{record.Embedding},
			Metadatas:  []map[string]interface{}{record.Metadata.toMap()},
			Documents:  []string{record.DocumentText},
		}
		path := fmt.Sprintf("/api/v1/collections/%s/add", colId)
		return c.doJSON(ctx, http.MethodPost, path, req, nil)
	})
}

// Query runs a similarity search constrained to the given owner. The owner
// equality clause is always injected and wins over any caller-supplied filter
// key. Results keep the store's own ascending-distance order.
func (c *Client) Query(ctx context.Context, embedding []float32, ownerId string, limit int, extraFilter Filter) ([]RankedResult, error) {
	where := make(map[string]interface{}, len(extraFilter)+1)
	for k, v := range extraFilter {
		where[k] = v
	}
	where["owner_id"] = map[string]interface{}{"$eq": ownerId}

	var results []RankedResult
	err := c.withCollection(ctx, func(colId string) error {
		req := queryRequest{
			QueryEmbeddings: [][]float32{embedding},
			NResults:        limit,
			Where:           where,
			Include:         []string{"metadatas", "documents", "distances"},
		}
		path := fmt.Sprintf("/api/v1/collections/%s/query", colId)

		var res queryResponse
		if err := c.doJSON(ctx, http.MethodPost, path, req, &res); err != nil {
			return err
		}

		results = results[:0]
		if len(res.Ids) == 0 {
			return nil
		}
		for i, id := range res.Ids[0] {
			r := RankedResult{Id: id}
			if len(res.Distances) > 0 && i < len(res.Distances[0]) {
				r.Distance = res.Distances[0][i]
			}
			if len(res.Metadatas) > 0 && i < len(res.Metadatas[0]) {
				r.Metadata = res.Metadatas[0][i]
			}
			if len(res.Documents) > 0 && i < len(res.Documents[0]) {
				r.Document = res.Documents[0][i]
			}
			results = append(results, r)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotInitialized) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return results, nil
}

// Delete removes a record by id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.withCollection(ctx, func(colId string) error {
		req := deleteRequest{Ids: []string{id}}
		path := fmt.Sprintf("/api/v1/collections/%s/delete", colId)
		return c.doJSON(ctx, http.MethodPost, path, req, nil)
	})
}

// HealthCheck reports whether the store answers its heartbeat. Never errors.
func (c *Client) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/v1/heartbeat", nil)
	if err != nil {
		return false
	}
	res, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)
	return res.StatusCode == http.StatusOK
}

func (m RecordMetadata) toMap() map[string]interface{} {
	out := map[string]interface{}{
		"owner_id":   m.OwnerId,
		"is_task":    m.IsTask,
		"created_at": m.CreatedAt,
	}
	if m.Title != "" {
		out["title"] = m.Title
	}
	if len(m.Categories) > 0 {
		out["categories"] = m.Categories
	}
	return out
}

func (c *Client) doJSON(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	resByte, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}

	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		return classifyError(res.StatusCode, string(resByte))
	}

	if out != nil && len(resByte) > 0 {
		if err := json.Unmarshal(resByte, out); err != nil {
			return err
		}
	}
	return nil
}
