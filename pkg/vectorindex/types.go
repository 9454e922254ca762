package vectorindex

// RecordMetadata is the explicit schema sent alongside every indexed document.
type RecordMetadata struct {
	OwnerId    string   `json:"owner_id"`
	Title      string   `json:"title,omitempty"`
	IsTask     bool     `json:"is_task"`
	Categories []string `json:"categories,omitempty"`
	CreatedAt  string   `json:"created_at"` // RFC3339
}

// IndexRecord is one indexed note. Id is the note's remote id; records only
// exist for remotely-persisted notes.
type IndexRecord struct {
	Id           string
	Embedding    []float32
	Metadata     RecordMetadata
	DocumentText string
}

// RankedResult is a single query hit, in the store's own ascending-distance order.
type RankedResult struct {
	Id       string
	Distance float64
	Metadata map[string]interface{}
	Document string
}

// Filter is a caller-supplied equality/operator expression mapping, e.g.
// {"is_task": {"$eq": true}}. The owner clause is always injected on top of it.
type Filter map[string]interface{}

// Wire shapes of the store's HTTP surface.

type collectionInfo struct {
	Id       string                 `json:"id"`
	Name     string                 `json:"name"`
	Metadata map[string]interface{} `json:"metadata"`
}

type createCollectionRequest struct {
	Name     string                 `json:"name"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type addRequest struct {
	Ids        []string                 `json:"ids"`
	Embeddings [][]float32              `json:"embeddings"`
	Metadatas  []map[string]interface{} `json:"metadatas"`
	Documents  []string                 `json:"documents"`
}

type queryRequest struct {
	QueryEmbeddings [][]float32            `json:"query_embeddings"`
	NResults        int                    `json:"n_results"`
	Where           map[string]interface{} `json:"where,omitempty"`
	Include         []string               `json:"include"`
}

type queryResponse struct {
	Ids       [][]string                 `json:"ids"`
	Distances [][]float64                `json:"distances"`
	Metadatas [][]map[string]interface{} `json:"metadatas"`
	Documents [][]string                 `json:"documents"`
}

type deleteRequest struct {
	Ids []string `json:"ids"`
}
