package models

// Chunk represents a window of page text from a lecture PDF
type Chunk struct {
	ID           string    `json:"id"`
	Text         string    `json:"text"`
	SourceFile   string    `json:"source_file"`
	LogicalPage  int       `json:"logical_page"`
	PhysicalPage int       `json:"physical_page"`
	Embedding    []float32 `json:"embedding,omitempty"`
}

// RetrievalResult is a chunk returned by a nearest-neighbour query.
// Distance is the cosine distance to the query vector, lower is closer.
type RetrievalResult struct {
	ID          string  `json:"id"`
	Text        string  `json:"text"`
	Distance    float64 `json:"distance"`
	SourceFile  string  `json:"source_file"`
	LogicalPage int     `json:"logical_page"`
}

// Citation points the reader at the page an answer was grounded on
type Citation struct {
	SourceFile  string `json:"file"`
	LogicalPage int    `json:"page"`
	TextPreview string `json:"text"`
}

// Answer sources
const (
	SourceLectures = "lectures"
	SourceError    = "error"
)

// Answer represents the response to a question
type Answer struct {
	Answer    string     `json:"answer"`
	Source    string     `json:"source"`
	Citations []Citation `json:"citations"`
}

// Stats describes the index and retrieval settings
type Stats struct {
	TotalChunks   int `json:"total_chunks"`
	ChunkSize     int `json:"chunk_size"`
	RetrievalTopK int `json:"retrieval_top_k"`
}
