package db

// KNNQuery is the input for vector similarity search.
// K bounds the candidate set; Offset skips into the distance-ordered hits.
type KNNQuery struct {
	IndexName    string
	Classes      []string
	Vector       []float32
	K            int
	Offset       int
	ReturnFields []string
}

// TextQuery is the input for BM25 text search across the given TEXT fields.
type TextQuery struct {
	IndexName    string
	Query        string
	Classes      []string
	TextFields   []string
	Offset       int
	Limit        int
	ReturnFields []string
}

// ListQuery is the input for filter-only paginated listing.
type ListQuery struct {
	IndexName    string
	Query        string
	Offset       int
	Limit        int
	SortBy       string
	SortDesc     bool
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
