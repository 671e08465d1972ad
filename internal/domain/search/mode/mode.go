package mode

// Mode is the search strategy.
type Mode string

// Search mode constants.
const (
	// Text matches stored text fields lexically.
	Text Mode = "text"
	// Semantic runs vector similarity search with a score threshold.
	Semantic Mode = "semantic"
	// Hybrid blends lexical and vector signals in one backing-store call.
	Hybrid Mode = "hybrid"
	// Smart expands the query via the analyzer and merges per-term results.
	Smart Mode = "smart"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Text || m == Semantic || m == Hybrid || m == Smart
}
