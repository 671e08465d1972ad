package domain

import "errors"

// Sentinel errors shared between layers.
var (
	// ErrNotFound signals a missing item.
	ErrNotFound = errors.New("item not found")
	// ErrInvalidRequest signals a malformed search or ingest request,
	// rejected before any adapter call.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrAnalysisUnavailable signals that the query analyzer failed.
	// Recovered locally by degrading smart search to hybrid, never
	// surfaced to callers.
	ErrAnalysisUnavailable = errors.New("query analysis unavailable")
	// ErrSearchFailed signals that retrieval failed and the hybrid
	// fallback path failed too. No partial results accompany it.
	ErrSearchFailed = errors.New("search failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

// KeyPrefix namespaces all keys this service writes to the store.
const KeyPrefix = "synapse:"
