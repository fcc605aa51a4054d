package tagrank

import "errors"

var (
	// ErrNoEmbedder is returned when a text query is searched on an engine
	// opened without an embedder.
	ErrNoEmbedder = errors.New("no embedder configured for text queries")
)
