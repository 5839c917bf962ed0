// Package rag implements the two-stage evidence ranking pipeline: a broad
// similarity retrieval over bounded text windows followed by a precision
// rerank restricted to the narrowed candidate set.
package rag

import (
	"context"
	"errors"
)

// ErrUnavailable signals that a ranking capability cannot be used at runtime
// (for example the stub LLM provider cannot produce embeddings). It triggers
// fallthrough to the next strategy; genuine computation errors do not.
var ErrUnavailable = errors.New("ranking capability unavailable")

// Document is a fetched page: raw input to the ranker, never mutated.
type Document struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
}

// RankedChunk is a bounded text window attributed back to its source page,
// with a relevance score attached by one or both ranking stages.
type RankedChunk struct {
	URL   string  `json:"url"`
	Title string  `json:"title,omitempty"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// EvidenceItem groups ranked chunks by source URL for presentation to an
// agent, capped at a handful of snippets per page.
type EvidenceItem struct {
	URL      string   `json:"url"`
	Title    string   `json:"title,omitempty"`
	Snippets []string `json:"snippets"`
}

// Embedder produces vectors in a shared embedding space. Implementations
// return ErrUnavailable when embeddings cannot be computed in the current
// configuration.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Reranker jointly scores (query, text) pairs with higher precision than the
// broad retrieval stage. Implementations return ErrUnavailable when the
// scorer is not configured.
type Reranker interface {
	Score(ctx context.Context, query string, texts []string) ([]float64, error)
}
