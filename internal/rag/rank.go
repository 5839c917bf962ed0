package rag

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"regexp"
	"sort"
	"strings"
)

const (
	// maxWindowChars bounds the length of a single text window.
	maxWindowChars = 900
	// widenFactor controls how many candidates the broad retrieval stage
	// hands to the reranker, relative to the requested top K.
	widenFactor = 3
)

var spaceRuns = regexp.MustCompile(`[ \t]+`)

// Ranker runs the retrieve-then-rerank pipeline. The zero value is not
// usable; construct with NewRanker.
type Ranker struct {
	embedder Embedder
	reranker Reranker
	logger   *log.Logger
}

// NewRanker builds a Ranker. embedder and reranker may be nil, in which case
// the corresponding stage is treated as unavailable.
func NewRanker(embedder Embedder, reranker Reranker, logger *log.Logger) *Ranker {
	if logger == nil {
		logger = log.New(log.Writer(), "[RAG] ", log.LstdFlags)
	}
	return &Ranker{embedder: embedder, reranker: reranker, logger: logger}
}

// Rank scores all document windows against the query and returns at most topK
// chunks ordered by descending score. Empty input degrades to an empty
// result. An error is returned only for genuine computation failures; a
// missing capability silently falls through to the next strategy.
func (r *Ranker) Rank(ctx context.Context, query string, docs []Document, topK int) ([]RankedChunk, error) {
	if topK <= 0 {
		return nil, nil
	}
	windows := windowDocuments(docs)
	if len(windows) == 0 {
		return nil, nil
	}

	wide := topK * widenFactor
	if wide > len(windows) {
		wide = len(windows)
	}

	candidates, err := r.broadRetrieve(ctx, query, windows, wide)
	if err != nil {
		return nil, err
	}

	reranked, err := r.rerank(ctx, query, candidates)
	if err != nil {
		// Precision rerank is best-effort: keep the broad ordering.
		r.logger.Printf("rerank unavailable, keeping broad ordering: %v", err)
		reranked = candidates
	}

	if len(reranked) > topK {
		reranked = reranked[:topK]
	}
	return reranked, nil
}

// broadRetrieve tries the configured retrieval strategies in order. Only a
// capability-unavailable condition moves on to the next strategy.
func (r *Ranker) broadRetrieve(ctx context.Context, query string, windows []RankedChunk, limit int) ([]RankedChunk, error) {
	strategies := []struct {
		name string
		fn   func(context.Context, string, []RankedChunk, int) ([]RankedChunk, error)
	}{
		{"semantic", r.semanticRetrieve},
		{"lexical", lexicalRetrieve},
	}

	var lastErr error
	for _, s := range strategies {
		out, err := s.fn(ctx, query, windows, limit)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, ErrUnavailable) {
			lastErr = err
			continue
		}
		return nil, fmt.Errorf("%s retrieval: %w", s.name, err)
	}
	return nil, fmt.Errorf("no retrieval strategy available: %w", lastErr)
}

// semanticRetrieve scores windows by cosine similarity in a shared embedding
// space: one embedding call for the query plus all windows.
func (r *Ranker) semanticRetrieve(ctx context.Context, query string, windows []RankedChunk, limit int) ([]RankedChunk, error) {
	if r.embedder == nil {
		return nil, ErrUnavailable
	}
	texts := make([]string, 0, len(windows)+1)
	texts = append(texts, query)
	for _, w := range windows {
		texts = append(texts, w.Text)
	}
	vecs, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(texts))
	}

	scored := make([]RankedChunk, len(windows))
	for i, w := range windows {
		w.Score = cosine(vecs[0], vecs[i+1])
		scored[i] = w
	}
	sortByScore(scored)
	return scored[:limit], nil
}

func (r *Ranker) rerank(ctx context.Context, query string, candidates []RankedChunk) ([]RankedChunk, error) {
	if r.reranker == nil {
		return nil, ErrUnavailable
	}
	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Text
	}
	scores, err := r.reranker.Score(ctx, query, texts)
	if err != nil {
		return nil, err
	}
	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("reranker returned %d scores for %d candidates", len(scores), len(candidates))
	}
	out := make([]RankedChunk, len(candidates))
	copy(out, candidates)
	for i := range out {
		out[i].Score = scores[i]
	}
	sortByScore(out)
	return out, nil
}

// windowDocuments normalises whitespace and splits each document into
// contiguous windows of at most maxWindowChars. Empty documents contribute
// nothing.
func windowDocuments(docs []Document) []RankedChunk {
	var windows []RankedChunk
	for _, doc := range docs {
		text := normaliseText(doc.Text)
		for start := 0; start < len(text); start += maxWindowChars {
			end := start + maxWindowChars
			if end > len(text) {
				end = len(text)
			}
			windows = append(windows, RankedChunk{URL: doc.URL, Title: doc.Title, Text: text[start:end]})
		}
	}
	return windows
}

// normaliseText collapses runs of whitespace and drops blank lines.
func normaliseText(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(spaceRuns.ReplaceAllString(line, " "))
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func sortByScore(chunks []RankedChunk) {
	sort.SliceStable(chunks, func(i, j int) bool { return chunks[i].Score > chunks[j].Score })
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
