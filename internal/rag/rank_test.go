package rag

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// keywordEmbedder maps texts into a tiny vector space spanned by fixed
// keywords, enough to make similarity deterministic in tests.
type keywordEmbedder struct {
	keywords []string
}

func (e keywordEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, len(e.keywords))
		lower := strings.ToLower(text)
		for j, kw := range e.keywords {
			vec[j] = float32(strings.Count(lower, kw))
		}
		out[i] = vec
	}
	return out, nil
}

type unavailableEmbedder struct{}

func (unavailableEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, ErrUnavailable
}

type brokenEmbedder struct{}

func (brokenEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("connection reset")
}

type failingReranker struct{}

func (failingReranker) Score(context.Context, string, []string) ([]float64, error) {
	return nil, errors.New("scorer crashed")
}

// invertingReranker flips the ordering of its candidates.
type invertingReranker struct{}

func (invertingReranker) Score(_ context.Context, _ string, texts []string) ([]float64, error) {
	scores := make([]float64, len(texts))
	for i := range texts {
		scores[i] = float64(i)
	}
	return scores, nil
}

func TestRankEmptyInput(t *testing.T) {
	r := NewRanker(nil, nil, nil)
	for _, docs := range [][]Document{nil, {}, {{URL: "https://a", Text: "   \n\n  "}}} {
		out, err := r.Rank(context.Background(), "anything", docs, 5)
		if err != nil {
			t.Fatalf("Rank on empty input: %v", err)
		}
		if len(out) != 0 {
			t.Fatalf("expected empty result, got %d chunks", len(out))
		}
	}
}

func TestWindowingBounds(t *testing.T) {
	long := strings.Repeat("a", maxWindowChars*2+100)
	windows := windowDocuments([]Document{{URL: "https://a", Text: long}})
	if len(windows) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(windows))
	}
	if len(windows[0].Text) != maxWindowChars || len(windows[1].Text) != maxWindowChars {
		t.Fatalf("full windows must be %d chars", maxWindowChars)
	}
	if len(windows[2].Text) != 100 {
		t.Fatalf("final window should hold the remainder, got %d chars", len(windows[2].Text))
	}
}

func TestNormaliseTextDropsBlankLines(t *testing.T) {
	got := normaliseText("first   line\n\n\n  second\tline  \n")
	want := "first line\nsecond line"
	if got != want {
		t.Fatalf("normaliseText = %q, want %q", got, want)
	}
}

func TestLexicalFallbackMonotonicity(t *testing.T) {
	docs := []Document{
		{URL: "https://a", Text: "goa beaches travel guide with hotels near the beach"},
		{URL: "https://b", Text: "annual report on fisheries regulation"},
		{URL: "https://c", Text: "travel tips for goa: beach shacks and hostels"},
	}
	r := NewRanker(nil, nil, nil)
	out, err := r.Rank(context.Background(), "goa beach travel", docs, 2)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(out) == 0 || len(out) > 2 {
		t.Fatalf("expected between 1 and 2 chunks, got %d", len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i].Score > out[i-1].Score {
			t.Fatalf("scores not non-increasing: %v then %v", out[i-1].Score, out[i].Score)
		}
	}
}

func TestSemanticRetrievalOrdersByRelevance(t *testing.T) {
	docs := []Document{
		{URL: "https://off-topic", Text: "quarterly steel production figures"},
		{URL: "https://on-topic", Text: "goa beach resorts and goa travel routes"},
	}
	embedder := keywordEmbedder{keywords: []string{"goa", "beach", "steel"}}
	r := NewRanker(embedder, nil, nil)
	out, err := r.Rank(context.Background(), "goa beach holiday", docs, 2)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(out))
	}
	if out[0].URL != "https://on-topic" {
		t.Fatalf("expected on-topic chunk first, got %s", out[0].URL)
	}
	if out[1].Score > out[0].Score {
		t.Fatalf("scores not sorted descending")
	}
}

func TestUnavailableEmbedderFallsBackToLexical(t *testing.T) {
	docs := []Document{{URL: "https://a", Text: "goa travel beach guide"}}
	r := NewRanker(unavailableEmbedder{}, nil, nil)
	out, err := r.Rank(context.Background(), "goa", docs, 3)
	if err != nil {
		t.Fatalf("expected lexical fallback, got error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 chunk from fallback, got %d", len(out))
	}
}

func TestGenuineEmbedderErrorPropagates(t *testing.T) {
	docs := []Document{{URL: "https://a", Text: "some text"}}
	r := NewRanker(brokenEmbedder{}, nil, nil)
	if _, err := r.Rank(context.Background(), "q", docs, 3); err == nil {
		t.Fatalf("genuine embedder failure must not be swallowed by fallback")
	}
}

func TestRerankFailureKeepsBroadOrdering(t *testing.T) {
	docs := []Document{
		{URL: "https://a", Text: "goa goa goa beach"},
		{URL: "https://b", Text: "goa beach"},
	}
	embedder := keywordEmbedder{keywords: []string{"goa", "beach"}}

	plain, err := NewRanker(embedder, nil, nil).Rank(context.Background(), "goa", docs, 2)
	if err != nil {
		t.Fatalf("Rank without reranker: %v", err)
	}
	withBroken, err := NewRanker(embedder, failingReranker{}, nil).Rank(context.Background(), "goa", docs, 2)
	if err != nil {
		t.Fatalf("Rank with failing reranker: %v", err)
	}
	if len(plain) != len(withBroken) {
		t.Fatalf("length mismatch: %d vs %d", len(plain), len(withBroken))
	}
	for i := range plain {
		if plain[i].URL != withBroken[i].URL {
			t.Fatalf("reranker failure changed ordering at %d: %s vs %s", i, plain[i].URL, withBroken[i].URL)
		}
	}
}

func TestRerankerReorders(t *testing.T) {
	docs := []Document{
		{URL: "https://a", Text: "goa goa goa"},
		{URL: "https://b", Text: "goa"},
	}
	embedder := keywordEmbedder{keywords: []string{"goa"}}
	out, err := NewRanker(embedder, invertingReranker{}, nil).Rank(context.Background(), "goa", docs, 2)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(out))
	}
	if out[0].Score < out[1].Score {
		t.Fatalf("rerank scores not sorted descending")
	}
}

func TestToEvidenceGroupsAndCaps(t *testing.T) {
	var chunks []RankedChunk
	for i := 0; i < 8; i++ {
		chunks = append(chunks, RankedChunk{URL: "https://a", Title: "A", Text: "snippet"})
	}
	chunks = append(chunks, RankedChunk{URL: "https://b", Title: "B", Text: "other"})

	items := ToEvidence(chunks)
	if len(items) != 2 {
		t.Fatalf("expected 2 evidence items, got %d", len(items))
	}
	if items[0].URL != "https://a" || len(items[0].Snippets) != maxSnippetsPerURL {
		t.Fatalf("first item should be capped at %d snippets, got %d", maxSnippetsPerURL, len(items[0].Snippets))
	}
	if items[1].URL != "https://b" || len(items[1].Snippets) != 1 {
		t.Fatalf("second item malformed: %+v", items[1])
	}
}
