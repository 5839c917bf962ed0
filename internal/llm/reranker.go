package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/mummadimaheswar/Multi-Agent-RAG-System/internal/rag"
)

const rerankPrompt = `You are a relevance judge. Given a search query and numbered passages,
score how well each passage answers the query on a 0.0-1.0 scale.
Judge each passage against the query jointly; do not compare passages to each other.
Return JSON only: {"scores": [s0, s1, ...]} with exactly one score per passage, in order.`

// maxRerankPassageChars trims each passage in the rerank prompt. Passages are
// already bounded windows; this guards the prompt budget, not correctness.
const maxRerankPassageChars = 600

// Reranker scores (query, passage) pairs with the chat model. It is the
// expensive precision stage of the ranking pipeline, so callers only hand it
// the narrowed candidate set.
type Reranker struct {
	client *Client
}

// NewReranker wraps the client's chat model as a pairwise relevance scorer.
func NewReranker(client *Client) *Reranker {
	return &Reranker{client: client}
}

// Score returns one relevance score per text. The stub provider cannot judge
// relevance and reports the capability as unavailable.
func (r *Reranker) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if r.client.cfg.Provider == ProviderStub {
		return nil, fmt.Errorf("stub provider cannot rerank: %w", rag.ErrUnavailable)
	}

	passages := make([]string, len(texts))
	for i, t := range texts {
		passages[i] = truncate(strings.TrimSpace(t), maxRerankPassageChars)
	}
	payload := map[string]any{"query": query, "passages": passages}

	result, err := r.client.CallJSON(ctx, rerankPrompt, payload)
	if err != nil {
		return nil, err
	}

	raw, ok := result["scores"].([]any)
	if !ok {
		return nil, fmt.Errorf("reranker response missing scores array")
	}
	if len(raw) != len(texts) {
		return nil, fmt.Errorf("reranker returned %d scores for %d passages", len(raw), len(texts))
	}
	scores := make([]float64, len(raw))
	for i, v := range raw {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("reranker score %d is not a number", i)
		}
		scores[i] = f
	}
	return scores, nil
}
