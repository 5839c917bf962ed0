package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mummadimaheswar/Multi-Agent-RAG-System/internal/rag"
)

const defaultEmbeddingModel = "text-embedding-3-small"

// Embedder exposes the provider's embedding endpoint as a shared, read-only
// handle for the ranking pipeline. It is safe for concurrent use.
type Embedder struct {
	client *Client
	model  string
}

// Embedder lazily builds the client's embedding handle exactly once and
// returns the shared instance on every subsequent call.
func (c *Client) Embedder() *Embedder {
	c.embedderOnce.Do(func() {
		model := c.cfg.EmbeddingModel
		if model == "" {
			model = defaultEmbeddingModel
		}
		c.embedder = &Embedder{client: c, model: model}
	})
	return c.embedder
}

// Embed returns one vector per input text. The stub provider reports the
// capability as unavailable so the ranker falls back to lexical scoring.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if e.client.cfg.Provider == ProviderStub {
		return nil, fmt.Errorf("stub provider has no embedding endpoint: %w", rag.ErrUnavailable)
	}

	resp, err := e.client.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && (apiErr.HTTPStatusCode == 404 || apiErr.HTTPStatusCode == 501) {
			// Endpoint not offered by this openai-compatible deployment.
			return nil, fmt.Errorf("embeddings not supported by provider: %w", rag.ErrUnavailable)
		}
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d texts", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		out[i] = d.Embedding
	}
	return out, nil
}
