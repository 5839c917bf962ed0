package rag

import (
	"context"
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve"
)

// lexicalRetrieve is the sparse fallback for the broad retrieval stage: a
// term-frequency weighted match over an in-memory bleve index built from the
// windows. The index lives only for the duration of one call.
func lexicalRetrieve(_ context.Context, query string, windows []RankedChunk, limit int) ([]RankedChunk, error) {
	mapping := bleve.NewIndexMapping()
	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer idx.Close()

	for i, w := range windows {
		if err := idx.Index(strconv.Itoa(i), map[string]string{"text": w.Text}); err != nil {
			return nil, fmt.Errorf("index window: %w", err)
		}
	}

	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(query), limit, 0, false)
	res, err := idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := make([]RankedChunk, 0, limit)
	matched := make(map[int]bool, len(res.Hits))
	for _, hit := range res.Hits {
		i, err := strconv.Atoi(hit.ID)
		if err != nil || i < 0 || i >= len(windows) {
			continue
		}
		w := windows[i]
		w.Score = hit.Score
		out = append(out, w)
		matched[i] = true
	}

	// Windows with no term overlap still belong to the candidate pool with a
	// zero score, in document order, until the limit is reached.
	for i := 0; i < len(windows) && len(out) < limit; i++ {
		if !matched[i] {
			w := windows[i]
			w.Score = 0
			out = append(out, w)
		}
	}
	return out, nil
}
