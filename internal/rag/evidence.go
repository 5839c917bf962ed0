package rag

// maxSnippetsPerURL caps how many snippets a single source contributes.
const maxSnippetsPerURL = 6

// ToEvidence groups ranked chunks into per-URL evidence items, preserving the
// order in which sources first appear in the ranked list.
func ToEvidence(chunks []RankedChunk) []EvidenceItem {
	byURL := make(map[string]int, len(chunks))
	items := make([]EvidenceItem, 0, len(chunks))
	for _, ch := range chunks {
		idx, ok := byURL[ch.URL]
		if !ok {
			idx = len(items)
			byURL[ch.URL] = idx
			items = append(items, EvidenceItem{URL: ch.URL, Title: ch.Title})
		}
		if len(items[idx].Snippets) < maxSnippetsPerURL {
			items[idx].Snippets = append(items[idx].Snippets, ch.Text)
		}
	}
	return items
}
