// Package orchestrator coordinates the advisory pipeline: classification,
// evidence fetch, per-topic ranking, dependency-aware agent execution and
// cross-agent conflict detection.
package orchestrator

import (
	"encoding/json"

	"github.com/mummadimaheswar/Multi-Agent-RAG-System/internal/llm"
	"github.com/mummadimaheswar/Multi-Agent-RAG-System/internal/rag"
)

// UserProfile is the caller-supplied request record. The pipeline only reads
// Message; every other field passes through to the agents untouched.
type UserProfile struct {
	Message      string `json:"message"`
	Dates        string `json:"dates,omitempty"`
	Budget       string `json:"budget,omitempty"`
	Preferences  string `json:"preferences,omitempty"`
	Constraints  string `json:"constraints,omitempty"`
	HealthNotes  string `json:"health_notes,omitempty"`
	FinanceNotes string `json:"finance_notes,omitempty"`
}

// Request parameterises one orchestration call.
type Request struct {
	Profile          UserProfile `json:"user_profile"`
	AllowedDomains   []string    `json:"allowed_domains"`
	SeedURLs         []string    `json:"seed_urls"`
	RetrievalBudgetK int         `json:"retrieval_budget_k"`
	LLM              llm.Config  `json:"llm"`
}

// Meta carries pipeline metadata: per-stage wall-clock timings in
// milliseconds, the fetched page count and the model that served the run.
type Meta struct {
	Timings      map[string]int64 `json:"timings"`
	PagesFetched int              `json:"pages_fetched"`
	LLMModel     string           `json:"llm_model"`
}

// Result aggregates everything one orchestration call produced. Agent
// envelopes are flattened to top-level keys on the wire, matching the shape
// UI callers consume.
type Result struct {
	Evidence     map[string][]rag.EvidenceItem `json:"evidence"`
	ActiveAgents []string                      `json:"active_agents"`
	Conflicts    []string                      `json:"conflicts"`
	Agents       map[string]map[string]any     `json:"-"`
	Meta         Meta                          `json:"_meta"`
}

// MarshalJSON flattens per-agent envelopes into top-level keys alongside
// evidence, active_agents, conflicts and _meta.
func (r Result) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Agents)+4)
	out["evidence"] = r.Evidence
	out["active_agents"] = r.ActiveAgents
	out["conflicts"] = r.Conflicts
	out["_meta"] = r.Meta
	for name, envelope := range r.Agents {
		out[name] = envelope
	}
	return json.Marshal(out)
}
