// Package agent binds a named advisory agent's instruction template to a
// payload and delegates to the LLM collaborator.
package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/mummadimaheswar/Multi-Agent-RAG-System/internal/rag"
)

// ErrUnknownAgent marks a request for an agent that does not exist. This is a
// programmer or configuration mistake and is never swallowed.
var ErrUnknownAgent = errors.New("unknown agent")

// Caller is the slice of the LLM collaborator the invoker needs.
type Caller interface {
	CallJSON(ctx context.Context, prompt string, payload any) (map[string]any, error)
}

// Invoker runs named agents against an LLM collaborator.
type Invoker struct {
	llm Caller
}

// NewInvoker builds an Invoker on top of an LLM caller.
func NewInvoker(llm Caller) *Invoker {
	return &Invoker{llm: llm}
}

// Known reports whether name is a recognised agent.
func Known(name string) bool {
	_, ok := prompts[name]
	return ok
}

// Invoke selects the agent's instruction template, assembles the payload and
// delegates to the LLM. The upstream result is attached only when present.
func (inv *Invoker) Invoke(ctx context.Context, name string, profile any, evidence []rag.EvidenceItem, upstream map[string]any) (map[string]any, error) {
	prompt, ok := prompts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAgent, name)
	}

	if evidence == nil {
		evidence = []rag.EvidenceItem{}
	}
	payload := map[string]any{
		"user_profile": profile,
		"evidence":     evidence,
	}
	if upstream != nil {
		payload["upstream"] = upstream
	}

	return inv.llm.CallJSON(ctx, prompt, payload)
}
