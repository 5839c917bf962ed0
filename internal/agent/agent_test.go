package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/mummadimaheswar/Multi-Agent-RAG-System/internal/rag"
)

// recordingCaller captures the prompt and payload it was handed.
type recordingCaller struct {
	prompt  string
	payload map[string]any
}

func (r *recordingCaller) CallJSON(_ context.Context, prompt string, payload any) (map[string]any, error) {
	r.prompt = prompt
	r.payload = payload.(map[string]any)
	return map[string]any{"ok": true}, nil
}

func TestInvokeUnknownAgentFailsLoud(t *testing.T) {
	inv := NewInvoker(&recordingCaller{})
	_, err := inv.Invoke(context.Background(), "astrology", nil, nil, nil)
	if !errors.Is(err, ErrUnknownAgent) {
		t.Fatalf("expected ErrUnknownAgent, got %v", err)
	}
}

func TestInvokeBindsTemplateAndPayload(t *testing.T) {
	caller := &recordingCaller{}
	inv := NewInvoker(caller)

	evidence := []rag.EvidenceItem{{URL: "https://a", Snippets: []string{"s"}}}
	profile := map[string]any{"message": "plan a trip"}
	if _, err := inv.Invoke(context.Background(), "travel", profile, evidence, nil); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if caller.prompt != travelPrompt {
		t.Fatalf("wrong template bound for travel agent")
	}
	if _, hasUpstream := caller.payload["upstream"]; hasUpstream {
		t.Fatalf("upstream must be omitted when absent")
	}
	if caller.payload["user_profile"] == nil || caller.payload["evidence"] == nil {
		t.Fatalf("payload incomplete: %v", caller.payload)
	}
}

func TestInvokeAttachesUpstreamWhenPresent(t *testing.T) {
	caller := &recordingCaller{}
	inv := NewInvoker(caller)

	upstream := map[string]any{"agent": "travel"}
	if _, err := inv.Invoke(context.Background(), "financial", nil, nil, upstream); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if caller.payload["upstream"] == nil {
		t.Fatalf("upstream missing from payload")
	}
}

func TestInvokeNilEvidenceBecomesEmptyList(t *testing.T) {
	caller := &recordingCaller{}
	inv := NewInvoker(caller)
	if _, err := inv.Invoke(context.Background(), "health", nil, nil, nil); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	ev, ok := caller.payload["evidence"].([]rag.EvidenceItem)
	if !ok || ev == nil {
		t.Fatalf("evidence should be an empty list, got %T", caller.payload["evidence"])
	}
}

func TestKnownAgents(t *testing.T) {
	for _, name := range []string{"travel", "financial", "health"} {
		if !Known(name) {
			t.Fatalf("agent %q should be known", name)
		}
	}
	if Known("astrology") {
		t.Fatalf("unexpected agent recognised")
	}
}
