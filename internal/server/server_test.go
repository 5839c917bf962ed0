package server

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mummadimaheswar/Multi-Agent-RAG-System/config"
	"github.com/mummadimaheswar/Multi-Agent-RAG-System/internal/llm"
	"github.com/mummadimaheswar/Multi-Agent-RAG-System/internal/orchestrator"
	"github.com/mummadimaheswar/Multi-Agent-RAG-System/internal/rag"
)

type fakeRunner struct {
	lastReq orchestrator.Request
	result  *orchestrator.Result
	err     error
}

func (f *fakeRunner) Orchestrate(_ context.Context, req orchestrator.Request) (*orchestrator.Result, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Address: ":0"},
		LLM:       config.LLMConfig{Provider: llm.ProviderStub},
		Retrieval: config.RetrievalConfig{BudgetK: 8, AllowedDomains: config.DefaultDomains},
		Fetch:     config.FetchConfig{MaxParallel: 4},
	}
}

func newTestServer(t *testing.T, runner Runner) *httptest.Server {
	t.Helper()
	srv := New(testConfig(), runner, log.New(io.Discard, "", 0))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestOrchestrateEndpoint(t *testing.T) {
	runner := &fakeRunner{
		result: &orchestrator.Result{
			Evidence:     map[string][]rag.EvidenceItem{"travel": {}},
			ActiveAgents: []string{"travel", "financial"},
			Conflicts:    []string{},
			Agents: map[string]map[string]any{
				"travel": {"agent": "travel", "_stub": true},
			},
			Meta: orchestrator.Meta{Timings: map[string]int64{"total_ms": 3}, LLMModel: "stub"},
		},
	}
	ts := newTestServer(t, runner)

	body := `{"user_profile": {"message": "Plan a trip from Delhi to Goa"}}`
	resp, err := http.Post(ts.URL+"/api/orchestrate", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("request id header missing")
	}

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := decoded["travel"]; !ok {
		t.Fatalf("agent envelope not flattened: %v", decoded)
	}
	if _, ok := decoded["_meta"]; !ok {
		t.Fatalf("_meta missing: %v", decoded)
	}

	// Defaults from config fill unset request fields.
	if runner.lastReq.RetrievalBudgetK != 8 {
		t.Fatalf("budget default not applied: %d", runner.lastReq.RetrievalBudgetK)
	}
	if len(runner.lastReq.AllowedDomains) != len(config.DefaultDomains) {
		t.Fatalf("domain allow-list default not applied")
	}
	if runner.lastReq.LLM.Provider != llm.ProviderStub {
		t.Fatalf("llm default not applied: %+v", runner.lastReq.LLM)
	}
}

func TestOrchestrateRejectsEmptyMessage(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{})

	resp, err := http.Post(ts.URL+"/api/orchestrate", "application/json", strings.NewReader(`{"user_profile": {"message": "  "}}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["error"] == nil {
		t.Fatalf("error body missing: %v", decoded)
	}
}

func TestOrchestrateConfigErrorMaps422(t *testing.T) {
	runner := &fakeRunner{err: llm.ErrUnknownProvider}
	ts := newTestServer(t, runner)

	resp, err := http.Post(ts.URL+"/api/orchestrate", "application/json", strings.NewReader(`{"user_profile": {"message": "hi"}, "llm_provider": "carrier_pigeon"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	if runner.lastReq.LLM.Provider != "carrier_pigeon" {
		t.Fatalf("provider override not forwarded: %+v", runner.lastReq.LLM)
	}
}

func TestOrchestratePipelineErrorMaps500(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{err: context.DeadlineExceeded})

	resp, err := http.Post(ts.URL+"/api/orchestrate", "application/json", strings.NewReader(`{"user_profile": {"message": "hi"}}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
}

func TestClassifyEndpoint(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{})

	resp, err := http.Get(ts.URL + "/api/classify?q=" + "plan+a+trip+to+Goa")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var decoded struct {
		ActiveAgents []string `json:"active_agents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.ActiveAgents) == 0 || decoded.ActiveAgents[0] != "travel" {
		t.Fatalf("unexpected routing: %v", decoded.ActiveAgents)
	}

	resp2, err := http.Get(ts.URL + "/api/classify")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("missing q should 422, got %d", resp2.StatusCode)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{})

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ok, _ := decoded["ok"].(bool); !ok {
		t.Fatalf("health should report ok: %v", decoded)
	}
	if decoded["default_provider"] != llm.ProviderStub {
		t.Fatalf("default provider missing: %v", decoded)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, &fakeRunner{})

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) == 0 {
		t.Fatalf("metrics body empty")
	}
}
