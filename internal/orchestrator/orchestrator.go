package orchestrator

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mummadimaheswar/Multi-Agent-RAG-System/internal/agent"
	"github.com/mummadimaheswar/Multi-Agent-RAG-System/internal/classify"
	"github.com/mummadimaheswar/Multi-Agent-RAG-System/internal/llm"
	"github.com/mummadimaheswar/Multi-Agent-RAG-System/internal/rag"
	"github.com/mummadimaheswar/Multi-Agent-RAG-System/internal/telemetry"
)

// maxTopK caps how many chunks a topic's evidence bucket is built from.
const maxTopK = 12

// querySeeds anchor the per-topic ranking query before user fields are
// appended.
var querySeeds = map[string]string{
	"travel":  "travel itinerary hotels destinations budget routes flights trains",
	"finance": "budgeting travel affordability risk tolerance savings",
	"health":  "health wellness doctors specialist medical treatment symptoms",
}

// Fetcher retrieves evidence pages for a set of seed URLs.
type Fetcher interface {
	Fetch(ctx context.Context, seedURLs, allowedDomains []string, pageBudget int) []rag.Document
}

// Ranker scores documents against a query.
type Ranker interface {
	Rank(ctx context.Context, query string, docs []rag.Document, topK int) ([]rag.RankedChunk, error)
}

// AgentRunner invokes one named agent.
type AgentRunner interface {
	Invoke(ctx context.Context, name string, profile any, evidence []rag.EvidenceItem, upstream map[string]any) (map[string]any, error)
}

// Pipeline bundles the per-request collaborators bound to one LLM
// configuration.
type Pipeline struct {
	Ranker  Ranker
	Invoker AgentRunner
	Model   string
}

// PipelineFactory builds a Pipeline for a request's LLM configuration.
// Configuration mistakes (unknown provider, missing credentials) surface
// here, before any stage runs.
type PipelineFactory func(cfg llm.Config, logger *log.Logger) (Pipeline, error)

// DefaultPipelineFactory wires the production collaborators: an LLM client,
// its shared embedding handle, the chat-model reranker and the agent invoker.
func DefaultPipelineFactory(cfg llm.Config, logger *log.Logger) (Pipeline, error) {
	client, err := llm.New(cfg, logger)
	if err != nil {
		return Pipeline{}, err
	}
	return Pipeline{
		Ranker:  rag.NewRanker(client.Embedder(), llm.NewReranker(client), logger),
		Invoker: agent.NewInvoker(client),
		Model:   client.Model(),
	}, nil
}

// Orchestrator runs the advisory pipeline end to end.
type Orchestrator struct {
	fetcher  Fetcher
	pipeline PipelineFactory
	metrics  *telemetry.Metrics
	logger   *log.Logger
}

// New builds an Orchestrator. metrics may be nil.
func New(fetcher Fetcher, pipeline PipelineFactory, metrics *telemetry.Metrics, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	}
	if pipeline == nil {
		pipeline = DefaultPipelineFactory
	}
	return &Orchestrator{fetcher: fetcher, pipeline: pipeline, metrics: metrics, logger: logger}
}

// agentOutcome carries one fan-out branch result back to the join point.
type agentOutcome struct {
	name     string
	envelope map[string]any
	elapsed  time.Duration
	err      error
}

// Orchestrate executes stages S0-S6 for one request. Per-agent failures in
// the concurrent fan-out degrade to error placeholders; only configuration
// errors and a failing travel stage abort the pipeline.
func (o *Orchestrator) Orchestrate(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	timings := map[string]int64{}

	pipe, err := o.pipeline(req.LLM, o.logger)
	if err != nil {
		o.metrics.RecordRun("error")
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	// S0: classification.
	active := classify.Classify(req.Profile.Message)
	o.logger.Printf("query classified, agents: %v", active)

	// S1: evidence fetch, skipped without seed URLs.
	fetchStart := time.Now()
	var docs []rag.Document
	if len(req.SeedURLs) > 0 && o.fetcher != nil {
		docs = o.fetcher.Fetch(ctx, req.SeedURLs, req.AllowedDomains, req.RetrievalBudgetK)
	}
	timings["fetch_pages_ms"] = time.Since(fetchStart).Milliseconds()
	o.metrics.ObserveStage("fetch_pages", time.Since(fetchStart))
	o.metrics.AddPagesFetched(len(docs))
	o.logger.Printf("fetched %d pages in %dms", len(docs), timings["fetch_pages_ms"])

	// S2: per-topic evidence ranking.
	rankStart := time.Now()
	topK := req.RetrievalBudgetK
	if topK > maxTopK {
		topK = maxTopK
	}
	evidence := make(map[string][]rag.EvidenceItem, len(active))
	for _, name := range active {
		topic := classify.Topic(name)
		evidence[topic] = []rag.EvidenceItem{}
		if len(docs) == 0 {
			continue
		}
		chunks, err := pipe.Ranker.Rank(ctx, buildQuery(topic, req.Profile), docs, topK)
		if err != nil {
			// Ranking never aborts the pipeline: degrade to an empty bucket.
			o.logger.Printf("ranking for topic %s failed: %v", topic, err)
			continue
		}
		evidence[topic] = rag.ToEvidence(chunks)
	}
	timings["rag_rank_ms"] = time.Since(rankStart).Milliseconds()
	o.metrics.ObserveStage("rag_rank", time.Since(rankStart))
	o.logger.Printf("evidence ranking done in %dms", timings["rag_rank_ms"])

	results := make(map[string]map[string]any, len(active))

	// S3: travel runs first; financial's affordability check depends on it.
	var travelOut map[string]any
	if contains(active, classify.AgentTravel) {
		travelStart := time.Now()
		travelOut, err = pipe.Invoker.Invoke(ctx, classify.AgentTravel, req.Profile, evidence["travel"], nil)
		timings["travel_agent_ms"] = time.Since(travelStart).Milliseconds()
		o.metrics.ObserveStage("travel_agent", time.Since(travelStart))
		if err != nil {
			o.metrics.RecordAgentFailure(classify.AgentTravel)
			o.metrics.RecordRun("error")
			return nil, fmt.Errorf("travel agent: %w", err)
		}
		results[classify.AgentTravel] = travelOut
		o.logger.Printf("travel agent done in %dms", timings["travel_agent_ms"])
	}

	// S4: financial and health fan out concurrently; each branch is isolated
	// and all outcomes are joined before any result slot is written.
	var fanout []string
	for _, name := range []string{classify.AgentFinancial, classify.AgentHealth} {
		if contains(active, name) {
			fanout = append(fanout, name)
		}
	}
	if len(fanout) > 0 {
		outcomes := make(chan agentOutcome, len(fanout))
		for _, name := range fanout {
			go func(name string) {
				branchStart := time.Now()
				env, err := pipe.Invoker.Invoke(ctx, name, req.Profile, evidence[classify.Topic(name)], travelOut)
				outcomes <- agentOutcome{name: name, envelope: env, elapsed: time.Since(branchStart), err: err}
			}(name)
		}
		for range fanout {
			out := <-outcomes
			timings[out.name+"_agent_ms"] = out.elapsed.Milliseconds()
			o.metrics.ObserveStage(out.name+"_agent", out.elapsed)
			if out.err != nil {
				o.logger.Printf("agent %s failed: %v", out.name, out.err)
				o.metrics.RecordAgentFailure(out.name)
				results[out.name] = map[string]any{"error": out.err.Error(), "confidence": 0.0}
				continue
			}
			results[out.name] = out.envelope
			o.logger.Printf("%s agent done in %dms", out.name, timings[out.name+"_agent_ms"])
		}
	}

	// S5: cross-agent conflict detection.
	conflicts := DetectConflicts(results)
	if len(conflicts) > 0 {
		o.logger.Printf("detected %d cross-agent conflicts", len(conflicts))
	}
	o.metrics.AddConflicts(len(conflicts))

	// S6: assemble the response.
	timings["total_ms"] = time.Since(start).Milliseconds()
	o.metrics.RecordRun("ok")
	o.logger.Printf("pipeline complete in %dms", timings["total_ms"])

	return &Result{
		Evidence:     evidence,
		ActiveAgents: active,
		Conflicts:    conflicts,
		Agents:       results,
		Meta: Meta{
			Timings:      timings,
			PagesFetched: len(docs),
			LLMModel:     pipe.Model,
		},
	}, nil
}

// buildQuery concatenates the topic seed phrase with the user's non-empty
// message, preferences, constraints and budget fields.
func buildQuery(topic string, profile UserProfile) string {
	parts := []string{querySeeds[topic]}
	for _, field := range []string{profile.Message, profile.Preferences, profile.Constraints, profile.Budget} {
		if field != "" {
			parts = append(parts, field)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
