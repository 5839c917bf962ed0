package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mummadimaheswar/Multi-Agent-RAG-System/internal/classify"
	"github.com/mummadimaheswar/Multi-Agent-RAG-System/internal/llm"
	"github.com/mummadimaheswar/Multi-Agent-RAG-System/internal/orchestrator"
)

// orchestrateRequest is the wire shape of POST /api/orchestrate. Unset fields
// fall back to the service configuration.
type orchestrateRequest struct {
	Profile          orchestrator.UserProfile `json:"user_profile"`
	SeedURLs         []string                 `json:"seed_urls"`
	AllowedDomains   []string                 `json:"allowed_domains"`
	RetrievalBudgetK int                      `json:"retrieval_budget_k"`
	LLMProvider      string                   `json:"llm_provider"`
	LLMModel         string                   `json:"llm_model"`
}

func (s *Server) handleOrchestrate(c echo.Context) error {
	var req orchestrateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Profile.Message) == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "user_profile.message is required")
	}

	llmCfg := s.cfg.LLM.ToClientConfig()
	if req.LLMProvider != "" {
		llmCfg.Provider = req.LLMProvider
		llmCfg.Model = ""
	}
	if req.LLMModel != "" {
		llmCfg.Model = req.LLMModel
	}

	domains := req.AllowedDomains
	if len(domains) == 0 {
		domains = s.cfg.Retrieval.AllowedDomains
	}
	budget := req.RetrievalBudgetK
	if budget <= 0 {
		budget = s.cfg.Retrieval.BudgetK
	}

	result, err := s.orch.Orchestrate(c.Request().Context(), orchestrator.Request{
		Profile:          req.Profile,
		AllowedDomains:   domains,
		SeedURLs:         req.SeedURLs,
		RetrievalBudgetK: budget,
		LLM:              llmCfg,
	})
	if err != nil {
		if isConfigError(err) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleClassify(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "query parameter q is required")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"query":         q,
		"active_agents": classify.Classify(q),
	})
}

// isConfigError reports whether the failure is the caller's fault rather than
// a pipeline fault.
func isConfigError(err error) bool {
	for _, sentinel := range []error{llm.ErrUnknownProvider, llm.ErrMissingCredentials} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
