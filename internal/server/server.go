// Package server exposes the advisory pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mummadimaheswar/Multi-Agent-RAG-System/config"
	"github.com/mummadimaheswar/Multi-Agent-RAG-System/internal/ingest"
	"github.com/mummadimaheswar/Multi-Agent-RAG-System/internal/orchestrator"
	"github.com/mummadimaheswar/Multi-Agent-RAG-System/internal/telemetry"
)

// Runner is the slice of the orchestrator the handlers need.
type Runner interface {
	Orchestrate(ctx context.Context, req orchestrator.Request) (*orchestrator.Result, error)
}

// Server wires configuration, the orchestrator and the echo router.
type Server struct {
	cfg    *config.Config
	orch   Runner
	logger *log.Logger
	echo   *echo.Echo
}

// Run builds the full production server and blocks serving HTTP.
func Run(cfgPath, addr string) error {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return err
	}

	var metrics *telemetry.Metrics
	if cfg.Telemetry.Enabled {
		metrics = telemetry.NewMetrics(prometheus.DefaultRegisterer)
	}

	var headless ingest.HTMLFetcher
	if cfg.Fetch.Headless {
		headless = ingest.NewChromeFetcher(cfg.Fetch.Timeout)
	}
	fetcher := ingest.NewFetcher(ingest.Options{
		Timeout:     cfg.Fetch.Timeout,
		MinTextLen:  cfg.Fetch.MinTextLen,
		MaxChars:    cfg.Fetch.MaxChars,
		MaxParallel: cfg.Fetch.MaxParallel,
		Headless:    headless,
	}, nil)
	orch := orchestrator.New(fetcher, orchestrator.DefaultPipelineFactory, metrics, nil)

	srv := New(cfg, orch, nil)
	if addr == "" {
		addr = cfg.Server.Address
	}
	srv.logger.Printf("listening on %s", addr)
	return srv.echo.Start(addr)
}

// New assembles the router around an orchestrator. Separate from Run so tests
// can inject a fake pipeline.
func New(cfg *config.Config, orch Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	}
	s := &Server{cfg: cfg, orch: orch, logger: logger}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(s.requestMeta)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		s.logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]any{"error": msg, "request_id": requestID(c)})
		}
	}

	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	api := e.Group("/api")
	api.POST("/orchestrate", s.handleOrchestrate)
	api.GET("/classify", s.handleClassify)

	s.echo = e
	return s
}

// Handler exposes the router for httptest.
func (s *Server) Handler() http.Handler { return s.echo }

// requestMeta assigns a short request id and reports wall-clock time on every
// response.
func (s *Server) requestMeta(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		rid := uuid.NewString()[:8]
		c.Set("request_id", rid)
		c.Response().Header().Set("X-Request-ID", rid)
		start := time.Now()
		err := next(c)
		elapsed := time.Since(start).Milliseconds()
		c.Response().Header().Set("X-Response-Time", fmt.Sprintf("%dms", elapsed))
		s.logger.Printf("%s %s -> %d (%dms) [%s]", c.Request().Method, c.Request().URL.Path, c.Response().Status, elapsed, rid)
		return err
	}
}

func requestID(c echo.Context) string {
	rid, _ := c.Get("request_id").(string)
	return rid
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"ok":               true,
		"default_provider": s.cfg.LLM.Provider,
		"api_key_set":      s.cfg.LLM.APIKey != "",
		"headless":         s.cfg.Fetch.Headless,
	})
}
