package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mummadimaheswar/Multi-Agent-RAG-System/config"
	"github.com/mummadimaheswar/Multi-Agent-RAG-System/internal/ingest"
	"github.com/mummadimaheswar/Multi-Agent-RAG-System/internal/orchestrator"
	srv "github.com/mummadimaheswar/Multi-Agent-RAG-System/internal/server"
)

func main() {
	var root = &cobra.Command{Use: "advisor"}

	root.AddCommand(serveCMD(), askCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCMD() *cobra.Command {
	var serveAddr string
	var cfgPath string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return srv.Run(cfgPath, serveAddr)
		},
	}
	serve.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serve.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return serve
}

func askCMD() *cobra.Command {
	var cfgPath string
	var seedURLs []string
	var provider, model string
	var ask = &cobra.Command{
		Use:   "ask [message]",
		Short: "Run one advisory query and print the JSON result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			llmCfg := cfg.LLM.ToClientConfig()
			if provider != "" {
				llmCfg.Provider = provider
				llmCfg.Model = ""
			}
			if model != "" {
				llmCfg.Model = model
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
			orch := orchestrator.New(fetcher, orchestrator.DefaultPipelineFactory, nil, nil)

			result, err := orch.Orchestrate(context.Background(), orchestrator.Request{
				Profile:          orchestrator.UserProfile{Message: strings.Join(args, " ")},
				AllowedDomains:   cfg.Retrieval.AllowedDomains,
				SeedURLs:         seedURLs,
				RetrievalBudgetK: cfg.Retrieval.BudgetK,
				LLM:              llmCfg,
			})
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	ask.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")
	ask.Flags().StringSliceVar(&seedURLs, "seed-url", nil, "evidence seed URL (repeatable)")
	ask.Flags().StringVar(&provider, "provider", "", "LLM provider override")
	ask.Flags().StringVar(&model, "model", "", "LLM model override")

	return ask
}
