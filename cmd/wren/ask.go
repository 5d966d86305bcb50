package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/getwren/wren"
	"github.com/getwren/wren/llm/ollamacompat"
	"github.com/getwren/wren/mcpclient"
	"github.com/getwren/wren/observability"

	"github.com/spf13/cobra"
)

func newAskCmd() *cobra.Command {
	var stream bool

	cmd := &cobra.Command{
		Use:   "ask [query]",
		Short: "Run one research query end-to-end and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			o := buildOrchestrator()

			ctx := cmd.Context()
			if stream {
				return runStreaming(ctx, o, query)
			}
			return runOnce(ctx, o, query)
		},
	}

	cmd.Flags().BoolVar(&stream, "stream", false, "stream the answer as it is generated")
	return cmd
}

func buildOrchestrator() *wren.Orchestrator {
	lm := wren.LMClient(ollamacompat.NewClient(cfg.LLM.BaseURL, ollamacompat.WithLogger(log)))
	lm = wren.WithRetry(lm, wren.RetryLogger(log))
	tools := mcpclient.NewClient(cfg.Tools.Endpoint)

	var tracer wren.Tracer
	if cfg.Observer.Enabled {
		tracer = observability.NewTracer()
	}

	return wren.NewOrchestrator(lm, tools,
		wren.WithModel(cfg.LLM.Model),
		wren.WithResearchMode(wren.ResearchMode(cfg.Research.Mode)),
		wren.WithFetchExtractMode(wren.FetchExtractMode(cfg.Research.FetchExtractMode)),
		wren.WithTemperature(cfg.LLM.Temperature),
		wren.WithMaxIter(cfg.Research.MaxIter),
		wren.WithToolTimeout(cfg.Tools.Timeout),
		wren.WithTracer(tracer),
		wren.WithLogger(log),
	)
}

func runOnce(ctx context.Context, o *wren.Orchestrator, query string) error {
	onToolStart := func(name string, args map[string]any) {
		fmt.Printf("[tool] %s %v\n", name, args)
	}
	onToolComplete := func(name string, result map[string]any, success bool) {
		status := "ok"
		if !success {
			status = "failed"
		}
		fmt.Printf("[tool] %s %s\n", name, status)
	}

	resp, err := o.Research(ctx, query, onToolStart, onToolComplete, nil)
	if err != nil {
		return err
	}
	printResponse(resp)
	return nil
}

func runStreaming(ctx context.Context, o *wren.Orchestrator, query string) error {
	onToolStart := func(name string, args map[string]any) {
		fmt.Printf("\n[tool] %s %v\n", name, args)
	}
	onToolComplete := func(name string, result map[string]any, success bool) {
		fmt.Printf("[tool] %s done (success=%v)\n", name, success)
	}

	chunks, wait := o.ResearchStream(ctx, query, onToolStart, onToolComplete)
	for chunk := range chunks {
		fmt.Print(chunk)
	}
	fmt.Println()

	resp, err := wait()
	if err != nil {
		return err
	}
	printSourcesAndFollowups(resp)
	return nil
}

func printResponse(resp wren.ResearchResponse) {
	fmt.Println(resp.Content)
	printSourcesAndFollowups(resp)
}

func printSourcesAndFollowups(resp wren.ResearchResponse) {
	if len(resp.Sources) > 0 {
		fmt.Println("\nSources:")
		for i, s := range resp.Sources {
			fmt.Printf("  [%d] %s — %s\n", i+1, s.Title, s.URL)
		}
	}
	if len(resp.FollowupQuestions) > 0 {
		fmt.Println("\nFollow-ups:")
		for _, q := range resp.FollowupQuestions {
			fmt.Printf("  - %s\n", q)
		}
	}
}
