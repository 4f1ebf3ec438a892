package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/market-intel/internal/model"
)

var analyzeCompetitors bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>...",
	Short: "Analyze one or more websites and print the report",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("analyze"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env := initPipeline()
		out := env.Orchestrator.Run(ctx, args, analyzeCompetitors)

		for _, result := range out.Results {
			printResult(cmd, result)
		}
		if out.Intelligence != nil {
			printIntelligence(cmd, out.Intelligence)
		}
		cmd.Printf("Analyzed %d of %d URLs successfully\n", out.SuccessfulAnalyses, len(args))

		return nil
	},
}

func printResult(cmd *cobra.Command, r model.AnalysisResult) {
	cmd.Printf("\n=== %s ===\n", r.URL)
	cmd.Printf("Summary: %s\n", r.Summary)
	if r.SearchPhrase != "" {
		cmd.Printf("Search phrase: %s\n", r.SearchPhrase)
	}
	for _, e := range r.Entities {
		cmd.Printf("  - %s (%s, %d%%)\n", e.Name, e.Category, e.Confidence)
	}
	if len(r.Competitors) > 0 {
		cmd.Println("Competitors:")
		for _, c := range r.Competitors {
			status := "failed"
			if c.Success {
				status = fmt.Sprintf("%d entities", len(c.Entities))
			}
			cmd.Printf("  %2d. %s (%s)\n", c.Position, c.URL, status)
		}
	}
}

func printIntelligence(cmd *cobra.Command, mi *model.MarketIntelligence) {
	cmd.Println("\n=== Market intelligence ===")
	if len(mi.CommonEntities) > 0 {
		cmd.Println("Common entities:")
		for _, e := range mi.CommonEntities {
			cmd.Printf("  - %s (%d%%)\n", e.Name, e.Frequency)
		}
	}
	if len(mi.IndustryDistribution) > 0 {
		cmd.Println("Category distribution:")
		for _, c := range mi.IndustryDistribution {
			cmd.Printf("  - %s: %d\n", c.Category, c.Count)
		}
	}
	if len(mi.CompetitiveGaps) > 0 {
		cmd.Println("Competitive gaps:")
		for _, g := range mi.CompetitiveGaps {
			cmd.Printf("  - %s (%d%% coverage)\n", g.Name, g.Coverage)
		}
	}
	for _, p := range mi.UniquePositioning {
		cmd.Printf("Unique positioning for %s:\n", p.URL)
		for _, e := range p.Entities {
			cmd.Printf("  - %s\n", e.Name)
		}
	}
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeCompetitors, "competitors", false, "discover and analyze competitor sites")
	rootCmd.AddCommand(analyzeCmd)
}
