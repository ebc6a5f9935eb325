package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/caseintake/internal/core/domain"
	"github.com/custodia-labs/caseintake/internal/core/ports/driving"
)

var (
	analyseForce bool
	analyseJSON  bool
)

var analyseCmd = &cobra.Command{
	Use:   "analyse [case-id]",
	Short: "Run one analysis pass on a case",
	Long: `Runs one bounded analysis pass: normalise the thread, extract
candidate facts, resolve HS codes, classify the flow, inject
assumptions and reconcile gaps. Re-running without new input is a
no-op for facts.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyse,
}

func init() {
	analyseCmd.Flags().BoolVarP(&analyseForce, "force", "f", false, "re-run extraction even without new input")
	analyseCmd.Flags().BoolVar(&analyseJSON, "json", false, "output result as JSON")
	rootCmd.AddCommand(analyseCmd)
}

func runAnalyse(cmd *cobra.Command, args []string) error {
	if analyserService == nil {
		return errors.New("analyser service not configured")
	}

	ctx := context.Background()
	result, err := analyserService.Analyse(ctx, driving.AnalysisRequest{
		CaseID:       args[0],
		ForceRefresh: analyseForce,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyseJSON {
		return outputAnalysisJSON(cmd, result)
	}
	return outputAnalysisTable(cmd, result)
}

func outputAnalysisJSON(cmd *cobra.Command, result *domain.AnalysisResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnalysisTable(cmd *cobra.Command, result *domain.AnalysisResult) error {
	cmd.Printf("Case: %s\n\n", result.CaseID)
	cmd.Printf("  Status:        %s\n", result.NewStatus)
	cmd.Printf("  Request type:  %s\n", result.RequestType)
	cmd.Printf("  Facts added:   %d\n", result.FactsAdded)
	cmd.Printf("  Facts updated: %d\n", result.FactsUpdated)
	cmd.Printf("  Open gaps:     %d\n", result.GapsIdentified)
	cmd.Printf("  Completeness:  %d%%\n", result.CompletenessPct)

	if result.ReadyToPrice {
		cmd.Println("\nCase is ready to price.")
	}

	if len(result.FailedFacts) > 0 {
		cmd.Println("\nFailed facts:")
		for _, f := range result.FailedFacts {
			marker := ""
			if f.Critical {
				marker = " (critical)"
			}
			cmd.Printf("  %s%s: %s\n", f.Key, marker, f.Reason)
		}
	}

	return nil
}
