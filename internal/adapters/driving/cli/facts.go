package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/caseintake/internal/core/domain"
)

var (
	factsJSON       bool
	factSetCategory string
	factSetAsNumber bool
)

var factsCmd = &cobra.Command{
	Use:   "facts",
	Short: "Inspect and correct case facts",
	Long:  `List the current fact snapshot, trace a fact's version history, or record an operator correction.`,
}

var factsListCmd = &cobra.Command{
	Use:   "list [case-id]",
	Short: "List current facts for a case",
	Args:  cobra.ExactArgs(1),
	RunE:  runFactsList,
}

var factsHistoryCmd = &cobra.Command{
	Use:   "history [case-id] [key]",
	Short: "Show all versions of one fact",
	Args:  cobra.ExactArgs(2),
	RunE:  runFactsHistory,
}

var factsSetCmd = &cobra.Command{
	Use:   "set [case-id] [key] [value]",
	Short: "Record an operator-entered fact",
	Long: `Records a fact with operator authority. Operator entries overwrite
any automated value and cannot be overwritten by later extraction
passes.`,
	Args: cobra.ExactArgs(3),
	RunE: runFactsSet,
}

func init() {
	factsListCmd.Flags().BoolVar(&factsJSON, "json", false, "output facts as JSON")
	factsSetCmd.Flags().StringVarP(&factSetCategory, "category", "c", "", "fact category (defaults to the key's first segment)")
	factsSetCmd.Flags().BoolVarP(&factSetAsNumber, "number", "n", false, "store the value as a number")

	factsCmd.AddCommand(factsListCmd)
	factsCmd.AddCommand(factsHistoryCmd)
	factsCmd.AddCommand(factsSetCmd)
	rootCmd.AddCommand(factsCmd)
}

func runFactsList(cmd *cobra.Command, args []string) error {
	if analyserService == nil {
		return errors.New("analyser service not configured")
	}

	caseID := args[0]
	ctx := context.Background()

	snap, err := analyserService.Facts(ctx, caseID)
	if err != nil {
		return fmt.Errorf("failed to list facts: %w", err)
	}

	if factsJSON {
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal facts: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(snap) == 0 {
		cmd.Printf("No facts recorded for case: %s\n", caseID)
		return nil
	}

	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cmd.Printf("Facts for case %s:\n\n", caseID)
	for _, k := range keys {
		f := snap[k]
		cmd.Printf("  %s = %s\n", k, f.Value.String())
		cmd.Printf("    Source: %s (%.2f)\n", f.Source, f.Confidence)
		if f.Excerpt != "" {
			cmd.Printf("    Excerpt: %s\n", f.Excerpt)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d facts\n", len(snap))
	return nil
}

func runFactsHistory(cmd *cobra.Command, args []string) error {
	if analyserService == nil {
		return errors.New("analyser service not configured")
	}

	caseID, key := args[0], args[1]
	ctx := context.Background()

	versions, err := analyserService.FactHistory(ctx, caseID, key)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(versions) == 0 {
		cmd.Printf("No history for %s on case %s\n", key, caseID)
		return nil
	}

	cmd.Printf("History for %s (oldest first):\n\n", key)
	for i, f := range versions {
		state := "superseded"
		if f.IsCurrent {
			state = "current"
		}
		cmd.Printf("  [%d] %s = %s\n", i+1, f.Source, f.Value.String())
		cmd.Printf("      %s, confidence %.2f, %s\n", state, f.Confidence, f.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return nil
}

func runFactsSet(cmd *cobra.Command, args []string) error {
	if analyserService == nil {
		return errors.New("analyser service not configured")
	}

	caseID, key, raw := args[0], args[1], args[2]
	ctx := context.Background()

	value := domain.TextValue(raw)
	if factSetAsNumber {
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", raw, err)
		}
		value = domain.NumberValue(n)
	}

	category := factSetCategory
	if category == "" {
		if i := strings.Index(key, "."); i > 0 {
			category = key[:i]
		}
	}

	result, err := analyserService.RecordOperatorFact(ctx, caseID, key, category, value)
	if err != nil {
		return fmt.Errorf("failed to record fact: %w", err)
	}

	switch result.Outcome {
	case domain.WriteUnchanged:
		cmd.Printf("Fact %s already holds this value.\n", key)
	default:
		cmd.Printf("Fact %s recorded with operator authority (%s).\n", key, result.Outcome)
	}

	return nil
}
