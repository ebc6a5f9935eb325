package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var gapsJSON bool

var gapsCmd = &cobra.Command{
	Use:   "gaps [case-id]",
	Short: "List open questions for a case",
	Long: `Lists the open gaps: mandatory facts that are missing or only
assumed, each with the question to put to the client.`,
	Args: cobra.ExactArgs(1),
	RunE: runGaps,
}

func init() {
	gapsCmd.Flags().BoolVar(&gapsJSON, "json", false, "output gaps as JSON")
	rootCmd.AddCommand(gapsCmd)
}

func runGaps(cmd *cobra.Command, args []string) error {
	if analyserService == nil {
		return errors.New("analyser service not configured")
	}

	caseID := args[0]
	ctx := context.Background()

	gaps, err := analyserService.OpenGaps(ctx, caseID)
	if err != nil {
		return fmt.Errorf("failed to list gaps: %w", err)
	}

	if gapsJSON {
		data, err := json.MarshalIndent(gaps, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal gaps: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(gaps) == 0 {
		cmd.Printf("No open gaps for case: %s\n", caseID)
		return nil
	}

	cmd.Printf("Open gaps for case %s:\n\n", caseID)
	for i, g := range gaps {
		marker := ""
		if g.Blocking {
			marker = " [blocking]"
		}
		cmd.Printf("  [%d] %s%s\n", i+1, g.Key, marker)
		cmd.Printf("      %s\n", g.Question)
		for _, hint := range g.Hints {
			cmd.Printf("        - %s\n", hint)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d open gaps\n", len(gaps))
	return nil
}
