package cli

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/caseintake/internal/core/ports/driven"
)

var nomenclatureCmd = &cobra.Command{
	Use:   "nomenclature",
	Short: "Manage the HS nomenclature table",
}

var nomenclatureLoadCmd = &cobra.Command{
	Use:   "load [csv-file]",
	Short: "Load nomenclature entries from a CSV file",
	Long: `Loads the national 10-digit HS nomenclature from a CSV file with
two columns: code,label. Existing codes are updated in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runNomenclatureLoad,
}

func init() {
	nomenclatureCmd.AddCommand(nomenclatureLoadCmd)
	rootCmd.AddCommand(nomenclatureCmd)
}

func runNomenclatureLoad(cmd *cobra.Command, args []string) error {
	if nomenclatureLoader == nil {
		return errors.New("nomenclature loader not configured")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening nomenclature file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2

	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("parsing nomenclature file: %w", err)
	}

	entries := make([]driven.NomenclatureEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, driven.NomenclatureEntry{Code: rec[0], Label: rec[1]})
	}

	if err := nomenclatureLoader.LoadEntries(context.Background(), entries); err != nil {
		return fmt.Errorf("loading nomenclature: %w", err)
	}

	cmd.Printf("Loaded %d nomenclature entries.\n", len(entries))
	return nil
}
