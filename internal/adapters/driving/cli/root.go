// Package cli provides the cobra command tree for the caseintake
// binary. Commands talk to the core exclusively through the driving
// ports; services are injected by the composition root before Execute.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/caseintake/internal/core/ports/driven"
	"github.com/custodia-labs/caseintake/internal/core/ports/driving"
	"github.com/custodia-labs/caseintake/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Injected services. Nil until SetServices runs; every command guards
// against nil so the tree stays testable without wiring.
var (
	analyserService    driving.CaseAnalyser
	intakeService      driving.CaseIntake
	configStore        driven.ConfigStore
	nomenclatureLoader driven.NomenclatureLoader
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "caseintake",
	Short: "Shipment quotation case intake",
	Long: `caseintake turns freight quotation enquiries into structured,
versioned case facts.

It normalises the correspondence thread, extracts facts with the AI
oracle (falling back to deterministic patterns), maps attachment
fields, resolves HS codes against the national nomenclature, classifies
the shipment flow and reports what is still missing before a quotation
can be priced.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// SetServices injects the wired services. Called once by main before
// Execute.
func SetServices(analyser driving.CaseAnalyser, intake driving.CaseIntake, cfg driven.ConfigStore, loader driven.NomenclatureLoader) {
	analyserService = analyser
	intakeService = intake
	configStore = cfg
	nomenclatureLoader = loader
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
