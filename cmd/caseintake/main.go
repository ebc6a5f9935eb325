package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/caseintake/internal/adapters/driven/config/file"
	"github.com/custodia-labs/caseintake/internal/adapters/driven/oracle"
	"github.com/custodia-labs/caseintake/internal/adapters/driven/refdata"
	"github.com/custodia-labs/caseintake/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/caseintake/internal/adapters/driving/cli"
	"github.com/custodia-labs/caseintake/internal/core/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("initialising config: %w", err)
	}

	store, err := sqlite.NewStore(cfg.GetString("storage.data_dir"))
	if err != nil {
		return fmt.Errorf("initialising storage: %w", err)
	}
	defer store.Close() //nolint:errcheck

	contacts, err := refdata.LoadContactDirectory(filepath.Join(filepath.Dir(cfg.Path()), "contacts.toml"))
	if err != nil {
		return fmt.Errorf("loading contact directory: %w", err)
	}

	classifierCfg := services.DefaultClassifierConfig()
	if home := cfg.GetString("classifier.home_country"); home != "" {
		classifierCfg.HomeCountry = home
	}

	analyser := services.NewAnalyser(services.Deps{
		Facts:          store.FactStore(),
		Gaps:           store.GapStore(),
		Cases:          store.CaseStore(),
		Audit:          store.AuditLog(),
		Correspondence: store.CorrespondenceStore(),
		Attachments:    store.AttachmentStore(),
		Oracle:         oracle.NewFromConfig(cfg),
		Nomenclature:   store.Nomenclature(),
		Contacts:       contacts,
		Config:         classifierCfg,
	})
	intake := services.NewIntake(store.CaseStore(), store, store.AuditLog())

	cli.SetServices(analyser, intake, cfg, store)
	return cli.Execute()
}
