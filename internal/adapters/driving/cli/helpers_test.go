package cli

import (
	"context"

	"github.com/custodia-labs/caseintake/internal/adapters/driven/oracle"
	"github.com/custodia-labs/caseintake/internal/adapters/driven/oracle/fallback"
	"github.com/custodia-labs/caseintake/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/caseintake/internal/core/domain"
	"github.com/custodia-labs/caseintake/internal/core/services"
)

// setupTestServices wires the command tree to in-memory stores with
// one seeded case and returns its id plus a cleanup that unwires
// everything.
func setupTestServices() (string, func()) {
	cases := memory.NewCaseStore()
	correspondence := memory.NewCorrespondenceStore()
	attachments := memory.NewAttachmentStore()
	inbox := &memory.Inbox{Correspondence: correspondence, Attachments: attachments}

	analyser := services.NewAnalyser(services.Deps{
		Facts:          memory.NewFactStore(),
		Gaps:           memory.NewGapStore(),
		Cases:          cases,
		Audit:          memory.NewAuditLog(),
		Correspondence: correspondence,
		Attachments:    attachments,
		Oracle:         oracle.NewFailover(nil, fallback.New()),
		Nomenclature:   memory.NewNomenclature(),
		Contacts:       memory.NewContactDirectory(nil),
		Config:         services.DefaultClassifierConfig(),
	})
	intake := services.NewIntake(cases, inbox, memory.NewAuditLog())

	ctx := context.Background()
	rec, err := intake.OpenCase(ctx, "horizon-trading.dj")
	if err != nil {
		panic(err)
	}
	_, err = intake.AddMessage(ctx, rec.ID, domain.Message{
		From:    "ops@horizon-trading.dj",
		Subject: "Demande de cotation",
		RawBody: "2 x 40HC depuis Shanghai\nDestination Djibouti.\nIncoterm: CIF",
	})
	if err != nil {
		panic(err)
	}

	SetServices(analyser, intake, nil, nil)

	return rec.ID, func() {
		SetServices(nil, nil, nil, nil)
	}
}
