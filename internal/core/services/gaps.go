package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/custodia-labs/caseintake/internal/core/domain"
	"github.com/custodia-labs/caseintake/internal/core/ports/driven"
	"github.com/custodia-labs/caseintake/internal/logger"
)

// requiredFact is one entry of a flow's mandatory schema.
type requiredFact struct {
	key      string
	blocking bool
	priority domain.GapPriority
	question string
}

// commonRequired applies to every classified flow.
var commonRequired = []requiredFact{
	{domain.KeyDescription, true, domain.PriorityHigh, "Quelle est la nature de la marchandise ?"},
	{domain.KeyDestinationCity, true, domain.PriorityHigh, "Quelle est la ville de livraison finale ?"},
	{domain.KeyShipper, false, domain.PriorityLow, "Qui est l'expéditeur ?"},
}

// flowRequired holds the flow-specific schemas. The effective schema
// for a flow is commonRequired plus its rows here.
var flowRequired = map[domain.RequestType][]requiredFact{
	domain.RequestSeaFCLImport: {
		{domain.KeyContainers, true, domain.PriorityHigh, "Combien de conteneurs, et de quel type (20', 40', HC) ?"},
		{domain.KeyOriginPort, true, domain.PriorityHigh, "Quel est le port de chargement ?"},
		{domain.KeyIncoterm, true, domain.PriorityMedium, "Quel est l'incoterm convenu avec votre fournisseur ?"},
		{domain.KeyHSCode, false, domain.PriorityMedium, "Disposez-vous du code SH de la marchandise ?"},
		{domain.KeyGoodsValue, false, domain.PriorityLow, "Quelle est la valeur de la marchandise ?"},
	},
	domain.RequestSeaLCLImport: {
		{domain.KeyGrossWeightKg, true, domain.PriorityHigh, "Quel est le poids brut total de l'envoi ?"},
		{domain.KeyVolumeCbm, true, domain.PriorityHigh, "Quel est le volume total en m³ ?"},
		{domain.KeyOriginPort, true, domain.PriorityHigh, "Quel est le port de chargement ?"},
		{domain.KeyIncoterm, true, domain.PriorityMedium, "Quel est l'incoterm convenu avec votre fournisseur ?"},
		{domain.KeyHSCode, false, domain.PriorityMedium, "Disposez-vous du code SH de la marchandise ?"},
	},
	domain.RequestAirImport: {
		{domain.KeyGrossWeightKg, true, domain.PriorityHigh, "Quel est le poids brut total de l'envoi ?"},
		{domain.KeyVolumeCbm, true, domain.PriorityHigh, "Quelles sont les dimensions ou le volume des colis ?"},
		{domain.KeyOriginCity, true, domain.PriorityHigh, "Depuis quel aéroport la marchandise part-elle ?"},
		{domain.KeyIncoterm, false, domain.PriorityMedium, "Quel est l'incoterm convenu avec votre fournisseur ?"},
	},
	domain.RequestBreakbulk: {
		{domain.KeyGrossWeightKg, true, domain.PriorityHigh, "Quel est le poids de chaque colis hors gabarit ?"},
		{domain.KeyVolumeCbm, true, domain.PriorityHigh, "Quelles sont les dimensions de chaque colis (L x l x h) ?"},
		{domain.KeyOriginPort, true, domain.PriorityHigh, "Quel est le port de chargement ?"},
		{domain.KeyGoodsValue, true, domain.PriorityMedium, "Quelle est la valeur de la marchandise (requis pour l'assurance projet) ?"},
	},
	domain.RequestExportDJ: {
		{domain.KeyGrossWeightKg, true, domain.PriorityHigh, "Quel est le poids brut total de l'envoi ?"},
		{domain.KeyDestinationCountry, true, domain.PriorityHigh, "Quel est le pays de destination ?"},
		{domain.KeyConsignee, true, domain.PriorityMedium, "Qui est le destinataire ?"},
		{domain.KeyHSCode, false, domain.PriorityMedium, "Disposez-vous du code SH de la marchandise ?"},
	},
	domain.RequestTransitEthiopia: {
		{domain.KeyContainers, true, domain.PriorityHigh, "Combien de conteneurs transitent vers l'Éthiopie ?"},
		{domain.KeyOriginPort, true, domain.PriorityHigh, "Quel est le port de chargement ?"},
		{domain.KeyConsignee, true, domain.PriorityMedium, "Qui est le destinataire en Éthiopie ?"},
	},
}

// requiredFor returns the effective mandatory schema for a flow.
// PENDING and UNKNOWN carry no schema: we cannot know what to ask
// until the flow is classified.
func requiredFor(flow domain.RequestType) []requiredFact {
	specific, ok := flowRequired[flow]
	if !ok {
		return nil
	}
	schema := make([]requiredFact, 0, len(commonRequired)+len(specific))
	schema = append(schema, commonRequired...)
	schema = append(schema, specific...)
	return schema
}

// flowRequires reports whether key is part of the flow's schema.
func flowRequires(flow domain.RequestType, key string) bool {
	for _, rf := range requiredFor(flow) {
		if rf.key == key {
			return true
		}
	}
	return false
}

// GapReport is the outcome of one gap analysis pass.
type GapReport struct {
	Opened       int
	Resolved     int
	OpenBlocking int
	OpenTotal    int
	Completeness int
}

// GapAnalyser reconciles the open gap set with the fact snapshot for
// the classified flow.
type GapAnalyser struct {
	gaps  driven.GapStore
	audit driven.AuditLog
}

// NewGapAnalyser creates a new analyser.
func NewGapAnalyser(gaps driven.GapStore, audit driven.AuditLog) *GapAnalyser {
	return &GapAnalyser{gaps: gaps, audit: audit}
}

// Analyse brings the gap set in line with the snapshot. Missing
// mandatory facts open gaps, present ones resolve them, and gaps
// opened under a previous flow that the current schema no longer
// requires are closed as orphans.
func (g *GapAnalyser) Analyse(ctx context.Context, caseID string, flow domain.RequestType, snap domain.FactSnapshot) (GapReport, error) {
	var report GapReport
	schema := requiredFor(flow)
	if schema == nil {
		// Unclassified: no schema to reconcile against, so existing
		// gaps stay as they are.
		open, err := g.gaps.OpenGaps(ctx, caseID)
		if err != nil {
			return report, fmt.Errorf("listing open gaps: %w", err)
		}
		report.OpenTotal = len(open)
		for _, gap := range open {
			if gap.Blocking {
				report.OpenBlocking++
			}
		}
		return report, nil
	}

	required := make(map[string]bool, len(schema))
	for _, rf := range schema {
		required[rf.key] = true

		if fact, ok := snap[rf.key]; ok && qualifies(rf.key, fact) {
			resolved, err := g.gaps.Resolve(ctx, caseID, rf.key, fact.ID, "")
			if err != nil {
				return report, fmt.Errorf("resolving gap %s: %w", rf.key, err)
			}
			if resolved {
				report.Resolved++
				g.recordAudit(ctx, caseID, domain.AuditGapResolved, rf.key)
			}
			continue
		}

		gap := domain.Gap{
			CaseID:   caseID,
			Key:      rf.key,
			Question: rf.question,
			Blocking: rf.blocking,
			Priority: rf.priority,
		}
		_, created, err := g.gaps.EnsureOpen(ctx, gap)
		if err != nil {
			return report, fmt.Errorf("opening gap %s: %w", rf.key, err)
		}
		if created {
			report.Opened++
			logger.Debug("gap opened: case=%s key=%s blocking=%v", caseID, rf.key, rf.blocking)
			g.recordAudit(ctx, caseID, domain.AuditGapOpened, rf.key)
		}
	}

	open, err := g.gaps.OpenGaps(ctx, caseID)
	if err != nil {
		return report, fmt.Errorf("listing open gaps: %w", err)
	}

	// Orphans: opened under a previous classification, no longer in
	// the schema. They resolve without a fact.
	remaining := open[:0]
	for _, gap := range open {
		if required[gap.Key] {
			remaining = append(remaining, gap)
			continue
		}
		resolved, err := g.gaps.Resolve(ctx, caseID, gap.Key, "", domain.ResolutionNotRequired)
		if err != nil {
			return report, fmt.Errorf("closing orphan gap %s: %w", gap.Key, err)
		}
		if resolved {
			report.Resolved++
			g.recordAudit(ctx, caseID, domain.AuditGapResolved, gap.Key)
		}
	}

	report.OpenTotal = len(remaining)
	for _, gap := range remaining {
		if gap.Blocking {
			report.OpenBlocking++
		}
	}
	report.Completeness = completeness(len(schema), report.OpenTotal)
	return report, nil
}

// qualifies reports whether a fact answers the open question for its
// key. Assumption-sourced values fill defaults without answering; a
// commodity code only counts once verified against the nomenclature
// (or entered by an operator), since an unresolved fragment keeps its
// ambiguity gap open.
func qualifies(key string, f domain.Fact) bool {
	if f.IsAssumption() {
		return false
	}
	if key == domain.KeyHSCode {
		return f.Source == domain.SourceHSResolution || f.Source == domain.SourceOperator
	}
	return true
}

// completeness scores how much of the mandatory schema is satisfied,
// as a rounded percentage. An empty schema scores zero: an
// unclassified case is never "complete".
func completeness(mandatory, open int) int {
	if mandatory == 0 {
		return 0
	}
	satisfied := mandatory - open
	if satisfied < 0 {
		satisfied = 0
	}
	return int(math.Round(float64(satisfied) / float64(mandatory) * 100))
}

// DeriveStatus maps the analysis outcome onto a case status. Frozen
// statuses are preserved untouched; a critical persistence failure
// pins the case to partial until a clean pass.
func DeriveStatus(current domain.CaseStatus, flow domain.RequestType, report GapReport, factCount int, criticalFailure bool) domain.CaseStatus {
	if current.IsFrozen() {
		return current
	}
	if criticalFailure {
		return domain.StatusPartial
	}
	switch {
	case flow == domain.RequestPending || flow == domain.RequestUnknown:
		return domain.StatusNeedsInfo
	case report.OpenBlocking == 0 && factCount > 0:
		return domain.StatusReady
	case report.OpenTotal > 0:
		return domain.StatusNeedsInfo
	default:
		return domain.StatusPartial
	}
}

func (g *GapAnalyser) recordAudit(ctx context.Context, caseID, event, key string) {
	if g.audit == nil {
		return
	}
	entry := domain.AuditEntry{
		CaseID:    caseID,
		Event:     event,
		Detail:    "key=" + key,
		CreatedAt: time.Now().UTC(),
	}
	if err := g.audit.Record(ctx, entry); err != nil {
		logger.Warn("audit write failed: %v", err)
	}
}
