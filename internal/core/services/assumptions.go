package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/caseintake/internal/core/domain"
	"github.com/custodia-labs/caseintake/internal/core/ports/driven"
	"github.com/custodia-labs/caseintake/internal/logger"
)

// assumptionRule is one default injected for a classified flow.
type assumptionRule struct {
	key        string
	category   string
	value      domain.FactValue
	confidence float64
	rationale  string
}

// assumptionTable is the immutable per-flow default set. Values are
// written as ai_assumption facts and never displace anything ranked
// above that.
var assumptionTable = map[domain.RequestType][]assumptionRule{
	domain.RequestSeaFCLImport: {
		{domain.KeyServiceLevel, domain.CategoryQuote, domain.TextValue("port_to_door"), 0.6, "FCL imports are quoted door delivery unless stated otherwise"},
		{domain.KeyCurrency, domain.CategoryQuote, domain.TextValue("USD"), 0.7, "sea freight on this trade lane is invoiced in USD"},
		{domain.KeyTaxRate, domain.CategoryQuote, domain.NumberValue(0.10), 0.7, "standard VAT rate applies absent an exemption"},
		{domain.KeyIncoterm, domain.CategoryRouting, domain.TextValue("CIF"), 0.5, "CIF is the default term for FCL imports"},
	},
	domain.RequestSeaLCLImport: {
		{domain.KeyServiceLevel, domain.CategoryQuote, domain.TextValue("port_to_port"), 0.6, "LCL imports are quoted to port unless stated otherwise"},
		{domain.KeyCurrency, domain.CategoryQuote, domain.TextValue("USD"), 0.7, "sea freight on this trade lane is invoiced in USD"},
		{domain.KeyTaxRate, domain.CategoryQuote, domain.NumberValue(0.10), 0.7, "standard VAT rate applies absent an exemption"},
	},
	domain.RequestAirImport: {
		{domain.KeyServiceLevel, domain.CategoryQuote, domain.TextValue("airport_to_door"), 0.6, "air imports are quoted with delivery"},
		{domain.KeyCurrency, domain.CategoryQuote, domain.TextValue("USD"), 0.7, "air freight is invoiced in USD"},
		{domain.KeyTaxRate, domain.CategoryQuote, domain.NumberValue(0.10), 0.7, "standard VAT rate applies absent an exemption"},
	},
	domain.RequestBreakbulk: {
		{domain.KeyServiceLevel, domain.CategoryQuote, domain.TextValue("project"), 0.6, "breakbulk is always quoted as a project"},
		{domain.KeyCurrency, domain.CategoryQuote, domain.TextValue("USD"), 0.7, "project cargo is invoiced in USD"},
	},
	domain.RequestExportDJ: {
		{domain.KeyCurrency, domain.CategoryQuote, domain.TextValue("USD"), 0.7, "exports are invoiced in USD"},
		{domain.KeyIncoterm, domain.CategoryRouting, domain.TextValue("FOB"), 0.5, "FOB is the default term for exports"},
	},
	domain.RequestTransitEthiopia: {
		{domain.KeyServiceLevel, domain.CategoryQuote, domain.TextValue("corridor_transit"), 0.6, "Ethiopian traffic moves on the corridor transit product"},
		{domain.KeyCurrency, domain.CategoryQuote, domain.TextValue("USD"), 0.7, "corridor transit is invoiced in USD"},
	},
}

// AssumptionEngine injects per-flow defaults into the fact store.
type AssumptionEngine struct {
	facts driven.FactStore
	audit driven.AuditLog
}

// NewAssumptionEngine creates a new engine.
func NewAssumptionEngine(facts driven.FactStore, audit driven.AuditLog) *AssumptionEngine {
	return &AssumptionEngine{facts: facts, audit: audit}
}

// Apply writes the defaults for the given flow. The store's authority
// rules guarantee an assumption never overwrites a protected source;
// a differing prior assumption is replaced, an identical one is a
// no-op. Returns how many facts were created and how many replaced.
func (e *AssumptionEngine) Apply(ctx context.Context, caseID string, flow domain.RequestType) (created, updated int, err error) {
	rules := assumptionTable[flow]
	for _, rule := range rules {
		result, err := e.facts.Supersede(ctx, domain.FactWrite{
			CaseID:     caseID,
			Key:        rule.key,
			Category:   rule.category,
			Value:      rule.value,
			Source:     domain.SourceAIAssumption,
			Excerpt:    rule.rationale,
			Confidence: rule.confidence,
		})
		if err != nil {
			return created, updated, fmt.Errorf("injecting assumption %s: %w", rule.key, err)
		}

		switch result.Outcome {
		case domain.WriteCreated:
			created++
		case domain.WriteSuperseded:
			updated++
		default:
			continue
		}
		logger.Debug("assumption %s=%s injected for flow %s", rule.key, rule.value.String(), flow)
		e.recordAudit(ctx, caseID, rule, flow)
	}
	return created, updated, nil
}

// recordAudit logs the injection; failures are logged and swallowed.
func (e *AssumptionEngine) recordAudit(ctx context.Context, caseID string, rule assumptionRule, flow domain.RequestType) {
	if e.audit == nil {
		return
	}
	entry := domain.AuditEntry{
		CaseID:    caseID,
		Event:     domain.AuditAssumptionAdded,
		Detail:    fmt.Sprintf("flow=%s key=%s value=%s rationale=%s", flow, rule.key, rule.value.String(), rule.rationale),
		CreatedAt: time.Now().UTC(),
	}
	if err := e.audit.Record(ctx, entry); err != nil {
		logger.Warn("audit write failed: %v", err)
	}
}
