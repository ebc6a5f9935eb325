package services

import (
	"encoding/json"
	"strings"

	"github.com/custodia-labs/caseintake/internal/core/domain"
	"github.com/custodia-labs/caseintake/internal/extract"
)

// ClassifierConfig is the immutable flow classification table input.
type ClassifierConfig struct {
	// HomeCountry is the forwarder's own country (ISO code).
	HomeCountry string

	// TransitHubs maps a destination country to the transit flow it
	// triggers.
	TransitHubs map[string]domain.RequestType

	// BreakbulkWeightKg is the no-container weight threshold for the
	// breakbulk/project flow.
	BreakbulkWeightKg float64

	// ImportWeightKg is the weight threshold for the import-project
	// flow.
	ImportWeightKg float64
}

// DefaultClassifierConfig returns the production table: a Djibouti
// forwarder with Ethiopian transit traffic.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		HomeCountry: "DJ",
		TransitHubs: map[string]domain.RequestType{
			"ET": domain.RequestTransitEthiopia,
		},
		BreakbulkWeightKg: 30000,
		ImportWeightKg:    5000,
	}
}

// Classification is the outcome of one classifier run.
type Classification struct {
	// RequestType is the stored flow.
	RequestType domain.RequestType

	// AssumptionFlow is the flow used for assumption selection. It
	// differs from RequestType only when the mode arbitration flagged
	// air transport while classification yielded UNKNOWN.
	AssumptionFlow domain.RequestType
}

// ClassifyFlow is a pure function over the pre-assumption fact
// snapshot. The decision table is evaluated top to bottom, first
// match wins.
func ClassifyFlow(snap domain.FactSnapshot, attachments domain.AttachmentState, cfg ClassifierConfig) Classification {
	origin := resolveCountry(snap,
		domain.KeyOriginCountry, domain.KeyOriginPort, domain.KeyOriginCity)
	destination := resolveCountry(snap,
		domain.KeyDestinationCountry, domain.KeyDestinationPort, domain.KeyDestinationCity)

	containers := containerList(snap)
	weight, _ := snap.Number(domain.KeyGrossWeightKg)
	mode, _ := snap.Text(domain.KeyTransportMode)
	description, _ := snap.Text(domain.KeyDescription)

	result := func(rt domain.RequestType) Classification {
		c := Classification{RequestType: rt, AssumptionFlow: rt}
		// An explicit air flag steers assumption selection even when
		// the table could not place the flow; the stored request_type
		// is unaffected.
		if rt == domain.RequestUnknown && mode == domain.ModeAir {
			c.AssumptionFlow = domain.RequestAirImport
		}
		return c
	}

	// 1. Transit-hub destination.
	if rt, ok := cfg.TransitHubs[destination]; ok {
		return result(rt)
	}

	// 2. Export: origin home, destination resolved elsewhere.
	if origin == cfg.HomeCountry && destination != "" && destination != cfg.HomeCountry {
		return result(domain.RequestExportDJ)
	}

	// 3. Breakbulk: heavy cargo without a container list.
	if len(containers) == 0 && (weight > cfg.BreakbulkWeightKg || extract.IsHeavyLift(description)) {
		return result(domain.RequestBreakbulk)
	}

	// 4. Import project: destination home with enough substance.
	if destination == cfg.HomeCountry {
		if weight > cfg.ImportWeightKg || len(containers) > 0 {
			return result(importVariant(containers, mode))
		}

		// 5. PENDING sub-state: escalate once any attachment has
		// extracted content; fall to UNKNOWN when there is nothing
		// left to wait for.
		switch attachments {
		case domain.AttachmentsExtracted:
			return result(importVariant(containers, mode))
		case domain.AttachmentsAwaitingExtraction:
			return result(domain.RequestPending)
		default:
			return result(domain.RequestUnknown)
		}
	}

	// 6. Nothing matched.
	return result(domain.RequestUnknown)
}

// importVariant picks the mode-specific import flow.
func importVariant(containers []extract.ContainerSpec, mode string) domain.RequestType {
	switch {
	case len(containers) > 0:
		return domain.RequestSeaFCLImport
	case mode == domain.ModeAir:
		return domain.RequestAirImport
	default:
		return domain.RequestSeaLCLImport
	}
}

// resolveCountry walks the resolution ladder: direct country fact,
// then a port-name lookup, then a city-name lookup.
func resolveCountry(snap domain.FactSnapshot, countryKey, portKey, cityKey string) string {
	if c, ok := snap.Text(countryKey); ok && c != "" {
		return normaliseCountry(c)
	}
	if port, ok := snap.Text(portKey); ok {
		if c, found := extract.PortCountry(port); found {
			return c
		}
	}
	if city, ok := snap.Text(cityKey); ok {
		if c, found := extract.CityCountry(city); found {
			return c
		}
	}
	return ""
}

// normaliseCountry accepts either an ISO code or a handful of spelled
// country names seen in correspondence.
func normaliseCountry(c string) string {
	switch upper := normaliseText(c); upper {
	case "DJIBOUTI", "DJ":
		return "DJ"
	case "ETHIOPIA", "ETHIOPIE", "ÉTHIOPIE", "ET":
		return "ET"
	default:
		if len(upper) == 2 {
			return upper
		}
		return ""
	}
}

// normaliseText upper-cases and collapses whitespace.
func normaliseText(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// containerList decodes the structured container fact, nil when the
// fact is absent or malformed.
func containerList(snap domain.FactSnapshot) []extract.ContainerSpec {
	f, ok := snap[domain.KeyContainers]
	if !ok || f.Value.Kind != domain.ValueStructured {
		return nil
	}
	var specs []extract.ContainerSpec
	if err := json.Unmarshal(f.Value.Structured, &specs); err != nil {
		return nil
	}
	return specs
}
