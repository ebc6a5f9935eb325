// Package attachment maps structured fields of attached documents
// (packing lists, bills of lading, quotation sheets) to canonical
// fact candidates. The mapping is deterministic and never calls the
// oracle.
package attachment

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/custodia-labs/caseintake/internal/core/domain"
	"github.com/custodia-labs/caseintake/internal/extract"
)

// fieldKind declares how a mapped field value is parsed.
type fieldKind int

const (
	kindText fieldKind = iota
	kindWeight
	kindNumber
	kindContainers
	kindHSCode
	kindIncoterm
)

// fieldTarget binds a document field name to a canonical fact key.
type fieldTarget struct {
	key      string
	category string
	kind     fieldKind
}

// fieldTable covers the two observed schema variants: packing-list /
// bill-of-lading style and quotation-sheet style. Field names are
// matched case-insensitively after whitespace collapsing.
var fieldTable = map[string]fieldTarget{
	// Packing list / B/L variant.
	"gross weight":      {domain.KeyGrossWeightKg, domain.CategoryCargo, kindWeight},
	"poids brut":        {domain.KeyGrossWeightKg, domain.CategoryCargo, kindWeight},
	"total gross":       {domain.KeyGrossWeightKg, domain.CategoryCargo, kindWeight},
	"volume":            {domain.KeyVolumeCbm, domain.CategoryCargo, kindNumber},
	"cbm":               {domain.KeyVolumeCbm, domain.CategoryCargo, kindNumber},
	"cubage":            {domain.KeyVolumeCbm, domain.CategoryCargo, kindNumber},
	"container":         {domain.KeyContainers, domain.CategoryCargo, kindContainers},
	"containers":        {domain.KeyContainers, domain.CategoryCargo, kindContainers},
	"conteneur":         {domain.KeyContainers, domain.CategoryCargo, kindContainers},
	"port of loading":   {domain.KeyOriginPort, domain.CategoryRouting, kindText},
	"pol":               {domain.KeyOriginPort, domain.CategoryRouting, kindText},
	"port of discharge": {domain.KeyDestinationPort, domain.CategoryRouting, kindText},
	"pod":               {domain.KeyDestinationPort, domain.CategoryRouting, kindText},
	"shipper":           {domain.KeyShipper, domain.CategoryParties, kindText},
	"consignee":         {domain.KeyConsignee, domain.CategoryParties, kindText},
	"hs code":           {domain.KeyHSCode, domain.CategoryCargo, kindHSCode},
	"code sh":           {domain.KeyHSCode, domain.CategoryCargo, kindHSCode},
	"hts":               {domain.KeyHSCode, domain.CategoryCargo, kindHSCode},

	// Quotation sheet variant.
	"description": {domain.KeyDescription, domain.CategoryCargo, kindText},
	"designation": {domain.KeyDescription, domain.CategoryCargo, kindText},
	"désignation": {domain.KeyDescription, domain.CategoryCargo, kindText},
	"marchandise": {domain.KeyDescription, domain.CategoryCargo, kindText},
	"value":       {domain.KeyGoodsValue, domain.CategoryCargo, kindNumber},
	"valeur":      {domain.KeyGoodsValue, domain.CategoryCargo, kindNumber},
	"amount":      {domain.KeyGoodsValue, domain.CategoryCargo, kindNumber},
	"montant":     {domain.KeyGoodsValue, domain.CategoryCargo, kindNumber},
	"currency":    {domain.KeyCurrency, domain.CategoryQuote, kindText},
	"devise":      {domain.KeyCurrency, domain.CategoryQuote, kindText},
	"incoterm":    {domain.KeyIncoterm, domain.CategoryRouting, kindIncoterm},
	"terme":       {domain.KeyIncoterm, domain.CategoryRouting, kindIncoterm},
	"trade terms": {domain.KeyIncoterm, domain.CategoryRouting, kindIncoterm},
	"destination": {domain.KeyDestinationCity, domain.CategoryRouting, kindText},
}

// Mapper turns attachments into fact candidates.
type Mapper struct{}

// New creates a new attachment mapper.
func New() *Mapper {
	return &Mapper{}
}

// Map processes the attachments of one extraction pass in order.
// Within the pass, the first attachment that yields a key wins; later
// attachments never overwrite it (cross-run conflicts are left to the
// fact store's authority rules). Documents exposing two or more
// priced line items additionally produce one composite
// cargo.articles_detail fact.
func (m *Mapper) Map(docs []domain.AttachmentDocument) []domain.CandidateFact {
	var out []domain.CandidateFact
	seen := make(map[string]bool)

	for _, doc := range docs {
		// Field order inside a document is made deterministic so a
		// pass never oscillates between synonymous columns.
		names := make([]string, 0, len(doc.Fields))
		for field := range doc.Fields {
			names = append(names, field)
		}
		sort.Strings(names)

		for _, field := range names {
			raw := doc.Fields[field]
			target, ok := lookupField(field)
			if !ok {
				continue
			}
			if seen[target.key] {
				continue
			}
			cand, ok := buildCandidate(target, raw, doc)
			if !ok {
				continue
			}
			seen[target.key] = true
			out = append(out, cand)
		}

		if len(doc.LineItems) >= 2 && !seen[domain.KeyArticlesDetail] {
			if cand, ok := articlesCandidate(doc); ok {
				seen[domain.KeyArticlesDetail] = true
				out = append(out, cand)
			}
		}
	}
	return out
}

func lookupField(name string) (fieldTarget, bool) {
	key := strings.ToLower(strings.Join(strings.Fields(name), " "))
	// Exact match first, then a trailing-qualifier match such as
	// "gross weight (kg)".
	if t, ok := fieldTable[key]; ok {
		return t, true
	}
	for prefix, t := range fieldTable {
		if strings.HasPrefix(key, prefix+" ") || strings.HasPrefix(key, prefix+"(") {
			return t, true
		}
	}
	return fieldTarget{}, false
}

func buildCandidate(target fieldTarget, raw string, doc domain.AttachmentDocument) (domain.CandidateFact, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.CandidateFact{}, false
	}

	cand := domain.CandidateFact{
		Key:        target.key,
		Category:   target.category,
		Confidence: 0.95,
		Excerpt:    raw,
		SourceRef:  doc.ID,
	}

	switch target.kind {
	case kindText:
		cand.Value = domain.TextValue(raw)

	case kindWeight:
		kg, ok := parseWeightKg(raw)
		if !ok {
			return domain.CandidateFact{}, false
		}
		cand.Value = domain.NumberValue(kg)

	case kindNumber:
		n, err := extract.ParseDecimal(stripUnit(raw))
		if err != nil {
			return domain.CandidateFact{}, false
		}
		cand.Value = domain.NumberValue(n)

	case kindContainers:
		specs := extract.ParseContainers(raw)
		if len(specs) == 0 {
			return domain.CandidateFact{}, false
		}
		payload, err := json.Marshal(specs)
		if err != nil {
			return domain.CandidateFact{}, false
		}
		cand.Value = domain.StructuredValue(payload)

	case kindHSCode:
		digits := extract.DigitsOnly(raw)
		if len(digits) < 4 {
			return domain.CandidateFact{}, false
		}
		cand.Value = domain.TextValue(digits)

	case kindIncoterm:
		token := strings.ToUpper(strings.TrimSpace(raw))
		if len(token) > 3 {
			token = token[:3]
		}
		if !extract.IsIncoterm(token) {
			return domain.CandidateFact{}, false
		}
		cand.Value = domain.TextValue(token)
	}

	return cand, true
}

// parseWeightKg normalises a weight cell, converting a tonnes suffix
// to kilograms.
func parseWeightKg(raw string) (float64, bool) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	factor := 1.0

	switch {
	case strings.HasSuffix(lower, "kgs"):
		lower = strings.TrimSpace(strings.TrimSuffix(lower, "kgs"))
	case strings.HasSuffix(lower, "kg"):
		lower = strings.TrimSpace(strings.TrimSuffix(lower, "kg"))
	case strings.HasSuffix(lower, "tonnes"):
		lower = strings.TrimSpace(strings.TrimSuffix(lower, "tonnes"))
		factor = 1000
	case strings.HasSuffix(lower, "tonne"):
		lower = strings.TrimSpace(strings.TrimSuffix(lower, "tonne"))
		factor = 1000
	case strings.HasSuffix(lower, "mt"):
		lower = strings.TrimSpace(strings.TrimSuffix(lower, "mt"))
		factor = 1000
	case strings.HasSuffix(lower, "t"):
		lower = strings.TrimSpace(strings.TrimSuffix(lower, "t"))
		factor = 1000
	}

	n, err := extract.ParseDecimal(lower)
	if err != nil {
		return 0, false
	}
	return n * factor, true
}

// stripUnit drops a trailing unit word from a numeric cell.
func stripUnit(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) > 1 {
		last := strings.ToLower(fields[len(fields)-1])
		switch last {
		case "cbm", "m3", "m³", "usd", "eur", "djf":
			return strings.Join(fields[:len(fields)-1], " ")
		}
	}
	return raw
}

// articlesCandidate builds the composite line-item fact.
func articlesCandidate(doc domain.AttachmentDocument) (domain.CandidateFact, bool) {
	payload, err := json.Marshal(doc.LineItems)
	if err != nil {
		return domain.CandidateFact{}, false
	}
	return domain.CandidateFact{
		Key:        domain.KeyArticlesDetail,
		Category:   domain.CategoryCargo,
		Value:      domain.StructuredValue(payload),
		Confidence: 0.95,
		Excerpt:    doc.Filename,
		SourceRef:  doc.ID,
	}, true
}
