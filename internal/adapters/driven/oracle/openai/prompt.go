package openai

import "strings"

// systemPrompt instructs the model to emit the strict JSON shape the
// extractor parses. Keys outside the canonical list are allowed but
// must stay dotted (namespace.field).
const systemPrompt = `You extract shipment quotation facts from freight forwarding correspondence.

Return ONLY a JSON object of the form:
{"facts":[{"key","category","value_type","value","confidence","excerpt","is_assumption"}]}

Rules:
- "key" is a dotted canonical key. Preferred keys: transport.mode (sea|air),
  routing.origin_country, routing.origin_port, routing.origin_city,
  routing.destination_country, routing.destination_port, routing.destination_city,
  routing.incoterm, cargo.weight_kg, cargo.volume_cbm, cargo.containers,
  cargo.description, cargo.hs_code, cargo.value, parties.shipper, parties.consignee.
- "value_type" is one of: text, number, structured, date.
- Weights are always kilograms, volumes cubic metres. Convert tonnes to kg.
- "excerpt" is the verbatim fragment the value came from.
- "confidence" is 0..1. Mark guessed values with "is_assumption": true.
- Do NOT compute chargeable weight; it is derived downstream.
- Do not invent facts that have no support in the text.`

// buildUserPrompt assembles the bounded correspondence and attachment
// text for one pass.
func buildUserPrompt(threadText, attachmentText string) string {
	var b strings.Builder
	b.WriteString("## Correspondence thread\n")
	if strings.TrimSpace(threadText) == "" {
		b.WriteString("(empty)\n")
	} else {
		b.WriteString(threadText)
		b.WriteString("\n")
	}
	if strings.TrimSpace(attachmentText) != "" {
		b.WriteString("\n## Attachment text\n")
		b.WriteString(attachmentText)
		b.WriteString("\n")
	}
	return b.String()
}
