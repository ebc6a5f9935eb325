// Package message normalises raw correspondence bodies into bounded
// plain text for the extraction oracle.
package message

import (
	"encoding/base64"
	"io"
	"mime/quotedprintable"
	"regexp"
	"strings"
)

// MaxLength caps the normalised output to bound downstream oracle
// cost.
const MaxLength = 4000

// Normaliser converts raw message bodies (possibly multipart, base64
// or quoted-printable encoded, or HTML) into plain text. It never
// fails; the worst case is an empty string.
type Normaliser struct{}

// New creates a new message normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

var boundaryPattern = regexp.MustCompile(`(?i)boundary="?([^";\r\n]+)"?`)

// Normalise returns the plain-text rendering of a raw body, capped at
// MaxLength characters.
func (n *Normaliser) Normalise(raw string) string {
	if raw == "" {
		return ""
	}

	// A declared boundary that actually delimits parts makes this a
	// multipart body: its extraction is authoritative, even when no
	// part yields text.
	if m := boundaryPattern.FindStringSubmatch(raw); m != nil && strings.Contains(raw, "--"+m[1]) {
		return truncate(extractFromMultipart(raw, m[1]))
	}

	if looksLikeHTML(raw) {
		return truncate(stripHTML(raw))
	}

	return truncate(strings.TrimSpace(raw))
}

// extractFromMultipart walks the parts of a multipart body. Image
// parts are skipped entirely; the first text/plain part wins, then
// the first text/html part stripped of tags.
func extractFromMultipart(raw, boundary string) string {
	parts := strings.Split(raw, "--"+boundary)
	if len(parts) < 2 {
		return ""
	}
	// The preamble before the first boundary is the envelope header
	// block, not a part.
	parts = parts[1:]

	var firstHTML string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || part == "--" {
			continue
		}

		headers, body := splitPart(part)
		contentType := strings.ToLower(headerValue(headers, "content-type"))
		encoding := strings.ToLower(headerValue(headers, "content-transfer-encoding"))

		if strings.HasPrefix(contentType, "image/") {
			continue
		}

		decoded := decodeBody(body, encoding)
		switch {
		case strings.HasPrefix(contentType, "text/plain"), contentType == "":
			if text := strings.TrimSpace(decoded); text != "" {
				return text
			}
		case strings.HasPrefix(contentType, "text/html"):
			if firstHTML == "" {
				firstHTML = decoded
			}
		}
	}

	if firstHTML != "" {
		return strings.TrimSpace(stripHTML(firstHTML))
	}
	return ""
}

// splitPart separates a MIME part into its header block and body.
func splitPart(part string) (headers, body string) {
	normalised := strings.ReplaceAll(part, "\r\n", "\n")
	if idx := strings.Index(normalised, "\n\n"); idx >= 0 {
		return normalised[:idx], normalised[idx+2:]
	}
	return "", normalised
}

// headerValue extracts a header value from a raw header block.
func headerValue(headers, name string) string {
	for _, line := range strings.Split(headers, "\n") {
		if idx := strings.Index(line, ":"); idx > 0 {
			if strings.EqualFold(strings.TrimSpace(line[:idx]), name) {
				return strings.TrimSpace(line[idx+1:])
			}
		}
	}
	return ""
}

// decodeBody applies the transfer encoding. Decoding failures fall
// back to the raw body.
func decodeBody(body, encoding string) string {
	switch encoding {
	case "base64":
		compact := strings.Join(strings.Fields(body), "")
		if decoded, err := base64.StdEncoding.DecodeString(compact); err == nil {
			return string(decoded)
		}
	case "quoted-printable":
		reader := quotedprintable.NewReader(strings.NewReader(body))
		if decoded, err := io.ReadAll(reader); err == nil {
			return string(decoded)
		}
	}
	return body
}

func looksLikeHTML(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "<html") ||
		strings.Contains(lower, "<body") ||
		strings.Contains(lower, "<div") ||
		strings.Contains(lower, "<p>") ||
		strings.Contains(lower, "<br")
}

var htmlEntities = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&eacute;", "é",
	"&egrave;", "è",
	"&agrave;", "à",
)

// stripHTML removes tags and common entities for basic text
// extraction.
func stripHTML(html string) string {
	var result strings.Builder
	inTag := false

	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			result.WriteRune('\n')
		case !inTag:
			result.WriteRune(r)
		}
	}

	text := htmlEntities.Replace(result.String())
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

// truncate caps s at MaxLength characters, never splitting a rune.
func truncate(s string) string {
	if len(s) <= MaxLength {
		return s
	}
	runes := []rune(s)
	if len(runes) <= MaxLength {
		return s
	}
	return string(runes[:MaxLength])
}
