package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ContainerSpec is one parsed container line, e.g. "2 x 40HC".
type ContainerSpec struct {
	Count int    `json:"count"`
	Size  string `json:"size"` // "20" or "40"
	Type  string `json:"type"` // "GP", "HC", "RF", "OT" or ""
}

// String renders the spec in the conventional "2x40HC" form.
func (c ContainerSpec) String() string {
	if c.Type == "" {
		return fmt.Sprintf("%dx%d'", c.Count, mustInt(c.Size))
	}
	return fmt.Sprintf("%dx%d%s", c.Count, mustInt(c.Size), c.Type)
}

func mustInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// containerPattern matches "2 x 40HC", "1X20'GP", "3 x 40 ft", "2x40RF".
var containerPattern = regexp.MustCompile(
	`(?i)\b(\d{1,3})\s*[xX]\s*(20|40|45)\s*(?:'|ft|feet|pieds)?\s*(HC|HQ|GP|DV|RF|OT|FR)?\b`)

// ParseContainers extracts container specs from free text. An empty
// result means no explicit container list was present.
func ParseContainers(text string) []ContainerSpec {
	matches := containerPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	specs := make([]ContainerSpec, 0, len(matches))
	for _, m := range matches {
		count, err := strconv.Atoi(m[1])
		if err != nil || count == 0 {
			continue
		}
		typ := strings.ToUpper(m[3])
		if typ == "HQ" {
			typ = "HC" // same equipment, two trade spellings
		}
		if typ == "DV" {
			typ = "GP"
		}
		specs = append(specs, ContainerSpec{Count: count, Size: m[2], Type: typ})
	}
	return specs
}
