package mcp

import (
	"github.com/custodia-labs/caseintake/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP
// server. This provides a single injection point for dependency
// injection.
type Ports struct {
	// Analyser runs analysis passes and exposes case surfaces.
	Analyser driving.CaseAnalyser

	// Intake opens cases and records correspondence. Optional; the
	// intake tools are not registered when nil.
	Intake driving.CaseIntake
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Analyser == nil {
		return ErrMissingAnalyser
	}
	return nil
}
