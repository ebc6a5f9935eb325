package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for caseintake resources.
	uriScheme = "caseintake://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Template for the case summary.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "cases/{caseId}",
		Name:        "case-summary",
		Description: "Derived status, flow classification and completeness of a case",
		MIMEType:    "application/json",
	}, s.handleCaseResource)

	// Template for the current fact snapshot.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "cases/{caseId}/facts",
		Name:        "case-facts",
		Description: "Current facts of a case with provenance and confidence",
		MIMEType:    "application/json",
	}, s.handleFactsResource)

	// Template for the open gaps.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "cases/{caseId}/gaps",
		Name:        "case-gaps",
		Description: "Open questions blocking or informing the quotation",
		MIMEType:    "application/json",
	}, s.handleGapsResource)
}

// handleCaseResource returns the case summary.
func (s *Server) handleCaseResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	caseID, rest := splitCaseURI(req.Params.URI)
	if caseID == "" || rest != "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	rec, err := s.ports.Analyser.Case(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("loading case: %w", err)
	}

	type caseInfo struct {
		ID              string `json:"id"`
		Status          string `json:"status"`
		RequestType     string `json:"request_type"`
		FactsCount      int    `json:"facts_count"`
		OpenGapsCount   int    `json:"open_gaps_count"`
		CompletenessPct int    `json:"completeness_pct"`
	}

	return jsonResource(req.Params.URI, caseInfo{
		ID:              rec.ID,
		Status:          string(rec.Status),
		RequestType:     string(rec.RequestType),
		FactsCount:      rec.FactsCount,
		OpenGapsCount:   rec.OpenGapsCount,
		CompletenessPct: rec.CompletenessPct,
	})
}

// handleFactsResource returns the current fact snapshot.
func (s *Server) handleFactsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	caseID, rest := splitCaseURI(req.Params.URI)
	if caseID == "" || rest != "facts" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	snap, err := s.ports.Analyser.Facts(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("loading facts: %w", err)
	}

	type factInfo struct {
		Key        string  `json:"key"`
		Value      string  `json:"value"`
		Source     string  `json:"source"`
		Confidence float64 `json:"confidence"`
		Assumption bool    `json:"assumption"`
	}

	infos := make([]factInfo, 0, len(snap))
	for key, f := range snap {
		infos = append(infos, factInfo{
			Key:        key,
			Value:      f.Value.String(),
			Source:     string(f.Source),
			Confidence: f.Confidence,
			Assumption: f.IsAssumption(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })

	return jsonResource(req.Params.URI, infos)
}

// handleGapsResource returns the open gaps.
func (s *Server) handleGapsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	caseID, rest := splitCaseURI(req.Params.URI)
	if caseID == "" || rest != "gaps" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	gaps, err := s.ports.Analyser.OpenGaps(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("loading gaps: %w", err)
	}

	type gapInfo struct {
		Key      string   `json:"key"`
		Question string   `json:"question"`
		Blocking bool     `json:"blocking"`
		Hints    []string `json:"hints,omitempty"`
	}

	infos := make([]gapInfo, len(gaps))
	for i, g := range gaps {
		infos[i] = gapInfo{
			Key:      g.Key,
			Question: g.Question,
			Blocking: g.Blocking,
			Hints:    g.Hints,
		}
	}

	return jsonResource(req.Params.URI, infos)
}

// jsonResource marshals a payload into a single JSON resource content.
func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// splitCaseURI splits a URI like caseintake://cases/{caseId}[/surface]
// into the case id and the trailing surface ("", "facts" or "gaps").
func splitCaseURI(uri string) (caseID, rest string) {
	const prefix = uriScheme + "cases/"

	if !strings.HasPrefix(uri, prefix) {
		return "", ""
	}

	tail := strings.TrimPrefix(uri, prefix)
	if i := strings.Index(tail, "/"); i >= 0 {
		return tail[:i], tail[i+1:]
	}
	return tail, ""
}
