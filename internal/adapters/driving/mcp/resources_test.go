package mcp

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/caseintake/internal/core/domain"
)

func TestSplitCaseURI(t *testing.T) {
	tests := []struct {
		uri      string
		wantCase string
		wantRest string
	}{
		{"caseintake://cases/abc", "abc", ""},
		{"caseintake://cases/abc/facts", "abc", "facts"},
		{"caseintake://cases/abc/gaps", "abc", "gaps"},
		{"caseintake://other/abc", "", ""},
		{"file://cases/abc", "", ""},
	}

	for _, tt := range tests {
		caseID, rest := splitCaseURI(tt.uri)
		assert.Equal(t, tt.wantCase, caseID, tt.uri)
		assert.Equal(t, tt.wantRest, rest, tt.uri)
	}
}

func TestServer_handleCaseResource(t *testing.T) {
	mock := &mockAnalyser{
		record: &domain.CaseRecord{
			ID:              "case-1",
			Status:          domain.StatusReady,
			RequestType:     domain.RequestAirImport,
			FactsCount:      9,
			CompletenessPct: 100,
		},
	}

	server, err := NewServer(&Ports{Analyser: mock})
	require.NoError(t, err)

	req := &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "caseintake://cases/case-1"},
	}
	result, err := server.handleCaseResource(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	assert.Contains(t, result.Contents[0].Text, `"status": "ready"`)
	assert.Contains(t, result.Contents[0].Text, `"request_type": "AIR_IMPORT"`)
}

func TestServer_handleFactsResource(t *testing.T) {
	mock := &mockAnalyser{
		snapshot: domain.FactSnapshot{
			domain.KeyIncoterm: {
				Key:        domain.KeyIncoterm,
				Value:      domain.TextValue("CIF"),
				Source:     domain.SourceAIExtraction,
				Confidence: 0.8,
			},
			domain.KeyCurrency: {
				Key:        domain.KeyCurrency,
				Value:      domain.TextValue("USD"),
				Source:     domain.SourceAIAssumption,
				Confidence: 0.7,
			},
		},
	}

	server, err := NewServer(&Ports{Analyser: mock})
	require.NoError(t, err)

	req := &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "caseintake://cases/case-1/facts"},
	}
	result, err := server.handleFactsResource(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Contains(t, result.Contents[0].Text, `"value": "CIF"`)
	assert.Contains(t, result.Contents[0].Text, `"assumption": true`)
}

func TestServer_handleGapsResource(t *testing.T) {
	mock := &mockAnalyser{
		gaps: []domain.Gap{
			{
				Key:      domain.KeyHSCode,
				Question: "Le code SH fourni est incomplet ou ambigu.",
				Blocking: true,
				Hints:    []string{"8504402000 — Onduleurs"},
			},
		},
	}

	server, err := NewServer(&Ports{Analyser: mock})
	require.NoError(t, err)

	req := &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "caseintake://cases/case-1/gaps"},
	}
	result, err := server.handleGapsResource(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Contains(t, result.Contents[0].Text, `"blocking": true`)
	assert.Contains(t, result.Contents[0].Text, "8504402000")
}

func TestServer_handleCaseResource_WrongURI(t *testing.T) {
	server, err := NewServer(&Ports{Analyser: &mockAnalyser{}})
	require.NoError(t, err)

	req := &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: "caseintake://cases/case-1/facts"},
	}
	_, err = server.handleCaseResource(context.Background(), req)

	assert.Error(t, err)
}
