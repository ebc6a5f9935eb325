package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/caseintake/internal/core/domain"
	"github.com/custodia-labs/caseintake/internal/core/ports/driving"
)

// AnalyseInput is the input schema for the analyse_case tool.
type AnalyseInput struct {
	CaseID       string `json:"case_id" jsonschema:"the case to analyse"`
	ForceRefresh bool   `json:"force_refresh,omitempty" jsonschema:"re-run extraction even without new input"`
}

// AnalyseOutput is the output schema for the analyse_case tool.
type AnalyseOutput struct {
	CaseID          string   `json:"case_id"`
	Status          string   `json:"status"`
	RequestType     string   `json:"request_type"`
	FactsAdded      int      `json:"facts_added"`
	FactsUpdated    int      `json:"facts_updated"`
	OpenGaps        int      `json:"open_gaps"`
	CompletenessPct int      `json:"completeness_pct"`
	ReadyToPrice    bool     `json:"ready_to_price"`
	FailedFacts     []string `json:"failed_facts,omitempty"`
}

// RecordFactInput is the input schema for the record_fact tool.
type RecordFactInput struct {
	CaseID string  `json:"case_id" jsonschema:"the case to correct"`
	Key    string  `json:"key" jsonschema:"dotted fact key, e.g. cargo.weight_kg"`
	Text   string  `json:"text,omitempty" jsonschema:"text value (exactly one of text or number)"`
	Number float64 `json:"number,omitempty" jsonschema:"numeric value (exactly one of text or number)"`
}

// RecordFactOutput is the output schema for the record_fact tool.
type RecordFactOutput struct {
	FactID  string `json:"fact_id"`
	Outcome string `json:"outcome"`
}

// AddMessageInput is the input schema for the add_message tool.
type AddMessageInput struct {
	CaseID  string `json:"case_id" jsonschema:"the case to append to"`
	From    string `json:"from,omitempty" jsonschema:"sender address"`
	Subject string `json:"subject,omitempty" jsonschema:"message subject"`
	Body    string `json:"body" jsonschema:"raw message body"`
}

// AddMessageOutput is the output schema for the add_message tool.
type AddMessageOutput struct {
	MessageID string `json:"message_id"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyse_case",
		Description: "Run one analysis pass on a quotation case and report its derived state",
	}, s.handleAnalyse)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "record_fact",
		Description: "Record an operator-authority fact that overrides any extracted value",
	}, s.handleRecordFact)

	if s.ports.Intake != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "add_message",
			Description: "Append a client message to a case's correspondence thread",
		}, s.handleAddMessage)
	}
}

// handleAnalyse handles the analyse_case tool invocation.
func (s *Server) handleAnalyse(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyseInput,
) (*mcp.CallToolResult, AnalyseOutput, error) {
	result, err := s.ports.Analyser.Analyse(ctx, driving.AnalysisRequest{
		CaseID:       input.CaseID,
		ForceRefresh: input.ForceRefresh,
	})
	if err != nil {
		return nil, AnalyseOutput{}, err
	}

	output := AnalyseOutput{
		CaseID:          result.CaseID,
		Status:          string(result.NewStatus),
		RequestType:     string(result.RequestType),
		FactsAdded:      result.FactsAdded,
		FactsUpdated:    result.FactsUpdated,
		OpenGaps:        result.GapsIdentified,
		CompletenessPct: result.CompletenessPct,
		ReadyToPrice:    result.ReadyToPrice,
	}
	for _, f := range result.FailedFacts {
		output.FailedFacts = append(output.FailedFacts, f.Key+": "+f.Reason)
	}

	return nil, output, nil
}

// handleRecordFact handles the record_fact tool invocation.
func (s *Server) handleRecordFact(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecordFactInput,
) (*mcp.CallToolResult, RecordFactOutput, error) {
	value := domain.TextValue(input.Text)
	if input.Text == "" {
		value = domain.NumberValue(input.Number)
	}

	category := ""
	if i := strings.Index(input.Key, "."); i > 0 {
		category = input.Key[:i]
	}

	result, err := s.ports.Analyser.RecordOperatorFact(ctx, input.CaseID, input.Key, category, value)
	if err != nil {
		return nil, RecordFactOutput{}, err
	}

	return nil, RecordFactOutput{
		FactID:  result.FactID,
		Outcome: string(result.Outcome),
	}, nil
}

// handleAddMessage handles the add_message tool invocation.
func (s *Server) handleAddMessage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddMessageInput,
) (*mcp.CallToolResult, AddMessageOutput, error) {
	id, err := s.ports.Intake.AddMessage(ctx, input.CaseID, domain.Message{
		From:    input.From,
		Subject: input.Subject,
		RawBody: input.Body,
	})
	if err != nil {
		return nil, AddMessageOutput{}, err
	}

	return nil, AddMessageOutput{MessageID: id}, nil
}
