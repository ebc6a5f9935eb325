// Package openai implements the AI-backed extraction oracle on the
// OpenAI chat-completions API.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/caseintake/internal/core/domain"
	"github.com/custodia-labs/caseintake/internal/core/ports/driven"
	"github.com/custodia-labs/caseintake/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Config holds the OpenAI extractor configuration.
type Config struct {
	// APIKey is required; without it the factory falls back to the
	// deterministic extractor.
	APIKey string

	// Model defaults to gpt-4o-mini.
	Model string

	// BaseURL optionally points at a compatible endpoint.
	BaseURL string

	// TimeoutSeconds bounds the single blocking call. Defaults to 30.
	TimeoutSeconds int

	// RequestsPerMinute throttles calls across a batch of cases.
	// Defaults to 20.
	RequestsPerMinute int
}

// Extractor calls the chat-completions API once per pass, requesting
// a JSON object of candidate facts. It never retries; any failure is
// returned for the failover wrapper to substitute the deterministic
// extractor.
type Extractor struct {
	client  *openai.Client
	config  Config
	limiter *rate.Limiter
}

// New creates a new OpenAI extractor.
func New(config Config) (*Extractor, error) {
	if config.APIKey == "" {
		return nil, domain.ErrOracleUnavailable
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	rpm := config.RequestsPerMinute
	if rpm <= 0 {
		rpm = 20
	}

	return &Extractor{
		client:  openai.NewClientWithConfig(clientConfig),
		config:  config,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
	}, nil
}

// Name identifies the implementation for audit entries.
func (e *Extractor) Name() string {
	return "openai"
}

// oracleResponse is the JSON shape the model is asked to produce.
type oracleResponse struct {
	Facts []oracleFact `json:"facts"`
}

type oracleFact struct {
	Key          string          `json:"key"`
	Category     string          `json:"category"`
	ValueType    string          `json:"value_type"`
	Value        json.RawMessage `json:"value"`
	Confidence   float64         `json:"confidence"`
	Excerpt      string          `json:"excerpt"`
	IsAssumption bool            `json:"is_assumption"`
}

// Extract runs one blocking chat-completion call.
func (e *Extractor) Extract(ctx context.Context, threadText, attachmentText string) ([]domain.CandidateFact, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	timeout := time.Duration(e.config.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	model := e.config.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(threadText, attachmentText)},
		},
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := e.client.CreateChatCompletion(callCtx, req)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion: empty response")
	}

	var parsed oracleResponse
	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("parsing oracle response: %w", err)
	}

	facts := make([]domain.CandidateFact, 0, len(parsed.Facts))
	for _, f := range parsed.Facts {
		cand, ok := toCandidate(f)
		if !ok {
			logger.Debug("oracle fact dropped: key=%s type=%s", f.Key, f.ValueType)
			continue
		}
		facts = append(facts, cand)
	}
	return facts, nil
}

// toCandidate validates one oracle fact and converts its value into
// the domain union. Malformed entries are dropped, never fatal.
func toCandidate(f oracleFact) (domain.CandidateFact, bool) {
	if f.Key == "" || !strings.Contains(f.Key, ".") {
		return domain.CandidateFact{}, false
	}

	confidence := f.Confidence
	if confidence < 0 || confidence > 1 {
		confidence = 0.5
	}

	cand := domain.CandidateFact{
		Key:          f.Key,
		Category:     f.Category,
		Confidence:   confidence,
		Excerpt:      f.Excerpt,
		IsAssumption: f.IsAssumption,
	}
	if cand.Category == "" {
		cand.Category = strings.SplitN(f.Key, ".", 2)[0]
	}

	switch f.ValueType {
	case "number":
		var n float64
		if err := json.Unmarshal(f.Value, &n); err != nil {
			return domain.CandidateFact{}, false
		}
		cand.Value = domain.NumberValue(n)
	case "date":
		var s string
		if err := json.Unmarshal(f.Value, &s); err != nil {
			return domain.CandidateFact{}, false
		}
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return domain.CandidateFact{}, false
		}
		cand.Value = domain.DateValue(t)
	case "structured":
		if !json.Valid(f.Value) {
			return domain.CandidateFact{}, false
		}
		cand.Value = domain.StructuredValue(f.Value)
	case "text", "":
		var s string
		if err := json.Unmarshal(f.Value, &s); err != nil {
			// Tolerate unquoted scalars by keeping the raw JSON.
			s = strings.Trim(string(f.Value), `"`)
		}
		if s == "" {
			return domain.CandidateFact{}, false
		}
		cand.Value = domain.TextValue(s)
	default:
		return domain.CandidateFact{}, false
	}

	return cand, true
}
