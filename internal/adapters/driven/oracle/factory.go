// Package oracle assembles the fact extraction oracle: the AI-backed
// extractor when credentials are configured, the deterministic regex
// extractor otherwise, and a failover wrapper that substitutes the
// latter when the former fails mid-pass.
package oracle

import (
	"github.com/custodia-labs/caseintake/internal/adapters/driven/oracle/fallback"
	aiextractor "github.com/custodia-labs/caseintake/internal/adapters/driven/oracle/openai"
	"github.com/custodia-labs/caseintake/internal/core/ports/driven"
	"github.com/custodia-labs/caseintake/internal/logger"
)

// Config keys read from the config store.
const (
	ConfigKeyAPIKey  = "oracle.openai_api_key"
	ConfigKeyModel   = "oracle.model"
	ConfigKeyBaseURL = "oracle.base_url"
	ConfigKeyTimeout = "oracle.timeout_seconds"
	ConfigKeyRPM     = "oracle.requests_per_minute"
)

// NewFromConfig builds the extractor stack from configuration. A
// missing credential is not an error: the deterministic extractor is
// used alone.
func NewFromConfig(cfg driven.ConfigStore) driven.Extractor {
	det := fallback.New()

	if cfg == nil {
		return NewFailover(nil, det)
	}

	ai, err := aiextractor.New(aiextractor.Config{
		APIKey:            cfg.GetString(ConfigKeyAPIKey),
		Model:             cfg.GetString(ConfigKeyModel),
		BaseURL:           cfg.GetString(ConfigKeyBaseURL),
		TimeoutSeconds:    cfg.GetInt(ConfigKeyTimeout),
		RequestsPerMinute: cfg.GetInt(ConfigKeyRPM),
	})
	if err != nil {
		logger.Info("AI oracle not configured, using deterministic extractor")
		return NewFailover(nil, det)
	}

	return NewFailover(ai, det)
}
