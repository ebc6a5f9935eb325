package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/caseintake/internal/core/domain"
	"github.com/custodia-labs/caseintake/internal/core/ports/driven"
)

// caseStore implements driven.CaseStore.
type caseStore struct {
	store *Store
}

var _ driven.CaseStore = (*caseStore)(nil)

// Get retrieves a case by ID.
func (s *caseStore) Get(ctx context.Context, id string) (*domain.CaseRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, status, request_type, facts_count, open_gaps_count,
			completeness_pct, sender_domain, created_at, analysed_at
		FROM cases WHERE id = ?
	`, id)

	var (
		rec          domain.CaseRecord
		status       string
		requestType  string
		senderDomain sql.NullString
		createdAt    sql.NullTime
		analysedAt   sql.NullTime
	)
	if err := row.Scan(&rec.ID, &status, &requestType, &rec.FactsCount,
		&rec.OpenGapsCount, &rec.CompletenessPct, &senderDomain,
		&createdAt, &analysedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("case %s: %w", id, domain.ErrCaseNotFound)
		}
		return nil, fmt.Errorf("scanning case: %w", err)
	}

	rec.Status = domain.CaseStatus(status)
	rec.RequestType = domain.RequestType(requestType)
	rec.SenderDomain = senderDomain.String
	if createdAt.Valid {
		rec.CreatedAt = createdAt.Time
	}
	if analysedAt.Valid {
		rec.AnalysedAt = analysedAt.Time
	}
	return &rec, nil
}

// Save stores or updates a case record.
func (s *caseStore) Save(ctx context.Context, rec *domain.CaseRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("%w: case id is required", domain.ErrInvalidInput)
	}
	if rec.Status == "" {
		rec.Status = domain.StatusNew
	}
	if rec.RequestType == "" {
		rec.RequestType = domain.RequestUnknown
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	var analysedAt any
	if !rec.AnalysedAt.IsZero() {
		analysedAt = rec.AnalysedAt
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO cases (id, status, request_type, facts_count,
			open_gaps_count, completeness_pct, sender_domain, created_at, analysed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			request_type = excluded.request_type,
			facts_count = excluded.facts_count,
			open_gaps_count = excluded.open_gaps_count,
			completeness_pct = excluded.completeness_pct,
			sender_domain = excluded.sender_domain,
			analysed_at = excluded.analysed_at
	`, rec.ID, string(rec.Status), string(rec.RequestType), rec.FactsCount,
		rec.OpenGapsCount, rec.CompletenessPct, nullString(rec.SenderDomain),
		rec.CreatedAt, analysedAt)
	if err != nil {
		return fmt.Errorf("saving case: %w", err)
	}
	return nil
}
