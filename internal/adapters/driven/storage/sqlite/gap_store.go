package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/caseintake/internal/core/domain"
	"github.com/custodia-labs/caseintake/internal/core/ports/driven"
)

// gapStore implements driven.GapStore.
type gapStore struct {
	store *Store
}

var _ driven.GapStore = (*gapStore)(nil)

// EnsureOpen opens the gap unless one is already open for (case, key).
func (s *gapStore) EnsureOpen(ctx context.Context, gap domain.Gap) (domain.Gap, bool, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Gap{}, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := scanOneGap(tx.QueryRowContext(ctx, `
		SELECT `+gapColumns+`
		FROM gaps WHERE case_id = ? AND key = ? AND status = 'open'
	`, gap.CaseID, gap.Key))
	if err != nil && err != sql.ErrNoRows {
		return domain.Gap{}, false, fmt.Errorf("reading open gap: %w", err)
	}
	if existing != nil {
		return *existing, false, nil
	}

	gap.ID = uuid.NewString()
	gap.Status = domain.GapOpen
	gap.CreatedAt = time.Now().UTC()

	var hints any
	if len(gap.Hints) > 0 {
		payload, err := json.Marshal(gap.Hints)
		if err != nil {
			return domain.Gap{}, false, fmt.Errorf("marshalling hints: %w", err)
		}
		hints = string(payload)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO gaps (id, case_id, key, category, question, priority,
			blocking, status, hints, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 'open', ?, ?)
	`, gap.ID, gap.CaseID, gap.Key, nullString(gap.Category), gap.Question,
		int(gap.Priority), boolInt(gap.Blocking), hints, gap.CreatedAt)
	if err != nil {
		return domain.Gap{}, false, fmt.Errorf("inserting gap: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Gap{}, false, fmt.Errorf("committing gap: %w", err)
	}
	return gap, true, nil
}

// Resolve closes the open gap for (case, key) when one exists.
func (s *gapStore) Resolve(ctx context.Context, caseID, key, factID, reason string) (bool, error) {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE gaps SET status = 'resolved',
			resolved_by_fact_id = ?,
			resolution_reason = ?,
			resolved_at = ?
		WHERE case_id = ? AND key = ? AND status = 'open'
	`, nullString(factID), nullString(reason), time.Now().UTC(), caseID, key)
	if err != nil {
		return false, fmt.Errorf("resolving gap: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}
	return n > 0, nil
}

// OpenGaps returns all open gaps for a case, highest priority first.
func (s *gapStore) OpenGaps(ctx context.Context, caseID string) ([]domain.Gap, error) {
	return s.list(ctx, `
		SELECT `+gapColumns+`
		FROM gaps WHERE case_id = ? AND status = 'open'
		ORDER BY priority DESC, key
	`, caseID)
}

// ListGaps returns all gaps for a case regardless of status.
func (s *gapStore) ListGaps(ctx context.Context, caseID string) ([]domain.Gap, error) {
	return s.list(ctx, `
		SELECT `+gapColumns+`
		FROM gaps WHERE case_id = ?
		ORDER BY created_at, key
	`, caseID)
}

func (s *gapStore) list(ctx context.Context, query, caseID string) ([]domain.Gap, error) {
	rows, err := s.store.db.QueryContext(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("querying gaps: %w", err)
	}
	defer rows.Close()

	var gaps []domain.Gap
	for rows.Next() {
		gap, err := scanOneGap(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning gap: %w", err)
		}
		gaps = append(gaps, *gap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating gaps: %w", err)
	}
	return gaps, nil
}

const gapColumns = `id, case_id, key, category, question, priority,
	blocking, status, hints, resolved_by_fact_id, resolution_reason,
	created_at, resolved_at`

func scanOneGap(row rowScanner) (*domain.Gap, error) {
	var (
		gap        domain.Gap
		category   sql.NullString
		priority   int
		blocking   int
		status     string
		hints      sql.NullString
		factID     sql.NullString
		reason     sql.NullString
		createdAt  sql.NullTime
		resolvedAt sql.NullTime
	)
	if err := row.Scan(&gap.ID, &gap.CaseID, &gap.Key, &category, &gap.Question,
		&priority, &blocking, &status, &hints, &factID, &reason,
		&createdAt, &resolvedAt); err != nil {
		return nil, err
	}

	gap.Category = category.String
	gap.Priority = domain.GapPriority(priority)
	gap.Blocking = blocking == 1
	gap.Status = domain.GapStatus(status)
	gap.ResolvedByFactID = factID.String
	gap.ResolutionReason = reason.String
	if createdAt.Valid {
		gap.CreatedAt = createdAt.Time
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		gap.ResolvedAt = &t
	}
	if hints.Valid && hints.String != "" {
		if err := json.Unmarshal([]byte(hints.String), &gap.Hints); err != nil {
			return nil, fmt.Errorf("unmarshalling hints: %w", err)
		}
	}
	return &gap, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
