package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/caseintake/internal/core/domain"
	"github.com/custodia-labs/caseintake/internal/core/ports/driven"
)

// auditLog implements driven.AuditLog.
type auditLog struct {
	store *Store
}

var _ driven.AuditLog = (*auditLog)(nil)

// Record appends one entry.
func (s *auditLog) Record(ctx context.Context, entry domain.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, case_id, event, detail, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, entry.ID, entry.CaseID, entry.Event, nullString(entry.Detail), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("recording audit entry: %w", err)
	}
	return nil
}

// List returns all entries for a case, oldest first.
func (s *auditLog) List(ctx context.Context, caseID string) ([]domain.AuditEntry, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, case_id, event, detail, created_at
		FROM audit_log WHERE case_id = ?
		ORDER BY created_at, id
	`, caseID)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var (
			entry     domain.AuditEntry
			detail    sql.NullString
			createdAt sql.NullTime
		)
		if err := rows.Scan(&entry.ID, &entry.CaseID, &entry.Event, &detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		entry.Detail = detail.String
		if createdAt.Valid {
			entry.CreatedAt = createdAt.Time
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit log: %w", err)
	}
	return entries, nil
}
