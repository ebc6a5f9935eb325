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

// factStore implements driven.FactStore.
type factStore struct {
	store *Store
}

var _ driven.FactStore = (*factStore)(nil)

// Supersede applies one write under the source authority rules. The
// read-modify-write runs in a single IMMEDIATE transaction so a
// manual edit racing an automated re-run serialises cleanly.
func (s *factStore) Supersede(ctx context.Context, write domain.FactWrite) (domain.WriteResult, error) {
	if write.CaseID == "" || write.Key == "" {
		return domain.WriteResult{}, fmt.Errorf("%w: case id and key are required", domain.ErrInvalidInput)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.WriteResult{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Take the write lock before reading so the current row cannot
	// change underneath.
	if _, err := tx.ExecContext(ctx, "UPDATE facts SET is_current = is_current WHERE case_id = ? AND key = ? AND is_current = 1",
		write.CaseID, write.Key); err != nil {
		return domain.WriteResult{}, fmt.Errorf("locking current fact: %w", err)
	}

	current, err := scanOneFact(tx.QueryRowContext(ctx, `
		SELECT `+factColumns+`
		FROM facts WHERE case_id = ? AND key = ? AND is_current = 1
	`, write.CaseID, write.Key))
	if err != nil && err != sql.ErrNoRows {
		return domain.WriteResult{}, fmt.Errorf("reading current fact: %w", err)
	}

	if current != nil {
		if !write.Source.CanSupersede(current.Source) {
			return domain.WriteResult{FactID: current.ID, Outcome: domain.WriteRejected}, nil
		}
		if write.Value.Equal(current.Value) && write.Source.Rank() <= current.Source.Rank() {
			return domain.WriteResult{FactID: current.ID, Outcome: domain.WriteUnchanged}, nil
		}
		if _, err := tx.ExecContext(ctx, "UPDATE facts SET is_current = 0 WHERE id = ?", current.ID); err != nil {
			return domain.WriteResult{}, fmt.Errorf("retiring current fact: %w", err)
		}
	}

	id := uuid.NewString()
	if err := insertFact(ctx, tx, id, write); err != nil {
		return domain.WriteResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.WriteResult{}, fmt.Errorf("committing supersede: %w", err)
	}

	outcome := domain.WriteCreated
	if current != nil {
		outcome = domain.WriteSuperseded
	}
	return domain.WriteResult{FactID: id, Outcome: outcome}, nil
}

func insertFact(ctx context.Context, tx *sql.Tx, id string, write domain.FactWrite) error {
	text, number, structured, date := valueColumns(write.Value)
	_, err := tx.ExecContext(ctx, `
		INSERT INTO facts (id, case_id, key, category, value_kind,
			value_text, value_number, value_structured, value_date,
			source, source_ref, excerpt, confidence, is_current, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)
	`, id, write.CaseID, write.Key, nullString(write.Category), string(write.Value.Kind),
		text, number, structured, date,
		string(write.Source), nullString(write.SourceRef), nullString(write.Excerpt),
		write.Confidence, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("inserting fact: %w", err)
	}
	return nil
}

// Snapshot returns the current fact per key for a case.
func (s *factStore) Snapshot(ctx context.Context, caseID string) (domain.FactSnapshot, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+factColumns+`
		FROM facts WHERE case_id = ? AND is_current = 1
	`, caseID)
	if err != nil {
		return nil, fmt.Errorf("querying snapshot: %w", err)
	}
	defer rows.Close()

	snap := make(domain.FactSnapshot)
	for rows.Next() {
		fact, err := scanFact(rows)
		if err != nil {
			return nil, err
		}
		snap[fact.Key] = *fact
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshot: %w", err)
	}
	return snap, nil
}

// History returns all version rows for a key, oldest first.
func (s *factStore) History(ctx context.Context, caseID, key string) ([]domain.Fact, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+factColumns+`
		FROM facts WHERE case_id = ? AND key = ?
		ORDER BY created_at, id
	`, caseID, key)
	if err != nil {
		return nil, fmt.Errorf("querying fact history: %w", err)
	}
	defer rows.Close()

	var facts []domain.Fact
	for rows.Next() {
		fact, err := scanFact(rows)
		if err != nil {
			return nil, err
		}
		facts = append(facts, *fact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fact history: %w", err)
	}
	return facts, nil
}

// Retract flips the current fact for a key off without a replacement.
func (s *factStore) Retract(ctx context.Context, caseID, key string) (bool, error) {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE facts SET is_current = 0 WHERE case_id = ? AND key = ? AND is_current = 1",
		caseID, key)
	if err != nil {
		return false, fmt.Errorf("retracting fact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}
	return n > 0, nil
}

const factColumns = `id, case_id, key, category, value_kind,
	value_text, value_number, value_structured, value_date,
	source, source_ref, excerpt, confidence, is_current, created_at`

// valueColumns splits the tagged union over the four value columns.
func valueColumns(v domain.FactValue) (text, number, structured, date any) {
	switch v.Kind {
	case domain.ValueText:
		return v.Text, nil, nil, nil
	case domain.ValueNumber:
		return nil, v.Number, nil, nil
	case domain.ValueStructured:
		return nil, nil, string(v.Structured), nil
	case domain.ValueDate:
		return nil, nil, nil, v.Date
	default:
		return nil, nil, nil, nil
	}
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFact(row rowScanner) (*domain.Fact, error) {
	fact, err := scanOneFact(row)
	if err != nil {
		return nil, fmt.Errorf("scanning fact: %w", err)
	}
	return fact, nil
}

func scanOneFact(row rowScanner) (*domain.Fact, error) {
	var (
		fact       domain.Fact
		kind       string
		category   sql.NullString
		text       sql.NullString
		number     sql.NullFloat64
		structured sql.NullString
		date       sql.NullTime
		source     string
		sourceRef  sql.NullString
		excerpt    sql.NullString
		isCurrent  int
		createdAt  sql.NullTime
	)
	if err := row.Scan(&fact.ID, &fact.CaseID, &fact.Key, &category, &kind,
		&text, &number, &structured, &date,
		&source, &sourceRef, &excerpt, &fact.Confidence, &isCurrent, &createdAt); err != nil {
		return nil, err
	}

	fact.Category = category.String
	fact.Source = domain.SourceType(source)
	fact.SourceRef = sourceRef.String
	fact.Excerpt = excerpt.String
	fact.IsCurrent = isCurrent == 1
	if createdAt.Valid {
		fact.CreatedAt = createdAt.Time
	}

	switch domain.ValueKind(kind) {
	case domain.ValueText:
		fact.Value = domain.TextValue(text.String)
	case domain.ValueNumber:
		fact.Value = domain.NumberValue(number.Float64)
	case domain.ValueStructured:
		fact.Value = domain.StructuredValue(json.RawMessage(structured.String))
	case domain.ValueDate:
		fact.Value = domain.DateValue(date.Time)
	}
	return &fact, nil
}
