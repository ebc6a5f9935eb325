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

// nomenclatureStore implements driven.Nomenclature over the embedded
// national HS table.
type nomenclatureStore struct {
	store *Store
}

var _ driven.Nomenclature = (*nomenclatureStore)(nil)

// Exact returns the entry for a full 10-digit code.
func (s *nomenclatureStore) Exact(ctx context.Context, code10 string) (*driven.NomenclatureEntry, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT code, label FROM hs_nomenclature WHERE code = ?", code10)

	var entry driven.NomenclatureEntry
	if err := row.Scan(&entry.Code, &entry.Label); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("code %s: %w", code10, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning nomenclature entry: %w", err)
	}
	return &entry, nil
}

// ByPrefix returns all entries starting with the prefix, capped.
func (s *nomenclatureStore) ByPrefix(ctx context.Context, prefix6 string, limit int) ([]driven.NomenclatureEntry, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT code, label FROM hs_nomenclature
		WHERE code LIKE ? || '%'
		ORDER BY code LIMIT ?
	`, prefix6, limit)
	if err != nil {
		return nil, fmt.Errorf("querying nomenclature: %w", err)
	}
	defer rows.Close()

	var entries []driven.NomenclatureEntry
	for rows.Next() {
		var entry driven.NomenclatureEntry
		if err := rows.Scan(&entry.Code, &entry.Label); err != nil {
			return nil, fmt.Errorf("scanning nomenclature entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating nomenclature: %w", err)
	}
	return entries, nil
}

// LoadEntries bulk-inserts nomenclature rows, replacing existing
// codes. Used by reference data imports.
func (s *Store) LoadEntries(ctx context.Context, entries []driven.NomenclatureEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, entry := range entries {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO hs_nomenclature (code, label) VALUES (?, ?) ON CONFLICT(code) DO UPDATE SET label = excluded.label",
			entry.Code, entry.Label); err != nil {
			return fmt.Errorf("inserting nomenclature entry %s: %w", entry.Code, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing nomenclature load: %w", err)
	}
	return nil
}

// correspondenceStore implements driven.CorrespondenceStore.
type correspondenceStore struct {
	store *Store
}

var _ driven.CorrespondenceStore = (*correspondenceStore)(nil)

// Messages returns all messages for a case, oldest first.
func (s *correspondenceStore) Messages(ctx context.Context, caseID string) ([]domain.Message, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, case_id, sender, subject, raw_body, sent_at
		FROM messages WHERE case_id = ?
		ORDER BY sent_at, id
	`, caseID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var (
			msg     domain.Message
			sender  sql.NullString
			subject sql.NullString
			rawBody sql.NullString
			sentAt  sql.NullTime
		)
		if err := rows.Scan(&msg.ID, &msg.CaseID, &sender, &subject, &rawBody, &sentAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msg.From = sender.String
		msg.Subject = subject.String
		msg.RawBody = rawBody.String
		if sentAt.Valid {
			msg.SentAt = sentAt.Time
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return messages, nil
}

var _ driven.Inbox = (*Store)(nil)

// AddMessage stores one piece of correspondence.
func (s *Store) AddMessage(ctx context.Context, msg domain.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, case_id, sender, subject, raw_body, sent_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.CaseID, nullString(msg.From), nullString(msg.Subject),
		nullString(msg.RawBody), msg.SentAt)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	return nil
}

// attachmentStore implements driven.AttachmentStore.
type attachmentStore struct {
	store *Store
}

var _ driven.AttachmentStore = (*attachmentStore)(nil)

// Documents returns all attachments for a case, oldest first.
func (s *attachmentStore) Documents(ctx context.Context, caseID string) ([]domain.AttachmentDocument, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, case_id, filename, fields, line_items, text_content, added_at
		FROM attachments WHERE case_id = ?
		ORDER BY added_at, id
	`, caseID)
	if err != nil {
		return nil, fmt.Errorf("querying attachments: %w", err)
	}
	defer rows.Close()

	var docs []domain.AttachmentDocument
	for rows.Next() {
		var (
			doc       domain.AttachmentDocument
			filename  sql.NullString
			fields    sql.NullString
			lineItems sql.NullString
			text      sql.NullString
			addedAt   sql.NullTime
		)
		if err := rows.Scan(&doc.ID, &doc.CaseID, &filename, &fields, &lineItems, &text, &addedAt); err != nil {
			return nil, fmt.Errorf("scanning attachment: %w", err)
		}
		doc.Filename = filename.String
		doc.Text = text.String
		if addedAt.Valid {
			doc.AddedAt = addedAt.Time
		}
		if fields.Valid && fields.String != "" {
			if err := json.Unmarshal([]byte(fields.String), &doc.Fields); err != nil {
				return nil, fmt.Errorf("unmarshalling attachment fields: %w", err)
			}
		}
		if lineItems.Valid && lineItems.String != "" {
			if err := json.Unmarshal([]byte(lineItems.String), &doc.LineItems); err != nil {
				return nil, fmt.Errorf("unmarshalling line items: %w", err)
			}
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attachments: %w", err)
	}
	return docs, nil
}

// AddAttachment stores one extracted attachment document.
func (s *Store) AddAttachment(ctx context.Context, doc domain.AttachmentDocument) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.AddedAt.IsZero() {
		doc.AddedAt = time.Now().UTC()
	}

	var fields, lineItems any
	if len(doc.Fields) > 0 {
		payload, err := json.Marshal(doc.Fields)
		if err != nil {
			return fmt.Errorf("marshalling attachment fields: %w", err)
		}
		fields = string(payload)
	}
	if len(doc.LineItems) > 0 {
		payload, err := json.Marshal(doc.LineItems)
		if err != nil {
			return fmt.Errorf("marshalling line items: %w", err)
		}
		lineItems = string(payload)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attachments (id, case_id, filename, fields, line_items, text_content, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.CaseID, nullString(doc.Filename), fields, lineItems,
		nullString(doc.Text), doc.AddedAt)
	if err != nil {
		return fmt.Errorf("inserting attachment: %w", err)
	}
	return nil
}
