package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/caseintake/internal/core/domain"
	"github.com/custodia-labs/caseintake/internal/core/ports/driven"
)

var (
	_ driven.Nomenclature        = (*Nomenclature)(nil)
	_ driven.CorrespondenceStore = (*CorrespondenceStore)(nil)
	_ driven.AttachmentStore     = (*AttachmentStore)(nil)
	_ driven.ContactDirectory    = (*ContactDirectory)(nil)
)

// Nomenclature is an in-memory HS code table.
type Nomenclature struct {
	entries []driven.NomenclatureEntry
}

// NewNomenclature creates a table from the given entries.
func NewNomenclature(entries ...driven.NomenclatureEntry) *Nomenclature {
	return &Nomenclature{entries: entries}
}

// Exact returns the entry for a full 10-digit code.
func (n *Nomenclature) Exact(ctx context.Context, code10 string) (*driven.NomenclatureEntry, error) {
	for _, e := range n.entries {
		if e.Code == code10 {
			entry := e
			return &entry, nil
		}
	}
	return nil, fmt.Errorf("code %s: %w", code10, domain.ErrNotFound)
}

// ByPrefix returns all entries starting with the prefix, capped.
func (n *Nomenclature) ByPrefix(ctx context.Context, prefix6 string, limit int) ([]driven.NomenclatureEntry, error) {
	var out []driven.NomenclatureEntry
	for _, e := range n.entries {
		if strings.HasPrefix(e.Code, prefix6) {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// CorrespondenceStore holds raw messages per case.
type CorrespondenceStore struct {
	mu       sync.Mutex
	messages []domain.Message
}

// NewCorrespondenceStore creates an empty store.
func NewCorrespondenceStore() *CorrespondenceStore {
	return &CorrespondenceStore{}
}

// Add appends a message.
func (s *CorrespondenceStore) Add(msg domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// Messages returns all messages for a case, oldest first.
func (s *CorrespondenceStore) Messages(ctx context.Context, caseID string) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Message
	for _, m := range s.messages {
		if m.CaseID == caseID {
			out = append(out, m)
		}
	}
	return out, nil
}

// AttachmentStore holds extracted attachment documents per case.
type AttachmentStore struct {
	mu   sync.Mutex
	docs []domain.AttachmentDocument
}

// NewAttachmentStore creates an empty store.
func NewAttachmentStore() *AttachmentStore {
	return &AttachmentStore{}
}

// Add appends a document.
func (s *AttachmentStore) Add(doc domain.AttachmentDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, doc)
}

// Documents returns all attachments for a case, oldest first.
func (s *AttachmentStore) Documents(ctx context.Context, caseID string) ([]domain.AttachmentDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.AttachmentDocument
	for _, d := range s.docs {
		if d.CaseID == caseID {
			out = append(out, d)
		}
	}
	return out, nil
}

// Inbox adapts the correspondence and attachment stores to the
// write-side port.
type Inbox struct {
	Correspondence *CorrespondenceStore
	Attachments    *AttachmentStore
}

// AddMessage appends a message to the thread.
func (i *Inbox) AddMessage(ctx context.Context, msg domain.Message) error {
	i.Correspondence.Add(msg)
	return nil
}

// AddAttachment stores an attachment.
func (i *Inbox) AddAttachment(ctx context.Context, doc domain.AttachmentDocument) error {
	i.Attachments.Add(doc)
	return nil
}

// ContactDirectory maps sender domains to client codes.
type ContactDirectory struct {
	codes map[string]string
}

// NewContactDirectory creates a directory from a domain→code map.
func NewContactDirectory(codes map[string]string) *ContactDirectory {
	if codes == nil {
		codes = make(map[string]string)
	}
	return &ContactDirectory{codes: codes}
}

// ClientCode returns the code for a domain, or "".
func (d *ContactDirectory) ClientCode(domain string) string {
	return d.codes[strings.ToLower(domain)]
}
