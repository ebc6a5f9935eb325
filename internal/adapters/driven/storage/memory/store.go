// Package memory provides in-memory implementations of the driven
// storage ports. They mirror the sqlite adapter's semantics exactly
// and back the service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/caseintake/internal/core/domain"
	"github.com/custodia-labs/caseintake/internal/core/ports/driven"
)

var (
	_ driven.FactStore = (*FactStore)(nil)
	_ driven.GapStore  = (*GapStore)(nil)
	_ driven.CaseStore = (*CaseStore)(nil)
	_ driven.AuditLog  = (*AuditLog)(nil)
)

// FactStore keeps every fact version in memory, one current row per
// (case, key).
type FactStore struct {
	mu    sync.Mutex
	facts []domain.Fact
}

// NewFactStore creates an empty store.
func NewFactStore() *FactStore {
	return &FactStore{}
}

// Supersede applies one write under the source authority rules.
func (s *FactStore) Supersede(ctx context.Context, write domain.FactWrite) (domain.WriteResult, error) {
	if write.CaseID == "" || write.Key == "" {
		return domain.WriteResult{}, fmt.Errorf("%w: case id and key are required", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current := -1
	for i := range s.facts {
		if s.facts[i].IsCurrent && s.facts[i].CaseID == write.CaseID && s.facts[i].Key == write.Key {
			current = i
			break
		}
	}

	if current >= 0 {
		cur := &s.facts[current]
		if !write.Source.CanSupersede(cur.Source) {
			return domain.WriteResult{FactID: cur.ID, Outcome: domain.WriteRejected}, nil
		}
		if write.Value.Equal(cur.Value) && write.Source.Rank() <= cur.Source.Rank() {
			return domain.WriteResult{FactID: cur.ID, Outcome: domain.WriteUnchanged}, nil
		}
		cur.IsCurrent = false
		id := s.insert(write)
		return domain.WriteResult{FactID: id, Outcome: domain.WriteSuperseded}, nil
	}

	id := s.insert(write)
	return domain.WriteResult{FactID: id, Outcome: domain.WriteCreated}, nil
}

func (s *FactStore) insert(write domain.FactWrite) string {
	id := uuid.NewString()
	s.facts = append(s.facts, domain.Fact{
		ID:         id,
		CaseID:     write.CaseID,
		Key:        write.Key,
		Category:   write.Category,
		Value:      write.Value,
		Source:     write.Source,
		SourceRef:  write.SourceRef,
		Excerpt:    write.Excerpt,
		Confidence: write.Confidence,
		IsCurrent:  true,
		CreatedAt:  time.Now().UTC(),
	})
	return id
}

// Snapshot returns the current fact per key.
func (s *FactStore) Snapshot(ctx context.Context, caseID string) (domain.FactSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := make(domain.FactSnapshot)
	for _, f := range s.facts {
		if f.IsCurrent && f.CaseID == caseID {
			snap[f.Key] = f
		}
	}
	return snap, nil
}

// History returns all version rows for a key, oldest first.
func (s *FactStore) History(ctx context.Context, caseID, key string) ([]domain.Fact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Fact
	for _, f := range s.facts {
		if f.CaseID == caseID && f.Key == key {
			out = append(out, f)
		}
	}
	return out, nil
}

// Retract flips the current fact off without a replacement.
func (s *FactStore) Retract(ctx context.Context, caseID, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.facts {
		if s.facts[i].IsCurrent && s.facts[i].CaseID == caseID && s.facts[i].Key == key {
			s.facts[i].IsCurrent = false
			return true, nil
		}
	}
	return false, nil
}

// GapStore keeps gaps in memory, at most one open per (case, key).
type GapStore struct {
	mu   sync.Mutex
	gaps []domain.Gap
}

// NewGapStore creates an empty store.
func NewGapStore() *GapStore {
	return &GapStore{}
}

// EnsureOpen opens the gap unless one is already open for the key.
func (s *GapStore) EnsureOpen(ctx context.Context, gap domain.Gap) (domain.Gap, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.gaps {
		if g.Status == domain.GapOpen && g.CaseID == gap.CaseID && g.Key == gap.Key {
			return g, false, nil
		}
	}
	gap.ID = uuid.NewString()
	gap.Status = domain.GapOpen
	gap.CreatedAt = time.Now().UTC()
	s.gaps = append(s.gaps, gap)
	return gap, true, nil
}

// Resolve closes the open gap for (case, key) when one exists.
func (s *GapStore) Resolve(ctx context.Context, caseID, key, factID, reason string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.gaps {
		g := &s.gaps[i]
		if g.Status == domain.GapOpen && g.CaseID == caseID && g.Key == key {
			now := time.Now().UTC()
			g.Status = domain.GapResolved
			g.ResolvedByFactID = factID
			g.ResolutionReason = reason
			g.ResolvedAt = &now
			return true, nil
		}
	}
	return false, nil
}

// OpenGaps returns open gaps, highest priority first.
func (s *GapStore) OpenGaps(ctx context.Context, caseID string) ([]domain.Gap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Gap
	for _, g := range s.gaps {
		if g.Status == domain.GapOpen && g.CaseID == caseID {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out, nil
}

// ListGaps returns all gaps regardless of status.
func (s *GapStore) ListGaps(ctx context.Context, caseID string) ([]domain.Gap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Gap
	for _, g := range s.gaps {
		if g.CaseID == caseID {
			out = append(out, g)
		}
	}
	return out, nil
}

// CaseStore keeps case records in memory.
type CaseStore struct {
	mu    sync.Mutex
	cases map[string]domain.CaseRecord
}

// NewCaseStore creates an empty store.
func NewCaseStore() *CaseStore {
	return &CaseStore{cases: make(map[string]domain.CaseRecord)}
}

// Get retrieves a case.
func (s *CaseStore) Get(ctx context.Context, id string) (*domain.CaseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.cases[id]
	if !ok {
		return nil, fmt.Errorf("case %s: %w", id, domain.ErrCaseNotFound)
	}
	return &rec, nil
}

// Save stores or updates a case record.
func (s *CaseStore) Save(ctx context.Context, rec *domain.CaseRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("%w: case id is required", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases[rec.ID] = *rec
	return nil
}

// AuditLog keeps audit entries in memory.
type AuditLog struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

// NewAuditLog creates an empty log.
func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

// Record appends one entry.
func (s *AuditLog) Record(ctx context.Context, entry domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	s.entries = append(s.entries, entry)
	return nil
}

// List returns all entries for a case, oldest first.
func (s *AuditLog) List(ctx context.Context, caseID string) ([]domain.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.AuditEntry
	for _, e := range s.entries {
		if e.CaseID == caseID {
			out = append(out, e)
		}
	}
	return out, nil
}
