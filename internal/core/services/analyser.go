package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/caseintake/internal/core/domain"
	"github.com/custodia-labs/caseintake/internal/core/ports/driven"
	"github.com/custodia-labs/caseintake/internal/core/ports/driving"
	"github.com/custodia-labs/caseintake/internal/extract"
	"github.com/custodia-labs/caseintake/internal/logger"
	attachmentmapper "github.com/custodia-labs/caseintake/internal/mappers/attachment"
	messagenorm "github.com/custodia-labs/caseintake/internal/normalisers/message"
)

var _ driving.CaseAnalyser = (*Analyser)(nil)

// Deps bundles the driven ports the analyser orchestrates.
type Deps struct {
	Facts          driven.FactStore
	Gaps           driven.GapStore
	Cases          driven.CaseStore
	Audit          driven.AuditLog
	Correspondence driven.CorrespondenceStore
	Attachments    driven.AttachmentStore
	Oracle         driven.Extractor
	Nomenclature   driven.Nomenclature
	Contacts       driven.ContactDirectory
	Config         ClassifierConfig
}

// Analyser runs the bounded analysis pass: normalise correspondence,
// collect candidate facts from every producer, write them through the
// store's authority rules, classify the flow, inject assumptions and
// reconcile gaps. All state lives in the stores; the analyser keeps
// nothing between passes.
type Analyser struct {
	deps        Deps
	normaliser  *messagenorm.Normaliser
	mapper      *attachmentmapper.Mapper
	hs          *HSResolver
	assumptions *AssumptionEngine
	gapAnalyser *GapAnalyser
}

// NewAnalyser wires the pass from its driven ports.
func NewAnalyser(deps Deps) *Analyser {
	return &Analyser{
		deps:        deps,
		normaliser:  messagenorm.New(),
		mapper:      attachmentmapper.New(),
		hs:          NewHSResolver(deps.Nomenclature),
		assumptions: NewAssumptionEngine(deps.Facts, deps.Audit),
		gapAnalyser: NewGapAnalyser(deps.Gaps, deps.Audit),
	}
}

// tally accumulates per-pass write counts and failures.
type tally struct {
	added   int
	updated int
	failed  []domain.FailedFact
}

// Analyse runs one pass for a case. Fatal errors (unknown case) are
// returned; per-fact persistence failures accumulate in the result
// and the pass continues through gap analysis.
func (a *Analyser) Analyse(ctx context.Context, req driving.AnalysisRequest) (*domain.AnalysisResult, error) {
	rec, err := a.deps.Cases.Get(ctx, req.CaseID)
	if err != nil {
		return nil, fmt.Errorf("loading case: %w", err)
	}

	messages, err := a.deps.Correspondence.Messages(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("loading correspondence: %w", err)
	}
	docs, err := a.deps.Attachments.Documents(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("loading attachments: %w", err)
	}

	var t tally
	if req.ForceRefresh || hasNewInput(rec.AnalysedAt, messages, docs) {
		a.runExtraction(ctx, rec, messages, docs, &t)
	} else {
		logger.Debug("case %s: nothing new since %s, extraction skipped", rec.ID, rec.AnalysedAt.Format(time.RFC3339))
	}

	snapshot, err := a.deps.Facts.Snapshot(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	// Classification only reads routing and cargo metrics, never the
	// commodity code, so it can run first and scope HS resolution to
	// flows whose schema actually asks for the code.
	classification := ClassifyFlow(snapshot, attachmentState(docs), a.deps.Config)
	if classification.RequestType != rec.RequestType {
		a.recordAudit(ctx, rec.ID, domain.AuditFlowClassified,
			fmt.Sprintf("from=%s to=%s", rec.RequestType, classification.RequestType))
	}

	if err := a.resolveHSCode(ctx, rec.ID, classification.RequestType, &t); err != nil {
		return nil, err
	}

	a.writeChargeableWeight(ctx, rec.ID, snapshot, &t)

	created, updated, err := a.assumptions.Apply(ctx, rec.ID, classification.AssumptionFlow)
	if err != nil {
		return nil, fmt.Errorf("applying assumptions: %w", err)
	}
	t.added += created
	t.updated += updated

	// Assumptions may have added facts; gap analysis needs the final
	// snapshot.
	snapshot, err = a.deps.Facts.Snapshot(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("rereading snapshot: %w", err)
	}

	report, err := a.gapAnalyser.Analyse(ctx, rec.ID, classification.RequestType, snapshot)
	if err != nil {
		return nil, fmt.Errorf("analysing gaps: %w", err)
	}

	markCritical(t.failed, classification.RequestType)
	critical := false
	for _, f := range t.failed {
		if f.Critical {
			critical = true
			break
		}
	}

	status := DeriveStatus(rec.Status, classification.RequestType, report, len(snapshot), critical)
	if status != rec.Status {
		a.recordAudit(ctx, rec.ID, domain.AuditStatusChanged,
			fmt.Sprintf("from=%s to=%s", rec.Status, status))
	}

	rec.Status = status
	rec.RequestType = classification.RequestType
	rec.FactsCount = len(snapshot)
	rec.OpenGapsCount = report.OpenTotal
	rec.CompletenessPct = report.Completeness
	rec.AnalysedAt = time.Now().UTC()
	if err := a.deps.Cases.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("saving case: %w", err)
	}

	result := &domain.AnalysisResult{
		CaseID:          rec.ID,
		NewStatus:       status,
		RequestType:     classification.RequestType,
		FactsAdded:      t.added,
		FactsUpdated:    t.updated,
		GapsIdentified:  report.Opened,
		CompletenessPct: report.Completeness,
		ReadyToPrice:    status == domain.StatusReady,
		FailedFacts:     t.failed,
	}
	a.recordAudit(ctx, rec.ID, domain.AuditAnalysisComplete,
		fmt.Sprintf("status=%s flow=%s added=%d updated=%d gaps=%d", status, rec.RequestType, t.added, t.updated, report.Opened))
	logger.Info("case %s analysed: status=%s flow=%s completeness=%d%%", rec.ID, status, rec.RequestType, report.Completeness)
	return result, nil
}

// runExtraction collects candidates from the attachment mapper, the
// oracle and the contact directory, and writes them through the
// store. Failures accumulate; the pass never aborts here.
func (a *Analyser) runExtraction(ctx context.Context, rec *domain.CaseRecord, messages []domain.Message, docs []domain.AttachmentDocument, t *tally) {
	threadText := a.normaliseThread(messages)
	attachmentText := joinAttachmentText(docs)

	if threadText != "" || attachmentText != "" {
		candidates, err := a.deps.Oracle.Extract(ctx, threadText, attachmentText)
		if err != nil {
			// Both oracle paths failed; nothing to write, the
			// deterministic producers above still contributed.
			logger.Warn("oracle extraction failed for case %s: %v", rec.ID, err)
			a.recordAudit(ctx, rec.ID, domain.AuditOracleFallback, "extraction unavailable: "+err.Error())
		} else {
			source := domain.SourceAIExtraction
			if fr, ok := a.deps.Oracle.(FallbackReporter); ok && fr.UsedFallback() {
				source = domain.SourceDocumentRegex
				a.recordAudit(ctx, rec.ID, domain.AuditOracleFallback, "deterministic fallback extractor used")
			}
			a.writeCandidates(ctx, rec.ID, candidates, source, t)
		}
	}

	// Mapper candidates land after the oracle's so that structured
	// document fields win equal-rank ties against thread-derived
	// values.
	a.writeCandidates(ctx, rec.ID, a.mapper.Map(docs), domain.SourceAttachmentExtracted, t)

	if rec.SenderDomain != "" && a.deps.Contacts != nil {
		if code := a.deps.Contacts.ClientCode(rec.SenderDomain); code != "" {
			a.writeOne(ctx, domain.FactWrite{
				CaseID:     rec.ID,
				Key:        domain.KeyClientCode,
				Category:   domain.CategoryParties,
				Value:      domain.TextValue(code),
				Source:     domain.SourceKnownContact,
				SourceRef:  rec.SenderDomain,
				Confidence: 0.9,
			}, t)
		}
	}
}

// FallbackReporter is implemented by oracles that can report whether
// their last extraction came from the deterministic fallback. Facts
// from the fallback carry document_regex provenance instead of
// ai_extraction.
type FallbackReporter interface {
	UsedFallback() bool
}

func (a *Analyser) normaliseThread(messages []domain.Message) string {
	var b strings.Builder
	for _, msg := range messages {
		body := a.normaliser.Normalise(msg.RawBody)
		if msg.Subject == "" && body == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		if msg.Subject != "" {
			b.WriteString(msg.Subject)
			b.WriteString("\n")
		}
		b.WriteString(body)
	}
	return b.String()
}

func joinAttachmentText(docs []domain.AttachmentDocument) string {
	var parts []string
	for _, doc := range docs {
		if doc.Text != "" {
			parts = append(parts, doc.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

func attachmentState(docs []domain.AttachmentDocument) domain.AttachmentState {
	if len(docs) == 0 {
		return domain.AttachmentsNone
	}
	for _, doc := range docs {
		if doc.HasContent() {
			return domain.AttachmentsExtracted
		}
	}
	return domain.AttachmentsAwaitingExtraction
}

// writeCandidates persists one producer's candidates under the given
// source, tallying outcomes. Candidates the producer itself flagged
// as guesses are demoted to the assumption tier so they never outrank
// observed values or close gaps.
func (a *Analyser) writeCandidates(ctx context.Context, caseID string, candidates []domain.CandidateFact, source domain.SourceType, t *tally) {
	for _, c := range candidates {
		candidateSource := source
		if c.IsAssumption {
			candidateSource = domain.SourceAIAssumption
		}
		a.writeOne(ctx, domain.FactWrite{
			CaseID:     caseID,
			Key:        c.Key,
			Category:   c.Category,
			Value:      c.Value,
			Source:     candidateSource,
			SourceRef:  c.SourceRef,
			Excerpt:    c.Excerpt,
			Confidence: c.Confidence,
		}, t)
	}
}

// writeOne persists a single write, updating the tally. Persistence
// errors accumulate as failures; criticality is decided after the
// flow is classified.
func (a *Analyser) writeOne(ctx context.Context, write domain.FactWrite, t *tally) {
	result, err := a.deps.Facts.Supersede(ctx, write)
	if err != nil {
		logger.Warn("fact write failed: case=%s key=%s: %v", write.CaseID, write.Key, err)
		t.failed = append(t.failed, domain.FailedFact{Key: write.Key, Reason: err.Error()})
		a.recordAudit(ctx, write.CaseID, domain.AuditFactWriteFailed, "key="+write.Key+" err="+err.Error())
		return
	}
	switch result.Outcome {
	case domain.WriteCreated:
		t.added++
		a.recordAudit(ctx, write.CaseID, domain.AuditFactWritten,
			fmt.Sprintf("key=%s source=%s outcome=created", write.Key, write.Source))
	case domain.WriteSuperseded:
		t.updated++
		a.recordAudit(ctx, write.CaseID, domain.AuditFactWritten,
			fmt.Sprintf("key=%s source=%s outcome=superseded", write.Key, write.Source))
	case domain.WriteRejected:
		logger.Debug("write rejected by authority rules: key=%s source=%s", write.Key, write.Source)
		a.recordAudit(ctx, write.CaseID, domain.AuditFactRejected,
			fmt.Sprintf("key=%s source=%s", write.Key, write.Source))
	}
}

// resolveHSCode runs the resolution ladder when the case carries a
// commodity code. Ambiguity and absence open a blocking gap instead
// of erroring; a previously resolved code that no longer validates is
// retracted. The gap is only opened for flows whose schema lists the
// code, otherwise it would churn open and orphan-closed every pass.
func (a *Analyser) resolveHSCode(ctx context.Context, caseID string, flow domain.RequestType, t *tally) error {
	snapshot, err := a.deps.Facts.Snapshot(ctx, caseID)
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}
	fact, ok := snapshot[domain.KeyHSCode]
	if !ok || fact.IsAssumption() {
		return nil
	}

	hsWanted := flowRequires(flow, domain.KeyHSCode)

	raw := fact.Value.String()
	if fact.Source == domain.SourceHSResolution {
		// Re-validate an earlier resolution against the current
		// nomenclature.
		if a.hs.IsExactCode(ctx, extract.DigitsOnly(raw)) {
			return nil
		}
		if _, err := a.deps.Facts.Retract(ctx, caseID, domain.KeyHSCode); err != nil {
			return fmt.Errorf("retracting stale hs code: %w", err)
		}
		a.recordAudit(ctx, caseID, domain.AuditFactRetracted, "key="+domain.KeyHSCode+" reason=nomenclature revalidation failed")
		if hsWanted {
			a.openHSGap(ctx, caseID, nil)
		}
		return nil
	}

	resolution, err := a.hs.Resolve(ctx, raw)
	if err != nil {
		return fmt.Errorf("resolving hs code: %w", err)
	}
	switch resolution.Outcome {
	case HSUnique:
		a.writeOne(ctx, domain.FactWrite{
			CaseID:     caseID,
			Key:        domain.KeyHSCode,
			Category:   domain.CategoryCargo,
			Value:      domain.TextValue(resolution.Code),
			Source:     domain.SourceHSResolution,
			Excerpt:    resolution.Label,
			Confidence: resolution.Confidence,
		}, t)
	case HSAmbiguous:
		if hsWanted {
			a.openHSGap(ctx, caseID, resolution.Candidates)
		}
	case HSNotFound:
		if hsWanted {
			a.openHSGap(ctx, caseID, nil)
		}
	}
	return nil
}

const hsGapHintLimit = 5

func (a *Analyser) openHSGap(ctx context.Context, caseID string, candidates []driven.NomenclatureEntry) {
	hints := make([]string, 0, hsGapHintLimit)
	for _, c := range candidates {
		if len(hints) == hsGapHintLimit {
			break
		}
		hints = append(hints, c.Code+" — "+c.Label)
	}
	gap := domain.Gap{
		CaseID:   caseID,
		Key:      domain.KeyHSCode,
		Category: domain.CategoryCargo,
		Question: "Le code SH fourni est incomplet ou ambigu. Pouvez-vous préciser le code à 10 chiffres ?",
		Priority: domain.PriorityHigh,
		Blocking: true,
		Hints:    hints,
	}
	if _, created, err := a.deps.Gaps.EnsureOpen(ctx, gap); err != nil {
		logger.Warn("opening hs gap failed: %v", err)
	} else if created {
		a.recordAudit(ctx, caseID, domain.AuditGapOpened, "key="+domain.KeyHSCode)
	}
}

// writeChargeableWeight derives the air chargeable weight from the
// current gross weight and volume. Only meaningful for air transport.
func (a *Analyser) writeChargeableWeight(ctx context.Context, caseID string, snap domain.FactSnapshot, t *tally) {
	mode, _ := snap.Text(domain.KeyTransportMode)
	if mode != domain.ModeAir {
		return
	}
	gross, okGross := snap.Number(domain.KeyGrossWeightKg)
	volume, okVolume := snap.Number(domain.KeyVolumeCbm)
	if !okGross || !okVolume {
		return
	}
	chargeable := extract.ChargeableWeightKg(gross, volume)
	a.writeOne(ctx, domain.FactWrite{
		CaseID:     caseID,
		Key:        domain.KeyChargeableWeightKg,
		Category:   domain.CategoryCargo,
		Value:      domain.NumberValue(chargeable),
		Source:     domain.SourceDocumentRegex,
		Confidence: 1.0,
	}, t)
	a.writeOne(ctx, domain.FactWrite{
		CaseID:     caseID,
		Key:        domain.KeyChargeableRule,
		Category:   domain.CategoryCargo,
		Value:      domain.TextValue(extract.ChargeableRuleID),
		Source:     domain.SourceDocumentRegex,
		Confidence: 1.0,
	}, t)
	// Refresh so classification sees the derived weight.
	if updated, err := a.deps.Facts.Snapshot(ctx, caseID); err == nil {
		for k, v := range updated {
			snap[k] = v
		}
	}
}

// hasNewInput reports whether any message or attachment arrived after
// the last completed pass.
func hasNewInput(analysedAt time.Time, messages []domain.Message, docs []domain.AttachmentDocument) bool {
	if analysedAt.IsZero() {
		return true
	}
	for _, msg := range messages {
		if msg.SentAt.After(analysedAt) {
			return true
		}
	}
	for _, doc := range docs {
		if doc.AddedAt.After(analysedAt) {
			return true
		}
	}
	return false
}

// markCritical flags failures whose key is mandatory for the detected
// flow.
func markCritical(failed []domain.FailedFact, flow domain.RequestType) {
	schema := requiredFor(flow)
	mandatory := make(map[string]bool, len(schema))
	for _, rf := range schema {
		mandatory[rf.key] = true
	}
	for i := range failed {
		failed[i].Critical = mandatory[failed[i].Key]
	}
}

func (a *Analyser) recordAudit(ctx context.Context, caseID, event, detail string) {
	if a.deps.Audit == nil {
		return
	}
	entry := domain.AuditEntry{
		CaseID:    caseID,
		Event:     event,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.deps.Audit.Record(ctx, entry); err != nil {
		logger.Warn("audit write failed: %v", err)
	}
}

// Case returns the analyser-owned case record.
func (a *Analyser) Case(ctx context.Context, caseID string) (*domain.CaseRecord, error) {
	return a.deps.Cases.Get(ctx, caseID)
}

// Facts returns the current fact snapshot.
func (a *Analyser) Facts(ctx context.Context, caseID string) (domain.FactSnapshot, error) {
	return a.deps.Facts.Snapshot(ctx, caseID)
}

// FactHistory returns every version row for one key, oldest first.
func (a *Analyser) FactHistory(ctx context.Context, caseID, key string) ([]domain.Fact, error) {
	return a.deps.Facts.History(ctx, caseID, key)
}

// OpenGaps returns the open questions for a case.
func (a *Analyser) OpenGaps(ctx context.Context, caseID string) ([]domain.Gap, error) {
	return a.deps.Gaps.OpenGaps(ctx, caseID)
}

// History returns the audit timeline.
func (a *Analyser) History(ctx context.Context, caseID string) ([]domain.AuditEntry, error) {
	return a.deps.Audit.List(ctx, caseID)
}

// RecordOperatorFact writes an operator-entered value. Operator
// authority overwrites any prior source; the next pass reconciles
// gaps and status.
func (a *Analyser) RecordOperatorFact(ctx context.Context, caseID, key, category string, value domain.FactValue) (domain.WriteResult, error) {
	if key == "" || !strings.Contains(key, ".") {
		return domain.WriteResult{}, fmt.Errorf("%w: fact key must be category.name", domain.ErrInvalidInput)
	}
	if _, err := a.deps.Cases.Get(ctx, caseID); err != nil {
		return domain.WriteResult{}, fmt.Errorf("loading case: %w", err)
	}
	result, err := a.deps.Facts.Supersede(ctx, domain.FactWrite{
		CaseID:     caseID,
		Key:        key,
		Category:   category,
		Value:      value,
		Source:     domain.SourceOperator,
		Confidence: 1.0,
	})
	if err != nil {
		return domain.WriteResult{}, fmt.Errorf("writing operator fact: %w", err)
	}
	a.recordAudit(ctx, caseID, domain.AuditFactWritten,
		fmt.Sprintf("key=%s source=%s outcome=%s", key, domain.SourceOperator, result.Outcome))
	return result, nil
}
