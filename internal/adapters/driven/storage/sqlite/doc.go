// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - FactStore: versioned facts with authority-ranked supersession
//   - GapStore: open questions, one open row per (case, key)
//   - CaseStore: analyser-owned case records
//   - AuditLog: best-effort case timeline
//   - Nomenclature: the national 10-digit HS table
//   - CorrespondenceStore / AttachmentStore: raw case inputs
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. The at-most-one-current-fact and at-most-one-open-gap
// invariants are enforced by partial unique indexes, so a racing writer fails
// loudly instead of corrupting the version chain.
//
// # Data Location
//
// By default, the database is stored at ~/.caseintake/data/caseintake.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode; Supersede serialises each read-modify-write in its own
// transaction.
package sqlite
