// Package domain defines the core business entities for Caseintake.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Fact: A typed, versioned, sourced data point about a case
//   - Gap: An open question representing a missing mandatory fact
//   - CaseRecord: A quotation case with its derived status machine
//   - CandidateFact: An unpersisted fact proposed by a producer
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
