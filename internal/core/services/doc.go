// Package services implements the core use cases: the bounded case
// analysis pass and its stages — extraction persistence, HS code
// resolution, flow classification, assumption injection and gap /
// completeness analysis. Services depend only on domain types and
// ports; adapters are injected through constructors.
package services
