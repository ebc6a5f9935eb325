// Package driven defines the secondary (outbound) ports of the
// hexagon: interfaces the core services need implemented by
// infrastructure adapters — stores, the extraction oracle and
// read-only reference data.
package driven
