// Package driving defines the primary (inbound) ports of the hexagon:
// the interfaces through which the CLI and MCP adapters drive the
// core services.
package driving
