// Package mcp provides an MCP (Model Context Protocol) server adapter
// for caseintake. It lets AI assistants trigger analysis passes and
// read case state, facts and open gaps.
package mcp

import "errors"

// ErrMissingAnalyser is returned when the case analyser is not provided.
var ErrMissingAnalyser = errors.New("mcp: case analyser is required")
