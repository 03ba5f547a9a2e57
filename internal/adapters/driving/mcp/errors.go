// Package mcp provides an MCP (Model Context Protocol) server adapter for nomina.
// It lets AI assistants browse extracted names and processing progress.
// Every tool is read-only; no tool triggers an extraction call.
package mcp

import "errors"

// ErrMissingNameService is returned when the name service is not provided.
var ErrMissingNameService = errors.New("mcp: name service is required")

// ErrMissingCorpusService is returned when the corpus service is not provided.
var ErrMissingCorpusService = errors.New("mcp: corpus service is required")
