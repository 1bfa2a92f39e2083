// Package server implements the MCP (Model Context Protocol) server that
// exposes the micrograph pipeline as tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_load: Load a micrograph and report its metadata
//   - micrograph_features: Segment and measure in memory, return the records
//   - micrograph_analyze: Full run writing the CSV, overlay and summary
//
// Both micrograph tools accept optional median_size, min_size, hole_size,
// morph_radius and intensity arguments that override the configured values
// for that call only.
//
// # Image Caching
//
// Decoded images are cached by path for the lifetime of the server process
// and shared across tool calls.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with
// code -32000 and the Go error string as data. Malformed tools/call params
// yield -32602 and unknown methods -32601.
package server
