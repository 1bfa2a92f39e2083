package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/ironsheep/micrograph-features/internal/config"
	"github.com/ironsheep/micrograph-features/internal/imaging"
	"github.com/ironsheep/micrograph-features/internal/logging"
	"github.com/ironsheep/micrograph-features/internal/pipeline"
)

// ServerName is reported to clients during initialize.
const ServerName = "micrograph-features"

// supportedFormats lists the image formats the loader decodes.
var supportedFormats = []string{"png", "jpeg", "gif", "tiff", "bmp"}

// Server handles MCP protocol communication
type Server struct {
	cfg     *config.Config
	base    zerolog.Logger
	logger  zerolog.Logger
	cache   *imaging.ImageCache
	version string
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MCPNotification represents an outgoing notification (no ID)
type MCPNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// New creates a new MCP server instance. cfg supplies the default pipeline
// parameters; a nil cfg means config.DefaultConfig().
func New(cfg *config.Config, logger zerolog.Logger, version string) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if version == "" {
		version = "dev"
	}
	return &Server{
		cfg:     cfg,
		base:    logger,
		logger:  logging.Component(logger, "server"),
		cache:   imaging.NewImageCache(),
		version: version,
	}
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses to w
// until r is exhausted.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)
	s.logger.Info().Str("version", s.version).Msg("serving")

	handled := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn().Err(err).Msg("failed to parse request")
			continue
		}

		handled++
		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.logger.Error().Err(err).Msg("failed to encode response")
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	s.logger.Info().Int("requests", handled).Msg("input closed")
	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	s.logger.Debug().Str("method", req.Method).Interface("id", req.ID).Msg("request")

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request. Besides the tools
// capability it advertises the pipeline defaults a tool call starts from and
// the image formats the loader accepts.
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	defaults := pipeline.ParamsFor(s.cfg)
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
				"experimental": map[string]interface{}{
					"micrograph": map[string]interface{}{
						"defaults":       defaults,
						"formats":        supportedFormats,
						"overlayEnabled": s.cfg.Overlay.Enabled,
					},
				},
			},
			"serverInfo": map[string]interface{}{
				"name":    ServerName,
				"version": s.version,
			},
			"instructions": fmt.Sprintf(
				"Segments grayscale micrographs and measures every object. "+
					"Call micrograph_features for records in memory or micrograph_analyze to write "+
					"the feature table, overlay and summary. Defaults: median %d, min_size %d, "+
					"hole_size %d, morph_radius %d.",
				defaults.MedianSize, defaults.MinSize, defaults.HoleSize, defaults.MorphRadius),
		},
	}
}
