package server

import (
	"encoding/json"
	"fmt"

	"github.com/ironsheep/micrograph-features/internal/config"
	"github.com/ironsheep/micrograph-features/internal/features"
	"github.com/ironsheep/micrograph-features/internal/imaging"
	"github.com/ironsheep/micrograph-features/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "micrograph_analyze").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn().Err(err).Str("tool", params.Name).Msg("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "micrograph_features":
		return s.handleMicrographFeatures(args)
	case "micrograph_analyze":
		return s.handleMicrographAnalyze(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse builds a JSON-RPC error response.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// overrideArgs are optional per-call replacements for configured parameters.
// A nil field keeps the configured value.
type overrideArgs struct {
	MedianSize  *int  `json:"median_size"`
	MinSize     *int  `json:"min_size"`
	HoleSize    *int  `json:"hole_size"`
	MorphRadius *int  `json:"morph_radius"`
	Intensity   *bool `json:"intensity"`
}

// apply returns a copy of cfg with the overrides applied.
func (o overrideArgs) apply(cfg *config.Config) *config.Config {
	c := *cfg
	if o.MedianSize != nil {
		c.Normalize.MedianSize = *o.MedianSize
	}
	if o.MinSize != nil {
		c.Segment.MinSize = *o.MinSize
	}
	if o.HoleSize != nil {
		c.Segment.HoleSize = *o.HoleSize
	}
	if o.MorphRadius != nil {
		c.Segment.MorphRadius = *o.MorphRadius
	}
	if o.Intensity != nil {
		c.Features.Intensity = *o.Intensity
	}
	return &c
}

type micrographFeaturesArgs struct {
	Path string `json:"path"`
	overrideArgs
}

// FeaturesResult is the micrograph_features tool output.
type FeaturesResult struct {
	Path      string            `json:"path"`
	Threshold float64           `json:"threshold"`
	NObjects  int               `json:"n_objects"`
	Columns   []string          `json:"columns"`
	Records   []features.Record `json:"records"`
}

func (s *Server) handleMicrographFeatures(args json.RawMessage) (interface{}, error) {
	var a micrographFeaturesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	runner := pipeline.NewRunner(a.apply(s.cfg), s.base, s.cache)
	res, err := runner.Analyze(img)
	if err != nil {
		return nil, err
	}

	records := res.Table.Records
	if records == nil {
		records = []features.Record{}
	}
	return &FeaturesResult{
		Path:      a.Path,
		Threshold: res.Segmentation.Threshold,
		NObjects:  res.Segmentation.Count,
		Columns:   res.Table.Columns,
		Records:   records,
	}, nil
}

type micrographAnalyzeArgs struct {
	Path   string  `json:"path"`
	OutDir string  `json:"outdir"`
	Title  *string `json:"title"`
	overrideArgs
}

func (s *Server) handleMicrographAnalyze(args json.RawMessage) (interface{}, error) {
	var a micrographAnalyzeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" || a.OutDir == "" {
		return nil, fmt.Errorf("path and outdir are required")
	}

	cfg := a.apply(s.cfg)
	if a.Title != nil {
		cfg.Overlay.Title = *a.Title
	}
	return pipeline.NewRunner(cfg, s.base, s.cache).Run(a.Path, a.OutDir)
}
