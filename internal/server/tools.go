package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the schema of the image path argument shared by every tool.
var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the grayscale micrograph",
}

// overrideProperties are the optional stage parameters a call may override.
func overrideProperties() map[string]interface{} {
	return map[string]interface{}{
		"median_size": map[string]interface{}{
			"type":        "integer",
			"description": "Median filter window edge; 1 disables filtering",
			"minimum":     0,
		},
		"min_size": map[string]interface{}{
			"type":        "integer",
			"description": "Remove objects smaller than this many pixels",
			"minimum":     0,
		},
		"hole_size": map[string]interface{}{
			"type":        "integer",
			"description": "Fill enclosed holes smaller than this many pixels",
			"minimum":     0,
		},
		"morph_radius": map[string]interface{}{
			"type":        "integer",
			"description": "Disk radius for morphological opening and closing; 0 disables",
			"minimum":     0,
		},
		"intensity": map[string]interface{}{
			"type":        "boolean",
			"description": "Include mean/min/max intensity columns",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	features := overrideProperties()
	features["path"] = pathProperty

	analyze := overrideProperties()
	analyze["path"] = pathProperty
	analyze["outdir"] = map[string]interface{}{
		"type":        "string",
		"description": "Directory for the feature table, overlay and summary; created if missing",
	}
	analyze["title"] = map[string]interface{}{
		"type":        "string",
		"description": "Title of the overlay panel",
	}

	return []Tool{
		{
			Name:        "image_load",
			Description: "Load a micrograph and return its dimensions, format and color depth. The decoded image is cached for subsequent calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "micrograph_features",
			Description: "Normalize, segment and measure a micrograph. Returns the Otsu threshold, the object count and one feature record per labeled object. Nothing is written to disk.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": features,
				"required":   []string{"path"},
			},
		},
		{
			Name:        "micrograph_analyze",
			Description: "Run the full pipeline on a micrograph and write the feature table (CSV), the overlay figure (PNG) and a JSON summary into outdir. Returns the summary.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": analyze,
				"required":   []string{"path", "outdir"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
