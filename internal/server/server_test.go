package server

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ironsheep/micrograph-features/internal/config"
	"github.com/ironsheep/micrograph-features/internal/pipeline"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(nil, zerolog.Nop(), "test")
}

func TestMCPRequest_Unmarshal(t *testing.T) {
	data := `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"image_load","arguments":{"path":"/tmp/a.png"}}}`

	var req MCPRequest
	if err := json.Unmarshal([]byte(data), &req); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if req.Method != "tools/call" {
		t.Errorf("Method: got %s, want tools/call", req.Method)
	}
	if req.ID != float64(7) {
		t.Errorf("ID: got %v, want 7", req.ID)
	}

	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		t.Fatalf("Failed to unmarshal params: %v", err)
	}
	if params.Name != "image_load" {
		t.Errorf("params.Name: got %s, want image_load", params.Name)
	}
}

func TestMCPResponse_WithError(t *testing.T) {
	resp := MCPResponse{
		JSONRPC: "2.0",
		ID:      1,
		Error: &MCPError{
			Code:    -32601,
			Message: "Method not found",
		},
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if bytes.Contains(data, []byte(`"result"`)) {
		t.Errorf("error response should omit result: %s", data)
	}

	var decoded MCPResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if decoded.Error == nil || decoded.Error.Code != -32601 {
		t.Errorf("Error: got %+v", decoded.Error)
	}
}

func TestHandleRequest_Initialize(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: "init-1", Method: "initialize"})

	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if resp.ID != "init-1" {
		t.Errorf("ID: got %v, want init-1", resp.ID)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion: got %v", result["protocolVersion"])
	}

	capabilities, ok := result["capabilities"].(map[string]interface{})
	if !ok {
		t.Fatal("capabilities should be a map")
	}
	experimental, ok := capabilities["experimental"].(map[string]interface{})
	if !ok {
		t.Fatal("capabilities.experimental should be a map")
	}
	micrograph, ok := experimental["micrograph"].(map[string]interface{})
	if !ok {
		t.Fatal("capabilities.experimental.micrograph should be a map")
	}
	defaults, ok := micrograph["defaults"].(pipeline.Params)
	if !ok {
		t.Fatalf("defaults: got %T, want pipeline.Params", micrograph["defaults"])
	}
	if defaults.MinSize != 200 || defaults.MorphRadius != 2 || defaults.MedianSize != 3 {
		t.Errorf("unexpected defaults: %+v", defaults)
	}
	if instr, _ := result["instructions"].(string); !strings.Contains(instr, "min_size 200") {
		t.Errorf("instructions do not mention the defaults: %q", instr)
	}

	serverInfo, ok := result["serverInfo"].(map[string]interface{})
	if !ok {
		t.Fatal("serverInfo should be a map")
	}
	if serverInfo["name"] != ServerName {
		t.Errorf("serverInfo.name: got %v", serverInfo["name"])
	}
	if serverInfo["version"] != "test" {
		t.Errorf("serverInfo.version: got %v", serverInfo["version"])
	}
}

func TestHandleRequest_Routing(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		method   string
		wantNil  bool
		wantCode int
	}{
		{"ping", false, 0},
		{"tools/list", false, 0},
		{"notifications/initialized", true, 0},
		{"nonexistent/method", false, -32601},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: tt.method})
			if tt.wantNil {
				if resp != nil {
					t.Errorf("expected no response, got %+v", resp)
				}
				return
			}
			if resp == nil {
				t.Fatal("handleRequest returned nil")
			}
			if tt.wantCode == 0 && resp.Error != nil {
				t.Errorf("Unexpected error: %v", resp.Error)
			}
			if tt.wantCode != 0 && (resp.Error == nil || resp.Error.Code != tt.wantCode) {
				t.Errorf("Error: got %+v, want code %d", resp.Error, tt.wantCode)
			}
		})
	}
}

func TestServe(t *testing.T) {
	s := newTestServer(t)
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		``,
		`not json`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
	}, "\n")

	var out bytes.Buffer
	if err := s.Serve(strings.NewReader(in), &out); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 responses, got %d: %q", len(lines), out.String())
	}

	var last MCPResponse
	if err := json.Unmarshal([]byte(lines[1]), &last); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if last.ID != float64(2) || last.Error != nil {
		t.Errorf("ping response: %+v", last)
	}
}

func TestHandleInitialize_ConfiguredDefaults(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Segment.MinSize = 50
	cfg.Overlay.Enabled = false
	s := New(cfg, zerolog.Nop(), "")

	resp := s.handleInitialize(&MCPRequest{JSONRPC: "2.0", ID: 1})
	result := resp.Result.(map[string]interface{})
	micrograph := result["capabilities"].(map[string]interface{})["experimental"].(map[string]interface{})["micrograph"].(map[string]interface{})

	if got := micrograph["defaults"].(pipeline.Params).MinSize; got != 50 {
		t.Errorf("defaults.MinSize: got %d, want 50", got)
	}
	if micrograph["overlayEnabled"] != false {
		t.Errorf("overlayEnabled: got %v, want false", micrograph["overlayEnabled"])
	}
	if v := result["serverInfo"].(map[string]interface{})["version"]; v != "dev" {
		t.Errorf("empty version should default to dev, got %v", v)
	}
}
