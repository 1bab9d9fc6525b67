package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/ironsheep/look-mcp/internal/captures"
	"github.com/ironsheep/look-mcp/internal/toolerr"
)

// ProtocolVersion is the MCP revision the server implements.
const ProtocolVersion = "2024-11-05"

// Capturer takes a screenshot into path. *screen.Invoker satisfies it.
type Capturer interface {
	Capture(ctx context.Context, path string) error
}

// Options configures a Server.
type Options struct {
	// Dir is the captures directory.
	Dir *captures.Dir

	// Capturer produces screenshot files.
	Capturer Capturer

	// Retention is passed to Dir.Sweep before each capture.
	Retention time.Duration

	// Version is reported in the initialize response.
	Version string

	Logger *slog.Logger
}

// Server handles MCP protocol communication
type Server struct {
	dir       *captures.Dir
	resolver  *captures.Resolver
	capturer  Capturer
	retention time.Duration
	version   string
	log       *slog.Logger

	tools   []Tool
	schemas map[string]*jsonschema.Resolved
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

// New creates a new MCP server instance
func New(opts Options) (*Server, error) {
	if opts.Dir == nil {
		return nil, fmt.Errorf("server: captures directory is required")
	}
	if opts.Capturer == nil {
		return nil, fmt.Errorf("server: capturer is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	tools := GetToolDefinitions()
	schemas := make(map[string]*jsonschema.Resolved, len(tools))
	for _, t := range tools {
		resolved, err := t.InputSchema.Resolve(nil)
		if err != nil {
			return nil, fmt.Errorf("server: invalid schema for %s: %w", t.Name, err)
		}
		schemas[t.Name] = resolved
	}

	return &Server{
		dir:       opts.Dir,
		resolver:  captures.NewResolver(opts.Dir),
		capturer:  opts.Capturer,
		retention: opts.Retention,
		version:   version,
		log:       logger,
		tools:     tools,
		schemas:   schemas,
	}, nil
}

// Run reads newline-delimited JSON-RPC requests from r and writes
// responses to w until r is exhausted or ctx is cancelled. Requests are
// handled one at a time, in order. Cancellation is noticed while Run is
// blocked waiting for input; the read in progress is abandoned.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	lines, scanErr, stop := readLines(r)
	defer stop()

	encoder := json.NewEncoder(w)

	for {
		var line []byte
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				if err := <-scanErr; err != nil {
					return fmt.Errorf("scanner error: %w", err)
				}
				return nil
			}
			line = l
		}

		if ctx.Err() != nil {
			return nil
		}
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var resp *MCPResponse
		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn("Failed to parse request", "error", err)
			resp = s.errorResponse(nil, toolerr.CodeParseError, "Parse error", err.Error())
		} else {
			resp = s.handleRequest(ctx, &req)
		}

		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				return fmt.Errorf("failed to encode response: %w", err)
			}
		}
	}
}

// readLines scans r on its own goroutine and delivers one line at a time.
// When lines is closed, scanErr holds the scanner's final error. stop
// releases the goroutine if the caller quits early.
func readLines(r io.Reader) (lines <-chan []byte, scanErr <-chan error, stop func()) {
	out := make(chan []byte)
	errc := make(chan error, 1)
	done := make(chan struct{})

	go func() {
		defer close(out)

		scanner := bufio.NewScanner(r)
		// Increase buffer size for large requests
		buf := make([]byte, 0, 64*1024)
		scanner.Buffer(buf, 1024*1024)

		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case out <- line:
			case <-done:
				return
			}
		}
		errc <- scanner.Err()
	}()

	return out, errc, func() { close(done) }
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	if strings.HasPrefix(req.Method, "notifications/") {
		// Notifications never get a response
		return nil
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return s.errorResponse(req.ID, toolerr.CodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), "")
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": ProtocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "look-mcp",
				"version": s.version,
			},
		},
	}
}

// handleToolsList returns the tool catalog
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": s.tools,
		},
	}
}

// errorResponse creates a JSON-RPC error response. An empty data string is
// omitted.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	mcpErr := &MCPError{Code: code, Message: message}
	if data != "" {
		mcpErr.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   mcpErr,
	}
}
