package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ironsheep/look-mcp/internal/imaging"
	"github.com/ironsheep/look-mcp/internal/toolerr"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke ("look_at_screen" or "look_at_image").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool's text in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "Screenshot #004 captured and saved to: ..."}]
//	}
//
// Failures become JSON-RPC errors whose code follows the error's kind:
// bad arguments and unresolvable references are -32602, unknown tools
// -32601 and everything else -32603.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, toolerr.CodeInvalidParams, "Invalid params", err.Error())
	}

	text, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		return s.toolErrorResponse(req.ID, params.Name, err)
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": text,
				},
			},
		},
	}
}

// toolErrorResponse maps a tool failure onto a JSON-RPC error. Failures
// the client can act on keep their message; anything else is reported as
// a generic execution failure carrying the underlying message.
func (s *Server) toolErrorResponse(id interface{}, tool string, err error) *MCPResponse {
	kind := toolerr.KindOf(err)
	code := toolerr.Code(kind)

	message := err.Error()
	if code == toolerr.CodeInternalError {
		message = "Tool execution failed: " + message
	}

	s.log.Warn("Tool call failed", "tool", tool, "kind", kind, "error", err)
	return s.errorResponse(id, code, message, "")
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (string, error) {
	switch name {
	case ToolLookAtScreen:
		if _, err := s.validateArgs(name, args); err != nil {
			return "", err
		}
		return s.handleLookAtScreen(ctx)
	case ToolLookAtImage:
		a, err := s.validateArgs(name, args)
		if err != nil {
			return "", err
		}
		return s.handleLookAtImage(a)
	default:
		return "", toolerr.UnknownTool(name)
	}
}

// validateArgs decodes args and checks them against the tool's input
// schema. Missing arguments are decoded as an empty object.
func (s *Server) validateArgs(name string, args json.RawMessage) (map[string]any, error) {
	a := map[string]any{}
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, &a); err != nil {
			return nil, toolerr.Validation("arguments must be a JSON object: %v", err)
		}
	}

	for _, t := range s.tools {
		if t.Name != name {
			continue
		}
		for _, req := range t.InputSchema.Required {
			if _, ok := a[req]; !ok {
				return nil, toolerr.Validation("%s is required", req)
			}
		}
	}

	if schema, ok := s.schemas[name]; ok {
		if err := schema.Validate(a); err != nil {
			return nil, toolerr.Validation("invalid arguments for %s: %v", name, err)
		}
	}
	return a, nil
}

// handleLookAtScreen sweeps stale captures, takes a screenshot under the
// next index and records that index.
func (s *Server) handleLookAtScreen(ctx context.Context) (string, error) {
	s.dir.Sweep(s.retention)

	if err := s.dir.Ensure(); err != nil {
		return "", fmt.Errorf("failed to create captures directory: %w", err)
	}

	counter := s.dir.Counter()
	idx := counter.Load().Next()
	path := s.dir.ArtifactPath(idx, s.dir.Now())

	if err := s.capturer.Capture(ctx, path); err != nil {
		return "", err
	}
	s.log.Info("Screenshot captured", "index", idx.String(), "path", path)

	var b strings.Builder
	fmt.Fprintf(&b, "Screenshot #%s captured and saved to: %s\n\nTo view this screenshot, I can analyze: %s", idx, path, path)

	// The screenshot exists at this point, so a failure to record the
	// index is reported alongside the result instead of failing the call.
	if err := counter.Save(idx); err != nil {
		s.log.Error("Screenshot counter not saved", "index", idx.String(), "error", err)
		fmt.Fprintf(&b, "\n\nWarning: %v. The next screenshot may reuse #%s.", err, idx)
	}

	s.appendDetails(&b, path)
	return b.String(), nil
}

// handleLookAtImage resolves an image_path reference to a file.
func (s *Server) handleLookAtImage(args map[string]any) (string, error) {
	ref, _ := args["image_path"].(string)
	if ref == "" {
		return "", toolerr.Validation("image_path is required")
	}

	res, err := s.resolver.Resolve(ref)
	if err != nil {
		return "", err
	}
	s.log.Debug("Image resolved", "reference", ref, "path", res.Path)

	var b strings.Builder
	fmt.Fprintf(&b, "%s is ready for viewing at: %s\n\nI can now analyze this image by referencing: %s", res.Label, res.Path, res.Path)
	s.appendDetails(&b, res.Path)
	return b.String(), nil
}

// appendDetails adds the image's dimensions and size when its header can
// be read. Files that are not images are still returned, just without
// details.
func (s *Server) appendDetails(b *strings.Builder, path string) {
	info, err := imaging.Describe(path)
	if err != nil {
		s.log.Debug("No image details", "path", path, "error", err)
		return
	}
	fmt.Fprintf(b, "\n\nImage details: %s", info.Summary())
}
