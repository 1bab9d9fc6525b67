package server

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/look-mcp/internal/captures"
	"github.com/ironsheep/look-mcp/internal/toolerr"
)

var fixedNow = time.Date(2026, 10, 19, 8, 15, 30, 123_000_000, time.UTC)

// fakeCapturer records calls and writes a small PNG unless err is set.
type fakeCapturer struct {
	calls []string
	err   error
}

func (f *fakeCapturer) Capture(ctx context.Context, path string) error {
	f.calls = append(f.calls, path)
	if f.err != nil {
		return f.err
	}
	return encodeTestPNG(path, 64, 48)
}

func encodeTestPNG(path string, width, height int) error {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{0, 128, 255, 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func writeTestPNG(t *testing.T, path string, width, height int) {
	t.Helper()
	require.NoError(t, encodeTestPNG(path, width, height))
}

func newTestServer(t *testing.T, c Capturer) (*Server, *captures.Dir) {
	t.Helper()
	dir := captures.NewDir(filepath.Join(t.TempDir(), "captures"), captures.WithClock(func() time.Time { return fixedNow }))
	s, err := New(Options{
		Dir:       dir,
		Capturer:  c,
		Retention: captures.DefaultRetention,
	})
	require.NoError(t, err)
	return s, dir
}

func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()
	params := map[string]interface{}{"name": name}
	if args != nil {
		params["arguments"] = args
	}
	paramsJSON, err := json.Marshal(params)
	require.NoError(t, err)

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	require.NotNil(t, resp)
	return resp
}

func resultText(t *testing.T, resp *MCPResponse) string {
	t.Helper()
	require.Nil(t, resp.Error, "unexpected error: %+v", resp.Error)
	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	content, ok := result["content"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, content, 1)
	assert.Equal(t, "text", content[0]["type"])
	text, ok := content[0]["text"].(string)
	require.True(t, ok)
	return text
}

func readCounter(t *testing.T, dir *captures.Dir) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir.Path(), captures.CounterFile))
	require.NoError(t, err)
	return string(data)
}

func TestLookAtScreen_FirstCapture(t *testing.T) {
	fc := &fakeCapturer{}
	s, dir := newTestServer(t, fc)

	text := resultText(t, callTool(t, s, ToolLookAtScreen, nil))

	want := filepath.Join(dir.Path(), "001_screenshot_2026-10-19T08-15-30-123Z.png")
	require.Equal(t, []string{want}, fc.calls)
	assert.True(t, strings.HasPrefix(text, "Screenshot #001 captured and saved to: "+want))
	assert.Contains(t, text, "To view this screenshot, I can analyze: "+want)
	assert.Contains(t, text, "Image details: 64x48 PNG")
	assert.Equal(t, "1", readCounter(t, dir))
}

func TestLookAtScreen_ArtifactNamePattern(t *testing.T) {
	s, dir := newTestServer(t, &fakeCapturer{})
	resultText(t, callTool(t, s, ToolLookAtScreen, map[string]interface{}{}))

	entries, err := os.ReadDir(dir.Path())
	require.NoError(t, err)

	pattern := regexp.MustCompile(`^001_screenshot_\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2}-\d{3}Z\.png$`)
	var artifacts []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".png") {
			artifacts = append(artifacts, e.Name())
		}
	}
	require.Len(t, artifacts, 1)
	assert.Regexp(t, pattern, artifacts[0])
}

func TestLookAtScreen_Increments(t *testing.T) {
	s, dir := newTestServer(t, &fakeCapturer{})

	resultText(t, callTool(t, s, ToolLookAtScreen, nil))
	text := resultText(t, callTool(t, s, ToolLookAtScreen, nil))

	assert.True(t, strings.HasPrefix(text, "Screenshot #002 "))
	assert.Equal(t, "2", readCounter(t, dir))
}

func TestLookAtScreen_WrapsAfter999(t *testing.T) {
	fc := &fakeCapturer{}
	s, dir := newTestServer(t, fc)
	require.NoError(t, dir.Ensure())
	require.NoError(t, os.WriteFile(filepath.Join(dir.Path(), captures.CounterFile), []byte("999"), 0o644))

	text := resultText(t, callTool(t, s, ToolLookAtScreen, nil))

	require.Len(t, fc.calls, 1)
	assert.True(t, strings.HasPrefix(filepath.Base(fc.calls[0]), "001_"))
	assert.True(t, strings.HasPrefix(text, "Screenshot #001 "))
	assert.Equal(t, "1", readCounter(t, dir))
}

func TestLookAtScreen_SweepsBeforeCapture(t *testing.T) {
	s, dir := newTestServer(t, &fakeCapturer{})
	require.NoError(t, dir.Ensure())

	stale := filepath.Join(dir.Path(), "001_screenshot_old.png")
	writeTestPNG(t, stale, 2, 2)
	old := fixedNow.Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	resultText(t, callTool(t, s, ToolLookAtScreen, nil))

	assert.NoFileExists(t, stale)
	found, err := dir.Find(1)
	require.NoError(t, err)
	assert.NotEqual(t, stale, found)
}

func TestLookAtScreen_CaptureFailure(t *testing.T) {
	fc := &fakeCapturer{err: toolerr.Capture(errors.New("cannot open display"))}
	s, dir := newTestServer(t, fc)

	resp := callTool(t, s, ToolLookAtScreen, nil)

	require.NotNil(t, resp.Error)
	assert.Equal(t, -32603, resp.Error.Code)
	assert.Equal(t, "Tool execution failed: Screenshot failed: cannot open display", resp.Error.Message)
	_, err := os.Stat(filepath.Join(dir.Path(), captures.CounterFile))
	assert.True(t, os.IsNotExist(err), "counter must not advance when the capture fails")
}

func TestLookAtScreen_UntaggedFailureIsInternal(t *testing.T) {
	s, _ := newTestServer(t, &fakeCapturer{err: errors.New("boom")})

	resp := callTool(t, s, ToolLookAtScreen, nil)

	require.NotNil(t, resp.Error)
	assert.Equal(t, -32603, resp.Error.Code)
	assert.Equal(t, "Tool execution failed: boom", resp.Error.Message)
}

func TestLookAtScreen_CounterSaveFailureStillSucceeds(t *testing.T) {
	s, dir := newTestServer(t, &fakeCapturer{})
	// A directory where the counter file should be makes the save fail.
	require.NoError(t, os.MkdirAll(filepath.Join(dir.Path(), captures.CounterFile), 0o755))

	text := resultText(t, callTool(t, s, ToolLookAtScreen, nil))

	assert.True(t, strings.HasPrefix(text, "Screenshot #001 captured"))
	assert.Contains(t, text, "Warning: failed to save screenshot counter")
	_, err := dir.Find(1)
	assert.NoError(t, err)
}

func TestLookAtImage_MissingArgument(t *testing.T) {
	s, _ := newTestServer(t, &fakeCapturer{})

	for name, args := range map[string]interface{}{
		"no arguments":   nil,
		"empty object":   map[string]interface{}{},
		"empty string":   map[string]interface{}{"image_path": ""},
		"wrong type":     map[string]interface{}{"image_path": 521},
		"non-object arg": []string{"521"},
	} {
		t.Run(name, func(t *testing.T) {
			resp := callTool(t, s, ToolLookAtImage, args)
			require.NotNil(t, resp.Error)
			assert.Equal(t, -32602, resp.Error.Code)
		})
	}
}

func TestLookAtImage_MissingArgumentMessage(t *testing.T) {
	s, _ := newTestServer(t, &fakeCapturer{})

	resp := callTool(t, s, ToolLookAtImage, map[string]interface{}{})

	require.NotNil(t, resp.Error)
	assert.Equal(t, "image_path is required", resp.Error.Message)
}

func TestLookAtImage_NonExistentFile(t *testing.T) {
	s, _ := newTestServer(t, &fakeCapturer{})

	resp := callTool(t, s, ToolLookAtImage, map[string]interface{}{"image_path": "nonexistent.png"})

	require.NotNil(t, resp.Error)
	assert.Equal(t, -32602, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "Image file not found: nonexistent.png")
}

func TestLookAtImage_ByIndex(t *testing.T) {
	s, dir := newTestServer(t, &fakeCapturer{})
	resultText(t, callTool(t, s, ToolLookAtScreen, nil))
	want, err := dir.Find(1)
	require.NoError(t, err)

	for _, ref := range []string{"1", "001", "#1", "#001"} {
		t.Run(ref, func(t *testing.T) {
			text := resultText(t, callTool(t, s, ToolLookAtImage, map[string]interface{}{"image_path": ref}))
			assert.True(t, strings.HasPrefix(text, "Screenshot #001 is ready for viewing at: "+want))
			assert.Contains(t, text, "I can now analyze this image by referencing: "+want)
		})
	}
}

func TestLookAtImage_IndexNotFound(t *testing.T) {
	s, _ := newTestServer(t, &fakeCapturer{})

	resp := callTool(t, s, ToolLookAtImage, map[string]interface{}{"image_path": "#42"})

	require.NotNil(t, resp.Error)
	assert.Equal(t, -32602, resp.Error.Code)
	assert.Equal(t, "Screenshot #042 not found", resp.Error.Message)
}

func TestLookAtImage_LiteralPath(t *testing.T) {
	s, _ := newTestServer(t, &fakeCapturer{})
	path := filepath.Join(t.TempDir(), "foo.png")
	writeTestPNG(t, path, 10, 20)

	text := resultText(t, callTool(t, s, ToolLookAtImage, map[string]interface{}{"image_path": path}))

	assert.True(t, strings.HasPrefix(text, "Image: foo.png is ready for viewing at: "+path))
	assert.Contains(t, text, "Image details: 10x20 PNG")
}

func TestLookAtImage_NonImageFileHasNoDetails(t *testing.T) {
	s, _ := newTestServer(t, &fakeCapturer{})
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	text := resultText(t, callTool(t, s, ToolLookAtImage, map[string]interface{}{"image_path": path}))

	assert.True(t, strings.HasPrefix(text, "Image: notes.txt is ready"))
	assert.NotContains(t, text, "Image details")
}

func TestToolsCall_UnknownTool(t *testing.T) {
	s, _ := newTestServer(t, &fakeCapturer{})

	resp := callTool(t, s, "foo", map[string]interface{}{})

	require.NotNil(t, resp.Error)
	assert.Equal(t, -32601, resp.Error.Code)
	assert.Equal(t, "Unknown tool: foo", resp.Error.Message)
}

func TestToolsCall_InvalidParams(t *testing.T) {
	s, _ := newTestServer(t, &fakeCapturer{})

	resp := s.handleToolsCall(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`"not an object"`),
	})

	require.NotNil(t, resp.Error)
	assert.Equal(t, -32602, resp.Error.Code)
}

func TestToolsCall_ResponsesCarryNoImageData(t *testing.T) {
	s, _ := newTestServer(t, &fakeCapturer{})

	resp := callTool(t, s, ToolLookAtScreen, nil)
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	assert.NotContains(t, string(data), `"type":"image"`)
	assert.NotContains(t, string(data), "base64")
}
