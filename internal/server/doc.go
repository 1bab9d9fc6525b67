// Package server implements the MCP (Model Context Protocol) server that lets
// an AI assistant look at the user's screen.
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
// Requests are processed one at a time, in arrival order.
//
// # Available Tools
//
//   - look_at_screen: Capture the desktop into the captures directory as
//     NNN_screenshot_<timestamp>.png and return the path.
//   - look_at_image: Resolve image_path, either a file path or a screenshot
//     number such as "521" or "#521", and return the path.
//
// Responses are text only. They point the client at a file on disk and
// never carry image data; the client loads the file itself.
//
// # Error Handling
//
// Tool failures are returned as JSON-RPC errors:
//   - -32602 (invalid params): missing or malformed arguments, screenshot
//     or image file not found
//   - -32601 (method not found): unknown method or tool name
//   - -32603 (internal error): capture failures and anything else, with the
//     message prefixed "Tool execution failed: "
//
// # Usage
//
//	srv, err := server.New(server.Options{
//	    Dir:       captures.NewDir(dir),
//	    Capturer:  screen.NewInvoker(mech, 0, logger),
//	    Retention: captures.DefaultRetention,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(ctx, os.Stdin, os.Stdout); err != nil {
//	    log.Fatal(err)
//	}
package server
