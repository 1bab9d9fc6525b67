package server

import "github.com/google/jsonschema-go/jsonschema"

// Tool names.
const (
	ToolLookAtScreen = "look_at_screen"
	ToolLookAtImage  = "look_at_image"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        ToolLookAtScreen,
			Description: "Capture a screenshot of the current desktop (saves to captures folder, returns path for analysis)",
			InputSchema: &jsonschema.Schema{
				Type:       "object",
				Properties: map[string]*jsonschema.Schema{},
			},
		},
		{
			Name:        ToolLookAtImage,
			Description: "Get the path to view a specific image file or screenshot by number (does not send image data)",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"image_path": {
						Type:        "string",
						Description: "Path to the image file to view, or a screenshot number (e.g., '521' or '#521')",
					},
				},
				Required: []string{"image_path"},
			},
		},
	}
}
