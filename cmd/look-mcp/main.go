package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/look-mcp/internal/captures"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const longHelp = `look-mcp exposes two MCP tools over stdin/stdout:
  - look_at_screen: capture the desktop into a numbered screenshot
  - look_at_image:  resolve a file path or screenshot number ("521", "#521")

Configure it in your MCP client (e.g., Claude Desktop).

Environment variables:
  LOOK_MCP_CAPTURES_DIR      Directory for screenshots
  LOOK_MCP_CAPTURE_COMMAND   Capture program and arguments (path is appended)
  LOOK_MCP_SUCCESS_PATTERN   Capture stderr text that does not mean failure
  LOOK_MCP_RETENTION         Delete screenshots older than this (e.g. 1h, 0 = never)
  LOOK_MCP_CAPTURE_TIMEOUT   Abort captures taking longer than this (0 = never)
  LOOK_MCP_LOG_LEVEL         debug, info, warn or error`

// newRootCmd builds the command tree: the root runs the server.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "look-mcp",
		Short:         "MCP server that lets an AI assistant look at your screen",
		Long:          longHelp,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	flags := rootCmd.Flags()
	flags.String("config", "", "Path to a YAML config file")
	flags.String("captures-dir", "", "Directory for screenshots (default: captures beside the install root)")
	flags.StringSlice("capture-command", nil, "Capture program and arguments, comma separated (the path is appended)")
	flags.Duration("retention", captures.DefaultRetention, "Delete screenshots older than this before each capture (0 = never)")
	flags.Duration("capture-timeout", 0, "Abort captures taking longer than this (0 = never)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd)
		},
	})
	rootCmd.SetVersionTemplate(fmt.Sprintf("look-mcp %s\n  Build time: %s\n  Git commit: %s\n", Version, BuildTime, GitCommit))

	return rootCmd
}

func printVersion(cmd *cobra.Command) {
	fmt.Fprintf(cmd.OutOrStdout(), "look-mcp %s\n", Version)
	fmt.Fprintf(cmd.OutOrStdout(), "  Build time: %s\n", BuildTime)
	fmt.Fprintf(cmd.OutOrStdout(), "  Git commit: %s\n", GitCommit)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "look-mcp: %v\n", err)
		os.Exit(1)
	}
}
