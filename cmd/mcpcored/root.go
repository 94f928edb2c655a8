package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
)

// configPath is the custom config file path (empty for default).
var configPath string

var rootCmd = &cobra.Command{
	Use:   "mcpcored",
	Short: "A standalone Model Context Protocol server",
	Long: `mcpcored hosts tools, prompts, and resources behind the Model
Context Protocol's JSON-RPC 2.0 dialect.

Use 'mcpcored serve' to run as an MCP server (spawned by Claude Code or
another MCP-speaking host). Use 'mcpcored init' to write a starter config
file, and 'mcpcored monitor' to watch live session activity.`,
	Version: fmt.Sprintf("%s (commit: %s)", version, commit),
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to config file (default: ~/.config/mcpcored/config.json)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
