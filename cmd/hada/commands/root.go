package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const Version = "0.1.0"

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "hada",
	Short: "Home Assistant diagnostics agent",
	Long: `hada is a conversational diagnostic assistant for Home Assistant.

It runs a tool-calling AI agent over a set of diagnostic tools (system
health, Zigbee mesh audit, orphan entities, automation conflicts, battery
and energy reports) backed either by bundled demo data or by a live
Home Assistant diagnostics MCP server.`,
	Version: Version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to a YAML configuration file (optional; HADA_* env vars always apply)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error (overrides config)")
}

// HandleError prints error and exits
func HandleError(err error, msg string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
		os.Exit(1)
	}
}
