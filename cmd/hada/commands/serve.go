package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/apiserver"
	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/pkg/logger"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the HTTP API server exposing the diagnostic agent.

Endpoints:
  POST /v1/chat           one chat turn against the agent
  POST /v1/report         run the full diagnostic suite
  POST /v1/session/reset  start a fresh conversation
  POST /v1/configure      switch between demo and live mode
  GET  /v1/tools          list the registered tools
  GET  /health            health check
  GET  /metrics           Prometheus metrics

Examples:
  # Serve demo data on the default port
  hada serve

  # Serve a live backend
  HADA_MODE=live HADA_HA_URL=http://homeassistant.local:8086/mcp hada serve`,
	RunE: runServe,
}

var servePort int

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 0,
		"Port to listen on (overrides config; 0 uses the configured api_port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, err := buildRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	port := rt.cfg.APIPort
	if servePort != 0 {
		port = servePort
	}

	server := apiserver.New(port, rt.manager, rt.rebuild, logger.Component("apiserver"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		fmt.Printf("Received %s, shutting down...\n", sig)
	}

	if err := server.Stop(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return <-errCh
}
