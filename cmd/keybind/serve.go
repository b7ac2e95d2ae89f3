package main

import (
	"github.com/spf13/cobra"

	"github.com/keyfoundry/keybind/internal/api/server"
	"github.com/keyfoundry/keybind/internal/audit"
	"github.com/keyfoundry/keybind/internal/config"
)

// serve flags
var (
	serveAddr   string
	serveConfig string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP facade",
	Long: `Start the HTTP facade exposing key inspection, digest computation
and COSE envelope verification over a REST API.

Endpoints:
  GET  /health
  GET  /ready
  POST /api/v1/keys/inspect
  POST /api/v1/keys/verify
  POST /api/v1/digest
  POST /api/v1/envelopes/verify

Examples:
  keybind serve --addr :8443
  keybind serve --config keybind.yaml`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default :8443)")
	serveCmd.Flags().StringVar(&serveConfig, "config", "", "YAML config file")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := serveAddr

	if serveConfig != "" {
		cfg, err := config.Load(serveConfig)
		if err != nil {
			return err
		}
		if addr == "" {
			addr = cfg.Listen
		}
		if cfg.AuditLog != "" && !audit.Enabled() {
			if err := audit.InitFile(cfg.AuditLog); err != nil {
				return err
			}
		}
	}

	srv := server.New(&server.Config{Addr: addr}, version)
	return srv.Start()
}
