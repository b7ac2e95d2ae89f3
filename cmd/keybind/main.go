// Command keybind is the CLI for the keybind key-handling toolkit.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/keyfoundry/keybind/internal/audit"
	"github.com/keyfoundry/keybind/internal/hsm"
)

// Build-time variables (injected by GoReleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags
var auditLogPath string

func main() {
	// Setup signal handler for clean PKCS#11 shutdown
	setupSignalHandler()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		hsm.ClosePools()
		os.Exit(1)
	}

	hsm.ClosePools()
}

// setupSignalHandler cleans up PKCS#11 resources on SIGINT/SIGTERM.
// This prevents crashes during program exit when HSM sessions are active.
func setupSignalHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		hsm.ClosePools()
		os.Exit(0)
	}()
}

var rootCmd = &cobra.Command{
	Use:   "keybind",
	Short: "keybind - asymmetric key handling toolkit",
	Long: `keybind is a command-line tool for working with asymmetric keys:
generating key pairs, inspecting and re-encoding PEM key material,
computing digests, and signing or verifying COSE_Sign1 envelopes.

Supported key algorithms:
  EC:     P-224, P-256, P-384, P-521
  EdDSA:  Ed25519, Ed448
  RSA:    rsa-2048, rsa-3072, rsa-4096
  DSA:    legacy parameter import and verification

Examples:
  # Generate a key pair
  keybind key gen --algorithm P-256 --out key.pem

  # Extract the public key
  keybind key pub --in key.pem --out pub.pem

  # Inspect a key
  keybind inspect key.pem

  # Compute a digest
  keybind digest --algorithm sha3-256 file.bin

  # Sign a file into a COSE envelope
  keybind cose sign --key key.pem --in doc.json --out doc.cose`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Check for audit log path from environment if not set via flag
		if auditLogPath == "" {
			auditLogPath = os.Getenv("KEYBIND_AUDIT_LOG")
		}

		if auditLogPath != "" {
			if err := audit.InitFile(auditLogPath); err != nil {
				return fmt.Errorf("failed to initialize audit log: %w", err)
			}
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return audit.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&auditLogPath, "audit-log", "",
		"Path to audit log file (or set KEYBIND_AUDIT_LOG env var)")

	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(coseCmd)
	rootCmd.AddCommand(hsmCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(serveCmd)
}
