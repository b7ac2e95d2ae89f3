package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyfoundry/keybind/internal/audit"
	"github.com/keyfoundry/keybind/internal/config"
	"github.com/keyfoundry/keybind/internal/hsm"
	"github.com/keyfoundry/keybind/pkg/pkey"
)

var hsmCmd = &cobra.Command{
	Use:   "hsm",
	Short: "HSM (PKCS#11) commands",
	Long: `Commands for reading public keys from PKCS#11 tokens.

Private keys never leave the token; keybind only reads public key
objects. HSM support requires a build with CGO enabled.`,
}

// hsm slots flags
var hsmSlotsLib string

var hsmSlotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "List slots of a PKCS#11 module",
	Long: `List the slots and tokens of a PKCS#11 module.

Examples:
  keybind hsm slots --lib /usr/lib/softhsm/libsofthsm2.so`,
	RunE: runHSMSlots,
}

// hsm export flags
var (
	hsmExportConfig string
	hsmExportLabel  string
	hsmExportID     string
	hsmExportOut    string
)

var hsmExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a public key from an HSM token",
	Long: `Read a public key object from a PKCS#11 token and write it as PEM.

The HSM is described by a YAML config file:

  hsm:
    type: pkcs11
    pkcs11:
      lib: /usr/lib/softhsm/libsofthsm2.so
      token: my-token
      pin_env: HSM_PIN

Examples:
  export HSM_PIN="****"
  keybind hsm export --config keybind.yaml --key-label my-key --out pub.pem`,
	RunE: runHSMExport,
}

func init() {
	hsmSlotsCmd.Flags().StringVar(&hsmSlotsLib, "lib", "", "Path to the PKCS#11 module (required)")
	_ = hsmSlotsCmd.MarkFlagRequired("lib")

	hsmExportCmd.Flags().StringVar(&hsmExportConfig, "config", "", "YAML config file with an hsm section (required)")
	hsmExportCmd.Flags().StringVar(&hsmExportLabel, "key-label", "", "CKA_LABEL of the key")
	hsmExportCmd.Flags().StringVar(&hsmExportID, "key-id", "", "CKA_ID of the key (hex)")
	hsmExportCmd.Flags().StringVar(&hsmExportOut, "out", "", "Output file (default: stdout)")
	_ = hsmExportCmd.MarkFlagRequired("config")

	hsmCmd.AddCommand(hsmSlotsCmd)
	hsmCmd.AddCommand(hsmExportCmd)
}

func runHSMSlots(cmd *cobra.Command, args []string) error {
	slots, err := hsm.ListSlots(hsmSlotsLib)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, s := range slots {
		fmt.Fprintf(out, "Slot %d: %s\n", s.ID, s.Description)
		if s.HasToken {
			fmt.Fprintf(out, "  Token:  %s\n", s.TokenLabel)
			fmt.Fprintf(out, "  Serial: %s\n", s.TokenSerial)
		} else {
			fmt.Fprintln(out, "  (no token)")
		}
	}
	return nil
}

func runHSMExport(cmd *cobra.Command, args []string) error {
	if hsmExportLabel == "" && hsmExportID == "" {
		return fmt.Errorf("at least one of --key-label or --key-id is required")
	}

	cfg, err := config.Load(hsmExportConfig)
	if err != nil {
		return err
	}
	hsmCfg, err := hsm.FromConfig(cfg.HSM, hsmExportLabel, hsmExportID)
	if err != nil {
		return err
	}

	pub, err := hsm.LoadPublicKey(*hsmCfg)
	if err != nil {
		_ = audit.LogKeyImported("", "hsm", false)
		return err
	}

	key, err := pkey.FromPublicKey(pub)
	if err != nil {
		return err
	}
	defer func() { _ = key.Close() }()

	pemData, err := key.PublicPEM()
	if err != nil {
		return err
	}
	if err := audit.LogKeyImported(key.Algorithm().String(), "hsm", true); err != nil {
		return err
	}

	if hsmExportOut != "" {
		fmt.Fprintf(os.Stderr, "Public key written to %s\n", hsmExportOut)
	}
	return writeOutput(hsmExportOut, pemData, 0644)
}
