package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyfoundry/keybind/internal/audit"
	"github.com/keyfoundry/keybind/internal/config"
	"github.com/keyfoundry/keybind/pkg/pkey"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Key management commands",
	Long:  `Commands for generating and converting cryptographic keys.`,
}

// key gen flags
var (
	keyGenAlgorithm  string
	keyGenOut        string
	keyGenPassphrase string
)

var keyGenCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a cryptographic key pair",
	Long: `Generate a new cryptographic key pair and save it as PEM.

Supported algorithms:
  P-224, P-256, P-384, P-521  - ECDSA (curve aliases like prime256v1 work too)
  ed25519, ed448              - EdDSA
  rsa-2048, rsa-3072, rsa-4096

The private key can be encrypted with --passphrase. The "env:NAME" form
reads the passphrase from an environment variable.

Examples:
  keybind key gen --algorithm P-384 --out key.pem
  keybind key gen --algorithm ed448 --out key.pem --passphrase env:KEY_PASS`,
	RunE: runKeyGen,
}

// key pub flags
var (
	keyPubIn         string
	keyPubOut        string
	keyPubPassphrase string
)

var keyPubCmd = &cobra.Command{
	Use:   "pub",
	Short: "Extract the public key from a private key",
	Long: `Read a PEM private key and write the corresponding public key.

Examples:
  keybind key pub --in key.pem --out pub.pem
  keybind key pub --in key.pem --passphrase env:KEY_PASS`,
	RunE: runKeyPub,
}

func init() {
	keyGenCmd.Flags().StringVar(&keyGenAlgorithm, "algorithm", "P-256", "Key algorithm")
	keyGenCmd.Flags().StringVar(&keyGenOut, "out", "", "Output file (default: stdout)")
	keyGenCmd.Flags().StringVar(&keyGenPassphrase, "passphrase", "", "Encrypt the private key (use env:NAME to read from environment)")

	keyPubCmd.Flags().StringVar(&keyPubIn, "in", "", "Input private key file (required)")
	keyPubCmd.Flags().StringVar(&keyPubOut, "out", "", "Output file (default: stdout)")
	keyPubCmd.Flags().StringVar(&keyPubPassphrase, "passphrase", "", "Passphrase for encrypted input (use env:NAME)")
	_ = keyPubCmd.MarkFlagRequired("in")

	keyCmd.AddCommand(keyGenCmd)
	keyCmd.AddCommand(keyPubCmd)
}

func runKeyGen(cmd *cobra.Command, args []string) error {
	key, err := pkey.Generate(keyGenAlgorithm)
	if err != nil {
		_ = audit.LogKeyGenerated(keyGenAlgorithm, "", false)
		return err
	}
	defer func() { _ = key.Close() }()

	pemData, err := key.PrivatePEM(config.ResolvePassphrase(keyGenPassphrase), nil)
	if err != nil {
		return err
	}

	if err := writeOutput(keyGenOut, pemData, 0600); err != nil {
		return err
	}
	if err := audit.LogKeyGenerated(key.Algorithm().String(), keyGenAlgorithm, true); err != nil {
		return err
	}

	if keyGenOut != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Key written to %s\n", keyGenOut)
	}
	return nil
}

func runKeyPub(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(keyPubIn)
	if err != nil {
		return fmt.Errorf("read key file: %w", err)
	}

	key, err := pkey.LoadKey(data, passphraseCallback(keyPubPassphrase))
	if err != nil {
		_ = audit.LogKeyLoaded("", keyPubIn, false, false)
		return err
	}
	defer func() { _ = key.Close() }()

	pubPEM, err := key.PublicPEM()
	if err != nil {
		return err
	}

	if err := writeOutput(keyPubOut, pubPEM, 0644); err != nil {
		return err
	}
	return audit.LogKeyLoaded(key.Algorithm().String(), keyPubIn, false, true)
}

// passphraseCallback builds a callback from a CLI passphrase flag, or nil
// when the flag is empty.
func passphraseCallback(flag string) pkey.PassphraseFunc {
	if flag == "" {
		return nil
	}
	return func(confirm bool) ([]byte, error) {
		return config.ResolvePassphrase(flag), nil
	}
}

// writeOutput writes data to path, or stdout when path is empty.
func writeOutput(path string, data []byte, mode os.FileMode) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
