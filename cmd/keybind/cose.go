package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyfoundry/keybind/internal/audit"
	"github.com/keyfoundry/keybind/internal/envelope"
	"github.com/keyfoundry/keybind/pkg/pkey"
)

var coseCmd = &cobra.Command{
	Use:   "cose",
	Short: "COSE_Sign1 envelope operations",
	Long:  `Sign payloads into COSE_Sign1 envelopes (RFC 9052) and verify them.`,
}

// cose sign flags
var (
	coseSignKey         string
	coseSignIn          string
	coseSignOut         string
	coseSignContentType string
	coseSignPassphrase  string
)

var coseSignCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign a payload into a COSE_Sign1 envelope",
	Long: `Sign a payload file into a COSE_Sign1 envelope.

The key algorithm selects the COSE algorithm: P-256 maps to ES256, P-384
to ES384, P-521 to ES512 and Ed25519 to EdDSA. DSA and Ed448 keys have no
COSE registration and are rejected.

Examples:
  keybind cose sign --key key.pem --in doc.json --out doc.cose
  keybind cose sign --key key.pem --in doc.json --content-type application/json`,
	RunE: runCoseSign,
}

// cose verify flags
var (
	coseVerifyKey string
	coseVerifyIn  string
	coseVerifyOut string
)

var coseVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a COSE_Sign1 envelope",
	Long: `Verify a COSE_Sign1 envelope against a public key and optionally
extract its payload.

Examples:
  keybind cose verify --key pub.pem --in doc.cose
  keybind cose verify --key pub.pem --in doc.cose --out payload.json`,
	RunE: runCoseVerify,
}

func init() {
	coseSignCmd.Flags().StringVar(&coseSignKey, "key", "", "Private key file (required)")
	coseSignCmd.Flags().StringVar(&coseSignIn, "in", "", "Payload file (required)")
	coseSignCmd.Flags().StringVar(&coseSignOut, "out", "", "Output file (default: stdout)")
	coseSignCmd.Flags().StringVar(&coseSignContentType, "content-type", "", "Payload content type header")
	coseSignCmd.Flags().StringVar(&coseSignPassphrase, "passphrase", "", "Passphrase for encrypted keys (use env:NAME)")
	_ = coseSignCmd.MarkFlagRequired("key")
	_ = coseSignCmd.MarkFlagRequired("in")

	coseVerifyCmd.Flags().StringVar(&coseVerifyKey, "key", "", "Public key file (required)")
	coseVerifyCmd.Flags().StringVar(&coseVerifyIn, "in", "", "Envelope file (required)")
	coseVerifyCmd.Flags().StringVar(&coseVerifyOut, "out", "", "Write the payload to this file")
	_ = coseVerifyCmd.MarkFlagRequired("key")
	_ = coseVerifyCmd.MarkFlagRequired("in")

	coseCmd.AddCommand(coseSignCmd)
	coseCmd.AddCommand(coseVerifyCmd)
}

func runCoseSign(cmd *cobra.Command, args []string) error {
	keyData, err := os.ReadFile(coseSignKey)
	if err != nil {
		return fmt.Errorf("read key file: %w", err)
	}
	payload, err := os.ReadFile(coseSignIn)
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}

	key, err := pkey.LoadKey(keyData, passphraseCallback(coseSignPassphrase))
	if err != nil {
		return err
	}
	defer func() { _ = key.Close() }()

	msg, err := envelope.Sign(key, coseSignContentType, payload)
	if err != nil {
		_ = audit.LogSign(key.Algorithm().String(), false)
		return err
	}
	if err := audit.LogSign(key.Algorithm().String(), true); err != nil {
		return err
	}

	return writeOutput(coseSignOut, msg, 0644)
}

func runCoseVerify(cmd *cobra.Command, args []string) error {
	keyData, err := os.ReadFile(coseVerifyKey)
	if err != nil {
		return fmt.Errorf("read key file: %w", err)
	}
	msg, err := os.ReadFile(coseVerifyIn)
	if err != nil {
		return fmt.Errorf("read envelope: %w", err)
	}

	key, err := pkey.LoadPublicKey(keyData, nil)
	if err != nil {
		// Allow verification with the private key file too
		key, err = pkey.LoadKey(keyData, nil)
		if err != nil {
			return err
		}
	}
	defer func() { _ = key.Close() }()

	payload, err := envelope.Verify(key, msg)
	if err != nil {
		_ = audit.LogVerify(key.Algorithm().String(), false)
		return fmt.Errorf("verification failed: %w", err)
	}
	if err := audit.LogVerify(key.Algorithm().String(), true); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Signature valid")
	if coseVerifyOut != "" {
		return writeOutput(coseVerifyOut, payload, 0644)
	}
	return nil
}
