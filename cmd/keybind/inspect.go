package main

import (
	"crypto/ecdsa"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyfoundry/keybind/pkg/pkey"
)

// inspect flags
var (
	inspectPublicOnly bool
	inspectPassphrase string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Inspect a PEM key file",
	Long: `Read a PEM key file and print its algorithm, curve and key type.

With --public-only the file is parsed as a public key structure; private
key containers are rejected in that mode.

Examples:
  keybind inspect key.pem
  keybind inspect --public-only pub.pem
  keybind inspect --passphrase env:KEY_PASS encrypted.pem`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectPublicOnly, "public-only", false, "Parse as a public key structure")
	inspectCmd.Flags().StringVar(&inspectPassphrase, "passphrase", "", "Passphrase for encrypted keys (use env:NAME)")
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read key file: %w", err)
	}

	cb := passphraseCallback(inspectPassphrase)

	var key *pkey.PKey
	if inspectPublicOnly {
		key, err = pkey.LoadPublicKey(data, cb)
	} else {
		key, err = pkey.LoadKey(data, cb)
	}
	if err != nil {
		return err
	}
	defer func() { _ = key.Close() }()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File:      %s\n", args[0])
	fmt.Fprintf(out, "Algorithm: %s\n", key.Algorithm())
	if pub, ok := key.Public().(*ecdsa.PublicKey); ok {
		fmt.Fprintf(out, "Curve:     %s\n", pub.Curve.Params().Name)
	}
	if key.HasPrivate() {
		fmt.Fprintln(out, "Type:      private key")
	} else {
		fmt.Fprintln(out, "Type:      public key")
	}
	return nil
}
