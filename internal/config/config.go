// Package config loads the YAML configuration shared by the CLI and the
// HTTP facade.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration file.
type Config struct {
	// Listen is the address the HTTP facade binds to.
	Listen string `yaml:"listen"`

	// AuditLog is the path of the JSONL audit trail. Empty disables it.
	AuditLog string `yaml:"audit_log"`

	// HSM configures the optional PKCS#11 public key source.
	HSM *HSMConfig `yaml:"hsm"`
}

// HSMConfig represents the YAML configuration for an HSM.
type HSMConfig struct {
	Type   string         `yaml:"type"`
	PKCS11 PKCS11Settings `yaml:"pkcs11"`
}

// PKCS11Settings holds PKCS#11 specific configuration.
type PKCS11Settings struct {
	// Lib is the path to the PKCS#11 library (.so/.dylib/.dll)
	Lib string `yaml:"lib"`

	// Token identifies the token by label (recommended)
	Token string `yaml:"token"`

	// TokenSerial identifies the token by serial number (more precise)
	TokenSerial string `yaml:"token_serial"`

	// Slot identifies the token by slot ID (less portable)
	Slot *uint `yaml:"slot"`

	// PinEnv is the name of the environment variable containing the PIN
	PinEnv string `yaml:"pin_env"`
}

// Load reads a configuration file and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration, including the HSM section when set.
func (c *Config) Validate() error {
	if c.Listen == "" {
		c.Listen = ":8443"
	}
	if c.HSM != nil {
		return c.HSM.Validate()
	}
	return nil
}

// Validate checks that the HSM configuration is usable.
func (c *HSMConfig) Validate() error {
	if c.Type != "pkcs11" {
		return fmt.Errorf("unsupported HSM type: %s (only 'pkcs11' is supported)", c.Type)
	}

	if c.PKCS11.Lib == "" {
		return fmt.Errorf("pkcs11.lib is required")
	}

	// At least one token identification method is required
	if c.PKCS11.Token == "" && c.PKCS11.TokenSerial == "" && c.PKCS11.Slot == nil {
		return fmt.Errorf("at least one of pkcs11.token, pkcs11.token_serial, or pkcs11.slot is required")
	}

	if c.PKCS11.PinEnv == "" {
		return fmt.Errorf("pkcs11.pin_env is required (PIN must be provided via environment variable)")
	}

	return nil
}

// GetPIN retrieves the PIN from the environment variable.
func (c *HSMConfig) GetPIN() (string, error) {
	pin := os.Getenv(c.PKCS11.PinEnv)
	if pin == "" {
		return "", fmt.Errorf("environment variable %s is not set or empty", c.PKCS11.PinEnv)
	}
	return pin, nil
}

// ResolvePassphrase resolves a passphrase string from the CLI or a config
// file. The "env:NAME" form reads the value from the environment; anything
// else is taken literally. Empty input yields nil.
func ResolvePassphrase(passphrase string) []byte {
	if passphrase == "" {
		return nil
	}
	if len(passphrase) > 4 && passphrase[:4] == "env:" {
		envValue := os.Getenv(passphrase[4:])
		return []byte(envValue)
	}
	return []byte(passphrase)
}
