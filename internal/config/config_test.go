package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestU_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
listen: ":9443"
audit_log: /var/log/keybind/audit.jsonl
hsm:
  type: pkcs11
  pkcs11:
    lib: /usr/lib/softhsm/libsofthsm2.so
    token: test-token
    pin_env: KEYBIND_HSM_PIN
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":9443" {
		t.Errorf("Listen = %q, want :9443", cfg.Listen)
	}
	if cfg.AuditLog != "/var/log/keybind/audit.jsonl" {
		t.Errorf("AuditLog = %q", cfg.AuditLog)
	}
	if cfg.HSM == nil || cfg.HSM.PKCS11.Token != "test-token" {
		t.Error("HSM section not parsed")
	}
}

func TestU_Load_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load succeeded on a missing file")
	}
}

func TestU_Load_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("listen: [unterminated"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load succeeded on malformed YAML")
	}
}

func TestU_Config_Validate(t *testing.T) {
	slot := uint(3)

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "[Unit] config: empty listen gets default",
			cfg:  Config{},
		},
		{
			name: "[Unit] config: hsm by token label",
			cfg: Config{HSM: &HSMConfig{Type: "pkcs11", PKCS11: PKCS11Settings{
				Lib: "/lib/p11.so", Token: "tok", PinEnv: "PIN",
			}}},
		},
		{
			name: "[Unit] config: hsm by slot",
			cfg: Config{HSM: &HSMConfig{Type: "pkcs11", PKCS11: PKCS11Settings{
				Lib: "/lib/p11.so", Slot: &slot, PinEnv: "PIN",
			}}},
		},
		{
			name: "[Unit] config: unsupported hsm type",
			cfg: Config{HSM: &HSMConfig{Type: "tpm", PKCS11: PKCS11Settings{
				Lib: "/lib/p11.so", Token: "tok", PinEnv: "PIN",
			}}},
			wantErr: true,
		},
		{
			name: "[Unit] config: hsm missing lib",
			cfg: Config{HSM: &HSMConfig{Type: "pkcs11", PKCS11: PKCS11Settings{
				Token: "tok", PinEnv: "PIN",
			}}},
			wantErr: true,
		},
		{
			name: "[Unit] config: hsm no token selector",
			cfg: Config{HSM: &HSMConfig{Type: "pkcs11", PKCS11: PKCS11Settings{
				Lib: "/lib/p11.so", PinEnv: "PIN",
			}}},
			wantErr: true,
		},
		{
			name: "[Unit] config: hsm missing pin_env",
			cfg: Config{HSM: &HSMConfig{Type: "pkcs11", PKCS11: PKCS11Settings{
				Lib: "/lib/p11.so", Token: "tok",
			}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && tt.cfg.Listen == "" {
				t.Error("Validate did not default Listen")
			}
		})
	}
}

func TestU_GetPIN(t *testing.T) {
	cfg := &HSMConfig{Type: "pkcs11", PKCS11: PKCS11Settings{PinEnv: "KEYBIND_TEST_PIN"}}

	if _, err := cfg.GetPIN(); err == nil {
		t.Error("GetPIN succeeded with the variable unset")
	}

	t.Setenv("KEYBIND_TEST_PIN", "1234")
	pin, err := cfg.GetPIN()
	if err != nil {
		t.Fatalf("GetPIN: %v", err)
	}
	if pin != "1234" {
		t.Errorf("pin = %q, want 1234", pin)
	}
}

func TestU_ResolvePassphrase(t *testing.T) {
	t.Setenv("KEYBIND_TEST_PASS", "from-env")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"[Unit] passphrase: empty", "", ""},
		{"[Unit] passphrase: literal", "hunter2", "hunter2"},
		{"[Unit] passphrase: env reference", "env:KEYBIND_TEST_PASS", "from-env"},
		{"[Unit] passphrase: env unset", "env:KEYBIND_TEST_UNSET", ""},
		{"[Unit] passphrase: short literal", "env", "env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePassphrase(tt.input)
			if tt.want == "" && tt.input == "" {
				if got != nil {
					t.Errorf("ResolvePassphrase(%q) = %q, want nil", tt.input, got)
				}
				return
			}
			if string(got) != tt.want {
				t.Errorf("ResolvePassphrase(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
