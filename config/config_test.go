package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"ipmiserial/ipmi"
)

func TestLoadValidConfigAppliesDefaults(t *testing.T) {
	cfgPath := writeConfig(t, `
bmc:
  server_addr: "10.0.0.5"
  username: "root"
  password: "calvin"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.BMC.ServerAddr != "10.0.0.5" {
		t.Fatalf("ServerAddr = %q, want 10.0.0.5", cfg.BMC.ServerAddr)
	}
	if cfg.BMC.PrivilegeLevel != "ADMINISTRATOR" {
		t.Fatalf("PrivilegeLevel default = %q, want ADMINISTRATOR", cfg.BMC.PrivilegeLevel)
	}
	opts := cfg.TransportOptions()
	if opts.RecvTimeout.Seconds() != 2 {
		t.Fatalf("RecvTimeout default = %v, want 2s", opts.RecvTimeout)
	}
	if opts.DialRetries != 0 {
		t.Fatalf("DialRetries default = %d, want 0", opts.DialRetries)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	cfgPath := writeConfig(t, `
bmc:
  server_addr: "10.0.0.5"
  username: "root"
  password: "calvin"
  privilege_level: "OPERATOR"
retry:
  recv_timeout: 5s
  dial_retries: 3
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	level, err := cfg.PrivilegeLevel()
	if err != nil {
		t.Fatalf("PrivilegeLevel: %v", err)
	}
	if level != ipmi.PrivilegeOperator {
		t.Fatalf("PrivilegeLevel = %v, want PrivilegeOperator", level)
	}
	opts := cfg.TransportOptions()
	if opts.RecvTimeout.Seconds() != 5 {
		t.Fatalf("RecvTimeout = %v, want 5s", opts.RecvTimeout)
	}
	if opts.DialRetries != 3 {
		t.Fatalf("DialRetries = %d, want 3", opts.DialRetries)
	}
}

func TestLoadFailsWithoutServerAddr(t *testing.T) {
	cfgPath := writeConfig(t, `
bmc:
  username: "root"
  password: "calvin"
`)

	_, err := Load(cfgPath)
	if err == nil || !strings.Contains(err.Error(), "bmc.server_addr is required") {
		t.Fatalf("expected missing server_addr error, got %v", err)
	}
}

func TestLoadFailsWithoutUsername(t *testing.T) {
	cfgPath := writeConfig(t, `
bmc:
  server_addr: "10.0.0.5"
  password: "calvin"
`)

	_, err := Load(cfgPath)
	if err == nil || !strings.Contains(err.Error(), "bmc.username is required") {
		t.Fatalf("expected missing username error, got %v", err)
	}
}

func TestLoadFailsOnUnknownPrivilegeLevel(t *testing.T) {
	cfgPath := writeConfig(t, `
bmc:
  server_addr: "10.0.0.5"
  username: "root"
  password: "calvin"
  privilege_level: "SUPERUSER"
`)

	_, err := Load(cfgPath)
	if err == nil || !strings.Contains(err.Error(), "is not one of") {
		t.Fatalf("expected unknown privilege level error, got %v", err)
	}
}

func TestRedactedStringNeverMarshalsThePassword(t *testing.T) {
	cfgPath := writeConfig(t, `
bmc:
  server_addr: "10.0.0.5"
  username: "root"
  password: "super-secret"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if strings.Contains(string(out), "super-secret") {
		t.Fatalf("marshaled config leaked the password: %s", out)
	}
	if !strings.Contains(string(out), "<redacted>") {
		t.Fatalf("marshaled config did not contain the redaction placeholder: %s", out)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}
