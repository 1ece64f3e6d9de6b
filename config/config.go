package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"ipmiserial/ipmi"
)

// Config is the on-disk configuration for a single IPMI session
// establishment run: which BMC to dial, how long to wait for it, and
// the credentials to authenticate with.
type Config struct {
	BMC   BMCConfig   `yaml:"bmc"`
	Retry RetryConfig `yaml:"retry"`
}

type BMCConfig struct {
	ServerAddr     string         `yaml:"server_addr"`
	Username       string         `yaml:"username"`
	Password       redactedString `yaml:"password"`
	PrivilegeLevel string         `yaml:"privilege_level"`
}

type RetryConfig struct {
	RecvTimeout time.Duration `yaml:"recv_timeout"`
	DialRetries int           `yaml:"dial_retries"`
}

// redactedString marshals back out as a fixed placeholder so a dumped
// config never leaks the password that was loaded into it.
type redactedString string

func (s redactedString) MarshalYAML() (interface{}, error) {
	if s == "" {
		return "", nil
	}
	return "<redacted>", nil
}

// Load reads path, applies defaults, then unmarshals and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BMC: BMCConfig{
			PrivilegeLevel: "ADMINISTRATOR",
		},
		Retry: RetryConfig{
			RecvTimeout: 2 * time.Second,
			DialRetries: 0,
		},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.BMC.ServerAddr == "" {
		return fmt.Errorf("config: bmc.server_addr is required")
	}
	if c.BMC.Username == "" {
		return fmt.Errorf("config: bmc.username is required")
	}
	if len(c.BMC.Username) > 255 {
		return fmt.Errorf("config: bmc.username exceeds 255 bytes")
	}
	if _, err := c.PrivilegeLevel(); err != nil {
		return err
	}
	return nil
}

// PrivilegeLevel parses the configured privilege level name.
func (c *Config) PrivilegeLevel() (ipmi.PrivilegeLevel, error) {
	switch c.BMC.PrivilegeLevel {
	case "CALLBACK":
		return ipmi.PrivilegeCallback, nil
	case "USER":
		return ipmi.PrivilegeUser, nil
	case "OPERATOR":
		return ipmi.PrivilegeOperator, nil
	case "ADMINISTRATOR", "":
		return ipmi.PrivilegeAdministrator, nil
	default:
		return 0, fmt.Errorf("config: bmc.privilege_level %q is not one of CALLBACK, USER, OPERATOR, ADMINISTRATOR", c.BMC.PrivilegeLevel)
	}
}

// TransportOptions builds the ipmi.TransportOptions this config
// describes.
func (c *Config) TransportOptions() ipmi.TransportOptions {
	return ipmi.TransportOptions{
		RecvTimeout: c.Retry.RecvTimeout,
		DialRetries: c.Retry.DialRetries,
	}
}
