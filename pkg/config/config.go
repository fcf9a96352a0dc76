package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigurationError reports an invalid or missing setting.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("validation error: %s %s", e.Field, e.Reason)
}

// LoadAndValidateConfig reads a YAML configuration file from the given path,
// applies environment overrides and validates the result.
func LoadAndValidateConfig(configPath string) (*BinderConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}
	return ParseConfig(data)
}

// ParseConfig unmarshals YAML, applies environment overrides and validates the result.
func ParseConfig(data []byte) (*BinderConfig, error) {
	var cfg BinderConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	ApplyEnvOverrides(&cfg)
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = Duration(DefaultShutdownTimeout)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnvOverrides lets the usual GCP environment variables win over the file.
func ApplyEnvOverrides(cfg *BinderConfig) {
	if v := os.Getenv("GCP_PROJECT_ID"); v != "" {
		cfg.ProjectID = v
	}
	if v := os.Getenv("PUBSUB_EMULATOR_HOST"); v != "" {
		cfg.PubSub.EmulatorHost = v
	}
	if v := os.Getenv("SPANNER_EMULATOR_HOST"); v != "" {
		cfg.Spanner.Emulator.Host = v
	}
	if cfg.Spanner.ProjectID == "" {
		cfg.Spanner.ProjectID = cfg.ProjectID
	}
}

// Validate checks the bindings. The project id is not required here because
// it can still come from the environment or the default credentials.
func (c *BinderConfig) Validate() error {
	seen := make(map[string]struct{}, len(c.PubSub.Bindings))
	for i, b := range c.PubSub.Bindings {
		field := fmt.Sprintf("pubsub.bindings[%d]", i)
		if strings.TrimSpace(b.Name) == "" {
			return &ConfigurationError{Field: field, Reason: "is missing a name"}
		}
		if _, dup := seen[b.Name]; dup {
			return &ConfigurationError{Field: field, Reason: fmt.Sprintf("reuses binding name '%s'", b.Name)}
		}
		seen[b.Name] = struct{}{}

		if strings.TrimSpace(b.Destination) == "" {
			return &ConfigurationError{Field: field, Reason: "is missing a destination"}
		}
		switch b.Role {
		case RoleProducer:
			if b.Group != "" {
				return &ConfigurationError{Field: field, Reason: "is a producer and cannot have a group"}
			}
		case RoleConsumer:
		default:
			return &ConfigurationError{Field: field, Reason: fmt.Sprintf("has unknown role '%s'", b.Role)}
		}
	}

	if c.Spanner.Emulator.Enabled && c.Spanner.Emulator.Host == "" {
		return &ConfigurationError{Field: "spanner.emulator.host", Reason: "must be set when the emulator is enabled"}
	}
	return nil
}
