package config

import (
	"time"

	"github.com/illmade-knight/go-binder/pkg/spannerconfig"
	"gopkg.in/yaml.v3"
)

// This file defines the Go structs that map directly to the structure of the
// binder YAML file.

// BindingRole says whether a binding publishes to or consumes from its destination.
type BindingRole string

const (
	// RoleProducer provisions a topic.
	RoleProducer BindingRole = "producer"
	// RoleConsumer provisions a topic and a subscription.
	RoleConsumer BindingRole = "consumer"
)

// DefaultShutdownTimeout bounds unbinding when shutdown_timeout is not set.
const DefaultShutdownTimeout = 10 * time.Second

// BinderConfig is the root of the configuration structure.
type BinderConfig struct {
	ProjectID       string                   `yaml:"project_id"`
	ShutdownTimeout Duration                 `yaml:"shutdown_timeout,omitempty"`
	PubSub          PubSubSpec               `yaml:"pubsub"`
	Spanner         spannerconfig.Properties `yaml:"spanner"`
}

// PubSubSpec holds the Pub/Sub connection and the bindings to provision.
type PubSubSpec struct {
	EmulatorHost string        `yaml:"emulator_host,omitempty"`
	Bindings     []BindingSpec `yaml:"bindings"`
}

// BindingSpec describes a single producer or consumer binding.
type BindingSpec struct {
	Name                string      `yaml:"name"`
	Destination         string      `yaml:"destination"`
	Group               string      `yaml:"group,omitempty"`
	Role                BindingRole `yaml:"role"`
	AutoCreateResources *bool       `yaml:"auto_create_resources,omitempty"`
}

// AutoCreate reports whether missing resources may be created. Defaults to true.
func (b BindingSpec) AutoCreate() bool {
	if b.AutoCreateResources == nil {
		return true
	}
	return *b.AutoCreateResources
}

// Duration is a custom type that wraps time.Duration to implement yaml.Unmarshaler.
type Duration time.Duration

// UnmarshalYAML implements the yaml.Unmarshaler interface, allowing "15s" to be parsed directly to a duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}
