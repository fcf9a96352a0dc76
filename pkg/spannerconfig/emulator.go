// Package spannerconfig builds Cloud Spanner client options, including the
// wiring for a local Spanner emulator.
package spannerconfig

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"github.com/illmade-knight/go-binder/pkg/projectid"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// EmulatorProperties configure the Spanner emulator connection.
type EmulatorProperties struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
}

// Properties configure the Spanner connection.
type Properties struct {
	ProjectID  string             `yaml:"project_id,omitempty"`
	InstanceID string             `yaml:"instance_id"`
	Database   string             `yaml:"database"`
	Emulator   EmulatorProperties `yaml:"emulator"`
}

// ConfigurationError reports a required setting that is missing or unusable.
type ConfigurationError struct {
	Setting string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("`%s` must be set: %v", e.Setting, e.Err)
	}
	return fmt.Sprintf("`%s` must be set", e.Setting)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Options are the resolved settings for a Spanner client.
type Options struct {
	ProjectID     string
	EmulatorHost  string
	ClientOptions []option.ClientOption
}

// BuildEmulatorOptions resolves the project id and returns options that point
// a Spanner client at the emulator with no credentials. The project id comes
// from props when set and from provider otherwise.
func BuildEmulatorOptions(ctx context.Context, props Properties, provider projectid.Provider) (*Options, error) {
	if props.Emulator.Host == "" {
		return nil, &ConfigurationError{Setting: "spanner.emulator.host"}
	}

	projectID := props.ProjectID
	if projectID == "" {
		if provider == nil {
			return nil, &ConfigurationError{Setting: "spanner.project_id"}
		}
		id, err := provider.ProjectID(ctx)
		if err != nil {
			return nil, &ConfigurationError{Setting: "spanner.project_id", Err: err}
		}
		projectID = id
	}

	return &Options{
		ProjectID:    projectID,
		EmulatorHost: props.Emulator.Host,
		ClientOptions: []option.ClientOption{
			option.WithEndpoint(props.Emulator.Host),
			option.WithoutAuthentication(),
			option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		},
	}, nil
}

// DatabasePath returns "projects/{project}/instances/{instance}/databases/{database}".
func (o *Options) DatabasePath(instanceID, database string) string {
	return fmt.Sprintf("projects/%s/instances/%s/databases/%s", o.ProjectID, instanceID, database)
}

// NewClient opens a Spanner client for the database named in props.
func NewClient(ctx context.Context, opts *Options, props Properties) (*spanner.Client, error) {
	if props.InstanceID == "" {
		return nil, &ConfigurationError{Setting: "spanner.instance_id"}
	}
	if props.Database == "" {
		return nil, &ConfigurationError{Setting: "spanner.database"}
	}
	client, err := spanner.NewClient(ctx, opts.DatabasePath(props.InstanceID, props.Database), opts.ClientOptions...)
	if err != nil {
		return nil, fmt.Errorf("spanner.NewClient: %w", err)
	}
	return client, nil
}
