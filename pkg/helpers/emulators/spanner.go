package emulators

import (
	"context"
	"fmt"
	"testing"

	database "cloud.google.com/go/spanner/admin/database/apiv1"
	"cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	instance "cloud.google.com/go/spanner/admin/instance/apiv1"
	"cloud.google.com/go/spanner/admin/instance/apiv1/instancepb"
	"github.com/docker/go-connections/nat"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	testSpannerEmulatorImage    = "gcr.io/cloud-spanner-emulator/emulator:latest"
	testSpannerEmulatorGRPCPort = "9010"
	testSpannerEmulatorHTTPPort = "9020"
)

// SpannerConfig describes a Spanner emulator and the instance and database to create in it.
type SpannerConfig struct {
	GCImageContainer
	InstanceID string
	Database   string
}

// GetDefaultSpannerConfig returns the standard emulator image settings.
func GetDefaultSpannerConfig(projectID, instanceID, database string) SpannerConfig {
	return SpannerConfig{
		GCImageContainer: GCImageContainer{
			ImageContainer: ImageContainer{
				EmulatorImage:    testSpannerEmulatorImage,
				EmulatorGRPCPort: testSpannerEmulatorGRPCPort,
				EmulatorHTTPPort: testSpannerEmulatorHTTPPort,
			},
			ProjectID: projectID,
		},
		InstanceID: instanceID,
		Database:   database,
	}
}

// SetupSpannerEmulator starts the emulator, creates the configured instance
// and database and returns the emulator's gRPC host.
func SetupSpannerEmulator(t *testing.T, ctx context.Context, cfg SpannerConfig) (emulatorHost string, cleanupFunc func()) {
	t.Helper()
	grpcPort := nat.Port(fmt.Sprintf("%s/tcp", cfg.EmulatorGRPCPort))
	req := testcontainers.ContainerRequest{
		Image:        cfg.EmulatorImage,
		ExposedPorts: []string{string(grpcPort), fmt.Sprintf("%s/tcp", cfg.EmulatorHTTPPort)},
		WaitingFor:   wait.ForListeningPort(grpcPort),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, grpcPort)
	require.NoError(t, err)
	emulatorHost = fmt.Sprintf("%s:%s", host, port.Port())
	t.Logf("Spanner emulator container started, listening on: %s", emulatorHost)
	if cfg.SetEnvVariables {
		t.Setenv("SPANNER_EMULATOR_HOST", emulatorHost)
	}

	opts := []option.ClientOption{
		option.WithEndpoint(emulatorHost),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	}

	instanceAdmin, err := instance.NewInstanceAdminClient(ctx, opts...)
	require.NoError(t, err)
	defer instanceAdmin.Close()

	instanceOp, err := instanceAdmin.CreateInstance(ctx, &instancepb.CreateInstanceRequest{
		Parent:     fmt.Sprintf("projects/%s", cfg.ProjectID),
		InstanceId: cfg.InstanceID,
		Instance: &instancepb.Instance{
			Config:      fmt.Sprintf("projects/%s/instanceConfigs/emulator-config", cfg.ProjectID),
			DisplayName: cfg.InstanceID,
			NodeCount:   1,
		},
	})
	require.NoError(t, err)
	_, err = instanceOp.Wait(ctx)
	require.NoError(t, err, "Failed to create Spanner instance")

	databaseAdmin, err := database.NewDatabaseAdminClient(ctx, opts...)
	require.NoError(t, err)
	defer databaseAdmin.Close()

	databaseOp, err := databaseAdmin.CreateDatabase(ctx, &databasepb.CreateDatabaseRequest{
		Parent:          fmt.Sprintf("projects/%s/instances/%s", cfg.ProjectID, cfg.InstanceID),
		CreateStatement: fmt.Sprintf("CREATE DATABASE `%s`", cfg.Database),
	})
	require.NoError(t, err)
	_, err = databaseOp.Wait(ctx)
	require.NoError(t, err, "Failed to create Spanner database")

	return emulatorHost, func() {
		if err := container.Terminate(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to terminate Spanner emulator container")
		}
	}
}
