package emulators

import (
	"context"
	"fmt"
	"testing"

	"cloud.google.com/go/pubsub"
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
	testPubsubEmulatorImage = "gcr.io/google.com/cloudsdktool/cloud-sdk:emulators"
	testPubsubEmulatorPort  = "8085"
)

// PubsubConfig describes a Pub/Sub emulator. TopicSubs maps subscription
// names to the topic they are pre-created on.
type PubsubConfig struct {
	GCImageContainer
	TopicSubs map[string]string
}

// GetDefaultPubsubConfig returns the standard emulator image settings.
func GetDefaultPubsubConfig(projectID string, topicSubs map[string]string) PubsubConfig {
	return PubsubConfig{
		GCImageContainer: GCImageContainer{
			ImageContainer: ImageContainer{
				EmulatorImage:    testPubsubEmulatorImage,
				EmulatorHTTPPort: testPubsubEmulatorPort,
			},
			ProjectID:       projectID,
			SetEnvVariables: true,
		},
		TopicSubs: topicSubs,
	}
}

// SetupPubsubEmulator starts the emulator, pre-creates cfg.TopicSubs and
// returns client options pointing at it.
func SetupPubsubEmulator(t *testing.T, ctx context.Context, cfg PubsubConfig) (emulatorHost string, clientOptions []option.ClientOption, cleanupFunc func()) {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        cfg.EmulatorImage,
		ExposedPorts: []string{fmt.Sprintf("%s/tcp", cfg.EmulatorHTTPPort)},
		Cmd:          []string{"gcloud", "beta", "emulators", "pubsub", "start", fmt.Sprintf("--project=%s", cfg.ProjectID), fmt.Sprintf("--host-port=0.0.0.0:%s", cfg.EmulatorHTTPPort)},
		WaitingFor:   wait.ForListeningPort(nat.Port(cfg.EmulatorHTTPPort)),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, nat.Port(cfg.EmulatorHTTPPort))
	require.NoError(t, err)
	emulatorHost = fmt.Sprintf("%s:%s", host, port.Port())

	t.Logf("Pub/Sub emulator container started, listening on: %s", emulatorHost)
	if cfg.SetEnvVariables {
		t.Setenv("PUBSUB_EMULATOR_HOST", emulatorHost)
	}
	clientOptions = []option.ClientOption{
		option.WithEndpoint(emulatorHost),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	}

	adminClient, err := pubsub.NewClient(ctx, cfg.ProjectID, clientOptions...)
	require.NoError(t, err)
	defer adminClient.Close()

	for subID, topicID := range cfg.TopicSubs {
		topic := adminClient.Topic(topicID)
		exists, err := topic.Exists(ctx)
		require.NoError(t, err)
		if !exists {
			_, err = adminClient.CreateTopic(ctx, topicID)
			require.NoError(t, err, "Failed to create Pub/Sub topic")
		}

		sub := adminClient.Subscription(subID)
		exists, err = sub.Exists(ctx)
		require.NoError(t, err)
		if !exists {
			_, err = adminClient.CreateSubscription(ctx, subID, pubsub.SubscriptionConfig{Topic: topic})
			require.NoError(t, err, "Failed to create Pub/Sub subscription")
		}
	}

	return emulatorHost, clientOptions, func() {
		if err := container.Terminate(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to terminate Pub/Sub emulator container")
		}
	}
}
