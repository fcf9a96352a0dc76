//go:build integration

package provisioning_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/illmade-knight/go-binder/pkg/helpers/emulators"
	"github.com/illmade-knight/go-binder/pkg/provisioning"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const integrationProjectID = "provisioning-it-project"

func TestChannelProvisioner_Integration_WithEmulator(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// A pre-existing group subscription bound to the wrong topic.
	cfg := emulators.GetDefaultPubsubConfig(integrationProjectID, map[string]string{
		"invoices.audit": "ledger",
	})
	_, clientOpts, cleanup := emulators.SetupPubsubEmulator(t, ctx, cfg)
	defer cleanup()

	admin, err := provisioning.CreateGoogleAdminClient(ctx, integrationProjectID, clientOpts...)
	require.NoError(t, err)
	defer admin.Close()

	p, err := provisioning.NewChannelProvisioner(admin, zerolog.New(io.Discard))
	require.NoError(t, err)

	verifyClient, err := pubsub.NewClient(ctx, integrationProjectID, clientOpts...)
	require.NoError(t, err)
	defer verifyClient.Close()

	t.Run("Producer_And_Named_Consumer", func(t *testing.T) {
		fullTopic := provisioning.TopicPath(integrationProjectID, "invoices")

		prod, err := p.ProvisionProducerDestination(ctx, fullTopic, provisioning.DefaultProducerProperties())
		require.NoError(t, err)
		assert.Equal(t, fullTopic, prod.Name())

		cons, err := p.ProvisionConsumerDestination(ctx, fullTopic, "billing", provisioning.DefaultConsumerProperties())
		require.NoError(t, err)
		assert.Equal(t, "invoices.billing", cons.Name())

		subCfg, err := verifyClient.Subscription("invoices.billing").Config(ctx)
		require.NoError(t, err)
		assert.Equal(t, fullTopic, subCfg.Topic.String())
	})

	t.Run("Mismatched_Group_Subscription", func(t *testing.T) {
		_, err := p.ProvisionConsumerDestination(ctx, "invoices", "audit", provisioning.DefaultConsumerProperties())
		assert.ErrorIs(t, err, provisioning.ErrTopicMismatch)
	})

	t.Run("Anonymous_Consumer_Cleanup", func(t *testing.T) {
		cons, err := p.ProvisionConsumerDestination(ctx, "invoices", "", provisioning.DefaultConsumerProperties())
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(cons.Name(), "anonymous.invoices."))

		p.AfterUnbindConsumer(ctx, cons)

		exists, err := verifyClient.Subscription(cons.Name()).Exists(ctx)
		require.NoError(t, err)
		assert.False(t, exists, "anonymous subscription should be deleted on unbind")
	})
}
