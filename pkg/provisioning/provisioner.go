package provisioning

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/rs/zerolog"
)

// --- Channel Provisioner ---

// ChannelProvisioner maps producer and consumer destinations onto Pub/Sub
// topics and subscriptions, creating them on demand.
//
// Subscriptions created for consumers without a group are remembered and
// deleted again by AfterUnbindConsumer. That registry lives only as long as
// the provisioner; subscriptions orphaned by a crashed process have to be
// cleaned up separately.
type ChannelProvisioner struct {
	client    AdminClient
	logger    zerolog.Logger
	anonymous *xsync.Map[string, struct{}]
	newToken  func() string
}

// NewChannelProvisioner creates a new ChannelProvisioner.
func NewChannelProvisioner(client AdminClient, logger zerolog.Logger) (*ChannelProvisioner, error) {
	if client == nil {
		return nil, fmt.Errorf("admin client (AdminClient interface) cannot be nil")
	}
	return &ChannelProvisioner{
		client:    client,
		logger:    logger.With().Str("component", "ChannelProvisioner").Logger(),
		anonymous: xsync.NewMap[string, struct{}](),
		newToken:  uuid.NewString,
	}, nil
}

// ProvisionProducerDestination ensures the topic exists and returns a destination for it.
func (p *ChannelProvisioner) ProvisionProducerDestination(ctx context.Context, topicName string, props ProducerProperties) (ProducerDestination, error) {
	if _, err := p.EnsureTopic(ctx, topicName, props.AutoCreateResources); err != nil {
		return ProducerDestination{}, err
	}
	return NewProducerDestination(topicName), nil
}

// ProvisionConsumerDestination ensures the topic and the group's subscription exist.
// An empty group gets a freshly created anonymous subscription that is
// deleted again by AfterUnbindConsumer.
func (p *ChannelProvisioner) ProvisionConsumerDestination(ctx context.Context, topicName, group string, props ConsumerProperties) (ConsumerDestination, error) {
	topicShortName := TopicShortName(topicName)
	topic, err := p.EnsureTopic(ctx, topicName, props.AutoCreateResources)
	if err != nil {
		return ConsumerDestination{}, err
	}

	group = strings.TrimSpace(group)
	if group == "" {
		name := AnonymousSubscriptionName(topicShortName, p.newToken())
		p.logger.Info().Str("subscription_id", name).Str("topic_id", topicName).Msg("Creating anonymous subscription...")
		if _, err := p.client.CreateSubscription(ctx, name, topicName); err != nil {
			return ConsumerDestination{}, provisioningErr("create subscription", name, err)
		}
		p.anonymous.Store(name, struct{}{})
		return NewConsumerDestination(name), nil
	}

	name := GroupSubscriptionName(topicShortName, group)
	sub, err := p.client.GetSubscription(ctx, name)
	if err != nil {
		return ConsumerDestination{}, provisioningErr("get subscription", name, err)
	}

	switch {
	case sub == nil:
		if !props.AutoCreateResources {
			return ConsumerDestination{}, provisioningErr("get subscription", name, ErrSubscriptionNotFound)
		}
		p.logger.Info().Str("subscription_id", name).Str("topic_id", topicName).Str("group", group).Msg("Creating subscription...")
		if _, err := p.client.CreateSubscription(ctx, name, topicName); err != nil {
			return ConsumerDestination{}, provisioningErr("create subscription", name, err)
		}
	case topic != nil && sub.Topic != topic.Name:
		return ConsumerDestination{}, provisioningErr("reconcile subscription", name,
			fmt.Errorf("%w: bound to '%s', expected '%s'", ErrTopicMismatch, sub.Topic, topic.Name))
	default:
		p.logger.Debug().Str("subscription_id", name).Msg("Subscription already exists")
	}
	return NewConsumerDestination(name), nil
}

// AfterUnbindConsumer deletes the destination's subscription if this
// provisioner created it anonymously. It never fails: a deletion error is
// logged and dropped.
func (p *ChannelProvisioner) AfterUnbindConsumer(ctx context.Context, destination ConsumerDestination) {
	name := destination.Name()
	if _, ok := p.anonymous.LoadAndDelete(name); !ok {
		return
	}
	if err := p.client.DeleteSubscription(ctx, name); err != nil {
		p.logger.Warn().Err(err).Str("subscription_id", name).Msg("Failed to delete auto-created anonymous subscription")
		return
	}
	p.logger.Info().Str("subscription_id", name).Msg("Anonymous subscription deleted")
}

// EnsureTopic looks the topic up and, when allowed, creates it.
// The returned topic is nil when another process created it concurrently.
func (p *ChannelProvisioner) EnsureTopic(ctx context.Context, name string, autoCreate bool) (*Topic, error) {
	topic, err := p.client.GetTopic(ctx, name)
	if err != nil {
		return nil, provisioningErr("get topic", name, err)
	}
	if topic != nil {
		return topic, nil
	}
	if !autoCreate {
		return nil, provisioningErr("get topic", name, ErrTopicNotFound)
	}

	p.logger.Info().Str("topic_id", name).Msg("Creating topic...")
	created, err := p.client.CreateTopic(ctx, name)
	if err != nil {
		return nil, provisioningErr("create topic", name, err)
	}
	switch created.Outcome {
	case OutcomeCreated:
		p.logger.Info().Str("topic_id", name).Msg("Topic created successfully")
		return created.Topic, nil
	case OutcomeAlreadyExists:
		p.logger.Info().Str("topic_id", name).Msg("Topic was created concurrently, continuing")
		return nil, nil
	default:
		return nil, provisioningErr("create topic", name, fmt.Errorf("unexpected create outcome %d", created.Outcome))
	}
}

// AnonymousSubscriptions returns the anonymous subscriptions awaiting unbind, sorted.
func (p *ChannelProvisioner) AnonymousSubscriptions() []string {
	names := make([]string, 0, p.anonymous.Size())
	p.anonymous.Range(func(name string, _ struct{}) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}
