package provisioning

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// --- Google Pub/Sub Adapter ---

// isNotFound and isAlreadyExists accept both gRPC status errors and the
// googleapi errors returned over the REST transport.
func isNotFound(err error) bool {
	if status.Code(err) == codes.NotFound {
		return true
	}
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}

func isAlreadyExists(err error) bool {
	if status.Code(err) == codes.AlreadyExists {
		return true
	}
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict
}

type googleAdminClient struct{ client *pubsub.Client }

// topic resolves a short id against the client's project and a fully
// qualified path against its own project.
func (a *googleAdminClient) topic(name string) *pubsub.Topic {
	if rn, ok := ParseTopicName(name); ok {
		return a.client.TopicInProject(rn.ID, rn.Project)
	}
	return a.client.Topic(name)
}

func (a *googleAdminClient) subscription(name string) *pubsub.Subscription {
	if rn, ok := ParseSubscriptionName(name); ok {
		return a.client.SubscriptionInProject(rn.ID, rn.Project)
	}
	return a.client.Subscription(name)
}

// localID returns the id to create name under. The client can only create
// resources in its own project.
func (a *googleAdminClient) localID(name string, parse func(string) (ResourceName, bool)) (string, error) {
	rn, ok := parse(name)
	if !ok {
		return name, nil
	}
	if rn.Project != a.client.Project() {
		return "", fmt.Errorf("cannot create '%s' from a client for project '%s'", name, a.client.Project())
	}
	return rn.ID, nil
}

func (a *googleAdminClient) GetTopic(ctx context.Context, name string) (*Topic, error) {
	t := a.topic(name)
	if _, err := t.Config(ctx); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get topic '%s': %w", name, err)
	}
	return &Topic{Name: t.String()}, nil
}

func (a *googleAdminClient) CreateTopic(ctx context.Context, name string) (TopicCreation, error) {
	id, err := a.localID(name, ParseTopicName)
	if err != nil {
		return TopicCreation{}, err
	}
	t, err := a.client.CreateTopic(ctx, id)
	if err != nil {
		if isAlreadyExists(err) {
			return TopicCreation{Outcome: OutcomeAlreadyExists}, nil
		}
		return TopicCreation{}, fmt.Errorf("failed to create topic '%s': %w", name, err)
	}
	return TopicCreation{Outcome: OutcomeCreated, Topic: &Topic{Name: t.String()}}, nil
}

func (a *googleAdminClient) GetSubscription(ctx context.Context, name string) (*Subscription, error) {
	s := a.subscription(name)
	cfg, err := s.Config(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription '%s': %w", name, err)
	}
	sub := &Subscription{Name: s.String()}
	if cfg.Topic != nil {
		sub.Topic = cfg.Topic.String()
	}
	return sub, nil
}

func (a *googleAdminClient) CreateSubscription(ctx context.Context, name, topicName string) (*Subscription, error) {
	id, err := a.localID(name, ParseSubscriptionName)
	if err != nil {
		return nil, err
	}
	topic := a.topic(topicName)
	s, err := a.client.CreateSubscription(ctx, id, pubsub.SubscriptionConfig{Topic: topic})
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription '%s' for topic '%s': %w", name, topicName, err)
	}
	return &Subscription{Name: s.String(), Topic: topic.String()}, nil
}

func (a *googleAdminClient) DeleteSubscription(ctx context.Context, name string) error {
	return a.subscription(name).Delete(ctx)
}

func (a *googleAdminClient) Close() error { return a.client.Close() }

// NewGoogleAdminClient wraps a concrete *pubsub.Client to satisfy the AdminClient interface.
func NewGoogleAdminClient(client *pubsub.Client) AdminClient {
	if client == nil {
		return nil
	}
	return &googleAdminClient{client: client}
}

// CreateGoogleAdminClient creates a real Pub/Sub client for use in production.
func CreateGoogleAdminClient(ctx context.Context, projectID string, clientOpts ...option.ClientOption) (AdminClient, error) {
	realClient, err := pubsub.NewClient(ctx, projectID, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("pubsub.NewClient: %w", err)
	}
	return NewGoogleAdminClient(realClient), nil
}

// EmulatorClientOptions returns the client options for a Pub/Sub emulator at host.
func EmulatorClientOptions(host string) []option.ClientOption {
	return []option.ClientOption{
		option.WithEndpoint(host),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	}
}
