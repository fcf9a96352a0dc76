package provisioning

import (
	"context"
)

// --- Pub/Sub Admin Abstraction ---

// Topic is a Pub/Sub topic as reported by the service.
// Name is the fully qualified path, e.g. "projects/p/topics/t".
type Topic struct {
	Name string
}

// Subscription is a Pub/Sub subscription as reported by the service.
// Topic holds the fully qualified path of the topic it is bound to.
type Subscription struct {
	Name  string
	Topic string
}

// CreateOutcome distinguishes a fresh creation from losing a creation race.
type CreateOutcome int

const (
	// OutcomeCreated means this call created the resource.
	OutcomeCreated CreateOutcome = iota + 1
	// OutcomeAlreadyExists means another creator got there first.
	OutcomeAlreadyExists
)

func (o CreateOutcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeAlreadyExists:
		return "already_exists"
	default:
		return "unknown"
	}
}

// TopicCreation is the result of AdminClient.CreateTopic. Topic is only set
// when Outcome is OutcomeCreated.
type TopicCreation struct {
	Outcome CreateOutcome
	Topic   *Topic
}

// AdminClient defines the subset of Pub/Sub administration the provisioner needs.
// Names may be short ids or fully qualified resource paths.
type AdminClient interface {
	// GetTopic returns nil, nil when the topic does not exist.
	GetTopic(ctx context.Context, name string) (*Topic, error)
	// CreateTopic reports OutcomeAlreadyExists instead of an error when the topic exists.
	CreateTopic(ctx context.Context, name string) (TopicCreation, error)
	// GetSubscription returns nil, nil when the subscription does not exist.
	GetSubscription(ctx context.Context, name string) (*Subscription, error)
	CreateSubscription(ctx context.Context, name, topicName string) (*Subscription, error)
	DeleteSubscription(ctx context.Context, name string) error
	Close() error
}
