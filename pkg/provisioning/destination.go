package provisioning

// ProducerDestination is the provisioned handle for a producer binding.
type ProducerDestination struct {
	name string
}

// NewProducerDestination wraps a topic name.
func NewProducerDestination(topicName string) ProducerDestination {
	return ProducerDestination{name: topicName}
}

// Name returns the topic name.
func (d ProducerDestination) Name() string { return d.name }

// NameForPartition returns the topic name; Pub/Sub topics are not partitioned.
func (d ProducerDestination) NameForPartition(int) string { return d.name }

func (d ProducerDestination) String() string { return "ProducerDestination{name=" + d.name + "}" }

// ConsumerDestination is the provisioned handle for a consumer binding.
type ConsumerDestination struct {
	name string
}

// NewConsumerDestination wraps a subscription name.
func NewConsumerDestination(subscriptionName string) ConsumerDestination {
	return ConsumerDestination{name: subscriptionName}
}

// Name returns the subscription name.
func (d ConsumerDestination) Name() string { return d.name }

func (d ConsumerDestination) String() string { return "ConsumerDestination{name=" + d.name + "}" }

// ProducerProperties control producer provisioning.
type ProducerProperties struct {
	AutoCreateResources bool
}

// ConsumerProperties control consumer provisioning.
type ConsumerProperties struct {
	AutoCreateResources bool
}

// DefaultProducerProperties returns properties with auto-creation enabled.
func DefaultProducerProperties() ProducerProperties {
	return ProducerProperties{AutoCreateResources: true}
}

// DefaultConsumerProperties returns properties with auto-creation enabled.
func DefaultConsumerProperties() ConsumerProperties {
	return ConsumerProperties{AutoCreateResources: true}
}
