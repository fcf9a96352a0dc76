// Package binder drives the provisioning lifecycle of configured bindings:
// every binding is provisioned on Bind and consumer bindings are released on Unbind.
package binder

import (
	"context"
	"fmt"
	"sync"

	"github.com/illmade-knight/go-binder/pkg/config"
	"github.com/illmade-knight/go-binder/pkg/provisioning"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Provisioner is the part of provisioning.ChannelProvisioner the binder uses.
type Provisioner interface {
	ProvisionProducerDestination(ctx context.Context, topicName string, props provisioning.ProducerProperties) (provisioning.ProducerDestination, error)
	ProvisionConsumerDestination(ctx context.Context, topicName, group string, props provisioning.ConsumerProperties) (provisioning.ConsumerDestination, error)
	AfterUnbindConsumer(ctx context.Context, destination provisioning.ConsumerDestination)
}

var _ Provisioner = (*provisioning.ChannelProvisioner)(nil)

// Binding is a provisioned binding. Destination is the topic name for
// producers and the subscription name for consumers.
type Binding struct {
	Name        string
	Role        config.BindingRole
	Destination string
}

// Binder provisions bindings and remembers consumer destinations until they are unbound.
type Binder struct {
	provisioner Provisioner
	logger      zerolog.Logger

	mu        sync.Mutex
	consumers map[string]provisioning.ConsumerDestination
}

// New creates a new Binder.
func New(provisioner Provisioner, logger zerolog.Logger) (*Binder, error) {
	if provisioner == nil {
		return nil, fmt.Errorf("provisioner cannot be nil")
	}
	return &Binder{
		provisioner: provisioner,
		logger:      logger.With().Str("component", "Binder").Logger(),
		consumers:   make(map[string]provisioning.ConsumerDestination),
	}, nil
}

// Bind provisions a single binding.
func (b *Binder) Bind(ctx context.Context, spec config.BindingSpec) (Binding, error) {
	log := b.logger.With().Str("binding", spec.Name).Logger()

	switch spec.Role {
	case config.RoleProducer:
		dest, err := b.provisioner.ProvisionProducerDestination(ctx, spec.Destination,
			provisioning.ProducerProperties{AutoCreateResources: spec.AutoCreate()})
		if err != nil {
			return Binding{}, fmt.Errorf("binding '%s': %w", spec.Name, err)
		}
		log.Info().Str("topic_id", dest.Name()).Msg("Producer binding provisioned")
		return Binding{Name: spec.Name, Role: spec.Role, Destination: dest.Name()}, nil

	case config.RoleConsumer:
		dest, err := b.provisioner.ProvisionConsumerDestination(ctx, spec.Destination, spec.Group,
			provisioning.ConsumerProperties{AutoCreateResources: spec.AutoCreate()})
		if err != nil {
			return Binding{}, fmt.Errorf("binding '%s': %w", spec.Name, err)
		}
		b.mu.Lock()
		b.consumers[spec.Name] = dest
		b.mu.Unlock()
		log.Info().Str("subscription_id", dest.Name()).Str("group", spec.Group).Msg("Consumer binding provisioned")
		return Binding{Name: spec.Name, Role: spec.Role, Destination: dest.Name()}, nil

	default:
		return Binding{}, fmt.Errorf("binding '%s': unknown role '%s'", spec.Name, spec.Role)
	}
}

// BindAll provisions every binding concurrently and returns them in input order.
// Bindings that succeeded before a failure stay bound; call UnbindAll to release them.
func (b *Binder) BindAll(ctx context.Context, specs []config.BindingSpec) ([]Binding, error) {
	bindings := make([]Binding, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		g.Go(func() error {
			binding, err := b.Bind(gctx, spec)
			if err != nil {
				return err
			}
			bindings[i] = binding
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	b.logger.Info().Int("count", len(bindings)).Msg("All bindings provisioned")
	return bindings, nil
}

// Unbind releases a consumer binding. Unknown names and producers are ignored.
func (b *Binder) Unbind(ctx context.Context, name string) {
	b.mu.Lock()
	dest, ok := b.consumers[name]
	delete(b.consumers, name)
	b.mu.Unlock()
	if !ok {
		return
	}
	b.provisioner.AfterUnbindConsumer(ctx, dest)
	b.logger.Info().Str("binding", name).Str("subscription_id", dest.Name()).Msg("Consumer binding released")
}

// UnbindAll releases every consumer binding.
func (b *Binder) UnbindAll(ctx context.Context) {
	b.mu.Lock()
	names := make([]string, 0, len(b.consumers))
	for name := range b.consumers {
		names = append(names, name)
	}
	b.mu.Unlock()

	for _, name := range names {
		b.Unbind(ctx, name)
	}
}
