// Command binder provisions the Pub/Sub topics and subscriptions for a set of
// bindings, holds them until it is signalled and then releases the consumers.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/illmade-knight/go-binder/pkg/binder"
	"github.com/illmade-knight/go-binder/pkg/config"
	"github.com/illmade-knight/go-binder/pkg/projectid"
	"github.com/illmade-knight/go-binder/pkg/provisioning"
	"github.com/illmade-knight/go-binder/pkg/spannerconfig"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"google.golang.org/api/option"
)

func main() {
	configPath := pflag.StringP("config", "c", "binder.yaml", "path to the binder YAML configuration")
	logLevel := pflag.String("log-level", "info", "zerolog level (debug, info, warn, error)")
	once := pflag.Bool("once", false, "release consumer bindings right after provisioning instead of waiting for a signal")
	pflag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *once, logger); err != nil {
		logger.Error().Err(err).Msg("Binder failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, once bool, logger zerolog.Logger) error {
	cfg, err := config.LoadAndValidateConfig(configPath)
	if err != nil {
		return err
	}

	provider := projectid.Chain(projectid.Static(cfg.ProjectID), projectid.Default())
	projectID, err := provider.ProjectID(ctx)
	if err != nil {
		return fmt.Errorf("resolving project id: %w", err)
	}
	logger.Info().Str("project_id", projectID).Int("bindings", len(cfg.PubSub.Bindings)).Msg("Configuration loaded")

	if cfg.Spanner.Emulator.Enabled {
		closeSpanner, err := connectSpannerEmulator(ctx, cfg.Spanner, provider, logger)
		if err != nil {
			return err
		}
		defer closeSpanner()
	}

	var clientOpts []option.ClientOption
	if cfg.PubSub.EmulatorHost != "" {
		logger.Info().Str("emulator_host", cfg.PubSub.EmulatorHost).Msg("Using Pub/Sub emulator")
		clientOpts = provisioning.EmulatorClientOptions(cfg.PubSub.EmulatorHost)
	}
	admin, err := provisioning.CreateGoogleAdminClient(ctx, projectID, clientOpts...)
	if err != nil {
		return err
	}
	defer admin.Close()

	provisioner, err := provisioning.NewChannelProvisioner(admin, logger)
	if err != nil {
		return err
	}
	b, err := binder.New(provisioner, logger)
	if err != nil {
		return err
	}

	shutdownTimeout := time.Duration(cfg.ShutdownTimeout)
	defer func() {
		// ctx may already be cancelled by the signal; release on a fresh one.
		unbindCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		b.UnbindAll(unbindCtx)
	}()

	bindings, err := b.BindAll(ctx, cfg.PubSub.Bindings)
	if err != nil {
		return err
	}
	for _, binding := range bindings {
		fmt.Printf("%-24s %-8s %s\n", binding.Name, binding.Role, binding.Destination)
	}

	if once {
		return nil
	}
	logger.Info().Msg("Bindings provisioned, waiting for shutdown signal")
	<-ctx.Done()
	if err := context.Cause(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info().Dur("timeout", shutdownTimeout).Msg("Shutting down, releasing consumer bindings")
	return nil
}

func connectSpannerEmulator(ctx context.Context, props spannerconfig.Properties, provider projectid.Provider, logger zerolog.Logger) (func(), error) {
	opts, err := spannerconfig.BuildEmulatorOptions(ctx, props, provider)
	if err != nil {
		return nil, err
	}
	log := logger.With().Str("component", "SpannerEmulator").Str("emulator_host", opts.EmulatorHost).Logger()
	if props.InstanceID == "" || props.Database == "" {
		log.Info().Str("project_id", opts.ProjectID).Msg("Spanner emulator options built, no database configured")
		return func() {}, nil
	}
	client, err := spannerconfig.NewClient(ctx, opts, props)
	if err != nil {
		return nil, err
	}
	log.Info().Str("database", opts.DatabasePath(props.InstanceID, props.Database)).Msg("Connected to Spanner emulator")
	return client.Close, nil
}
