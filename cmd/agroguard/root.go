package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/agroguard/agroguard/contrib/auth/oauth2"
	"github.com/agroguard/agroguard/contrib/broker/kafka"
	rediscache "github.com/agroguard/agroguard/contrib/cache/redis"
	"github.com/agroguard/agroguard/contrib/config"
	gormdb "github.com/agroguard/agroguard/contrib/database/gorm"
	zaplogger "github.com/agroguard/agroguard/contrib/logger/zap"
	"github.com/agroguard/agroguard/core/pkg/adapters/broker/memory"
	"github.com/agroguard/agroguard/core/pkg/api"
	"github.com/agroguard/agroguard/core/pkg/contracts"
	"github.com/spf13/cobra"
)

const version = "0.3.0"

// app holds global flags and the lazily built dependencies shared by commands
type app struct {
	configFile string
	logLevel   string
	output     string

	settings *config.Settings
	logger   contracts.Logger
	prompter Prompter

	// set by tests; built from settings when nil
	broker contracts.Broker
	cache  contracts.Cache

	store   *gormdb.Driver
	closers []func() error
}

func newApp() *app {
	return &app{prompter: surveyPrompter{}}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "agroguard",
		Short:         "AgroGuard farmer advisory CLI",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `agroguard talks to the AgroGuard backend to register smallholder farmers,
review satellite crop monitoring, look up planting advice and send SMS alerts.

Configuration is read from agroguard.yaml (or --config) and AGROGUARD_* environment
variables, e.g. AGROGUARD_API_BASE_URL.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default ./agroguard.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", formatTable, "output format: table, json, yaml")

	root.AddCommand(
		newRegisterCmd(a),
		newValidateCmd(a),
		newFormatPhoneCmd(a),
		newDraftsCmd(a),
		newFarmersCmd(a),
		newCropsCmd(a),
		newAdviceCmd(a),
		newAlertsCmd(a),
		newStatusCmd(a),
	)

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\nRun '%s --help' for usage", err, cmd.CommandPath())
	})
	return root
}

// execute runs the command line and releases every opened resource,
// including after a failed command.
func execute(ctx context.Context, a *app, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	return errors.Join(err, a.close())
}

func (a *app) setup() error {
	if !validFormat(a.output) {
		return fmt.Errorf("unknown output format %q", a.output)
	}

	var overrides map[string]any
	if a.logLevel != "" {
		overrides = map[string]any{"log.level": a.logLevel}
	}
	settings, err := config.Load(a.configFile, overrides)
	if err != nil {
		return err
	}
	a.settings = settings

	logger, err := zaplogger.NewDriverFromConfig(settings.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.logger = logger
	a.closers = append(a.closers, func() error {
		// stderr cannot always be synced; nothing is lost
		_ = logger.Sync()
		return nil
	})
	return nil
}

func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// apiContext bounds one backend call with the configured timeout
func (a *app) apiContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.settings.API.Timeout)
}

func (a *app) auth() *oauth2.Driver {
	o := a.settings.API.OAuth
	if !o.Enabled() {
		return nil
	}
	return oauth2.NewDriver(&oauth2.Config{
		ClientID:     o.ClientID,
		ClientSecret: o.ClientSecret,
		TokenURL:     o.TokenURL,
		Scopes:       o.Scopes,
	})
}

func (a *app) apiClient(ctx context.Context) (*api.Client, error) {
	opts := []api.Option{
		api.WithLogger(a.logger),
		api.WithUserAgent("agroguard-cli/" + version),
	}
	if auth := a.auth(); auth != nil {
		opts = append(opts, api.WithHTTPClient(auth.HTTPClient(ctx, nil)))
	}
	return api.New(a.settings.API.BaseURL, opts...)
}

// crops returns the crop source, cached in Redis when enabled
func (a *app) crops(ctx context.Context) (api.CropSource, error) {
	client, err := a.apiClient(ctx)
	if err != nil {
		return nil, err
	}
	cache := a.cacheDriver()
	if cache == nil {
		return client, nil
	}
	return api.NewCachedCrops(client, cache, a.settings.Redis.TTL, a.logger), nil
}

func (a *app) cacheDriver() contracts.Cache {
	if a.cache != nil {
		return a.cache
	}
	if !a.settings.Redis.Enabled {
		return nil
	}
	d := rediscache.NewDriverFromConfig(a.settings.Redis)
	a.cache = d
	a.closers = append(a.closers, d.Close)
	return d
}

func (a *app) database(ctx context.Context) (*gormdb.Driver, error) {
	if a.store != nil {
		return a.store, nil
	}
	d, err := gormdb.OpenSQLite(ctx, a.settings.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", a.settings.Database.Path, err)
	}
	a.store = d
	a.closers = append(a.closers, d.Close)
	return d, nil
}

// messageBroker connects Kafka when enabled. Otherwise messages stay in memory
// and are reported but not delivered.
func (a *app) messageBroker(ctx context.Context) (contracts.Broker, error) {
	if a.broker == nil {
		if a.settings.Kafka.Enabled {
			a.broker = kafka.NewDriverFromConfig(a.settings.Kafka)
		} else {
			a.logger.Warn("kafka disabled, alerts will not reach the SMS gateway")
			a.broker = memory.New()
		}
	}
	if !a.broker.IsConnected() {
		if err := a.broker.Connect(ctx); err != nil {
			return nil, fmt.Errorf("connect %s broker: %w", a.broker.Name(), err)
		}
		b := a.broker
		a.closers = append(a.closers, func() error { return b.Disconnect(context.Background()) })
	}
	return a.broker, nil
}

func (a *app) printer(w io.Writer) printer {
	return printer{w: w, format: a.output}
}
