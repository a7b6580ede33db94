package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"admin-console-go/internal/admin"
	"admin-console-go/internal/apiclient"
	"admin-console-go/internal/config"
	"admin-console-go/internal/credential"
	apierrors "admin-console-go/internal/errors"
	"admin-console-go/internal/events"
	"admin-console-go/internal/logging"
	"admin-console-go/internal/monitoring"
	"admin-console-go/internal/monitoring/tracing"
	"admin-console-go/internal/version"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	configPath  string
	apiURL      string
	jsonOutput  bool
	debug       bool
	metricsFile string
}

// app carries everything a command needs. It is built once per invocation
// by the root command's pre-run hook.
type app struct {
	opts   *globalOptions
	cm     *config.ConfigManager
	cfg    *config.Config
	hub    *events.Hub
	store  *credential.Store
	client *apiclient.Client
	svc    *admin.Services

	stopTracing func(context.Context) error
}

type appKey struct{}

// appSlot is placed in the context by execute so the app built in the
// pre-run hook can be torn down after the command, whether it failed or not.
type appSlot struct{ app *app }

func appFrom(cmd *cobra.Command) *app {
	if slot, ok := cmd.Context().Value(appKey{}).(*appSlot); ok {
		return slot.app
	}
	return nil
}

// execute runs root and always closes the app afterwards. Cobra skips
// post-run hooks when RunE fails, so teardown cannot live there.
func execute(ctx context.Context, root *cobra.Command) error {
	slot := &appSlot{}
	err := root.ExecuteContext(context.WithValue(ctx, appKey{}, slot))
	if slot.app != nil {
		if cerr := slot.app.close(context.WithoutCancel(ctx)); cerr != nil {
			if err == nil {
				return cerr
			}
			log.WithError(cerr).Warn("teardown after failed command")
		}
	}
	return err
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "admin-console",
		Short: "Manage users and published content of the admin API",
		Long: `admin-console drives the admin REST API from the command line.

The session obtained by "login" is persisted through the configured storage
backend and refreshed transparently when the access token expires.

Environment Variables:
  ADMIN_API_BASE_URL       API base URL (default: http://localhost:3000/api/v1)
  ADMIN_STORAGE_BACKEND    file, redis or memory
  ADMIN_DEBUG              enable debug logging`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			slot, ok := cmd.Context().Value(appKey{}).(*appSlot)
			if !ok {
				return errors.New("command must be run through execute")
			}
			if slot.app != nil {
				return nil
			}
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			slot.app = a
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	pf.StringVar(&opts.apiURL, "api-url", "", "API base URL (overrides ADMIN_API_BASE_URL)")
	pf.BoolVar(&opts.jsonOutput, "json", false, "Output JSON instead of tables")
	pf.BoolVar(&opts.debug, "debug", false, "Enable debug logging of requests and responses")
	pf.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newTokenCmd(),
		newPasswordCmd(),
		newUsersCmd(),
		newPrivacyCmd(),
		newTermsCmd(),
		newAboutCmd(),
		newUploadCmd(),
		newConfigCmd(),
	)
	return root
}

func newApp(ctx context.Context, opts *globalOptions) (*app, error) {
	cm, err := config.NewConfigManager(opts.configPath)
	if err != nil {
		return nil, err
	}
	cfg := config.FromFile(cm.GetConfig())
	if opts.apiURL != "" {
		cfg.API.BaseURL = strings.TrimRight(opts.apiURL, "/")
	}
	if opts.debug {
		cfg.Logging.Debug = true
	}
	if err := cfg.ValidateAndExpandPaths(); err != nil {
		cm.Close()
		return nil, err
	}
	if err := logging.Setup(cfg); err != nil {
		cm.Close()
		return nil, err
	}
	res := cfg.Validate()
	for _, w := range res.Warnings {
		log.Warn(w.Error())
	}
	if len(res.Errors) > 0 {
		cm.Close()
		return nil, fmt.Errorf("invalid configuration: %w", res.Errors[0])
	}

	stopTracing, err := tracing.Init(ctx, "admin-console")
	if err != nil {
		log.WithError(err).Warn("failed to initialize tracing")
	}

	hub := events.NewHub()
	cm.SetEventPublisher(hub)
	hub.Subscribe(events.TopicTokenRefreshed, func(_ context.Context, evt events.Event) {
		log.WithField("topic", evt.Topic).Debugf("session refreshed: %v", evt.Payload)
	})
	hub.Subscribe(events.TopicCredentialsCleared, func(_ context.Context, evt events.Event) {
		log.WithField("topic", evt.Topic).Debug("session cleared")
	})

	backend, err := credential.NewBackend(cfg.Storage)
	if err != nil {
		cm.Close()
		return nil, fmt.Errorf("open credential storage: %w", err)
	}
	store, err := credential.NewStore(ctx, backend, credential.WithPublisher(hub))
	if err != nil {
		_ = backend.Close()
		cm.Close()
		return nil, err
	}

	client := apiclient.New(cfg.API, store, apiclient.WithEventPublisher(hub))
	return &app{
		opts:        opts,
		cm:          cm,
		cfg:         cfg,
		hub:         hub,
		store:       store,
		client:      client,
		svc:         admin.New(client, store, cfg.API.Endpoints),
		stopTracing: stopTracing,
	}, nil
}

func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.opts.metricsFile != "" {
		if err := monitoring.WriteTextfile(a.opts.metricsFile); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if a.stopTracing != nil {
		if err := a.stopTracing(ctx); err != nil {
			log.WithError(err).Warn("failed to shutdown tracing")
		}
	}
	errs = append(errs, a.store.Close())
	a.cm.Close()
	return errors.Join(errs...)
}

func (a *app) out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }

// requireSession fails fast when no one is logged in.
func (a *app) requireSession() error {
	if a.store.IsAuthenticated() || a.store.RefreshToken() != "" {
		return nil
	}
	return errNotLoggedIn
}

var errNotLoggedIn = errors.New(`not logged in; run "admin-console login" first`)

func describeError(err error) string {
	if apiErr, ok := apierrors.As(err); ok {
		msg := apiErr.Message
		for field, msgs := range apiErr.Errors {
			msg += fmt.Sprintf("\n  %s: %s", field, strings.Join(msgs, "; "))
		}
		return msg
	}
	return err.Error()
}

// exitCode maps failures onto distinct process exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, errNotLoggedIn), apierrors.IsStatus(err, 401):
		return 3
	case apierrors.IsStatus(err, 0):
		return 4
	default:
		return 1
	}
}
