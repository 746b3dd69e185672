package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for minimal containers

	sqliteadapter "github.com/ericfisherdev/towerpanel/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/towerpanel/internal/adapter/driven/towerapi"
	"github.com/ericfisherdev/towerpanel/internal/adapter/driving/cli"
	"github.com/ericfisherdev/towerpanel/internal/application"
	"github.com/ericfisherdev/towerpanel/internal/config"
	"github.com/ericfisherdev/towerpanel/internal/domain/model"
	"github.com/ericfisherdev/towerpanel/internal/domain/port/driven"
	tplog "github.com/ericfisherdev/towerpanel/internal/log"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", model.DisplayMessage(err))
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.Run(ctx, bootstrap, args, stdout, stderr)
}

// bootstrap wires the adapters and services for one command invocation.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.App, error) {
	// 1. Load configuration (fail fast on a missing backend URL).
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := tplog.New(opts.Stderr, level, false)
	slog.SetDefault(logger)
	logger.Debug("config loaded",
		"file", cfg.File,
		"api_base_url", cfg.APIBaseURL,
		"db_path", cfg.DBPath,
		"http_timeout", cfg.HTTPTimeout,
		"logout_on_401", cfg.LogoutOn401,
		"http_cache", cfg.HTTPCache,
		"form_payloads", cfg.FormPayloads,
	)

	// 2. Open the local state database and migrate it.
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	app := &cli.App{Logger: logger}
	app.OnClose(db.Close)

	version, err := sqliteadapter.Migrate(db)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	logger.Debug("state database ready", "path", db.Path(), "schema_version", version)

	// 3. Durable storage. The token is encrypted when a key is configured.
	settings := sqliteadapter.NewSettingsRepo(db)
	var tokenKV driven.KeyValueStore = settings
	if cfg.HasSecretKey() {
		tokenKV = sqliteadapter.NewCredentialRepo(db, cfg.SecretKey)
	} else {
		logger.Warn("TOWERPANEL_SECRET_KEY not set, storing the session token unencrypted")
	}

	creds := application.NewCredentialStore(tokenKV)
	if err := creds.Load(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}

	// 4. Backend client.
	dispatchOpts := []towerapi.Option{
		towerapi.WithTimeout(cfg.HTTPTimeout),
		towerapi.WithLogger(logger),
	}
	if !cfg.HTTPCache {
		dispatchOpts = append(dispatchOpts, towerapi.WithoutCache())
	}
	dispatcher, err := towerapi.NewDispatcher(cfg.APIBaseURL, creds, dispatchOpts...)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	var clientOpts []towerapi.ClientOption
	if cfg.FormPayloads {
		clientOpts = append(clientOpts, towerapi.WithFormPayloads())
	}
	api := towerapi.NewClient(dispatcher, clientOpts...)

	// 5. Services.
	session := application.NewSessionService(api, creds, logger)
	if cfg.LogoutOn401 {
		dispatcher.OnUnauthorized(session.HandleUnauthorized)
	}

	palette := cli.NewPalette()

	towers := application.NewTowerStore(api, nil, logger)
	providers := application.NewProviderStore(api, nil, logger)
	towers.SetProviderLookup(providers.Get)

	app.Session = session
	app.Workspace = &application.Workspace{
		Towers:     towers,
		Providers:  providers,
		Blankspots: application.NewBlankspotStore(api, nil, logger),
	}
	app.UI = application.NewUIStore(settings, palette, logger)
	app.Guard = application.NewGuard(application.DefaultRoutes(), session)
	app.Palette = palette

	logger.Debug("bootstrap complete", "session", session.State().String())
	return app, nil
}
