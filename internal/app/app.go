// Package app wires configuration into the running pokeguess service.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/pokeguess/pokeguess/internal/api"
	"github.com/pokeguess/pokeguess/internal/buildinfo"
	"github.com/pokeguess/pokeguess/internal/catalog"
	"github.com/pokeguess/pokeguess/internal/conf"
	"github.com/pokeguess/pokeguess/internal/errors"
	"github.com/pokeguess/pokeguess/internal/game"
	"github.com/pokeguess/pokeguess/internal/httpclient"
	"github.com/pokeguess/pokeguess/internal/imageprovider"
	"github.com/pokeguess/pokeguess/internal/logger"
	"github.com/pokeguess/pokeguess/internal/mqtt"
	"github.com/pokeguess/pokeguess/internal/observability"
)

const (
	mqttConnectTimeout = 10 * time.Second
	sentryFlushTimeout = 2 * time.Second
)

// App holds the service components built from Settings.
type App struct {
	Settings *conf.Settings
	Info     *buildinfo.Context

	Log     logger.Logger
	Metrics *observability.Metrics
	Cache   *catalog.Cache
	Deriver *imageprovider.Deriver
	Game    *game.Service

	central    *logger.CentralLogger
	httpClient *httpclient.Client
	publisher  mqtt.Client
	sentry     bool
}

// New builds every component. Nothing touches the network until Serve or Warm.
func New(settings *conf.Settings, info *buildinfo.Context) (*App, error) {
	a := &App{Settings: settings, Info: info}

	if err := a.initLogging(); err != nil {
		return nil, err
	}

	if settings.Sentry.Enabled {
		if err := errors.InitSentry(settings.Sentry.DSN, settings.Sentry.Environment, info.GetVersion()); err != nil {
			a.Log.Warn("Sentry disabled", logger.Error(err))
		} else {
			a.sentry = true
		}
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}
	a.Metrics = metrics

	a.httpClient = httpclient.New(&httpclient.Config{
		DefaultTimeout: settings.Catalog.Timeout,
		UserAgent:      settings.Catalog.UserAgent,
		RateLimit:      settings.Catalog.RateLimit,
	})
	central := a.central
	instrumentOutbound(a.httpClient, metrics, central.Module("httpclient"))

	fetcher := catalog.NewClient(catalog.ClientConfig{
		BaseURL: settings.Catalog.BaseURL,
		Timeout: settings.Catalog.Timeout,
	}, a.httpClient, metrics.Catalog, central.Module("catalog"))
	a.Cache = catalog.NewCache(fetcher, settings.Catalog.MinID, settings.Catalog.MaxID, metrics.Catalog, central.Module("catalog"))

	a.Deriver, err = imageprovider.NewDeriver(imageprovider.Config{
		StaticDir: settings.Images.StaticDir,
		BaseURL:   settings.Server.BaseURL,
		Timeout:   settings.Images.Timeout,
	}, a.httpClient, metrics.ImageProvider, central.Module("imageprovider"))
	if err != nil {
		a.Close()
		return nil, err
	}

	// A nil interface keeps event publishing off entirely
	var publisher game.EventPublisher
	if settings.MQTT.Enabled {
		client, err := mqtt.NewClient(mqtt.Config{
			Broker:   settings.MQTT.Broker,
			ClientID: settings.MQTT.ClientID,
			Username: settings.MQTT.Username,
			Password: settings.MQTT.Password,
			Topic:    settings.MQTT.Topic,
		}, metrics.MQTT, central.Module("mqtt"))
		if err != nil {
			a.Close()
			return nil, err
		}
		a.publisher = client
		publisher = client
	}

	a.Game = game.NewService(game.Config{
		DistinctOptions:    settings.Game.DistinctOptions,
		MaxDistractorDraws: settings.Game.MaxDistractorDraws,
	}, a.Cache, a.Deriver, publisher, metrics.Game, central.Module("game"))

	return a, nil
}

// instrumentOutbound counts outbound catalog and artwork requests per host
// and logs them at debug level.
func instrumentOutbound(client *httpclient.Client, m *observability.Metrics, log logger.Logger) {
	client.SetBeforeRequestHook(func(req *http.Request) {
		log.Debug("Outbound request",
			logger.String("method", req.Method),
			logger.String("host", req.URL.Host),
			logger.String("path", req.URL.Path))
	})

	client.SetAfterResponseHook(func(req *http.Request, resp *http.Response, err error) {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		m.HTTP.RecordOutboundRequest(req.URL.Host, status, err)

		if err != nil {
			log.Debug("Outbound request failed",
				logger.String("host", req.URL.Host),
				logger.Error(err))
			return
		}
		log.Debug("Outbound response",
			logger.String("host", req.URL.Host),
			logger.Int("status", status))
	})
}

func (a *App) initLogging() error {
	level := a.Settings.Logging.Level
	if a.Settings.Debug {
		level = "debug"
	}

	cfg := &logger.LoggingConfig{DefaultLevel: level}
	if file := a.Settings.Logging.File; file.Enabled {
		cfg.FileOutput = &logger.FileOutput{
			Enabled:    true,
			Path:       file.Path,
			MaxSize:    file.MaxSize,
			MaxAge:     file.MaxAge,
			MaxBackups: file.MaxBackups,
			Compress:   file.Compress,
		}
	}

	central, err := logger.NewCentralLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.SetGlobal(central)

	a.central = central
	a.Log = central.Module("app")
	return nil
}

// Warm prefetches every record in the configured id range.
func (a *App) Warm(ctx context.Context) (catalog.WarmupResult, error) {
	a.Log.Info("Warming catalog cache",
		logger.Int("concurrency", a.Settings.Catalog.WarmupConcurrency))

	return a.Cache.Warm(ctx, a.Settings.Catalog.WarmupConcurrency)
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down.
func (a *App) Serve(ctx context.Context) error {
	if a.publisher != nil {
		connectCtx, cancel := context.WithTimeout(ctx, mqttConnectTimeout)
		if err := a.publisher.Connect(connectCtx); err != nil {
			a.Log.Warn("MQTT broker unavailable, game events will be dropped", logger.Error(err))
		}
		cancel()
	}

	if a.Settings.Catalog.Warmup {
		// Warmup runs alongside the server; lookups it has not reached yet
		// simply miss and fetch on demand.
		go func() {
			if _, err := a.Warm(ctx); err != nil {
				a.Log.Debug("Catalog warmup interrupted", logger.Error(err))
			}
		}()
	}

	server, err := api.New(api.ConfigFromSettings(a.Settings), a.Game,
		api.WithLogger(a.central.Module("api")),
		api.WithMetrics(a.Metrics),
		api.WithCacheStats(a.Cache),
		api.WithBuildInfo(a.Info))
	if err != nil {
		return err
	}

	server.Start()
	a.Log.Info("pokeguess started",
		logger.String("version", a.Info.GetVersion()),
		logger.String("address", a.Settings.Server.Address()),
		logger.String("base_url", a.Settings.Server.BaseURL))

	<-ctx.Done()
	a.Log.Info("Shutdown signal received, initiating graceful shutdown")

	return server.Shutdown()
}

// Close releases network clients, flushes telemetry and closes log files.
func (a *App) Close() {
	if a.publisher != nil {
		a.publisher.Disconnect()
	}
	if a.httpClient != nil {
		a.httpClient.Close()
	}
	if a.sentry {
		sentry.Flush(sentryFlushTimeout)
	}
	if a.central != nil {
		if err := a.central.Close(); err != nil {
			fmt.Printf("Error closing log file: %v\n", err)
		}
	}
}
