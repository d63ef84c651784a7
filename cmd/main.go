package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	"github.com/tejusbharadwaj/narodmon-avg/internal/aggregator"
	"github.com/tejusbharadwaj/narodmon-avg/internal/config"
	"github.com/tejusbharadwaj/narodmon-avg/internal/database"
	server "github.com/tejusbharadwaj/narodmon-avg/internal/grpc"
	"github.com/tejusbharadwaj/narodmon-avg/internal/hass"
	"github.com/tejusbharadwaj/narodmon-avg/internal/httpapi"
	"github.com/tejusbharadwaj/narodmon-avg/internal/mqtt"
	"github.com/tejusbharadwaj/narodmon-avg/internal/narodmon"
	"github.com/tejusbharadwaj/narodmon-avg/internal/scheduler"
)

// Command narodmon-avg averages nearby Narodmon sensor readings per type and
// publishes them as Home Assistant states.
//
// Usage:
//
//	narodmon-avg [flags]
//
// The flags are:
//
//	-config string
//	      path to config file (default "config.yaml")
//	-once
//	      run a single update cycle and exit
//	-type int
//	      with -once, restrict the cycle to one sensor type
//	-remove
//	      remove every published entity and exit
func main() {
	flags := parseFlags()

	appConfig, err := config.Load(flags.ConfigPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(appConfig.Logging)

	// Create a context that will be canceled on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	sinks, history, checks, closers := setupSinks(ctx, appConfig, logger)
	defer func() {
		for _, c := range closers {
			c()
		}
	}()

	api := narodmon.NewClient(narodmon.Options{
		URL:            appConfig.Narodmon.URL,
		APIKey:         appConfig.Narodmon.APIKey,
		UUID:           appConfig.Narodmon.UUID,
		Lang:           appConfig.Narodmon.Lang,
		Radius:         appConfig.Narodmon.Radius,
		UTCOffset:      appConfig.Narodmon.UTCOffset,
		NearbyTimeout:  appConfig.Narodmon.NearbyTimeout,
		CatalogTimeout: appConfig.Narodmon.CatalogTimeout,
	})
	store := hass.NewStore(appConfig.HomeAssistant.URL, appConfig.HomeAssistant.Token, 10*time.Second)

	agg, err := aggregator.New(api, store, aggregator.Options{
		APIKey:          appConfig.Narodmon.APIKey,
		UUID:            appConfig.Narodmon.UUID,
		Lang:            appConfig.Narodmon.Lang,
		Zone:            appConfig.HomeAssistant.Zone,
		Latitude:        appConfig.Location.Latitude,
		Longitude:       appConfig.Location.Longitude,
		CatalogTTL:      appConfig.Narodmon.CatalogTTL,
		RemovalPrefixes: appConfig.Removal.Prefixes,
		RemovalPause:    appConfig.Removal.Pause,
	}, logger, aggregator.NewMetrics(registry), sinks...)
	if err != nil {
		logger.Fatalf("Failed to create aggregator: %v", err)
	}

	if flags.Remove {
		removed, err := agg.RemoveAll(ctx)
		if err != nil {
			logger.Fatalf("Removal failed: %v", err)
		}
		logger.WithField("removed", removed).Info("Done")
		return
	}
	if flags.Once {
		if _, err := agg.UpdateAll(ctx, flags.TypeID); err != nil {
			logger.Fatalf("Update failed: %v", err)
		}
		return
	}

	logger.WithFields(logrus.Fields{
		"grpc_port": appConfig.Server.GRPCPort,
		"http_port": appConfig.Server.HTTPPort,
		"interval":  appConfig.Schedule.Interval.String(),
	}).Info("Starting narodmon-avg")

	sched := scheduler.NewScheduler(ctx, agg, logger, appConfig.Schedule.StartupDelay, appConfig.Schedule.Interval)

	srv, health := server.SetupServer(agg, history, server.ServerConfig{
		RateLimit:      appConfig.Server.RateLimit,
		RateLimitBurst: appConfig.Server.RateLimitBurst,
	}, registry, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", appConfig.Server.Host, appConfig.Server.HTTPPort),
		Handler:           httpapi.NewRouter(agg, history, registry, appConfig.Server.CORSOrigins, logger, checks...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", appConfig.Server.Host, appConfig.Server.GRPCPort))
	if err != nil {
		logger.Fatalf("Failed to listen: %v", err)
	}

	errChan := make(chan error, 3)

	if err := sched.Start(); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}

	go func() {
		if err := srv.Serve(lis); err != nil {
			errChan <- fmt.Errorf("grpc server error: %w", err)
		}
	}()

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	waitForShutdown(ctx, errChan, logger)

	// Perform graceful shutdown
	health.Shutdown()
	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("HTTP shutdown failed")
	}
	stopGRPC(shutdownCtx, srv)
	logger.Info("Server stopped")
}

type Flags struct {
	ConfigPath string
	Once       bool
	TypeID     int
	Remove     bool
}

func parseFlags() *Flags {
	f := &Flags{}

	flag.StringVar(&f.ConfigPath, "config", "config.yaml", "Path to config file")
	flag.BoolVar(&f.Once, "once", false, "Run a single update cycle and exit")
	flag.IntVar(&f.TypeID, "type", 0, "Sensor type for -once (0 means all types)")
	flag.BoolVar(&f.Remove, "remove", false, "Remove every published entity and exit")

	flag.Parse()

	return f
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.WithField("level", cfg.Level).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// setupSinks opens the optional history database and MQTT mirror. A sink
// that cannot be reached is logged and skipped.
func setupSinks(ctx context.Context, cfg *config.Config, logger *logrus.Logger) ([]aggregator.Sink, server.HistoryReader, []httpapi.Option, []func()) {
	var (
		sinks   []aggregator.Sink
		history server.HistoryReader
		checks  []httpapi.Option
		closers []func()
	)

	switch cfg.Database.Driver {
	case "":
	case "timescale", "postgres":
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		repo, err := database.NewPostgresRepo(connectCtx, cfg.Database.PostgresDSN(), cfg.Database.MaxConnections)
		cancel()
		if err != nil {
			logger.WithError(err).Error("Failed to connect to database, history disabled")
			break
		}
		sinks = append(sinks, repo)
		history = repo
		closers = append(closers, func() { repo.Close() })
	case "influx":
		repo, err := database.NewInfluxRepo(cfg.Database.URL, cfg.Database.Token, cfg.Database.Org, cfg.Database.Bucket)
		if err != nil {
			logger.WithError(err).Error("Failed to configure InfluxDB, history disabled")
			break
		}
		sinks = append(sinks, repo)
		closers = append(closers, func() { repo.Close() })
	default:
		logger.WithField("driver", cfg.Database.Driver).Warn("Unknown database driver, history disabled")
	}

	if cfg.MQTT.Broker != "" {
		pub := mqtt.NewPublisher(cfg.MQTT, logger)
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		err := pub.Connect(connectCtx)
		cancel()
		if err != nil {
			logger.WithError(err).Error("Failed to connect to MQTT broker, mirror disabled")
		} else {
			sinks = append(sinks, pub)
			checks = append(checks, httpapi.WithCheck(pub.Name(), pub.IsConnected))
			closers = append(closers, func() { pub.Close() })
		}
	}

	return sinks, history, checks, closers
}

func waitForShutdown(ctx context.Context, errChan <-chan error, logger *logrus.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		logger.Info("Context canceled, initiating shutdown")
	case sig := <-sigChan:
		logger.WithField("signal", sig.String()).Info("Initiating shutdown")
	case err := <-errChan:
		logger.WithError(err).Error("Service error, initiating shutdown")
	}
}

func stopGRPC(ctx context.Context, srv *grpc.Server) {
	done := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		srv.Stop()
	}
}
