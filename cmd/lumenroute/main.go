// Lumen Route - real-time lighting-control router.
//
// Lumen Route ingests the eHuB event stream over UDP, maps logical
// lighting entities onto physical DMX channels, applies the channel
// patch, and emits the resulting universes to Art-Net controllers at a
// bounded packet rate.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/lumen-route/internal/capture"
	"github.com/nerrad567/lumen-route/internal/infrastructure/config"
	"github.com/nerrad567/lumen-route/internal/infrastructure/database"
	"github.com/nerrad567/lumen-route/internal/infrastructure/influxdb"
	"github.com/nerrad567/lumen-route/internal/infrastructure/logging"
	"github.com/nerrad567/lumen-route/internal/infrastructure/mqtt"
	"github.com/nerrad567/lumen-route/internal/monitor"
	"github.com/nerrad567/lumen-route/internal/route"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for
// testability.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting Lumen Route",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Load and validate the routing tables. A bad table stops startup;
	// at runtime a bad table only fails the swap.
	mappingSnap, err := config.LoadMapping(cfg.Mapping.File, cfg.Mapping.AllowedControllers)
	if err != nil {
		return fmt.Errorf("loading mapping: %w", err)
	}
	log.Info("mapping loaded",
		"file", cfg.Mapping.File,
		"ranges", len(mappingSnap.Ranges()),
		"entities", mappingSnap.EntityCount(),
		"universes", len(mappingSnap.Keys()),
	)

	patchSnap, err := config.LoadPatch(cfg.Patch.File)
	if err != nil {
		return fmt.Errorf("loading patch: %w", err)
	}
	if patchSnap.RuleCount() > 0 {
		log.Info("patch loaded",
			"file", cfg.Patch.File,
			"rules", patchSnap.RuleCount(),
			"enabled", patchSnap.Enabled(),
		)
	}

	// Routing core.
	svc := route.New(route.Options{
		ListenAddr:             cfg.Listen.Addr(),
		EmitInterval:           cfg.Router.EmitInterval(),
		MaxPPS:                 cfg.Router.MaxPPS,
		PerUniverseMinInterval: cfg.Router.PerUniverseMinInterval(),
		QueueCapacity:          cfg.Router.QueueCapacity,
		ObserverQueueCapacity:  cfg.Router.ObserverQueueCapacity,
		FilterUniverse:         cfg.Listen.FilterUniverse,
	})
	svc.SetLogger(log.With("component", "route"))

	// Commissioning capture (optional).
	if cfg.Capture.Enabled {
		db, dbErr := database.Open(database.Config{
			Path:        cfg.Capture.Path,
			BusyTimeout: cfg.Capture.BusyTimeout,
		})
		if dbErr != nil {
			return fmt.Errorf("opening capture database: %w", dbErr)
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing capture database", "error", closeErr)
			}
		}()

		recorder := capture.NewRecorder(db.DB)
		recorder.SetLogger(log.With("component", "capture"))
		if startErr := recorder.Start(ctx); startErr != nil {
			return fmt.Errorf("starting capture recorder: %w", startErr)
		}
		defer recorder.Stop()

		svc.SetCapture(recorder)
		log.Info("capture enabled", "path", cfg.Capture.Path)
	}

	if err := svc.Start(ctx, mappingSnap, patchSnap); err != nil {
		return fmt.Errorf("starting router: %w", err)
	}
	defer func() {
		if stopErr := svc.Stop(); stopErr != nil {
			log.Error("error stopping router", "error", stopErr)
		}
	}()

	// Status/event publisher (optional).
	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
		}
		defer func() {
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT connected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		reporter := monitor.NewReporter(monitor.ReporterConfig{
			Router:    svc,
			Publisher: mqttClient,
			Version:   version,
			Interval:  cfg.MQTT.StatusInterval(),
		})
		reporter.SetLogger(log.With("component", "monitor"))
		reporter.Start()
		defer reporter.Stop()
	}

	// Telemetry sink (optional).
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Warn("InfluxDB write failed", "error", err)
		})
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)

		flusher := monitor.NewFlusher(svc, influxClient, cfg.InfluxDB.FlushInterval())
		flusher.Start()
		defer flusher.Stop()
	}

	log.Info("Lumen Route running", "listen", cfg.Listen.Addr())

	<-ctx.Done()
	log.Info("shutdown signal received")
	return nil
}

// getConfigPath returns the config file path, honouring the
// LUMENROUTE_CONFIG environment variable.
func getConfigPath() string {
	if path := os.Getenv("LUMENROUTE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
