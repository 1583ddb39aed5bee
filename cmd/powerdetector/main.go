// Command powerdetector monitors relay-contact GPIO lines for mains power
// loss and publishes one alert per genuine transition.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kcsoukup/VigorousPowerDetector/internal/alert"
	"github.com/kcsoukup/VigorousPowerDetector/internal/config"
	"github.com/kcsoukup/VigorousPowerDetector/internal/gpio"
	"github.com/kcsoukup/VigorousPowerDetector/internal/monitor"
	"github.com/kcsoukup/VigorousPowerDetector/internal/retention"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: search ./powerdetector.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "powerdetector: %v\n", err)
		os.Exit(2)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "powerdetector: init logger: %v\n", err)
		os.Exit(2)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("unhandled fault", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

// buildLogger creates the process logger: stderr by default, or a
// timestamped file under log.dir when file logging is enabled.
func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Log.UseFile {
		if err := os.MkdirAll(cfg.Log.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		name := fmt.Sprintf("powerdetector_%s.log", time.Now().Format("20060102_150405"))
		zc.OutputPaths = []string{filepath.Join(cfg.Log.Dir, name)}
		zc.ErrorOutputPaths = zc.OutputPaths
	}
	return zc.Build()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	logger.Info("runtime environment",
		zap.String("hostname", hostname),
		zap.String("environment", cfg.Environment),
		zap.Bool("alerts_enabled", cfg.AlertsEnabled),
		zap.Bool("log_ghosts", cfg.LogGhosts),
		zap.String("transport", cfg.Transport),
		zap.Int("channels", len(cfg.Channels)),
		zap.Int("enabled_channels", len(cfg.Enabled())))

	// Basic file system maintenance before monitoring starts.
	if _, statErr := os.Stat(cfg.Log.Dir); statErr == nil {
		window := time.Duration(cfg.Log.RetentionDays) * 24 * time.Hour
		if removed, err := retention.Sweep(cfg.Log.Dir, window, time.Now(), logger); err != nil {
			logger.Warn("log retention sweep failed", zap.Error(err))
		} else if removed > 0 {
			logger.Info("log retention sweep", zap.Int("removed", removed))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	transport, err := buildTransport(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init transport: %w", err)
	}
	defer transport.Close()

	dispatcher := alert.NewDispatcher(transport, cfg.AlertsEnabled, logger)

	chip, err := gpio.OpenChip(cfg.GPIO.Chip)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer chip.Close()

	sup := monitor.NewSupervisor(logger)
	for _, ch := range cfg.Enabled() {
		m, err := buildChannel(chip, ch, dispatcher, hostname, cfg, logger)
		if err != nil {
			sup.Stop() // release lines already bound
			return err
		}
		sup.Add(m)
	}

	if err := sup.Start(ctx); err != nil {
		stop() // cancel so already-launched monitors exit before teardown
		sup.Stop()
		return fmt.Errorf("start monitoring: %w", err)
	}

	runErr := sup.Run(ctx)
	sup.Stop()
	return runErr
}

// buildChannel requests the GPIO lines for one enabled channel and wires
// them to a monitor. On failure, any line already requested for this
// channel is released before returning.
func buildChannel(chip *gpio.Chip, ch config.Channel, dispatcher *alert.Dispatcher, hostname string, cfg *config.Config, logger *zap.Logger) (*monitor.ChannelMonitor, error) {
	relay, err := chip.RequestRelay(ch.RelayPin)
	if err != nil {
		return nil, fmt.Errorf("channel %s: %w", ch.Name, err)
	}
	red, err := chip.RequestIndicator(ch.RedPin)
	if err != nil {
		relay.Close()
		return nil, fmt.Errorf("channel %s: %w", ch.Name, err)
	}
	green, err := chip.RequestIndicator(ch.GreenPin)
	if err != nil {
		relay.Close()
		red.Close()
		return nil, fmt.Errorf("channel %s: %w", ch.Name, err)
	}

	return monitor.NewChannelMonitor(ch.Name, relay, red, green, dispatcher, hostname, cfg.Environment, cfg.LogGhosts, logger), nil
}

// buildTransport selects the notification transport from configuration.
func buildTransport(ctx context.Context, cfg *config.Config) (alert.Transport, error) {
	switch cfg.Transport {
	case config.TransportSNS:
		if cfg.SNS.TopicARN == "" {
			return nil, errors.New("sns transport selected but sns.topic_arn is empty")
		}
		return alert.NewSNSTransport(ctx, cfg.SNS.TopicARN, cfg.SNS.Region)
	case config.TransportMQTT:
		return alert.NewMQTTTransport(cfg.MQTT.Broker, cfg.MQTT.Topic, cfg.MQTT.ClientID)
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}
