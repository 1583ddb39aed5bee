package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}

	if cfg.Environment != "dev" {
		t.Errorf("expected environment dev, got %s", cfg.Environment)
	}
	if !cfg.AlertsEnabled {
		t.Error("expected alerts enabled by default")
	}
	if cfg.LogGhosts {
		t.Error("expected ghost logging off by default")
	}
	if cfg.Transport != TransportSNS {
		t.Errorf("expected sns transport, got %s", cfg.Transport)
	}
	if cfg.Log.RetentionDays != 180 {
		t.Errorf("expected 180 retention days, got %d", cfg.Log.RetentionDays)
	}

	if len(cfg.Channels) != 3 {
		t.Fatalf("expected 3 default channels, got %d", len(cfg.Channels))
	}
	enabled := cfg.Enabled()
	if len(enabled) != 2 {
		t.Fatalf("expected 2 enabled channels, got %d", len(enabled))
	}
	if enabled[0].Name != "Sump Pump Relay" || enabled[0].RelayPin != 25 {
		t.Errorf("unexpected first channel: %+v", enabled[0])
	}
	if enabled[1].Name != "Small Fridge Relay" || enabled[1].RelayPin != 5 {
		t.Errorf("unexpected second channel: %+v", enabled[1])
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "powerdetector.yaml")
	content := `
environment: prod
alerts_enabled: false
log_ghosts: true
transport: mqtt
mqtt:
  broker: tcp://192.168.1.50:1883
  topic: house/power
channels:
  - name: Well Pump Relay
    enabled: true
    relay_pin: 12
    red_pin: 13
    green_pin: 19
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Environment != "prod" {
		t.Errorf("expected environment prod, got %s", cfg.Environment)
	}
	if cfg.AlertsEnabled {
		t.Error("expected alerts disabled")
	}
	if !cfg.LogGhosts {
		t.Error("expected ghost logging enabled")
	}
	if cfg.Transport != TransportMQTT {
		t.Errorf("expected mqtt transport, got %s", cfg.Transport)
	}
	if cfg.MQTT.Broker != "tcp://192.168.1.50:1883" {
		t.Errorf("unexpected broker: %s", cfg.MQTT.Broker)
	}
	if len(cfg.Channels) != 1 || cfg.Channels[0].Name != "Well Pump Relay" {
		t.Errorf("unexpected channels: %+v", cfg.Channels)
	}
	if cfg.Channels[0].RelayPin != 12 {
		t.Errorf("expected relay pin 12, got %d", cfg.Channels[0].RelayPin)
	}
}

func TestLoadRejectsUnknownTransport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "powerdetector.yaml")
	if err := os.WriteFile(path, []byte("transport: carrier-pigeon\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown transport")
	}
}

func TestLoadRejectsDuplicateChannelNames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "powerdetector.yaml")
	content := `
channels:
  - name: Sump Pump Relay
    enabled: true
    relay_pin: 25
  - name: Sump Pump Relay
    enabled: true
    relay_pin: 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for duplicate channel names")
	}
}
