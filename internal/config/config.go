// Package config loads detector configuration from file and environment.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/kcsoukup/VigorousPowerDetector/internal/gpio"
)

// Transport selection values.
const (
	TransportSNS  = "sns"
	TransportMQTT = "mqtt"
)

// Channel configures one monitored relay. Immutable after load.
type Channel struct {
	Name     string `mapstructure:"name"`
	Enabled  bool   `mapstructure:"enabled"`
	RelayPin int    `mapstructure:"relay_pin"`
	RedPin   int    `mapstructure:"red_pin"`
	GreenPin int    `mapstructure:"green_pin"`
}

// Log configures logging output and retention.
type Log struct {
	Dir           string `mapstructure:"dir"`
	UseFile       bool   `mapstructure:"use_file"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// SNS configures the AWS SNS transport.
type SNS struct {
	TopicARN string `mapstructure:"topic_arn"`
	Region   string `mapstructure:"region"`
}

// MQTT configures the MQTT transport.
type MQTT struct {
	Broker   string `mapstructure:"broker"`
	Topic    string `mapstructure:"topic"`
	ClientID string `mapstructure:"client_id"`
}

// GPIO configures the GPIO character device.
type GPIO struct {
	Chip string `mapstructure:"chip"`
}

// Config is the full detector configuration.
type Config struct {
	Environment   string    `mapstructure:"environment"`
	AlertsEnabled bool      `mapstructure:"alerts_enabled"`
	LogGhosts     bool      `mapstructure:"log_ghosts"`
	Transport     string    `mapstructure:"transport"`
	Log           Log       `mapstructure:"log"`
	SNS           SNS       `mapstructure:"sns"`
	MQTT          MQTT      `mapstructure:"mqtt"`
	GPIO          GPIO      `mapstructure:"gpio"`
	Channels      []Channel `mapstructure:"channels"`
}

// Enabled returns only the channels that should be monitored.
func (c *Config) Enabled() []Channel {
	var out []Channel
	for _, ch := range c.Channels {
		if ch.Enabled {
			out = append(out, ch)
		}
	}
	return out
}

// Load reads configuration from the given file (or the default search
// paths when empty) plus VPD_-prefixed environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("environment", "dev")
	v.SetDefault("alerts_enabled", true)
	v.SetDefault("log_ghosts", false)
	v.SetDefault("transport", TransportSNS)
	v.SetDefault("log.dir", "./log")
	v.SetDefault("log.use_file", false)
	v.SetDefault("log.retention_days", 180)
	v.SetDefault("sns.topic_arn", "")
	v.SetDefault("sns.region", "us-east-2")
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.topic", "power/detector/alerts")
	v.SetDefault("mqtt.client_id", "power-detector")
	v.SetDefault("gpio.chip", gpio.DefaultChipName)

	// The stock three-relay breakout board wiring.
	v.SetDefault("channels", []map[string]any{
		{"name": "Sump Pump Relay", "enabled": true, "relay_pin": gpio.DefaultRelay1Pin, "red_pin": gpio.DefaultRelay1Red, "green_pin": gpio.DefaultRelay1Grn},
		{"name": "Small Fridge Relay", "enabled": true, "relay_pin": gpio.DefaultRelay2Pin, "red_pin": gpio.DefaultRelay2Red, "green_pin": gpio.DefaultRelay2Grn},
		{"name": "Garage Fridge Relay", "enabled": false, "relay_pin": gpio.DefaultRelay3Pin, "red_pin": gpio.DefaultRelay3Red, "green_pin": gpio.DefaultRelay3Grn},
	})

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("powerdetector")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./etc")
		v.AddConfigPath("/etc/powerdetector")
	}

	// Environment variable support: VPD_ALERTS_ENABLED=false
	v.SetEnvPrefix("VPD")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is fine -- use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Transport != TransportSNS && c.Transport != TransportMQTT {
		return fmt.Errorf("unknown transport %q (want %q or %q)", c.Transport, TransportSNS, TransportMQTT)
	}
	seen := make(map[string]bool, len(c.Channels))
	for _, ch := range c.Channels {
		if ch.Name == "" {
			return fmt.Errorf("channel with relay pin %d has no name", ch.RelayPin)
		}
		if seen[ch.Name] {
			return fmt.Errorf("duplicate channel name %q", ch.Name)
		}
		seen[ch.Name] = true
	}
	return nil
}
