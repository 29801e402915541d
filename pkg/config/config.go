// Package config loads the device configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config represents the full device configuration.
type Config struct {
	Device     DeviceConfig     `mapstructure:"device"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Watchdog   WatchdogConfig   `mapstructure:"watchdog"`
	Serial     SerialConfig     `mapstructure:"serial"`
	MQTT       MQTTConfig       `mapstructure:"mqtt"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// DeviceConfig identifies the device.
type DeviceConfig struct {
	Name string `mapstructure:"name"`
}

// MonitoringConfig tunes the acquisition and processing pipeline.
type MonitoringConfig struct {
	SampleIntervalMs  int              `mapstructure:"sampleIntervalMs"`
	ProcessIntervalMs int              `mapstructure:"processIntervalMs"`
	SampleQueueCap    int              `mapstructure:"sampleQueueCap"`
	ProcessedQueueCap int              `mapstructure:"processedQueueCap"`
	AlertQueueCap     int              `mapstructure:"alertQueueCap"`
	Thresholds        ThresholdsConfig `mapstructure:"thresholds"`
}

// ThresholdsConfig holds the vital-sign alert limits.
type ThresholdsConfig struct {
	HeartRateLow   float64 `mapstructure:"heartRateLow"`
	HeartRateHigh  float64 `mapstructure:"heartRateHigh"`
	SpO2Low        float64 `mapstructure:"spo2Low"`
	TemperatureLow float64 `mapstructure:"temperatureLow"`
	TemperatureHi  float64 `mapstructure:"temperatureHigh"`
}

// WatchdogConfig tunes thread supervision.
type WatchdogConfig struct {
	TimeoutMs      int `mapstructure:"timeoutMs"`
	CheckIntervalMs int `mapstructure:"checkIntervalMs"`
}

// SerialConfig tunes the framed serial link.
type SerialConfig struct {
	Device     string `mapstructure:"device"`
	RxBufBytes int    `mapstructure:"rxBufBytes"`
	TxBufBytes int    `mapstructure:"txBufBytes"`
}

// MQTTConfig tunes the telemetry uplink.
type MQTTConfig struct {
	Broker      string `mapstructure:"broker"`
	ClientID    string `mapstructure:"clientId"`
	TopicPrefix string `mapstructure:"topicPrefix"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
}

// MetricsConfig tunes the local metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// SampleInterval returns the acquisition interval as a duration.
func (c *MonitoringConfig) SampleInterval() time.Duration {
	return time.Duration(c.SampleIntervalMs) * time.Millisecond
}

// ProcessInterval returns the processing interval as a duration.
func (c *MonitoringConfig) ProcessInterval() time.Duration {
	return time.Duration(c.ProcessIntervalMs) * time.Millisecond
}

// Timeout returns the watchdog timeout as a duration.
func (c *WatchdogConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// CheckInterval returns the watchdog poll interval as a duration.
func (c *WatchdogConfig) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalMs) * time.Millisecond
}

// Load loads configuration from a file. An empty configFile loads the
// built-in defaults only.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	overrideFromEnv(&config)

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("device.name", "wearcore")

	v.SetDefault("monitoring.sampleIntervalMs", 100)
	v.SetDefault("monitoring.processIntervalMs", 200)
	v.SetDefault("monitoring.sampleQueueCap", 16)
	v.SetDefault("monitoring.processedQueueCap", 16)
	v.SetDefault("monitoring.alertQueueCap", 8)
	v.SetDefault("monitoring.thresholds.heartRateLow", 40)
	v.SetDefault("monitoring.thresholds.heartRateHigh", 150)
	v.SetDefault("monitoring.thresholds.spo2Low", 90)
	v.SetDefault("monitoring.thresholds.temperatureLow", 35)
	v.SetDefault("monitoring.thresholds.temperatureHigh", 39)

	v.SetDefault("watchdog.timeoutMs", 30000)
	v.SetDefault("watchdog.checkIntervalMs", 1000)

	v.SetDefault("serial.device", "")
	v.SetDefault("serial.rxBufBytes", 256)
	v.SetDefault("serial.txBufBytes", 256)

	v.SetDefault("mqtt.broker", "tcp://127.0.0.1:1883")
	v.SetDefault("mqtt.clientId", "")
	v.SetDefault("mqtt.topicPrefix", "wearcore")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.listen", ":9090")
}

// validate validates the configuration.
func validate(config *Config) error {
	m := &config.Monitoring
	if m.SampleIntervalMs <= 0 {
		return fmt.Errorf("monitoring sampleIntervalMs must be greater than 0")
	}
	if m.ProcessIntervalMs <= 0 {
		return fmt.Errorf("monitoring processIntervalMs must be greater than 0")
	}
	for name, cap := range map[string]int{
		"sampleQueueCap":    m.SampleQueueCap,
		"processedQueueCap": m.ProcessedQueueCap,
		"alertQueueCap":     m.AlertQueueCap,
	} {
		if cap < 1 || cap > 32 {
			return fmt.Errorf("monitoring %s must be between 1 and 32", name)
		}
	}
	t := &m.Thresholds
	if t.HeartRateLow >= t.HeartRateHigh {
		return fmt.Errorf("heart rate thresholds must satisfy low < high")
	}
	if t.TemperatureLow >= t.TemperatureHi {
		return fmt.Errorf("temperature thresholds must satisfy low < high")
	}
	if config.Watchdog.TimeoutMs <= 0 {
		return fmt.Errorf("watchdog timeoutMs must be greater than 0")
	}
	if config.Watchdog.CheckIntervalMs <= 0 {
		return fmt.Errorf("watchdog checkIntervalMs must be greater than 0")
	}
	if config.Serial.RxBufBytes <= 0 || config.Serial.TxBufBytes <= 0 {
		return fmt.Errorf("serial buffer sizes must be greater than 0")
	}
	if config.MQTT.Broker == "" {
		return fmt.Errorf("mqtt broker must be configured")
	}
	return nil
}

// overrideFromEnv overrides configuration with environment variables.
func overrideFromEnv(config *Config) {
	if broker := os.Getenv("WEARCORE_MQTT_BROKER"); broker != "" {
		config.MQTT.Broker = broker
	}
	if username := os.Getenv("WEARCORE_MQTT_USERNAME"); username != "" {
		config.MQTT.Username = username
	}
	if password := os.Getenv("WEARCORE_MQTT_PASSWORD"); password != "" {
		config.MQTT.Password = password
	}
	if device := os.Getenv("WEARCORE_SERIAL_DEVICE"); device != "" {
		config.Serial.Device = device
	}
}
