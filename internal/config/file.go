package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config for the optional YAML file. Zero values mean
// "not set" so defaults still apply.
type fileConfig struct {
	Port               string   `yaml:"port"`
	CORSOrigins        []string `yaml:"cors_origins"`
	SubmitTimeout      Duration `yaml:"submit_timeout"`
	CheckpointInterval Duration `yaml:"checkpoint_interval"`
	Log                struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	EventLog  fileEventLog  `yaml:"eventlog"`
	Redis     fileRedis     `yaml:"redis"`
	Snapshots fileSnapshots `yaml:"snapshots"`
	Metrics   fileMetrics   `yaml:"metrics"`
}

type fileEventLog struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	DSN     string `yaml:"dsn"`
}

type fileRedis struct {
	URL     string   `yaml:"url"`
	Stream  string   `yaml:"stream"`
	LiveTTL Duration `yaml:"live_ttl"`
}

type fileSnapshots struct {
	Enabled       *bool  `yaml:"enabled"`
	Folder        string `yaml:"folder"`
	RetentionDays int    `yaml:"retention_days"`
}

type fileMetrics struct {
	Enabled      *bool  `yaml:"enabled"`
	Port         string `yaml:"port"`
	OtlpEndpoint string `yaml:"otlp_endpoint"`
	ServiceName  string `yaml:"service_name"`
	OtlpInsecure *bool  `yaml:"otlp_insecure"`
}

func loadFile(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}
