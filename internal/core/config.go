package core

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Database struct {
	Type             string `yaml:"type"`
	ConnectionString string `yaml:"connectionString"`
}

type Storage struct {
	// Root is the directory canonical image files are written to. It does
	// not have to live inside StaticRoot; files outside the static tree are
	// served through the indirect file endpoint instead.
	Root            string `yaml:"root"`
	StaticRoot      string `yaml:"staticRoot"`
	StaticURLPrefix string `yaml:"staticURLPrefix"`
}

type ServiceConfig struct {
	Port     int      `yaml:"port"`
	Database Database `yaml:"database"`
	Storage  Storage  `yaml:"storage"`
}

// LoadConfig loads configuration from the specified YAML file, applies
// defaults and environment overrides. A missing config file is not an
// error; the defaults describe a self-contained local deployment.
func LoadConfig(configPath string) (*ServiceConfig, error) {
	config := defaultConfig()

	data, err := os.ReadFile(configPath)
	if err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	// IMAGE_DIR points the storage root at a mounted persistent disk.
	if imageDir := os.Getenv("IMAGE_DIR"); imageDir != "" {
		config.Storage.Root = imageDir
	}
	// The sqlite file defaults to living beside the images so both relocate
	// together when the storage root moves.
	if config.Database.ConnectionString == "" {
		config.Database.ConnectionString = filepath.Join(config.Storage.Root, "images.db")
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func defaultConfig() *ServiceConfig {
	return &ServiceConfig{
		Port: 8080,
		Database: Database{
			Type: "sqlite",
		},
		Storage: Storage{
			Root:            filepath.Join("static", "images"),
			StaticRoot:      "static",
			StaticURLPrefix: "/static",
		},
	}
}

func validateConfig(config *ServiceConfig) error {
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is out of range", config.Port)
	}
	if config.Database.Type == "" {
		return fmt.Errorf("database type is empty")
	}
	if config.Storage.Root == "" {
		return fmt.Errorf("storage root is empty")
	}
	if config.Storage.StaticRoot == "" {
		return fmt.Errorf("static root is empty")
	}
	return nil
}
