package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitedeploy/internal/deploy"
	"git.home.luguber.info/inful/sitedeploy/internal/foundation/errors"
)

// CurrentVersion is the project file format version understood by Load.
const CurrentVersion = "1.0"

// BasePathAuto asks for the base path to be derived from the git origin remote.
const BasePathAuto = "auto"

// Config represents the sitedeploy project file.
type Config struct {
	Version      string                    `yaml:"version"`
	Site         SiteConfig                `yaml:"site"`
	Source       SourceConfig              `yaml:"source"`
	Environment  string                    `yaml:"environment,omitempty"`
	Environments map[string]deploy.Profile `yaml:"environments,omitempty"`
	Prerender    PrerenderConfig           `yaml:"prerender"`
	Server       ServerConfig              `yaml:"server"`
	Monitoring   *MonitoringConfig         `yaml:"monitoring,omitempty"`
}

// SiteConfig describes the published site.
type SiteConfig struct {
	Name string `yaml:"name,omitempty"`
	// BasePath is the production mount path: "", "/name", or "auto".
	BasePath string `yaml:"base_path"`
}

// SourceConfig locates the framework's rendered output.
type SourceConfig struct {
	Directory       string `yaml:"directory"`                  // rendered pages and assets
	StaticDirectory string `yaml:"static_directory,omitempty"` // extra files copied verbatim
}

// PrerenderConfig controls the rendered page check.
type PrerenderConfig struct {
	Entries      []string `yaml:"entries,omitempty"` // "*" means every page in the source tree
	CheckAnchors *bool    `yaml:"check_anchors,omitempty"`
}

// AnchorsEnabled reports whether fragment targets are verified.
func (p PrerenderConfig) AnchorsEnabled() bool {
	return p.CheckAnchors == nil || *p.CheckAnchors
}

// ServerConfig configures the server adapter runtime and the dev server.
type ServerConfig struct {
	Host            string `yaml:"host,omitempty"`
	Port            int    `yaml:"port,omitempty"`
	ShutdownTimeout string `yaml:"shutdown_timeout,omitempty"`
}

// MonitoringConfig represents monitoring and observability configuration.
type MonitoringConfig struct {
	Metrics MonitoringMetrics `yaml:"metrics"`
	Logging MonitoringLogging `yaml:"logging"`
}

// MonitoringMetrics represents metrics configuration.
type MonitoringMetrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MonitoringLogging represents logging configuration.
type MonitoringLogging struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Load loads and validates a project file.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.ConfigError("configuration file not found").WithContext("path", configPath).Build()
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").Fatal().WithContext("path", configPath).Build()
	}
	return Parse(data)
}

// Parse runs the load pipeline on raw file content: environment expansion,
// schema validation, decoding, normalization, defaults and validation.
func Parse(data []byte) (*Config, error) {
	expanded := []byte(os.ExpandEnv(string(data)))

	if err := ValidateSchema(expanded); err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(expanded, &config); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Fatal().Build()
	}

	if config.Version != CurrentVersion {
		return nil, errors.ConfigError(fmt.Sprintf("unsupported configuration version: %s (expected %s)", config.Version, CurrentVersion)).Build()
	}

	if nres, nerr := NormalizeConfig(&config); nerr != nil {
		return nil, fmt.Errorf("normalize: %w", nerr)
	} else if len(nres.Warnings) > 0 {
		for _, w := range nres.Warnings {
			fmt.Fprintf(os.Stderr, "config normalization: %s\n", w)
		}
	}

	applyDefaults(&config)

	if err := ValidateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// Init writes an example project file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").WithContext("path", configPath).Build()
	}

	checkAnchors := true
	example := Config{
		Version: CurrentVersion,
		Site: SiteConfig{
			Name:     "personal-website",
			BasePath: "/personal-website",
		},
		Source: SourceConfig{
			Directory:       DefaultSourceDirectory,
			StaticDirectory: "static",
		},
		Environment: string(deploy.EnvPagesProduction),
		Environments: map[string]deploy.Profile{
			string(deploy.EnvPagesPreview): {PrerenderPolicy: deploy.PolicyWarn},
		},
		Prerender: PrerenderConfig{
			Entries:      []string{"*"},
			CheckAnchors: &checkAnchors,
		},
		Server: ServerConfig{
			Host:            DefaultServerHost,
			Port:            DefaultServerPort,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Monitoring: &MonitoringConfig{
			Metrics: MonitoringMetrics{Enabled: true, Path: DefaultMetricsPath},
			Logging: MonitoringLogging{Level: LogLevelInfo, Format: LogFormatText},
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").WithContext("path", configPath).Build()
	}
	return nil
}
