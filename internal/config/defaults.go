package config

import "git.home.luguber.info/inful/sitedeploy/internal/deploy"

const (
	// DefaultSourceDirectory is where the framework bundler writes its output.
	DefaultSourceDirectory = "dist"
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = 3000
	DefaultShutdownTimeout = "10s"
	DefaultMetricsPath     = "/metrics"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config)
	Domain() string
}

type sourceDefaults struct{}

func (sourceDefaults) Domain() string { return "source" }

func (sourceDefaults) ApplyDefaults(cfg *Config) {
	if cfg.Source.Directory == "" {
		cfg.Source.Directory = DefaultSourceDirectory
	}
}

type environmentDefaults struct{}

func (environmentDefaults) Domain() string { return "environment" }

func (environmentDefaults) ApplyDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = string(deploy.DefaultEnvironment)
	}
}

type prerenderDefaults struct{}

func (prerenderDefaults) Domain() string { return "prerender" }

func (prerenderDefaults) ApplyDefaults(cfg *Config) {
	if len(cfg.Prerender.Entries) == 0 {
		cfg.Prerender.Entries = []string{"*"}
	}
	if cfg.Prerender.CheckAnchors == nil {
		enabled := true
		cfg.Prerender.CheckAnchors = &enabled
	}
}

type serverDefaults struct{}

func (serverDefaults) Domain() string { return "server" }

func (serverDefaults) ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ShutdownTimeout == "" {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
}

type monitoringDefaults struct{}

func (monitoringDefaults) Domain() string { return "monitoring" }

func (monitoringDefaults) ApplyDefaults(cfg *Config) {
	if cfg.Monitoring == nil {
		cfg.Monitoring = &MonitoringConfig{}
	}
	if cfg.Monitoring.Metrics.Path == "" {
		cfg.Monitoring.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Monitoring.Logging.Level == "" {
		cfg.Monitoring.Logging.Level = LogLevelInfo
	}
	if cfg.Monitoring.Logging.Format == "" {
		cfg.Monitoring.Logging.Format = LogFormatText
	}
}

var defaultAppliers = []DefaultApplier{
	sourceDefaults{},
	environmentDefaults{},
	prerenderDefaults{},
	serverDefaults{},
	monitoringDefaults{},
}

// applyDefaults fills unset fields. It runs after normalization so canonical
// values drive the defaults.
func applyDefaults(cfg *Config) {
	for _, a := range defaultAppliers {
		a.ApplyDefaults(cfg)
	}
}
