package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitedeploy/internal/deploy"
	"git.home.luguber.info/inful/sitedeploy/internal/foundation/errors"
	"git.home.luguber.info/inful/sitedeploy/internal/gitinfo"
)

// EnvVarEnvironment overrides the configured default environment.
const EnvVarEnvironment = "SITEDEPLOY_ENV"

// SelectEnvironment picks the target environment.
// Precedence: flag > SITEDEPLOY_ENV > environment in the project file > default.
func (c *Config) SelectEnvironment(flag string) (deploy.Environment, error) {
	source := "flag"
	raw := strings.TrimSpace(flag)
	if raw == "" {
		raw, source = strings.TrimSpace(os.Getenv(EnvVarEnvironment)), EnvVarEnvironment
	}
	if raw == "" && c != nil {
		raw, source = c.Environment, "config"
	}
	if raw == "" {
		return deploy.DefaultEnvironment, nil
	}
	env, err := deploy.ParseEnvironment(raw)
	if err != nil {
		return "", errors.ConfigError("unknown environment").
			WithCause(err).
			WithContext("environment", raw).
			WithContext("source", source).
			Build()
	}
	return env, nil
}

// ProductionBasePath returns the configured base path, deriving it from the
// git origin remote of projectDir when set to "auto".
func (c *Config) ProductionBasePath(projectDir string) (string, error) {
	if c.Site.BasePath != BasePathAuto {
		return c.Site.BasePath, nil
	}
	base, err := gitinfo.BasePathFromRepository(projectDir)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryConfig, "cannot derive site.base_path from git").Fatal().Build()
	}
	slog.Debug("Derived base path from git remote", "base_path", base)
	return base, nil
}

// Overrides converts the environments block into resolver overrides.
func (c *Config) Overrides() map[deploy.Environment]deploy.Profile {
	if len(c.Environments) == 0 {
		return nil
	}
	out := make(map[deploy.Environment]deploy.Profile, len(c.Environments))
	for name, p := range c.Environments {
		out[deploy.Environment(name)] = p
	}
	return out
}

// DeploymentInputs assembles the resolver inputs for one invocation.
func (c *Config) DeploymentInputs(mode deploy.Mode, env deploy.Environment, productionBasePath string) deploy.Inputs {
	return deploy.Inputs{
		Mode:               mode,
		Environment:        env,
		ProductionBasePath: productionBasePath,
		Overrides:          c.Overrides(),
	}
}

// ShutdownTimeout returns the parsed server shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}
