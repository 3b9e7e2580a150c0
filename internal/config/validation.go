package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitedeploy/internal/deploy"
	"git.home.luguber.info/inful/sitedeploy/internal/foundation/errors"
)

// ValidateConfig validates a normalized configuration with defaults applied.
func ValidateConfig(cfg *Config) error {
	v := &configurationValidator{config: cfg}
	return v.validate()
}

type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validate() error {
	checks := []func() error{
		cv.validateSite,
		cv.validateSource,
		cv.validateEnvironments,
		cv.validateOutputs,
		cv.validatePrerender,
		cv.validateServer,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "configuration validation failed").Fatal().Build()
		}
	}
	return nil
}

func (cv *configurationValidator) validateSite() error {
	if cv.config.Site.BasePath == BasePathAuto {
		return nil
	}
	if err := deploy.ValidateBasePath(cv.config.Site.BasePath); err != nil {
		return fmt.Errorf("site.base_path: %w", err)
	}
	return nil
}

func (cv *configurationValidator) validateSource() error {
	if cv.config.Source.Directory == "" {
		return fmt.Errorf("source.directory is required")
	}
	return nil
}

func (cv *configurationValidator) validateEnvironments() error {
	if _, err := deploy.ParseEnvironment(cv.config.Environment); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	for name, p := range cv.config.Environments {
		if !deploy.Environment(name).Valid() {
			return fmt.Errorf("environments: %w", unknownEnvironment(name))
		}
		if p.Adapter != "" && !p.Adapter.Valid() {
			return fmt.Errorf("environments.%s.adapter: unsupported adapter %q (allowed: server|static)", name, p.Adapter)
		}
		if p.PrerenderPolicy != "" && !p.PrerenderPolicy.Valid() {
			return fmt.Errorf("environments.%s.prerender_policy: unsupported policy %q (allowed: fail|warn)", name, p.PrerenderPolicy)
		}
		if p.OutputDirectory != "" {
			if err := deploy.ValidateOutputDirectory(p.OutputDirectory); err != nil {
				return fmt.Errorf("environments.%s.output_directory: %w", name, err)
			}
		}
		if strings.HasPrefix(p.FallbackPage, "/") || strings.Contains(p.FallbackPage, "..") {
			return fmt.Errorf("environments.%s.fallback_page: %q must be a relative file name", name, p.FallbackPage)
		}
	}
	return nil
}

// validateOutputs rejects output directories that would hold or sit inside
// the source or static directory, since packaging replaces the output tree.
func (cv *configurationValidator) validateOutputs() error {
	inputs := []struct{ field, dir string }{
		{"source.directory", cv.config.Source.Directory},
		{"source.static_directory", cv.config.Source.StaticDirectory},
	}
	for _, env := range deploy.Environments() {
		out := deploy.Resolve(deploy.Inputs{Environment: env, Overrides: cv.config.Overrides()}).OutputDirectory
		for _, in := range inputs {
			if in.dir != "" && pathsOverlap(out, in.dir) {
				return fmt.Errorf("environments.%s.output_directory %q overlaps %s %q", env, out, in.field, in.dir)
			}
		}
	}
	return nil
}

// pathsOverlap reports whether two project-relative paths are equal or one
// contains the other. Absolute paths are not compared.
func pathsOverlap(a, b string) bool {
	if filepath.IsAbs(a) || filepath.IsAbs(b) {
		return false
	}
	a, b = filepath.ToSlash(filepath.Clean(a)), filepath.ToSlash(filepath.Clean(b))
	if a == "." || b == "." || a == b {
		return true
	}
	return strings.HasPrefix(a, b+"/") || strings.HasPrefix(b, a+"/")
}

func unknownEnvironment(name string) error {
	_, err := deploy.ParseEnvironment(name)
	if err == nil {
		err = fmt.Errorf("environment %q is not canonical", name)
	}
	return err
}

func (cv *configurationValidator) validatePrerender() error {
	for _, e := range cv.config.Prerender.Entries {
		if e != "*" && !strings.HasPrefix(e, "/") {
			return fmt.Errorf("prerender.entries: %q must be \"*\" or an absolute route", e)
		}
	}
	return nil
}

func (cv *configurationValidator) validateServer() error {
	s := cv.config.Server
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", s.Port)
	}
	if _, err := time.ParseDuration(s.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid server.shutdown_timeout: %s: %w", s.ShutdownTimeout, err)
	}
	return nil
}
