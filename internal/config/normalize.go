package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitedeploy/internal/deploy"
)

// NormalizationResult captures adjustments & warnings from normalization pass.
type NormalizationResult struct{ Warnings []string }

func (r *NormalizationResult) changed(field string, from, to any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf("normalized %s from '%v' to '%v'", field, from, to))
}

// NormalizeConfig canonicalizes enumerations and paths prior to default
// application. It mutates c in place. Values it cannot interpret are left
// untouched for ValidateConfig to report.
func NormalizeConfig(c *Config) (*NormalizationResult, error) {
	if c == nil {
		return nil, fmt.Errorf("config nil")
	}
	res := &NormalizationResult{}
	normalizeSite(&c.Site, res)
	normalizeSource(&c.Source, res)
	normalizeEnvironments(c, res)
	normalizePrerender(&c.Prerender, res)
	normalizeMonitoring(c.Monitoring, res)
	return res, nil
}

// NormalizeBasePath trims whitespace, removes trailing slashes and adds the
// leading slash. "auto" is kept as is.
func NormalizeBasePath(raw string) string {
	p := strings.TrimSpace(raw)
	if strings.EqualFold(p, BasePathAuto) {
		return BasePathAuto
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func normalizeSite(s *SiteConfig, res *NormalizationResult) {
	if n := NormalizeBasePath(s.BasePath); n != s.BasePath {
		res.changed("site.base_path", s.BasePath, n)
		s.BasePath = n
	}
}

func cleanDir(field, dir string, res *NormalizationResult) string {
	if strings.TrimSpace(dir) == "" {
		return ""
	}
	cleaned := filepath.Clean(strings.TrimSpace(dir))
	if cleaned != dir {
		res.changed(field, dir, cleaned)
	}
	return cleaned
}

func normalizeSource(s *SourceConfig, res *NormalizationResult) {
	s.Directory = cleanDir("source.directory", s.Directory, res)
	s.StaticDirectory = cleanDir("source.static_directory", s.StaticDirectory, res)
}

func normalizeEnvironments(c *Config, res *NormalizationResult) {
	if c.Environment != "" {
		if env, err := deploy.ParseEnvironment(c.Environment); err == nil && string(env) != c.Environment {
			res.changed("environment", c.Environment, env)
			c.Environment = string(env)
		}
	}
	if len(c.Environments) == 0 {
		return
	}
	out := make(map[string]deploy.Profile, len(c.Environments))
	for name, p := range c.Environments {
		key := name
		if env, err := deploy.ParseEnvironment(name); err == nil {
			key = string(env)
		}
		field := "environments." + key
		if p.Adapter != "" {
			if a, err := deploy.ParseAdapter(string(p.Adapter)); err == nil && a != p.Adapter {
				res.changed(field+".adapter", p.Adapter, a)
				p.Adapter = a
			}
		}
		if p.PrerenderPolicy != "" {
			if pol, err := deploy.ParsePrerenderPolicy(string(p.PrerenderPolicy)); err == nil && pol != p.PrerenderPolicy {
				res.changed(field+".prerender_policy", p.PrerenderPolicy, pol)
				p.PrerenderPolicy = pol
			}
		}
		if p.OutputDirectory != "" {
			p.OutputDirectory = cleanDir(field+".output_directory", p.OutputDirectory, res)
		}
		p.FallbackPage = strings.TrimSpace(p.FallbackPage)
		if _, dup := out[key]; dup {
			res.Warnings = append(res.Warnings, fmt.Sprintf("duplicate environment %s after normalization, keeping %q", key, name))
		}
		out[key] = p
	}
	c.Environments = out
}

func normalizePrerender(p *PrerenderConfig, res *NormalizationResult) {
	if len(p.Entries) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(p.Entries))
	entries := make([]string, 0, len(p.Entries))
	for _, e := range p.Entries {
		t := strings.TrimSpace(e)
		if t == "" {
			continue
		}
		if t != "*" && !strings.HasPrefix(t, "/") {
			t = "/" + t
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		entries = append(entries, t)
	}
	if len(entries) != len(p.Entries) {
		res.Warnings = append(res.Warnings, fmt.Sprintf("normalized prerender.entries list (%d -> %d entries)", len(p.Entries), len(entries)))
	}
	p.Entries = entries
}

func normalizeMonitoring(m *MonitoringConfig, res *NormalizationResult) {
	if m == nil {
		return
	}
	if raw := string(m.Logging.Level); raw != "" {
		if lvl := NormalizeLogLevel(raw); lvl == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("unknown monitoring.logging.level '%s', defaulting to %s", raw, LogLevelInfo))
			m.Logging.Level = LogLevelInfo
		} else if lvl != m.Logging.Level {
			res.changed("monitoring.logging.level", m.Logging.Level, lvl)
			m.Logging.Level = lvl
		}
	}
	if raw := string(m.Logging.Format); raw != "" {
		if f := NormalizeLogFormat(raw); f == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("unknown monitoring.logging.format '%s', defaulting to %s", raw, LogFormatText))
			m.Logging.Format = LogFormatText
		} else if f != m.Logging.Format {
			res.changed("monitoring.logging.format", m.Logging.Format, f)
			m.Logging.Format = f
		}
	}
	if p := strings.TrimSpace(m.Metrics.Path); p != "" && !strings.HasPrefix(p, "/") {
		res.changed("monitoring.metrics.path", m.Metrics.Path, "/"+p)
		m.Metrics.Path = "/" + p
	}
}
