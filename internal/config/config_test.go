package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitedeploy/internal/deploy"
	"git.home.luguber.info/inful/sitedeploy/internal/foundation/errors"
)

func TestParse_MinimalFileGetsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`version: "1.0"
site:
  base_path: /personal-website/
`))
	require.NoError(t, err)

	assert.Equal(t, "/personal-website", cfg.Site.BasePath)
	assert.Equal(t, DefaultSourceDirectory, cfg.Source.Directory)
	assert.Equal(t, string(deploy.EnvPagesProduction), cfg.Environment)
	assert.Equal(t, []string{"*"}, cfg.Prerender.Entries)
	assert.True(t, cfg.Prerender.AnchorsEnabled())
	assert.Equal(t, DefaultServerHost, cfg.Server.Host)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	require.NotNil(t, cfg.Monitoring)
	assert.Equal(t, LogLevelInfo, cfg.Monitoring.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Monitoring.Logging.Format)
	assert.Equal(t, DefaultMetricsPath, cfg.Monitoring.Metrics.Path)
}

func TestParse_NumericVersionAccepted(t *testing.T) {
	cfg, err := Parse([]byte("version: 1.0\n"))
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, cfg.Version)
}

func TestParse_CanonicalizesEnvironments(t *testing.T) {
	cfg, err := Parse([]byte(`version: "1.0"
environment: Pages_Preview
environments:
  Local:
    adapter: NODE
  pages_production:
    prerender_policy: error
    output_directory: ./out/
`))
	require.NoError(t, err)

	assert.Equal(t, string(deploy.EnvPagesPreview), cfg.Environment)
	require.Contains(t, cfg.Environments, "local")
	assert.Equal(t, deploy.AdapterServer, cfg.Environments["local"].Adapter)
	require.Contains(t, cfg.Environments, "pages-production")
	assert.Equal(t, deploy.PolicyFail, cfg.Environments["pages-production"].PrerenderPolicy)
	assert.Equal(t, "out", cfg.Environments["pages-production"].OutputDirectory)
}

func TestParse_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("SITE_BASE", "/blog")
	cfg, err := Parse([]byte(`version: "1.0"
site:
  base_path: ${SITE_BASE}
`))
	require.NoError(t, err)
	assert.Equal(t, "/blog", cfg.Site.BasePath)
}

func TestParse_Rejections(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown top level key", "version: \"1.0\"\nbogus: true\n"},
		{"unknown profile key", "version: \"1.0\"\nenvironments:\n  local:\n    adaptr: server\n"},
		{"port out of range", "version: \"1.0\"\nserver:\n  port: 70000\n"},
		{"port wrong type", "version: \"1.0\"\nserver:\n  port: eighty\n"},
		{"missing version", "site:\n  base_path: /x\n"},
		{"unsupported version", "version: \"2.0\"\n"},
		{"unknown environment", "version: \"1.0\"\nenvironment: staging\n"},
		{"unknown environments key", "version: \"1.0\"\nenvironments:\n  staging: {}\n"},
		{"bad adapter", "version: \"1.0\"\nenvironments:\n  local:\n    adapter: lambda\n"},
		{"bad policy", "version: \"1.0\"\nenvironments:\n  local:\n    prerender_policy: ignore\n"},
		{"nested output directory", "version: \"1.0\"\nenvironments:\n  local:\n    output_directory: a/b\n"},
		{"output over static directory", "version: \"1.0\"\nsource:\n  static_directory: static\nenvironments:\n  pages-preview:\n    output_directory: static\n"},
		{"default output over static directory", "version: \"1.0\"\nsource:\n  static_directory: build/assets\n"},
		{"output over source directory", "version: \"1.0\"\nsource:\n  directory: dist\nenvironments:\n  local:\n    output_directory: dist\n"},
		{"source is the project root", "version: \"1.0\"\nsource:\n  directory: .\n"},
		{"absolute fallback", "version: \"1.0\"\nenvironments:\n  pages-preview:\n    fallback_page: /404.html\n"},
		{"base path with query", "version: \"1.0\"\nsite:\n  base_path: /a?b\n"},
		{"bad shutdown timeout", "version: \"1.0\"\nserver:\n  shutdown_timeout: soon\n"},
		{"empty document", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Equal(t, errors.CategoryConfig, errors.GetCategory(err))
		})
	}
}

func TestPathsOverlap(t *testing.T) {
	assert.True(t, pathsOverlap("build", "build"))
	assert.True(t, pathsOverlap("build", "build/assets"))
	assert.True(t, pathsOverlap("static", "./static/"))
	assert.True(t, pathsOverlap("build", "."))
	assert.False(t, pathsOverlap("build", "builder"))
	assert.False(t, pathsOverlap("build", "dist"))
	assert.False(t, pathsOverlap("build", "/srv/build"))
}

func TestParse_UnknownLogLevelFallsBack(t *testing.T) {
	cfg, err := Parse([]byte(`version: "1.0"
monitoring:
  logging:
    level: chatty
    format: JSON
`))
	require.NoError(t, err)
	assert.Equal(t, LogLevelInfo, cfg.Monitoring.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Monitoring.Logging.Format)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, errors.CategoryConfig, ce.Category())
	path, _ := ce.Context().GetString("path")
	assert.Contains(t, path, "nope.yaml")
}

func TestInit_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitedeploy.yaml")
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/personal-website", cfg.Site.BasePath)
	assert.Equal(t, "static", cfg.Source.StaticDirectory)
	assert.Equal(t, deploy.PolicyWarn, cfg.Environments[string(deploy.EnvPagesPreview)].PrerenderPolicy)
	assert.True(t, cfg.Monitoring.Metrics.Enabled)

	err = Init(path, false)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	require.NoError(t, os.WriteFile(path, []byte("junk"), 0o644))
	require.NoError(t, Init(path, true))
	_, err = Load(path)
	require.NoError(t, err)
}
