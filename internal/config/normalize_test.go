package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBasePath(t *testing.T) {
	tests := map[string]string{
		"":                   "",
		"/":                  "",
		"  ":                 "",
		"/personal-website/": "/personal-website",
		"personal-website":   "/personal-website",
		"/docs/v2//":         "/docs/v2",
		"AUTO":               BasePathAuto,
		" /spaced ":          "/spaced",
		"/already-canonical": "/already-canonical",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeBasePath(in), "input %q", in)
	}
}

func TestNormalizeConfig_Warnings(t *testing.T) {
	cfg := &Config{
		Site:   SiteConfig{BasePath: "/site/"},
		Source: SourceConfig{Directory: "./dist/"},
		Prerender: PrerenderConfig{
			Entries: []string{"*", "about", "/about", " ", "/blog"},
		},
		Monitoring: &MonitoringConfig{
			Metrics: MonitoringMetrics{Path: "metrics"},
			Logging: MonitoringLogging{Level: "WARNING"},
		},
	}
	res, err := NormalizeConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "/site", cfg.Site.BasePath)
	assert.Equal(t, "dist", cfg.Source.Directory)
	assert.Equal(t, []string{"*", "/about", "/blog"}, cfg.Prerender.Entries)
	assert.Equal(t, "/metrics", cfg.Monitoring.Metrics.Path)
	assert.Equal(t, LogLevelWarn, cfg.Monitoring.Logging.Level)
	assert.NotEmpty(t, res.Warnings)
}

func TestNormalizeConfig_Nil(t *testing.T) {
	_, err := NormalizeConfig(nil)
	require.Error(t, err)
}

func TestNormalizeConfig_LeavesUnknownValuesForValidation(t *testing.T) {
	cfg := &Config{Environment: "staging"}
	_, err := NormalizeConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Environment)
}
