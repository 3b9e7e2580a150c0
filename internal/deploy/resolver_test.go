package deploy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_DevelopmentModeClearsBasePath(t *testing.T) {
	for _, env := range Environments() {
		for _, base := range []string{"", "/personal-website", "/a/b", "not-valid/"} {
			cfg := Resolve(Inputs{Mode: ModeDevelopment, Environment: env, ProductionBasePath: base})
			assert.Empty(t, cfg.BasePath, "env=%s base=%q", env, base)
			assert.True(t, cfg.IsDevelopment())
		}
	}
}

func TestResolve_BuildModeUsesProductionBasePath(t *testing.T) {
	for _, env := range Environments() {
		for _, base := range []string{"", "/personal-website", "/a/b", "unvalidated/"} {
			cfg := Resolve(Inputs{Mode: ModeBuild, Environment: env, ProductionBasePath: base})
			assert.Equal(t, base, cfg.BasePath, "env=%s", env)
		}
	}
}

func TestResolve_EnvironmentTable(t *testing.T) {
	tests := []struct {
		env      Environment
		adapter  AdapterKind
		fallback string
		policy   PrerenderPolicy
	}{
		{EnvLocal, AdapterServer, "", PolicyWarn},
		{EnvPagesPreview, AdapterStatic, "404.html", PolicyWarn},
		{EnvPagesProduction, AdapterStatic, "404.html", PolicyFail},
	}
	for _, tt := range tests {
		t.Run(string(tt.env), func(t *testing.T) {
			cfg := Resolve(Inputs{Environment: tt.env, ProductionBasePath: "/personal-website"})
			assert.Equal(t, tt.env, cfg.Environment)
			assert.Equal(t, ModeBuild, cfg.Mode)
			assert.Equal(t, tt.adapter, cfg.Adapter)
			assert.Equal(t, "build", cfg.OutputDirectory)
			assert.Equal(t, tt.fallback, cfg.FallbackPage)
			assert.Equal(t, tt.policy, cfg.PrerenderPolicy)
			require.NoError(t, cfg.Validate())
		})
	}
}

func TestResolve_Defaults(t *testing.T) {
	cfg := Resolve(Inputs{})
	assert.Equal(t, DefaultEnvironment, cfg.Environment)
	assert.Equal(t, ModeBuild, cfg.Mode)
	assert.Equal(t, AdapterStatic, cfg.Adapter)

	unknown := Resolve(Inputs{Environment: "staging"})
	assert.Equal(t, DefaultProfile(DefaultEnvironment).Adapter, unknown.Adapter)
}

func TestResolve_OutputDirectoryIsDeterministic(t *testing.T) {
	in := Inputs{Mode: ModeBuild, Environment: EnvPagesPreview, ProductionBasePath: "/site"}
	first := Resolve(in)
	for i := 0; i < 10; i++ {
		next := Resolve(in)
		assert.Equal(t, first.OutputDirectory, next.OutputDirectory)
		assert.Equal(t, first, next)
		assert.Equal(t, first.Fingerprint(), next.Fingerprint())
	}
}

func TestResolve_StaticAlwaysHasFallback(t *testing.T) {
	overrides := map[Environment]Profile{
		EnvLocal: {Adapter: AdapterStatic},
	}
	for _, env := range Environments() {
		cfg := Resolve(Inputs{Environment: env, Overrides: overrides})
		if cfg.Adapter == AdapterStatic {
			assert.NotEmpty(t, cfg.FallbackPage, "env=%s", env)
		}
	}
}

func TestResolve_Overrides(t *testing.T) {
	in := Inputs{
		Environment: EnvPagesProduction,
		Overrides: map[Environment]Profile{
			EnvPagesProduction: {OutputDirectory: "dist", PrerenderPolicy: PolicyWarn, FallbackPage: "200.html"},
			EnvLocal:           {OutputDirectory: "ignored"},
		},
	}
	cfg := Resolve(in)
	assert.Equal(t, "dist", cfg.OutputDirectory)
	assert.Equal(t, PolicyWarn, cfg.PrerenderPolicy)
	assert.Equal(t, "200.html", cfg.FallbackPage)
	assert.Equal(t, AdapterStatic, cfg.Adapter)

	server := Resolve(Inputs{
		Environment: EnvPagesPreview,
		Overrides:   map[Environment]Profile{EnvPagesPreview: {Adapter: AdapterServer}},
	})
	assert.Equal(t, AdapterServer, server.Adapter)
	assert.Empty(t, server.FallbackPage)
}

func TestConfig_URLAndStripBase(t *testing.T) {
	cfg := Config{BasePath: "/personal-website"}
	assert.Equal(t, "/personal-website/about", cfg.URL("/about"))
	assert.Equal(t, "/personal-website/about", cfg.URL("about"))

	route, ok := cfg.StripBase("/personal-website/blog/post")
	require.True(t, ok)
	assert.Equal(t, "/blog/post", route)

	route, ok = cfg.StripBase("/personal-website")
	require.True(t, ok)
	assert.Equal(t, "/", route)

	_, ok = cfg.StripBase("/personal-websiteX/a")
	assert.False(t, ok)
	_, ok = cfg.StripBase("/other")
	assert.False(t, ok)

	root := Config{}
	route, ok = root.StripBase("/x")
	require.True(t, ok)
	assert.Equal(t, "/x", route)
	assert.Equal(t, "/x", root.URL("/x"))
}
