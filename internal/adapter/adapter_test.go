package adapter

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitedeploy/internal/deploy"
	"git.home.luguber.info/inful/sitedeploy/internal/foundation/errors"
	"git.home.luguber.info/inful/sitedeploy/internal/prerender"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func newRequest(t *testing.T, env deploy.Environment, files map[string]string) Request {
	t.Helper()
	project := t.TempDir()
	source := filepath.Join(project, "dist")
	static := filepath.Join(project, "static")
	writeTree(t, source, files)
	writeTree(t, static, map[string]string{"favicon.png": "static-png", "robots.txt": "static"})

	cfg := deploy.Resolve(deploy.Inputs{
		Mode:               deploy.ModeBuild,
		Environment:        env,
		ProductionBasePath: "/personal-website",
	})
	return Request{
		Config:     cfg,
		ProjectDir: project,
		SourceDir:  source,
		StaticDir:  static,
		BuildID:    "0f8fad5b-d9cb-469f-a165-70867728950e",
		SiteName:   "personal-website",
		Host:       "0.0.0.0",
		Port:       3000,
	}
}

func TestFor(t *testing.T) {
	a, err := For(deploy.AdapterStatic)
	require.NoError(t, err)
	assert.Equal(t, deploy.AdapterStatic, a.Kind())

	a, err = For(deploy.AdapterServer)
	require.NoError(t, err)
	assert.Equal(t, deploy.AdapterServer, a.Kind())

	_, err = For("lambda")
	require.Error(t, err)
	assert.Equal(t, errors.CategoryValidation, errors.GetCategory(err))

	assert.Equal(t, []deploy.AdapterKind{deploy.AdapterServer, deploy.AdapterStatic}, Kinds())
}

func TestStaticAdapter_Package(t *testing.T) {
	req := newRequest(t, deploy.EnvPagesProduction, map[string]string{
		"index.html":    "<h1>home</h1>",
		"about.html":    "<h1>about</h1>",
		"_app/start.js": "js",
		"robots.txt":    "rendered",
	})
	req.Prerender = &prerender.Report{Pages: 2}

	// stale files from a previous build disappear
	writeTree(t, req.OutputDir(), map[string]string{"stale.html": "old"})

	res, err := StaticAdapter{}.Package(context.Background(), req)
	require.NoError(t, err)

	out := filepath.Join(req.ProjectDir, "build")
	assert.Equal(t, out, res.OutputDir)
	assert.Equal(t, out, res.PublicDir)
	assert.Equal(t, "404.html", res.FallbackPage)
	assert.Equal(t, FallbackGenerated, res.FallbackSource)
	assert.Equal(t, 6, res.Files)

	assert.NoFileExists(t, filepath.Join(out, "stale.html"))
	assert.Equal(t, "<h1>home</h1>", readFile(t, filepath.Join(out, "index.html")))
	assert.Equal(t, "static-png", readFile(t, filepath.Join(out, "favicon.png")))
	assert.Equal(t, "rendered", readFile(t, filepath.Join(out, "robots.txt")), "rendered files win over static assets")
	assert.FileExists(t, filepath.Join(out, ".nojekyll"))

	fallback := readFile(t, filepath.Join(out, "404.html"))
	assert.Contains(t, fallback, `href="/personal-website/"`)
	assert.Contains(t, fallback, "Personal-Website")

	var report BuildReport
	require.NoError(t, json.Unmarshal([]byte(readFile(t, filepath.Join(out, ReportPath))), &report))
	assert.Equal(t, req.BuildID, report.BuildID)
	assert.Equal(t, req.Config, report.Config)
	assert.Equal(t, req.Config.Fingerprint(), report.Fingerprint)
	require.NotNil(t, report.Prerender)
	assert.Equal(t, 2, report.Prerender.Pages)
}

func TestStaticAdapter_KeepsRenderedFallback(t *testing.T) {
	req := newRequest(t, deploy.EnvPagesPreview, map[string]string{
		"index.html": "home",
		"404.html":   "framework 404",
	})
	res, err := StaticAdapter{}.Package(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, FallbackRendered, res.FallbackSource)
	assert.Equal(t, "framework 404", readFile(t, filepath.Join(res.OutputDir, "404.html")))
}

func TestStaticAdapter_ShellFallback(t *testing.T) {
	req := newRequest(t, deploy.EnvPagesPreview, map[string]string{"index.html": "<div id=app></div>"})
	req.Config.FallbackPage = "200.html"

	res, err := StaticAdapter{}.Package(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, FallbackShell, res.FallbackSource)
	assert.Equal(t, "<div id=app></div>", readFile(t, filepath.Join(res.OutputDir, "200.html")))
}

func TestStaticAdapter_MissingSource(t *testing.T) {
	req := newRequest(t, deploy.EnvPagesProduction, nil)
	req.SourceDir = filepath.Join(req.ProjectDir, "nowhere")

	_, err := StaticAdapter{}.Package(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, errors.CategoryFileSystem, errors.GetCategory(err))
}

func TestStaticAdapter_RefusesOverlappingOutput(t *testing.T) {
	req := newRequest(t, deploy.EnvPagesProduction, map[string]string{"index.html": "home"})
	req.Config.OutputDirectory = "dist"

	_, err := StaticAdapter{}.Package(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, errors.CategoryBuild, errors.GetCategory(err))
	assert.FileExists(t, filepath.Join(req.SourceDir, "index.html"), "source tree untouched")
}

func TestStaticAdapter_RefusesOutputOverStaticDir(t *testing.T) {
	req := newRequest(t, deploy.EnvPagesProduction, map[string]string{"index.html": "home"})
	req.Config.OutputDirectory = "static"

	_, err := StaticAdapter{}.Package(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, errors.CategoryBuild, errors.GetCategory(err))
	assert.Equal(t, "static-png", readFile(t, filepath.Join(req.StaticDir, "favicon.png")), "static assets untouched")
}

func TestStaticAdapter_RefusesStaticDirInsideOutput(t *testing.T) {
	req := newRequest(t, deploy.EnvPagesProduction, map[string]string{"index.html": "home"})
	req.StaticDir = filepath.Join(req.ProjectDir, "build", "assets")
	writeTree(t, req.StaticDir, map[string]string{"logo.svg": "svg"})

	_, err := StaticAdapter{}.Package(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, errors.CategoryBuild, errors.GetCategory(err))
	assert.FileExists(t, filepath.Join(req.StaticDir, "logo.svg"))
}

func TestStaticAdapter_FailedPackageKeepsPreviousOutput(t *testing.T) {
	req := newRequest(t, deploy.EnvPagesProduction, map[string]string{"index.html": "v1"})
	res, err := StaticAdapter{}.Package(context.Background(), req)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(req.SourceDir))
	_, err = StaticAdapter{}.Package(context.Background(), req)
	require.Error(t, err)

	assert.Equal(t, "v1", readFile(t, filepath.Join(res.OutputDir, "index.html")))
	assert.FileExists(t, filepath.Join(res.OutputDir, "404.html"))
	leftovers, err := filepath.Glob(filepath.Join(req.ProjectDir, ".build.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "staging directories are removed")
}

func TestStaticAdapter_ReplacesPreviousOutput(t *testing.T) {
	req := newRequest(t, deploy.EnvPagesProduction, map[string]string{"index.html": "v1"})
	_, err := StaticAdapter{}.Package(context.Background(), req)
	require.NoError(t, err)

	writeTree(t, req.SourceDir, map[string]string{"index.html": "v2"})
	res, err := StaticAdapter{}.Package(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "v2", readFile(t, filepath.Join(res.OutputDir, "index.html")))

	entries, err := os.ReadDir(req.ProjectDir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"build", "dist", "static"}, names)
}

func TestStaticAdapter_Canceled(t *testing.T) {
	req := newRequest(t, deploy.EnvPagesProduction, map[string]string{"index.html": "home"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := StaticAdapter{}.Package(ctx, req)
	require.ErrorIs(t, err, context.Canceled)
	assert.NoDirExists(t, req.OutputDir())
}

func TestServerAdapter_Package(t *testing.T) {
	req := newRequest(t, deploy.EnvLocal, map[string]string{
		"index.html": "home",
		"about.html": "about",
	})
	require.Equal(t, deploy.AdapterServer, req.Config.Adapter)

	res, err := ServerAdapter{}.Package(context.Background(), req)
	require.NoError(t, err)

	out := filepath.Join(req.ProjectDir, "build")
	assert.Equal(t, filepath.Join(out, ClientDir), res.PublicDir)
	assert.Empty(t, res.FallbackPage)
	assert.Equal(t, "home", readFile(t, filepath.Join(out, "client", "index.html")))
	assert.NoFileExists(t, filepath.Join(out, ".nojekyll"))

	manifest, err := ReadManifest(out)
	require.NoError(t, err)
	assert.Equal(t, deploy.EnvLocal, manifest.Environment)
	assert.Equal(t, "/personal-website", manifest.BasePath)
	assert.Equal(t, req.BuildID, manifest.BuildID)
	assert.Equal(t, req.Config.Fingerprint(), manifest.Fingerprint)
	assert.Equal(t, 3000, manifest.Port)

	dockerfile := readFile(t, filepath.Join(out, "Dockerfile"))
	assert.Contains(t, dockerfile, "FROM "+DefaultRuntimeImage)
	assert.Contains(t, dockerfile, "WORKDIR /srv/personal-website")
	assert.Contains(t, dockerfile, "build 0f8fad5b")
	assert.Contains(t, dockerfile, "EXPOSE 3000")
	assert.Contains(t, dockerfile, `"--host", "0.0.0.0"`)
	assert.Contains(t, dockerfile, `org.opencontainers.image.base-path="/personal-website"`)

	assert.FileExists(t, filepath.Join(out, ReportPath))
}

func TestReadManifest_Missing(t *testing.T) {
	_, err := ReadManifest(t.TempDir())
	require.Error(t, err)
	assert.Equal(t, errors.CategoryNotFound, errors.GetCategory(err))
}

func TestWithin(t *testing.T) {
	assert.True(t, within("/a/b", "/a"))
	assert.True(t, within("/a", "/a"))
	assert.False(t, within("/ab", "/a"))
	assert.False(t, within("/a", "/a/b"))
}
