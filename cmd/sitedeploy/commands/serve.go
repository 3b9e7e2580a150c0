package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/sitedeploy/internal/adapter"
	"git.home.luguber.info/inful/sitedeploy/internal/config"
	"git.home.luguber.info/inful/sitedeploy/internal/deploy"
	"git.home.luguber.info/inful/sitedeploy/internal/foundation/errors"
	"git.home.luguber.info/inful/sitedeploy/internal/metrics"
	"git.home.luguber.info/inful/sitedeploy/internal/server"
)

const defaultShutdownTimeout = 10 * time.Second

// ServeCmd serves a packaged build under its base path.
type ServeCmd struct {
	Env  string `short:"e" name:"env" help:"Deployment environment used to locate the build"`
	Dir  string `short:"d" name:"dir" help:"Packaged build directory (defaults to the resolved output directory)"`
	Host string `name:"host" help:"Listen host"`
	Port int    `short:"p" name:"port" help:"Listen port"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	target, err := s.target(g, root)
	if err != nil {
		return err
	}
	opts := server.Options{
		Root:       target.root,
		Deployment: target.deployment,
		Host:       pick(s.Host, target.host, config.DefaultServerHost),
		Port:       pick(s.Port, target.port, config.DefaultServerPort),
		Logger:     g.Logger,
	}
	shutdown := defaultShutdownTimeout
	if target.cfg != nil {
		tel := newTelemetry(target.cfg)
		opts.Recorder = tel.recorder
		if tel.enabled() {
			opts.MetricsHandler = metrics.HTTPHandler(tel.registry)
			opts.MetricsPath = tel.path
		}
		shutdown = target.cfg.ShutdownTimeout()
	}

	ctx, stop := signalContext()
	defer stop()

	_, _ = fmt.Fprintf(g.out(), "Serving %s under %q\n", target.root, target.deployment.BasePath)
	return server.New(opts).Run(ctx, shutdown)
}

// serveTarget describes what a serve invocation publishes.
type serveTarget struct {
	root       string
	deployment deploy.Config
	host       string
	port       int
	cfg        *config.Config
}

// target locates the packaged build. With --dir the project file is optional,
// which is how the server adapter's container image runs.
func (s *ServeCmd) target(g *Global, root *CLI) (*serveTarget, error) {
	var p *project
	if s.Dir == "" || fileExists(root.Config) {
		var err error
		if p, err = loadProject(g, root); err != nil {
			return nil, err
		}
	}

	t := &serveTarget{}
	dir := s.Dir
	if p != nil {
		t.cfg = p.cfg
		t.host, t.port = p.cfg.Server.Host, p.cfg.Server.Port
		dep, err := p.resolve(s.Env, deploy.ModeBuild)
		if err != nil {
			return nil, err
		}
		t.deployment = dep
		if dir == "" {
			dir = p.path(dep.OutputDirectory)
		}
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	manifest, err := adapter.ReadManifest(dir)
	switch {
	case err == nil:
		t.root = filepath.Join(dir, manifest.ClientDir)
		t.deployment = deploy.Config{
			Environment:     manifest.Environment,
			Mode:            deploy.ModeBuild,
			Adapter:         deploy.AdapterServer,
			BasePath:        manifest.BasePath,
			OutputDirectory: dir,
			FallbackPage:    manifest.FallbackPage,
			PrerenderPolicy: t.deployment.PrerenderPolicy,
		}
		t.host, t.port = pick(manifest.Host, t.host), pick(manifest.Port, t.port)
		slog.Debug("Loaded server manifest", "build_id", manifest.BuildID, "fingerprint", manifest.Fingerprint)
	case errors.HasCategory(err, errors.CategoryNotFound):
		// A static build: serve the tree as published.
		if !dirExists(dir) {
			return nil, errors.NewError(errors.CategoryNotFound, "no packaged build found (run sitedeploy build first)").
				WithContext("dir", dir).
				Build()
		}
		t.root = dir
		t.deployment.Adapter = deploy.AdapterStatic
		t.deployment.OutputDirectory = dir
		if t.deployment.FallbackPage == "" {
			t.deployment.FallbackPage = deploy.DefaultFallbackPage
		}
	default:
		return nil, err
	}
	return t, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
