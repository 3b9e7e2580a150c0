package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/sitedeploy/internal/build"
	"git.home.luguber.info/inful/sitedeploy/internal/deploy"
	"git.home.luguber.info/inful/sitedeploy/internal/dev"
	"git.home.luguber.info/inful/sitedeploy/internal/metrics"
	"git.home.luguber.info/inful/sitedeploy/internal/server"
)

// DevCmd resolves in development mode, serves the packaged site at the root
// path and rebuilds when the rendered tree changes.
type DevCmd struct {
	Env  string `short:"e" name:"env" help:"Deployment environment (local, pages-preview, pages-production)"`
	Host string `name:"host" help:"Listen host (defaults to server.host)"`
	Port int    `short:"p" name:"port" help:"Listen port (defaults to server.port)"`
}

func (d *DevCmd) Run(g *Global, root *CLI) error {
	p, err := loadProject(g, root)
	if err != nil {
		return err
	}
	dep, err := p.resolve(d.Env, deploy.ModeDevelopment)
	if err != nil {
		return err
	}
	if err := dep.Validate(); err != nil {
		return err
	}

	tel := newTelemetry(p.cfg)
	status := dev.NewStatus()
	svc := build.NewBuildService().WithRecorder(tel.recorder)
	srv := server.New(devServerOptions(p, dep, d.Host, d.Port, tel, status))

	ctx, stop := signalContext()
	defer stop()

	_, _ = fmt.Fprintf(g.out(), "Starting dev server for %s (watching %v)\n", dep.Environment, p.watchDirs())
	return dev.Run(ctx, dev.Options{
		WatchDirs: p.watchDirs(),
		Rebuild: func(ctx context.Context) error {
			_, err := svc.Run(ctx, build.BuildRequest{
				Config:      p.cfg,
				ProjectDir:  p.dir,
				Environment: dep.Environment,
				Mode:        deploy.ModeDevelopment,
			})
			return err
		},
		Status:          status,
		Server:          srv,
		ShutdownTimeout: p.cfg.ShutdownTimeout(),
	})
}

func devServerOptions(p *project, dep deploy.Config, host string, port int, tel telemetry, status server.BuildStatus) server.Options {
	opts := server.Options{
		Root:        publicDir(p.path(dep.OutputDirectory), dep),
		Deployment:  dep,
		Host:        pick(host, p.cfg.Server.Host),
		Port:        pick(port, p.cfg.Server.Port),
		Recorder:    tel.recorder,
		BuildStatus: status,
	}
	if tel.enabled() {
		opts.MetricsHandler = metrics.HTTPHandler(tel.registry)
		opts.MetricsPath = tel.path
	}
	return opts
}
