package commands

import (
	"fmt"

	"git.home.luguber.info/inful/sitedeploy/internal/build"
	"git.home.luguber.info/inful/sitedeploy/internal/deploy"
)

// CheckCmd validates the project file and the resolved configuration and
// runs the prerender check without packaging.
type CheckCmd struct {
	Env string `short:"e" name:"env" help:"Deployment environment (local, pages-preview, pages-production)"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	p, err := loadProject(g, root)
	if err != nil {
		return err
	}
	env, err := p.cfg.SelectEnvironment(c.Env)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	result, err := build.NewBuildService().Run(ctx, build.BuildRequest{
		Config:      p.cfg,
		ProjectDir:  p.dir,
		Environment: env,
		Mode:        deploy.ModeBuild,
		Options:     build.BuildOptions{SkipPackage: true},
	})
	out := g.out()
	if err != nil {
		_, _ = fmt.Fprintln(out, "Check failed")
		return err
	}
	report := result.Prerender
	_, _ = fmt.Fprintf(out, "Project file OK: %s\n", root.Config)
	_, _ = fmt.Fprintf(out, "Deployment OK: %s, %s adapter, base path %q\n",
		result.Deployment.Environment, result.Deployment.Adapter, result.Deployment.BasePath)
	if report != nil {
		_, _ = fmt.Fprintf(out, "Checked %d pages and %d links: %d issue(s)\n",
			report.Pages, report.Links, report.IssueCount())
	}
	return nil
}
