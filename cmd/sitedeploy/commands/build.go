package commands

import (
	"fmt"
	"io"

	"git.home.luguber.info/inful/sitedeploy/internal/build"
	"git.home.luguber.info/inful/sitedeploy/internal/deploy"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Env           string `short:"e" name:"env" help:"Deployment environment (local, pages-preview, pages-production)"`
	SkipPrerender bool   `name:"skip-prerender" help:"Package without checking rendered pages"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	p, err := loadProject(g, root)
	if err != nil {
		return err
	}
	env, err := p.cfg.SelectEnvironment(b.Env)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	out := g.out()
	_, _ = fmt.Fprintf(out, "Building site for %s\n", env)
	result, err := build.NewBuildService().Run(ctx, build.BuildRequest{
		Config:      p.cfg,
		ProjectDir:  p.dir,
		Environment: env,
		Mode:        deploy.ModeBuild,
		Options:     build.BuildOptions{SkipPrerender: b.SkipPrerender},
	})
	if err != nil {
		_, _ = fmt.Fprintln(out, "Build failed")
		return err
	}
	printBuildSummary(out, result)
	return nil
}

func printBuildSummary(out io.Writer, result *build.BuildResult) {
	d := result.Deployment
	_, _ = fmt.Fprintf(out, "Build %s (%s)\n", result.Status, result.BuildID)
	_, _ = fmt.Fprintf(out, "  adapter:   %s\n", d.Adapter)
	_, _ = fmt.Fprintf(out, "  base path: %q\n", d.BasePath)
	if result.Package != nil {
		_, _ = fmt.Fprintf(out, "  output:    %s (%d files)\n", result.Package.OutputDir, result.Package.Files)
		if result.Package.FallbackPage != "" {
			_, _ = fmt.Fprintf(out, "  fallback:  %s (%s)\n", result.Package.FallbackPage, result.Package.FallbackSource)
		}
	}
	if n := result.Prerender.IssueCount(); n > 0 {
		_, _ = fmt.Fprintf(out, "  prerender: %d issue(s) reported as warnings\n", n)
	}
}
