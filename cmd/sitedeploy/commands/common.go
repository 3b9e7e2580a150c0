// Package commands implements the sitedeploy subcommands.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitedeploy/internal/adapter"
	"git.home.luguber.info/inful/sitedeploy/internal/config"
	"git.home.luguber.info/inful/sitedeploy/internal/deploy"
	"git.home.luguber.info/inful/sitedeploy/internal/metrics"
	"git.home.luguber.info/inful/sitedeploy/internal/observability"
)

// EnvVarLogLevel overrides the log level from the project file and -v.
const EnvVarLogLevel = "SITEDEPLOY_LOG_LEVEL"

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
	// Out receives user-facing output; defaults to stdout.
	Out io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Project file path" default:"sitedeploy.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Resolve, check prerendered pages and package the site"`
	Dev     DevCmd     `cmd:"" help:"Serve the site at the root path and rebuild on change"`
	Serve   ServeCmd   `cmd:"" help:"Serve a packaged build under its base path"`
	Resolve ResolveCmd `cmd:"" help:"Print the resolved deployment configuration"`
	Check   CheckCmd   `cmd:"" help:"Validate the project file and check prerendered pages without packaging"`
	Init    InitCmd    `cmd:"" help:"Write an example project file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	logger := observability.NewLogger(os.Stderr, logLevel(c.Verbose, ""), "text")
	slog.SetDefault(logger)
	if g != nil {
		g.Logger = logger
	}
	return nil
}

// logLevel applies the precedence SITEDEPLOY_LOG_LEVEL > -v > project file.
func logLevel(verbose bool, configured config.LogLevel) slog.Level {
	if env := strings.TrimSpace(os.Getenv(EnvVarLogLevel)); env != "" {
		return observability.ParseLevel(env)
	}
	if verbose {
		return slog.LevelDebug
	}
	return observability.ParseLevel(string(configured))
}

// project is a loaded project file and the directory it lives in.
type project struct {
	cfg *config.Config
	dir string
}

// loadProject loads the project file and reconfigures logging from its
// monitoring block.
func loadProject(g *Global, root *CLI) (*project, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	dir, err := filepath.Abs(filepath.Dir(root.Config))
	if err != nil {
		dir = filepath.Dir(root.Config)
	}

	if cfg.Monitoring != nil {
		logger := observability.NewLogger(os.Stderr,
			logLevel(root.Verbose, cfg.Monitoring.Logging.Level),
			string(cfg.Monitoring.Logging.Format))
		slog.SetDefault(logger)
		if g != nil {
			g.Logger = logger
		}
	}
	slog.Debug("Loaded project file", "path", root.Config, "snapshot", cfg.Snapshot())
	return &project{cfg: cfg, dir: dir}, nil
}

func (p *project) path(dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(p.dir, dir)
}

// resolve selects the environment and resolves the deployment configuration
// for mode. The production base path is only read outside development mode.
func (p *project) resolve(envFlag string, mode deploy.Mode) (deploy.Config, error) {
	env, err := p.cfg.SelectEnvironment(envFlag)
	if err != nil {
		return deploy.Config{}, err
	}
	base := ""
	if mode != deploy.ModeDevelopment {
		if base, err = p.cfg.ProductionBasePath(p.dir); err != nil {
			return deploy.Config{}, err
		}
	}
	return deploy.Resolve(p.cfg.DeploymentInputs(mode, env, base)), nil
}

// watchDirs lists the directories the dev loop watches.
func (p *project) watchDirs() []string {
	dirs := []string{p.path(p.cfg.Source.Directory)}
	if p.cfg.Source.StaticDirectory != "" {
		dirs = append(dirs, p.path(p.cfg.Source.StaticDirectory))
	}
	return dirs
}

// publicDir is the directory a packaged build serves files from.
func publicDir(out string, d deploy.Config) string {
	if d.Adapter == deploy.AdapterServer {
		return filepath.Join(out, adapter.ClientDir)
	}
	return out
}

// telemetry holds the metrics wiring for long-running commands.
type telemetry struct {
	recorder metrics.Recorder
	registry *prom.Registry
	path     string
}

func newTelemetry(cfg *config.Config) telemetry {
	if cfg.Monitoring == nil || !cfg.Monitoring.Metrics.Enabled {
		return telemetry{recorder: metrics.NoopRecorder{}}
	}
	reg := prom.NewRegistry()
	return telemetry{
		recorder: metrics.NewPrometheusRecorder(reg),
		registry: reg,
		path:     cfg.Monitoring.Metrics.Path,
	}
}

func (t telemetry) enabled() bool { return t.registry != nil }

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func pick[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
