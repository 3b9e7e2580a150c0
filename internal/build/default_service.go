package build

import (
	"context"
	stderrors "errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitedeploy/internal/adapter"
	"git.home.luguber.info/inful/sitedeploy/internal/deploy"
	"git.home.luguber.info/inful/sitedeploy/internal/foundation/errors"
	"git.home.luguber.info/inful/sitedeploy/internal/logfields"
	"git.home.luguber.info/inful/sitedeploy/internal/metrics"
	"git.home.luguber.info/inful/sitedeploy/internal/observability"
	"git.home.luguber.info/inful/sitedeploy/internal/prerender"
)

// Stage names used for logging and metrics.
const (
	StageResolve   = "resolve"
	StageValidate  = "validate"
	StagePrerender = "prerender"
	StagePackage   = "package"
)

// AdapterLookup returns the packaging adapter for a kind.
type AdapterLookup func(kind deploy.AdapterKind) (adapter.Adapter, error)

// DefaultBuildService is the standard implementation of BuildService.
type DefaultBuildService struct {
	adapters AdapterLookup
	recorder metrics.Recorder
	now      func() time.Time
}

// NewBuildService creates a new DefaultBuildService backed by the adapter registry.
func NewBuildService() *DefaultBuildService {
	return &DefaultBuildService{
		adapters: adapter.For,
		recorder: metrics.NoopRecorder{},
		now:      time.Now,
	}
}

// WithRecorder sets the metrics recorder.
func (s *DefaultBuildService) WithRecorder(r metrics.Recorder) *DefaultBuildService {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithAdapterLookup allows injecting custom adapters (for testing).
func (s *DefaultBuildService) WithAdapterLookup(lookup AdapterLookup) *DefaultBuildService {
	s.adapters = lookup
	return s
}

// Run executes the complete build pipeline.
func (s *DefaultBuildService) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	startTime := s.now()
	result := &BuildResult{StartTime: startTime, BuildID: req.Options.BuildID}
	if result.BuildID == "" {
		result.BuildID = uuid.NewString()
	}

	ctx = observability.WithBuildID(ctx, result.BuildID)
	ctx = observability.WithEnvironment(ctx, string(req.Environment))

	if req.Config == nil {
		return s.fail(ctx, result, StageResolve, errors.ConfigError("config required").Build())
	}

	// Stage 1: resolve
	stageStart := s.now()
	ctx = observability.WithStage(ctx, StageResolve)
	basePath := ""
	if req.Mode != deploy.ModeDevelopment {
		var err error
		if basePath, err = req.Config.ProductionBasePath(req.ProjectDir); err != nil {
			return s.fail(ctx, result, StageResolve, err)
		}
	}
	result.Deployment = deploy.Resolve(req.Config.DeploymentInputs(req.Mode, req.Environment, basePath))
	s.stageDone(StageResolve, stageStart, metrics.ResultSuccess)
	observability.InfoContext(ctx, "Resolved deployment configuration",
		logfields.Mode(string(result.Deployment.Mode)),
		logfields.Adapter(string(result.Deployment.Adapter)),
		logfields.BasePath(result.Deployment.BasePath),
		logfields.Output(result.Deployment.OutputDirectory))

	// Stage 2: validate
	stageStart = s.now()
	ctx = observability.WithStage(ctx, StageValidate)
	if err := result.Deployment.Validate(); err != nil {
		return s.fail(ctx, result, StageValidate, err)
	}
	s.stageDone(StageValidate, stageStart, metrics.ResultSuccess)

	if err := ctx.Err(); err != nil {
		return s.cancel(ctx, result, StageValidate, err)
	}

	sourceDir := s.projectPath(req, req.Config.Source.Directory)
	staticDir := ""
	if req.Config.Source.StaticDirectory != "" {
		staticDir = s.projectPath(req, req.Config.Source.StaticDirectory)
	}

	// Stage 3: prerender check
	if !req.Options.SkipPrerender {
		stageStart = s.now()
		ctx = observability.WithStage(ctx, StagePrerender)
		checked := result.Deployment
		if checked.IsDevelopment() && checked.PrerenderPolicy == deploy.PolicyFail {
			// A broken link must not stop the dev loop from serving.
			checked.PrerenderPolicy = deploy.PolicyWarn
			slog.Debug("Prerender policy downgraded for development",
				slog.String("environment", string(result.Deployment.Environment)))
		}
		report, err := prerender.Check(ctx, prerender.Options{
			SourceDir:    sourceDir,
			StaticDir:    staticDir,
			Config:       checked,
			Entries:      req.Config.Prerender.Entries,
			CheckAnchors: req.Config.Prerender.AnchorsEnabled(),
			Recorder:     s.recorder,
		})
		result.Prerender = report
		if err != nil {
			if isCancellation(err) {
				return s.cancel(ctx, result, StagePrerender, err)
			}
			return s.fail(ctx, result, StagePrerender, err)
		}
		stageResult := metrics.ResultSuccess
		if report.IssueCount() > 0 {
			stageResult = metrics.ResultWarning
		}
		s.stageDone(StagePrerender, stageStart, stageResult)
	}

	// Stage 4: package
	if !req.Options.SkipPackage {
		stageStart = s.now()
		ctx = observability.WithStage(ctx, StagePackage)
		pkg, err := s.adapters(result.Deployment.Adapter)
		if err != nil {
			return s.fail(ctx, result, StagePackage, err)
		}
		host, port := req.Config.Server.Host, req.Config.Server.Port
		res, err := pkg.Package(ctx, adapter.Request{
			Config:     result.Deployment,
			ProjectDir: req.ProjectDir,
			SourceDir:  sourceDir,
			StaticDir:  staticDir,
			BuildID:    result.BuildID,
			SiteName:   req.Config.Site.Name,
			Host:       host,
			Port:       port,
			Prerender:  result.Prerender,
		})
		if err != nil {
			if isCancellation(err) {
				return s.cancel(ctx, result, StagePackage, err)
			}
			return s.fail(ctx, result, StagePackage, err)
		}
		result.Package = res
		s.stageDone(StagePackage, stageStart, metrics.ResultSuccess)
		observability.InfoContext(ctx, "Packaged site",
			logfields.Output(res.OutputDir),
			slog.Int("files", res.Files),
			slog.Int64("bytes", res.Bytes))
	}

	result.Status = BuildStatusSuccess
	outcome := metrics.BuildOutcomeSuccess
	if result.Prerender.IssueCount() > 0 {
		result.Status = BuildStatusWarning
		outcome = metrics.BuildOutcomeWarning
	}
	s.finish(result)
	s.recorder.IncBuildOutcome(outcome)
	observability.InfoContext(ctx, "Build completed",
		slog.String("status", string(result.Status)),
		logfields.DurationMS(float64(result.Duration.Milliseconds())))
	return result, nil
}

func (s *DefaultBuildService) projectPath(req BuildRequest, dir string) string {
	if filepath.IsAbs(dir) || req.ProjectDir == "" {
		return dir
	}
	return filepath.Join(req.ProjectDir, dir)
}

func (s *DefaultBuildService) stageDone(stage string, start time.Time, res metrics.ResultLabel) {
	s.recorder.ObserveStageDuration(stage, s.now().Sub(start))
	s.recorder.IncStageResult(stage, res)
}

func (s *DefaultBuildService) finish(result *BuildResult) {
	result.EndTime = s.now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	s.recorder.ObserveBuildDuration(result.Duration)
}

func (s *DefaultBuildService) fail(ctx context.Context, result *BuildResult, stage string, err error) (*BuildResult, error) {
	result.Status = BuildStatusFailed
	s.finish(result)
	s.recorder.IncStageResult(stage, metrics.ResultFatal)
	s.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
	observability.ErrorContext(ctx, "Build failed", logfields.Stage(stage), logfields.Error(err))
	return result, err
}

func (s *DefaultBuildService) cancel(ctx context.Context, result *BuildResult, stage string, err error) (*BuildResult, error) {
	result.Status = BuildStatusCancelled
	s.finish(result)
	s.recorder.IncStageResult(stage, metrics.ResultCanceled)
	s.recorder.IncBuildOutcome(metrics.BuildOutcomeCanceled)
	observability.WarnContext(ctx, "Build cancelled", logfields.Stage(stage))
	return result, errors.RuntimeError("build cancelled").WithCause(err).WithContext("stage", stage).Build()
}

func isCancellation(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}
