// Package build provides the canonical build pipeline for sitedeploy.
// The build, check and dev commands all route through BuildService.
package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/sitedeploy/internal/adapter"
	"git.home.luguber.info/inful/sitedeploy/internal/config"
	"git.home.luguber.info/inful/sitedeploy/internal/deploy"
	"git.home.luguber.info/inful/sitedeploy/internal/prerender"
)

// BuildService executes a deployment build.
type BuildService interface {
	// Run executes resolve → validate → prerender → package.
	// Returns a BuildResult describing how far the pipeline got.
	Run(ctx context.Context, req BuildRequest) (*BuildResult, error)
}

// BuildRequest contains all inputs required to execute a build.
type BuildRequest struct {
	// Config is the loaded project file.
	Config *config.Config

	// ProjectDir is the directory relative paths of the project file resolve against.
	ProjectDir string

	// Environment is the selected deployment target.
	Environment deploy.Environment

	// Mode is the execution mode; development clears the base path.
	Mode deploy.Mode

	// Options provides optional build behavior modifiers.
	Options BuildOptions
}

// BuildOptions provides optional configuration for build behavior.
type BuildOptions struct {
	// BuildID overrides the generated build identifier.
	BuildID string

	// SkipPrerender disables the rendered page check.
	SkipPrerender bool

	// SkipPackage stops after the prerender check (used by `check`).
	SkipPackage bool
}

// BuildResult contains the outcome of a build execution.
type BuildResult struct {
	// Status indicates overall build outcome.
	Status BuildStatus

	// BuildID identifies this run in logs, reports and the server manifest.
	BuildID string

	// Deployment is the resolved configuration the build used.
	Deployment deploy.Config

	// Prerender is the check report, nil when the check was skipped.
	Prerender *prerender.Report

	// Package describes the packaged output, nil when packaging was skipped.
	Package *adapter.Result

	// Duration is the total build execution time.
	Duration time.Duration

	// StartTime is when the build started.
	StartTime time.Time

	// EndTime is when the build completed.
	EndTime time.Time
}

// BuildStatus represents the outcome of a build execution.
type BuildStatus string

const (
	// BuildStatusSuccess indicates the build completed without issues.
	BuildStatusSuccess BuildStatus = "success"

	// BuildStatusWarning indicates the build completed with prerender warnings.
	BuildStatusWarning BuildStatus = "warning"

	// BuildStatusFailed indicates the build encountered an error.
	BuildStatusFailed BuildStatus = "failed"

	// BuildStatusCancelled indicates the build was cancelled.
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsTerminal returns true if the status represents a final state.
func (s BuildStatus) IsTerminal() bool {
	return s == BuildStatusSuccess || s == BuildStatusWarning ||
		s == BuildStatusFailed || s == BuildStatusCancelled
}

// IsSuccess returns true if the build produced usable output.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess || s == BuildStatusWarning
}
