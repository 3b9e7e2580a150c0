package adapter

import (
	"context"
	"fmt"
	"sort"

	"git.home.luguber.info/inful/sitedeploy/internal/deploy"
	"git.home.luguber.info/inful/sitedeploy/internal/foundation/errors"
	"git.home.luguber.info/inful/sitedeploy/internal/prerender"
)

// Request describes one packaging run.
type Request struct {
	Config deploy.Config
	// ProjectDir is the directory Config.OutputDirectory is relative to.
	ProjectDir string
	// SourceDir is the framework's rendered output tree.
	SourceDir string
	// StaticDir holds extra assets copied verbatim. Optional.
	StaticDir string
	BuildID   string
	SiteName  string
	Host      string
	Port      int
	// Prerender is included in the build report when the check ran.
	Prerender *prerender.Report
}

// OutputDir returns the absolute or project-relative output directory.
func (r Request) OutputDir() string {
	return joinProject(r.ProjectDir, r.Config.OutputDirectory)
}

// Result summarizes the packaged output.
type Result struct {
	Adapter   deploy.AdapterKind `json:"adapter"`
	OutputDir string             `json:"output_dir"`
	// PublicDir is the directory holding the published files.
	PublicDir    string `json:"public_dir"`
	Files        int    `json:"files"`
	Bytes        int64  `json:"bytes"`
	FallbackPage string `json:"fallback_page,omitempty"`
	// FallbackSource tells where the fallback page came from: rendered, shell or generated.
	FallbackSource string `json:"fallback_source,omitempty"`
}

// Adapter packages a rendered site for one hosting model.
type Adapter interface {
	Kind() deploy.AdapterKind
	Package(ctx context.Context, req Request) (*Result, error)
}

var registry = map[deploy.AdapterKind]Adapter{
	deploy.AdapterStatic: StaticAdapter{},
	deploy.AdapterServer: ServerAdapter{},
}

// For returns the adapter registered for kind.
func For(kind deploy.AdapterKind) (Adapter, error) {
	a, ok := registry[kind]
	if !ok {
		return nil, errors.ValidationError(fmt.Sprintf("no adapter registered for %q", kind)).
			WithContext("adapter", string(kind)).
			Build()
	}
	return a, nil
}

// Kinds lists the registered adapter kinds in sorted order.
func Kinds() []deploy.AdapterKind {
	kinds := make([]deploy.AdapterKind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
