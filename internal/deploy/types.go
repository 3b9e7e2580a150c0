package deploy

import "git.home.luguber.info/inful/sitedeploy/internal/foundation/normalization"

// AdapterKind selects the packaging strategy for the build output.
type AdapterKind string

const (
	// AdapterServer packages the site for the bundled HTTP server runtime.
	AdapterServer AdapterKind = "server"
	// AdapterStatic packages the site as a plain file tree for static hosting.
	AdapterStatic AdapterKind = "static"
)

// PrerenderPolicy governs how missing routes and anchors found while
// checking rendered pages are reported.
type PrerenderPolicy string

const (
	// PolicyFail aborts the build when a page links to a missing route or anchor.
	PolicyFail PrerenderPolicy = "fail"
	// PolicyWarn logs broken links and lets the build finish.
	PolicyWarn PrerenderPolicy = "warn"
)

// Mode is the execution mode the build tool was started in.
type Mode string

const (
	// ModeDevelopment serves the site at the root path with live rebuilds.
	ModeDevelopment Mode = "development"
	// ModeBuild produces deployable output for the selected environment.
	ModeBuild Mode = "build"
)

// Environment names a deployment target.
type Environment string

const (
	// EnvLocal packages the site for the bundled server.
	EnvLocal Environment = "local"
	// EnvPagesPreview builds static output with link problems reported as warnings.
	EnvPagesPreview Environment = "pages-preview"
	// EnvPagesProduction builds static output for publishing; broken links fail the build.
	EnvPagesProduction Environment = "pages-production"
)

var adapterNormalizer = normalization.NewNormalizer("adapter", map[string]AdapterKind{
	"server": AdapterServer,
	"node":   AdapterServer,
	"static": AdapterStatic,
}, "")

var policyNormalizer = normalization.NewNormalizer("prerender policy", map[string]PrerenderPolicy{
	"fail":  PolicyFail,
	"warn":  PolicyWarn,
	"error": PolicyFail,
}, "")

var modeNormalizer = normalization.NewNormalizer("mode", map[string]Mode{
	"development": ModeDevelopment,
	"dev":         ModeDevelopment,
	"build":       ModeBuild,
}, ModeBuild)

var environmentNormalizer = normalization.NewNormalizer("environment", map[string]Environment{
	"local":            EnvLocal,
	"pages-preview":    EnvPagesPreview,
	"pages-production": EnvPagesProduction,
}, "")

// ParseAdapter canonicalizes an adapter name ("node" is accepted as an alias of server).
func ParseAdapter(raw string) (AdapterKind, error) { return adapterNormalizer.NormalizeWithError(raw) }

// ParsePrerenderPolicy canonicalizes a policy name.
func ParsePrerenderPolicy(raw string) (PrerenderPolicy, error) {
	return policyNormalizer.NormalizeWithError(raw)
}

// ParseEnvironment canonicalizes an environment name.
func ParseEnvironment(raw string) (Environment, error) {
	return environmentNormalizer.NormalizeWithError(raw)
}

// ParseMode canonicalizes a mode name, defaulting to ModeBuild.
func ParseMode(raw string) Mode { return modeNormalizer.Normalize(raw) }

// Environments lists the known environments.
func Environments() []Environment {
	return []Environment{EnvLocal, EnvPagesPreview, EnvPagesProduction}
}

// Valid reports whether k is a known adapter.
func (k AdapterKind) Valid() bool {
	return k == AdapterServer || k == AdapterStatic
}

// Valid reports whether p is a known policy.
func (p PrerenderPolicy) Valid() bool {
	return p == PolicyFail || p == PolicyWarn
}

// Valid reports whether e has a deployment profile.
func (e Environment) Valid() bool {
	_, ok := profiles[e]
	return ok
}
