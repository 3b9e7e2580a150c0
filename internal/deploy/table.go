package deploy

const (
	// DefaultOutputDirectory is where packaged artifacts are written.
	DefaultOutputDirectory = "build"
	// DefaultFallbackPage is served for unmatched routes under the static adapter.
	DefaultFallbackPage = "404.html"
	// DefaultEnvironment is used when no environment is selected.
	DefaultEnvironment = EnvPagesProduction
)

// Profile is the environment-dependent part of a deployment configuration.
// In overrides, zero-valued fields keep the table value.
type Profile struct {
	Adapter         AdapterKind     `yaml:"adapter,omitempty" json:"adapter,omitempty"`
	OutputDirectory string          `yaml:"output_directory,omitempty" json:"output_directory,omitempty"`
	FallbackPage    string          `yaml:"fallback_page,omitempty" json:"fallback_page,omitempty"`
	PrerenderPolicy PrerenderPolicy `yaml:"prerender_policy,omitempty" json:"prerender_policy,omitempty"`
}

var profiles = map[Environment]Profile{
	EnvLocal: {
		Adapter:         AdapterServer,
		OutputDirectory: DefaultOutputDirectory,
		PrerenderPolicy: PolicyWarn,
	},
	EnvPagesPreview: {
		Adapter:         AdapterStatic,
		OutputDirectory: DefaultOutputDirectory,
		FallbackPage:    DefaultFallbackPage,
		PrerenderPolicy: PolicyWarn,
	},
	EnvPagesProduction: {
		Adapter:         AdapterStatic,
		OutputDirectory: DefaultOutputDirectory,
		FallbackPage:    DefaultFallbackPage,
		PrerenderPolicy: PolicyFail,
	},
}

// DefaultProfile returns the built-in profile for env. Unknown environments
// get the DefaultEnvironment profile.
func DefaultProfile(env Environment) Profile {
	if p, ok := profiles[env]; ok {
		return p
	}
	return profiles[DefaultEnvironment]
}

// merge overlays the non-zero fields of o onto p.
func (p Profile) merge(o Profile) Profile {
	if o.Adapter != "" {
		p.Adapter = o.Adapter
	}
	if o.OutputDirectory != "" {
		p.OutputDirectory = o.OutputDirectory
	}
	if o.FallbackPage != "" {
		p.FallbackPage = o.FallbackPage
	}
	if o.PrerenderPolicy != "" {
		p.PrerenderPolicy = o.PrerenderPolicy
	}
	return p
}
