package deploy

// Inputs are the declared inputs of a resolution.
type Inputs struct {
	// Mode is the execution mode the caller was started in.
	Mode Mode
	// Environment selects the profile from the lookup table.
	Environment Environment
	// ProductionBasePath is the project-defined public mount path.
	ProductionBasePath string
	// Overrides replaces individual profile fields per environment.
	Overrides map[Environment]Profile
}

// Config is the resolved deployment configuration. It is built once per
// invocation and never mutated afterwards.
type Config struct {
	Environment     Environment     `yaml:"environment" json:"environment"`
	Mode            Mode            `yaml:"mode" json:"mode"`
	Adapter         AdapterKind     `yaml:"adapter" json:"adapter"`
	BasePath        string          `yaml:"base_path" json:"base_path"`
	OutputDirectory string          `yaml:"output_directory" json:"output_directory"`
	FallbackPage    string          `yaml:"fallback_page,omitempty" json:"fallback_page,omitempty"`
	PrerenderPolicy PrerenderPolicy `yaml:"prerender_policy" json:"prerender_policy"`
}

// Resolve computes the deployment configuration for in.
//
// In development mode the base path is always empty so the site is served
// from the root; otherwise it is exactly ProductionBasePath. The remaining
// fields come from the environment profile with overrides applied. The
// static adapter always gets a fallback page; the server adapter never does.
func Resolve(in Inputs) Config {
	env := in.Environment
	if env == "" {
		env = DefaultEnvironment
	}
	mode := in.Mode
	if mode == "" {
		mode = ModeBuild
	}

	profile := DefaultProfile(env)
	if o, ok := in.Overrides[env]; ok {
		profile = profile.merge(o)
	}

	cfg := Config{
		Environment:     env,
		Mode:            mode,
		Adapter:         profile.Adapter,
		BasePath:        in.ProductionBasePath,
		OutputDirectory: profile.OutputDirectory,
		FallbackPage:    profile.FallbackPage,
		PrerenderPolicy: profile.PrerenderPolicy,
	}
	if mode == ModeDevelopment {
		cfg.BasePath = ""
	}
	if cfg.OutputDirectory == "" {
		cfg.OutputDirectory = DefaultOutputDirectory
	}
	switch cfg.Adapter {
	case AdapterStatic:
		if cfg.FallbackPage == "" {
			cfg.FallbackPage = DefaultFallbackPage
		}
	default:
		cfg.FallbackPage = ""
	}
	return cfg
}

// IsDevelopment reports whether the configuration was resolved for development mode.
func (c Config) IsDevelopment() bool { return c.Mode == ModeDevelopment }
