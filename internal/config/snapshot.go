package config

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// Snapshot computes a stable hash of build-affecting configuration fields.
// Callers should run NormalizeConfig and applyDefaults first so equivalent
// spellings hash identically. Map iteration is sorted.
func (c *Config) Snapshot() string {
	if c == nil {
		return ""
	}
	h := sha256.New()
	w := func(parts ...string) { h.Write([]byte(strings.Join(parts, "="))); h.Write([]byte{0}) }

	w("site.base_path", c.Site.BasePath)
	w("source.directory", c.Source.Directory)
	w("source.static_directory", c.Source.StaticDirectory)
	w("environment", c.Environment)

	names := make([]string, 0, len(c.Environments))
	for name := range c.Environments {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := c.Environments[name]
		w("environments."+name, string(p.Adapter), p.OutputDirectory, p.FallbackPage, string(p.PrerenderPolicy))
	}

	w("prerender.entries", strings.Join(c.Prerender.Entries, ","))
	w("prerender.check_anchors", strconv.FormatBool(c.Prerender.AnchorsEnabled()))
	return hex.EncodeToString(h.Sum(nil))
}
