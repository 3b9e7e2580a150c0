package deploy

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint returns a stable hash of the fields that affect build output.
// Two configurations with the same fingerprint produce the same artifact layout.
func (c Config) Fingerprint() string {
	h := sha256.New()
	w := func(parts ...string) {
		_, _ = h.Write([]byte(strings.Join(parts, "=")))
		_, _ = h.Write([]byte{0})
	}
	w("environment", string(c.Environment))
	w("mode", string(c.Mode))
	w("adapter", string(c.Adapter))
	w("base_path", c.BasePath)
	w("output_directory", c.OutputDirectory)
	w("fallback_page", c.FallbackPage)
	w("prerender_policy", string(c.PrerenderPolicy))
	return hex.EncodeToString(h.Sum(nil))
}
