package deploy

import (
	stderrors "errors"
	"fmt"
	"path"
	"strings"

	"git.home.luguber.info/inful/sitedeploy/internal/foundation/errors"
)

// ValidateBasePath checks that p is empty, or starts with "/" and does not end with "/".
// Each segment is limited to RFC 3986 path characters, without "*", so the
// path can be mounted as a literal router prefix.
func ValidateBasePath(p string) error {
	if p == "" {
		return nil
	}
	if !strings.HasPrefix(p, "/") {
		return fmt.Errorf("base path %q must start with /", p)
	}
	if strings.HasSuffix(p, "/") {
		return fmt.Errorf("base path %q must not end with /", p)
	}
	if strings.ContainsAny(p, "?# \t") {
		return fmt.Errorf("base path %q must not contain query, fragment or whitespace", p)
	}
	if path.Clean(p) != p {
		return fmt.Errorf("base path %q is not clean (expected %q)", p, path.Clean(p))
	}
	for _, seg := range strings.Split(p[1:], "/") {
		if i := invalidSegmentChar(seg); i >= 0 {
			return fmt.Errorf("base path %q contains invalid character %q in segment %q", p, seg[i], seg)
		}
	}
	return nil
}

// invalidSegmentChar returns the index of the first byte in seg that is not
// a path character, or -1.
func invalidSegmentChar(seg string) int {
	for i := 0; i < len(seg); i++ {
		c := seg[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		case strings.IndexByte("-._~!$&'()+,;=:@", c) >= 0:
		case c == '%':
			if i+2 >= len(seg) || !isHex(seg[i+1]) || !isHex(seg[i+2]) {
				return i
			}
			i += 2
		default:
			return i
		}
	}
	return -1
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// ValidateOutputDirectory checks that dir is a single relative path segment.
func ValidateOutputDirectory(dir string) error {
	switch {
	case dir == "":
		return stderrors.New("output directory must not be empty")
	case dir == "." || dir == "..":
		return fmt.Errorf("output directory %q must name a directory", dir)
	case strings.ContainsAny(dir, `/\`):
		return fmt.Errorf("output directory %q must be a single relative path segment", dir)
	}
	return nil
}

func validateFallbackPage(page string) error {
	if page == "" {
		return stderrors.New("fallback page is required for the static adapter")
	}
	if strings.HasPrefix(page, "/") || strings.Contains(page, "..") || strings.Contains(page, `\`) {
		return fmt.Errorf("fallback page %q must be a relative file name", page)
	}
	return nil
}

// Validate checks the configuration invariants and returns a validation
// error listing every violation.
func (c Config) Validate() error {
	var problems []error
	if !c.Adapter.Valid() {
		problems = append(problems, fmt.Errorf("unknown adapter %q", c.Adapter))
	}
	if !c.PrerenderPolicy.Valid() {
		problems = append(problems, fmt.Errorf("unknown prerender policy %q", c.PrerenderPolicy))
	}
	if err := ValidateBasePath(c.BasePath); err != nil {
		problems = append(problems, err)
	}
	if err := ValidateOutputDirectory(c.OutputDirectory); err != nil {
		problems = append(problems, err)
	}
	if c.Adapter == AdapterStatic {
		if err := validateFallbackPage(c.FallbackPage); err != nil {
			problems = append(problems, err)
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return errors.ValidationError("invalid deployment configuration").
		WithCause(stderrors.Join(problems...)).
		WithContext("environment", string(c.Environment)).
		WithContext("violations", len(problems)).
		Build()
}
