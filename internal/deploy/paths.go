package deploy

import "strings"

// URL prefixes route (an absolute site path such as "/about") with the base path.
func (c Config) URL(route string) string {
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return c.BasePath + route
}

// StripBase removes the base path from an absolute URL path. ok is false when
// urlPath is outside the site.
func (c Config) StripBase(urlPath string) (route string, ok bool) {
	if c.BasePath == "" {
		if urlPath == "" {
			return "/", true
		}
		return urlPath, strings.HasPrefix(urlPath, "/")
	}
	if urlPath == c.BasePath {
		return "/", true
	}
	if rest, found := strings.CutPrefix(urlPath, c.BasePath+"/"); found {
		return "/" + rest, true
	}
	return "", false
}
