package prerender

import "fmt"

// ReferrerEntries is reported as the referrer of configured entries.
const ReferrerEntries = "(entries)"

// MissingRouteError reports a link or entry whose target page does not exist.
type MissingRouteError struct {
	Route    string `json:"route"`
	Referrer string `json:"referrer"`
}

func (e *MissingRouteError) Error() string {
	return fmt.Sprintf("route %s does not exist (linked from %s)", e.Route, e.Referrer)
}

// MissingAnchorError reports a fragment that the target page does not define.
type MissingAnchorError struct {
	Route    string `json:"route"`
	Anchor   string `json:"anchor"`
	Referrer string `json:"referrer"`
}

func (e *MissingAnchorError) Error() string {
	return fmt.Sprintf("anchor #%s does not exist on %s (linked from %s)", e.Anchor, e.Route, e.Referrer)
}
