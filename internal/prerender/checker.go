package prerender

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitedeploy/internal/deploy"
	"git.home.luguber.info/inful/sitedeploy/internal/foundation/errors"
	"git.home.luguber.info/inful/sitedeploy/internal/logfields"
	"git.home.luguber.info/inful/sitedeploy/internal/metrics"
	"git.home.luguber.info/inful/sitedeploy/internal/observability"
)

// EntryAll expands to every HTML page of the rendered tree.
const EntryAll = "*"

// Options configures a check.
type Options struct {
	// SourceDir is the framework's rendered output tree.
	SourceDir string
	// StaticDir holds extra assets that are published next to the rendered tree.
	StaticDir string
	// Config supplies the base path links are expected under and the policy.
	Config deploy.Config
	// Entries are the routes the crawl starts from.
	Entries      []string
	CheckAnchors bool
	Recorder     metrics.Recorder
}

// Report summarizes a check.
type Report struct {
	Pages          int                   `json:"pages"`
	Links          int                   `json:"links"`
	MissingRoutes  []*MissingRouteError  `json:"missing_routes,omitempty"`
	MissingAnchors []*MissingAnchorError `json:"missing_anchors,omitempty"`
}

// IssueCount returns the number of missing routes and anchors.
func (r *Report) IssueCount() int {
	if r == nil {
		return 0
	}
	return len(r.MissingRoutes) + len(r.MissingAnchors)
}

// Err joins every issue into one error, or returns nil.
func (r *Report) Err() error {
	if r.IssueCount() == 0 {
		return nil
	}
	errs := make([]error, 0, r.IssueCount())
	for _, e := range r.MissingRoutes {
		errs = append(errs, e)
	}
	for _, e := range r.MissingAnchors {
		errs = append(errs, e)
	}
	return stderrors.Join(errs...)
}

// Check crawls the rendered tree from the configured entries and reports
// links whose target page or fragment does not exist. Under the warn policy
// issues are logged and the report is returned without error. Under the fail
// policy a fatal prerender error wrapping every issue is returned as well.
func Check(ctx context.Context, opts Options) (*Report, error) {
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if info, err := os.Stat(opts.SourceDir); err != nil || !info.IsDir() {
		return nil, errors.FileSystemError("rendered output directory not found").
			WithCause(err).
			WithContext("path", opts.SourceDir).
			Fatal().
			Build()
	}

	c := &checker{
		opts:    opts,
		pages:   make(map[string]*Page),
		visited: make(map[string]bool),
		seen:    make(map[string]struct{}),
		report:  &Report{},
	}
	if err := c.seed(); err != nil {
		return nil, err
	}
	for len(c.queue) > 0 {
		if err := ctx.Err(); err != nil {
			return c.report, err
		}
		next := c.queue[0]
		c.queue = c.queue[1:]
		if err := c.visit(next); err != nil {
			return c.report, err
		}
	}
	return c.report, c.conclude(ctx)
}

// target is a file of the published tree.
type target struct {
	root string
	rel  string // slash separated, relative to root
}

func (t target) path() string { return filepath.Join(t.root, filepath.FromSlash(t.rel)) }

func (t target) isHTML() bool { return strings.HasSuffix(strings.ToLower(t.rel), ".html") }

// route returns the site route the file is served at: "/" for the root
// index, "/a" for a.html and a/index.html.
func (t target) route() string {
	if !t.isHTML() {
		return "/" + t.rel
	}
	r := strings.TrimSuffix(t.rel, ".html")
	if r == "index" {
		return "/"
	}
	return "/" + strings.TrimSuffix(r, "/index")
}

// documentPath is the URL path relative links of the page resolve against.
// Directory indexes end with a slash.
func (t target) documentPath() string {
	if path.Base(t.rel) == "index.html" {
		dir := path.Dir(t.rel)
		if dir == "." {
			return "/"
		}
		return "/" + dir + "/"
	}
	return t.route()
}

type checker struct {
	opts    Options
	pages   map[string]*Page
	visited map[string]bool
	queue   []target
	seen    map[string]struct{}
	report  *Report
}

func (c *checker) seed() error {
	for _, entry := range c.opts.Entries {
		if entry == EntryAll {
			if err := c.enqueueAll(); err != nil {
				return err
			}
			continue
		}
		route := path.Clean("/" + strings.TrimPrefix(entry, "/"))
		t, ok := c.lookup(route)
		if !ok {
			c.missingRoute(route, ReferrerEntries)
			continue
		}
		c.enqueue(t)
	}
	return nil
}

func (c *checker) enqueueAll() error {
	err := filepath.WalkDir(c.opts.SourceDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(c.opts.SourceDir, p)
		if err != nil {
			return err
		}
		t := target{root: c.opts.SourceDir, rel: filepath.ToSlash(rel)}
		if t.isHTML() {
			c.enqueue(t)
		}
		return nil
	})
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to walk rendered output").
			WithContext("path", c.opts.SourceDir).
			Build()
	}
	return nil
}

func (c *checker) enqueue(t target) {
	if !t.isHTML() || c.visited[t.path()] {
		return
	}
	c.visited[t.path()] = true
	c.queue = append(c.queue, t)
}

// lookup maps a route to a file of the source tree or the static directory.
func (c *checker) lookup(route string) (target, bool) {
	rel := strings.TrimPrefix(path.Clean("/"+route), "/")
	var candidates []string
	if rel == "" {
		candidates = []string{"index.html"}
	} else {
		candidates = []string{rel, rel + ".html", rel + "/index.html"}
	}
	for _, root := range []string{c.opts.SourceDir, c.opts.StaticDir} {
		if root == "" {
			continue
		}
		for _, cand := range candidates {
			t := target{root: root, rel: cand}
			if info, err := os.Stat(t.path()); err == nil && info.Mode().IsRegular() {
				return t, true
			}
		}
	}
	return target{}, false
}

func (c *checker) page(t target) (*Page, error) {
	key := t.path()
	if p, ok := c.pages[key]; ok {
		return p, nil
	}
	p, err := ParseFile(key)
	if err != nil {
		return nil, err
	}
	c.pages[key] = p
	return p, nil
}

func (c *checker) visit(t target) error {
	page, err := c.page(t)
	if err != nil {
		return err
	}
	c.report.Pages++

	referrer := t.route()
	base := &url.URL{Path: c.opts.Config.URL(t.documentPath())}
	for _, link := range page.Links {
		if !shouldFollow(link.URL) {
			continue
		}
		u, err := url.Parse(link.URL)
		if err != nil {
			slog.Debug("Skipping unparsable link", logfields.Route(referrer), slog.String("url", link.URL))
			continue
		}
		if u.Scheme != "" || u.Host != "" {
			continue
		}
		if u.Path == "" && u.RawQuery == "" {
			if c.checksAnchor(link, u) && !page.HasAnchor(u.Fragment) {
				c.missingAnchor(referrer, u.Fragment, referrer)
			}
			continue
		}

		c.report.Links++
		resolved := base.ResolveReference(u).Path
		route, ok := c.opts.Config.StripBase(resolved)
		if !ok {
			c.missingRoute(resolved, referrer)
			continue
		}
		dest, found := c.lookup(route)
		if !found {
			c.missingRoute(path.Clean(route), referrer)
			continue
		}
		c.enqueue(dest)
		if c.checksAnchor(link, u) && dest.isHTML() {
			destPage, err := c.page(dest)
			if err != nil {
				return err
			}
			if !destPage.HasAnchor(u.Fragment) {
				c.missingAnchor(dest.route(), u.Fragment, referrer)
			}
		}
	}
	return nil
}

// checksAnchor reports whether the fragment of an anchor link is verified.
// "top" scrolls to the start of any document.
func (c *checker) checksAnchor(link Link, u *url.URL) bool {
	return c.opts.CheckAnchors && link.Tag == "a" && u.Fragment != "" && !strings.EqualFold(u.Fragment, "top")
}

func (c *checker) missingRoute(route, referrer string) {
	key := "route\x00" + route + "\x00" + referrer
	if _, dup := c.seen[key]; dup {
		return
	}
	c.seen[key] = struct{}{}
	c.report.MissingRoutes = append(c.report.MissingRoutes, &MissingRouteError{Route: route, Referrer: referrer})
}

func (c *checker) missingAnchor(route, anchor, referrer string) {
	key := "anchor\x00" + route + "\x00" + anchor + "\x00" + referrer
	if _, dup := c.seen[key]; dup {
		return
	}
	c.seen[key] = struct{}{}
	c.report.MissingAnchors = append(c.report.MissingAnchors, &MissingAnchorError{Route: route, Anchor: anchor, Referrer: referrer})
}

// conclude records metrics and applies the prerender policy.
func (c *checker) conclude(ctx context.Context) error {
	r := c.report
	for range r.MissingRoutes {
		c.opts.Recorder.IncPrerenderIssue("route")
	}
	for range r.MissingAnchors {
		c.opts.Recorder.IncPrerenderIssue("anchor")
	}
	if r.IssueCount() == 0 {
		observability.DebugContext(ctx, "Prerender check passed",
			slog.Int("pages", r.Pages), slog.Int("links", r.Links))
		return nil
	}

	if c.opts.Config.PrerenderPolicy == deploy.PolicyFail {
		return errors.PrerenderError(fmt.Sprintf("prerender found %d missing route(s) and %d missing anchor(s)", len(r.MissingRoutes), len(r.MissingAnchors))).
			WithCause(r.Err()).
			WithContext("routes", len(r.MissingRoutes)).
			WithContext("anchors", len(r.MissingAnchors)).
			WithContext("policy", string(deploy.PolicyFail)).
			Fatal().
			Build()
	}

	for _, e := range r.MissingRoutes {
		observability.WarnContext(ctx, "Prerender: missing route", logfields.Route(e.Route), logfields.Referrer(e.Referrer))
	}
	for _, e := range r.MissingAnchors {
		observability.WarnContext(ctx, "Prerender: missing anchor",
			logfields.Route(e.Route), logfields.Anchor(e.Anchor), logfields.Referrer(e.Referrer))
	}
	return nil
}
