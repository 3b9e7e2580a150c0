package prerender

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitedeploy/internal/foundation/errors"
)

// Link is a reference found in a rendered page.
type Link struct {
	URL       string // raw attribute value
	Tag       string // a, img, script, link, source, video, audio
	Attribute string // href or src
}

// Page holds what the checker needs from one rendered HTML document.
type Page struct {
	Links []Link
	// Anchors are the fragment targets the page defines: every id attribute
	// and the name attribute of a elements.
	Anchors map[string]struct{}
}

// HasAnchor reports whether the page defines the fragment target.
func (p *Page) HasAnchor(anchor string) bool {
	if p == nil {
		return false
	}
	_, ok := p.Anchors[anchor]
	return ok
}

// ParseFile parses the HTML page at path.
func ParseFile(path string) (*Page, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to open HTML file").WithContext("path", path).Build()
	}
	defer func() {
		_ = file.Close()
	}()
	return Parse(file)
}

// Parse extracts links and anchors from an HTML document.
func Parse(r io.Reader) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryPrerender, "failed to parse HTML").Build()
	}

	page := &Page{Anchors: make(map[string]struct{})}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			extractElement(n, page)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return page, nil
}

func extractElement(n *html.Node, page *Page) {
	if id := getAttr(n, "id"); id != "" {
		page.Anchors[id] = struct{}{}
	}

	switch n.Data {
	case "a":
		if name := getAttr(n, "name"); name != "" {
			page.Anchors[name] = struct{}{}
		}
		page.addLink(n, "href")
	case "link":
		// Preconnect and dns-prefetch hints name origins, not documents.
		switch strings.ToLower(getAttr(n, "rel")) {
		case "preconnect", "dns-prefetch":
			return
		}
		page.addLink(n, "href")
	case "img", "script", "source", "video", "audio", "iframe":
		page.addLink(n, "src")
	}
}

func (p *Page) addLink(n *html.Node, attr string) {
	if v := strings.TrimSpace(getAttr(n, attr)); v != "" {
		p.Links = append(p.Links, Link{URL: v, Tag: n.Data, Attribute: attr})
	}
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// shouldFollow filters links that never point at a file of the site.
func shouldFollow(raw string) bool {
	if raw == "" {
		return false
	}
	lower := strings.ToLower(raw)
	for _, prefix := range []string{"mailto:", "tel:", "javascript:", "data:", "blob:"} {
		if strings.HasPrefix(lower, prefix) {
			return false
		}
	}
	return true
}
