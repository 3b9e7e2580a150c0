package server

import (
	"bytes"
	"html/template"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// siteHandler serves files of the published tree. Routes resolve the way
// static hosts do: the exact file, then <route>.html, then <route>/index.html.
func (s *Server) siteHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		if s.opts.BuildStatus != nil {
			if hasError, buildErr, good := s.opts.BuildStatus.GetStatus(); !good {
				if hasError {
					s.renderStatusPage(w, http.StatusServiceUnavailable, "Build failed",
						"The site failed to build. Fix the error below and save to rebuild automatically.", buildErr)
					return
				}
				s.renderStatusPage(w, http.StatusServiceUnavailable, "Site rendering",
					"The site has not been packaged yet. Reload this page in a moment.", nil)
				return
			}
		}

		if file, ok := s.lookup(r.URL.Path); ok {
			setCacheControl(w, r.URL.Path)
			s.serveFile(w, r, file, http.StatusOK)
			return
		}
		s.serveNotFound(w, r)
	})
}

// lookup maps a URL path relative to the base path to a file under Root.
func (s *Server) lookup(urlPath string) (string, bool) {
	rel := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	var candidates []string
	if rel == "" {
		candidates = []string{"index.html"}
	} else {
		candidates = []string{rel, rel + ".html", rel + "/index.html"}
	}
	for _, c := range candidates {
		p := filepath.Join(s.opts.Root, filepath.FromSlash(c))
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}

// serveNotFound answers with the fallback page of static builds, then the
// framework's 404.html, then a plain 404. A fallback page named after a
// not-found page keeps the 404 status; any other fallback is an app shell
// and is served with 200.
func (s *Server) serveNotFound(w http.ResponseWriter, r *http.Request) {
	if fb := s.opts.Deployment.FallbackPage; fb != "" {
		if file, ok := s.lookup("/" + fb); ok {
			status := http.StatusOK
			if strings.HasPrefix(path.Base(fb), "404") {
				status = http.StatusNotFound
			}
			w.Header().Set("Cache-Control", "no-cache")
			s.serveFile(w, r, file, status)
			return
		}
	}
	if file, ok := s.lookup("/404.html"); ok {
		w.Header().Set("Cache-Control", "no-cache")
		s.serveFile(w, r, file, http.StatusNotFound)
		return
	}
	http.NotFound(w, r)
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, file string, status int) {
	f, err := os.Open(filepath.Clean(file))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer func() { _ = f.Close() }()

	if status == http.StatusOK {
		info, err := f.Stat()
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		http.ServeContent(w, r, filepath.Base(file), info.ModTime(), f)
		return
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(f); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		_, _ = w.Write(buf.Bytes())
	}
}

// setCacheControl marks content-hashed bundler output immutable and makes
// everything else revalidate.
func setCacheControl(w http.ResponseWriter, urlPath string) {
	switch {
	case strings.Contains(urlPath, "/_app/immutable/"), strings.Contains(urlPath, "/assets/") && hasHashedName(urlPath):
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	case strings.HasSuffix(urlPath, ".html"), strings.HasSuffix(urlPath, "/"), path.Ext(urlPath) == "":
		w.Header().Set("Cache-Control", "no-cache")
	default:
		w.Header().Set("Cache-Control", "public, max-age=300")
	}
}

// hasHashedName matches bundler file names such as index-3f9a1c2b.js.
func hasHashedName(urlPath string) bool {
	name := strings.TrimSuffix(path.Base(urlPath), path.Ext(urlPath))
	i := strings.LastIndexAny(name, "-.")
	if i < 0 || len(name)-i-1 < 8 {
		return false
	}
	for _, c := range name[i+1:] {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_') {
			return false
		}
	}
	return true
}

var statusPage = template.Must(template.New("status").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title>
<style>body{font-family:sans-serif;max-width:800px;margin:50px auto;padding:20px}pre{background:#f5f5f5;padding:15px;border-radius:4px;overflow-x:auto}</style>
</head><body><h1>{{.Title}}</h1><p>{{.Message}}</p>{{with .Error}}<pre>{{.}}</pre>{{end}}
<p><small>Checked at {{.Time}}</small></p></body></html>`))

func (s *Server) renderStatusPage(w http.ResponseWriter, status int, title, message string, err error) {
	data := struct {
		Title, Message, Error, Time string
	}{Title: title, Message: message, Time: time.Now().Format(time.RFC3339)}
	if err != nil {
		data.Error = err.Error()
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = statusPage.Execute(w, data)
}
