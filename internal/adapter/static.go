package adapter

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitedeploy/internal/deploy"
	"git.home.luguber.info/inful/sitedeploy/internal/foundation/errors"
	"git.home.luguber.info/inful/sitedeploy/internal/logfields"
)

// Fallback page origins recorded in Result.FallbackSource.
const (
	FallbackRendered  = "rendered"
	FallbackShell     = "shell"
	FallbackGenerated = "generated"
)

// StaticAdapter packages the site as a plain file tree for static hosting.
type StaticAdapter struct{}

func (StaticAdapter) Kind() deploy.AdapterKind { return deploy.AdapterStatic }

func (StaticAdapter) Package(ctx context.Context, req Request) (*Result, error) {
	stage, err := beginStaging(req)
	if err != nil {
		return nil, err
	}
	defer stage.discard()

	out := stage.out
	stats, err := copySite(ctx, req, stage.dir)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Adapter:      deploy.AdapterStatic,
		OutputDir:    out,
		PublicDir:    out,
		FallbackPage: req.Config.FallbackPage,
	}
	if req.Config.FallbackPage != "" {
		source, err := writeFallback(req, stage.dir)
		if err != nil {
			return nil, err
		}
		res.FallbackSource = source
		slog.Debug("Fallback page ready", logfields.Path(req.Config.FallbackPage), slog.String("source", source))
	}

	// GitHub Pages skips files starting with an underscore unless Jekyll is disabled.
	if err := writeFile(filepath.Join(stage.dir, ".nojekyll"), nil); err != nil {
		return nil, err
	}

	res.Files, res.Bytes = stats.files, stats.bytes
	if err := writeReport(req, res, stage.dir); err != nil {
		return nil, err
	}
	if err := stage.commit(); err != nil {
		return nil, err
	}
	return res, nil
}

// writeFallback makes sure the fallback page exists in out. A page the
// framework rendered under that name is kept; otherwise the index shell is
// copied; otherwise a minimal page is generated.
func writeFallback(req Request, out string) (string, error) {
	target := filepath.Join(out, filepath.FromSlash(req.Config.FallbackPage))
	if info, err := os.Stat(target); err == nil && info.Mode().IsRegular() {
		return FallbackRendered, nil
	}

	if info, err := os.Stat(filepath.Join(out, "index.html")); err == nil && info.Mode().IsRegular() && isShell(req) {
		if _, err := copyFile(filepath.Join(out, "index.html"), target); err != nil {
			return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to write fallback page").WithContext("path", target).Build()
		}
		return FallbackShell, nil
	}

	page, err := renderHTML("fallback.html.tmpl", fallbackTemplateData{
		SiteName: req.SiteName,
		HomeURL:  req.Config.URL("/"),
	})
	if err != nil {
		return "", errors.InternalError("failed to render fallback page").WithCause(err).Build()
	}
	if err := writeFile(target, page); err != nil {
		return "", err
	}
	return FallbackGenerated, nil
}

// isShell reports whether the fallback page should be the client-side app
// shell. Single page apps name their fallback after an index document.
func isShell(req Request) bool {
	name := strings.ToLower(filepath.Base(req.Config.FallbackPage))
	return name == "index.html" || name == "200.html"
}
