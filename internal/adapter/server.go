package adapter

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitedeploy/internal/deploy"
	"git.home.luguber.info/inful/sitedeploy/internal/foundation/errors"
	"git.home.luguber.info/inful/sitedeploy/internal/version"
)

const (
	// ClientDir holds the published files inside a server build.
	ClientDir = "client"
	// ManifestFile describes a server build to the runtime.
	ManifestFile = "server.json"
	// DefaultRuntimeImage is the container image the generated Dockerfile builds on.
	DefaultRuntimeImage = "git.home.luguber.info/inful/sitedeploy:latest"
)

// Manifest is the server.json written by the server adapter and read back by
// `sitedeploy serve`.
type Manifest struct {
	Name         string             `json:"name,omitempty"`
	Environment  deploy.Environment `json:"environment"`
	BasePath     string             `json:"base_path"`
	BuildID      string             `json:"build_id"`
	Fingerprint  string             `json:"fingerprint"`
	ClientDir    string             `json:"client_dir"`
	FallbackPage string             `json:"fallback_page,omitempty"`
	Host         string             `json:"host"`
	Port         int                `json:"port"`
}

// ServerAdapter packages the site for the bundled HTTP server runtime.
type ServerAdapter struct{}

func (ServerAdapter) Kind() deploy.AdapterKind { return deploy.AdapterServer }

func (ServerAdapter) Package(ctx context.Context, req Request) (*Result, error) {
	stage, err := beginStaging(req)
	if err != nil {
		return nil, err
	}
	defer stage.discard()

	out := stage.out
	stats, err := copySite(ctx, req, filepath.Join(stage.dir, ClientDir))
	if err != nil {
		return nil, err
	}

	manifest := Manifest{
		Name:         req.SiteName,
		Environment:  req.Config.Environment,
		BasePath:     req.Config.BasePath,
		BuildID:      req.BuildID,
		Fingerprint:  req.Config.Fingerprint(),
		ClientDir:    ClientDir,
		FallbackPage: req.Config.FallbackPage,
		Host:         req.Host,
		Port:         req.Port,
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, errors.InternalError("failed to encode server manifest").WithCause(err).Build()
	}
	if err := writeFile(filepath.Join(stage.dir, ManifestFile), append(data, '\n')); err != nil {
		return nil, err
	}

	dockerfile, err := renderText("Dockerfile.tmpl", dockerfileTemplateData{
		Version:      version.Version,
		Name:         req.SiteName,
		Environment:  string(req.Config.Environment),
		BuildID:      req.BuildID,
		BasePath:     req.Config.BasePath,
		RuntimeImage: DefaultRuntimeImage,
		Host:         req.Host,
		Port:         req.Port,
	})
	if err != nil {
		return nil, errors.InternalError("failed to render Dockerfile").WithCause(err).Build()
	}
	if err := writeFile(filepath.Join(stage.dir, "Dockerfile"), dockerfile); err != nil {
		return nil, err
	}

	res := &Result{
		Adapter:   deploy.AdapterServer,
		OutputDir: out,
		PublicDir: filepath.Join(out, ClientDir),
		Files:     stats.files,
		Bytes:     stats.bytes,
	}
	if err := writeReport(req, res, stage.dir); err != nil {
		return nil, err
	}
	if err := stage.commit(); err != nil {
		return nil, err
	}
	return res, nil
}

// ReadManifest loads server.json from a server build directory.
func ReadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewError(errors.CategoryNotFound, "server manifest not found").
				WithCause(err).
				WithContext("path", path).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read server manifest").WithContext("path", path).Build()
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid server manifest").WithContext("path", path).Build()
	}
	if m.ClientDir == "" {
		m.ClientDir = ClientDir
	}
	return &m, nil
}
