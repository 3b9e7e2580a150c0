package adapter

import (
	"encoding/json"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/sitedeploy/internal/deploy"
	"git.home.luguber.info/inful/sitedeploy/internal/foundation/errors"
	"git.home.luguber.info/inful/sitedeploy/internal/prerender"
	"git.home.luguber.info/inful/sitedeploy/internal/version"
)

// ReportPath is the build report location relative to the output directory.
const ReportPath = ".sitedeploy/build-report.json"

// BuildReport is written next to every packaged output.
type BuildReport struct {
	BuildID     string            `json:"build_id"`
	Version     string            `json:"version"`
	GeneratedAt time.Time         `json:"generated_at"`
	Config      deploy.Config     `json:"config"`
	Fingerprint string            `json:"fingerprint"`
	Result      *Result           `json:"result"`
	Prerender   *prerender.Report `json:"prerender,omitempty"`
}

// writeReport writes the report into dir, the tree that becomes res.OutputDir.
func writeReport(req Request, res *Result, dir string) error {
	report := BuildReport{
		BuildID:     req.BuildID,
		Version:     version.Version,
		GeneratedAt: time.Now().UTC(),
		Config:      req.Config,
		Fingerprint: req.Config.Fingerprint(),
		Result:      res,
		Prerender:   req.Prerender,
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.InternalError("failed to encode build report").WithCause(err).Build()
	}
	return writeFile(filepath.Join(dir, filepath.FromSlash(ReportPath)), append(data, '\n'))
}
