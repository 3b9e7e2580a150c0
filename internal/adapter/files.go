package adapter

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitedeploy/internal/foundation/errors"
	"git.home.luguber.info/inful/sitedeploy/internal/logfields"
)

func joinProject(projectDir, dir string) string {
	if filepath.IsAbs(dir) || projectDir == "" {
		return filepath.Clean(dir)
	}
	return filepath.Join(projectDir, dir)
}

// within reports whether p is dir or lies below it.
func within(p, dir string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// staging is a packaging directory created next to the output directory.
// Commit swaps it in for the previous output; until then the previous build
// stays in place untouched.
type staging struct {
	out       string
	dir       string
	committed bool
}

// beginStaging validates the output location and creates an empty staging
// directory beside it. It refuses output directories that hold or lie inside
// the rendered source tree or the static directory.
func beginStaging(req Request) (*staging, error) {
	out, err := filepath.Abs(req.OutputDir())
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "cannot resolve output directory").WithContext("path", req.OutputDir()).Build()
	}
	inputs := map[string]string{"source": req.SourceDir, "static": req.StaticDir}
	for kind, dir := range inputs {
		if dir == "" {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "cannot resolve "+kind+" directory").WithContext("path", dir).Build()
		}
		if within(abs, out) || within(out, abs) {
			return nil, errors.BuildError("output directory overlaps the "+kind+" directory").
				WithContext("output", out).
				WithContext(kind, dir).
				Build()
		}
	}

	parent := filepath.Dir(out)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create output parent directory").WithContext("path", parent).Build()
	}
	dir, err := os.MkdirTemp(parent, "."+filepath.Base(out)+".tmp-*")
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create staging directory").WithContext("path", parent).Build()
	}
	if err := os.Chmod(dir, 0o755); err != nil {
		_ = os.RemoveAll(dir)
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to prepare staging directory").WithContext("path", dir).Build()
	}
	return &staging{out: out, dir: dir}, nil
}

// commit replaces the output directory with the staged tree. The previous
// output is moved aside first and removed once the new tree is in place.
func (s *staging) commit() error {
	previous := ""
	if _, err := os.Lstat(s.out); err == nil {
		previous = s.dir + ".previous"
		if err := os.Rename(s.out, previous); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to move previous output aside").WithContext("path", s.out).Build()
		}
	}
	if err := os.Rename(s.dir, s.out); err != nil {
		if previous != "" {
			_ = os.Rename(previous, s.out)
		}
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to publish output directory").WithContext("path", s.out).Build()
	}
	s.committed = true
	if previous != "" {
		if err := os.RemoveAll(previous); err != nil {
			slog.Warn("Failed to remove previous output", logfields.Path(previous), logfields.Error(err))
		}
	}
	return nil
}

// discard removes the staging directory unless it was committed.
func (s *staging) discard() {
	if s == nil || s.committed {
		return
	}
	if err := os.RemoveAll(s.dir); err != nil {
		slog.Warn("Failed to remove staging directory", logfields.Path(s.dir), logfields.Error(err))
	}
}

type copyStats struct {
	files int
	bytes int64
}

// copyTree copies the regular files of src into dst, overwriting existing
// files. Symbolic links are skipped.
func copyTree(ctx context.Context, src, dst string, stats *copyStats) error {
	err := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		n, err := copyFile(p, target)
		if err != nil {
			return err
		}
		stats.files++
		stats.bytes += n
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to copy site files").
			WithContext("source", src).
			WithContext("destination", dst).
			Build()
	}
	return nil
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return 0, err
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, err
	}
	out, err := os.Create(filepath.Clean(dst))
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// copySite copies the static directory first and the rendered tree second,
// so rendered files win on conflicts.
func copySite(ctx context.Context, req Request, dst string) (copyStats, error) {
	var stats copyStats
	if req.StaticDir != "" {
		if info, err := os.Stat(req.StaticDir); err == nil && info.IsDir() {
			if err := copyTree(ctx, req.StaticDir, dst, &stats); err != nil {
				return stats, err
			}
		}
	}
	if info, err := os.Stat(req.SourceDir); err != nil || !info.IsDir() {
		return stats, errors.FileSystemError("rendered output directory not found").
			WithCause(err).
			WithContext("path", req.SourceDir).
			Fatal().
			Build()
	}
	if err := copyTree(ctx, req.SourceDir, dst, &stats); err != nil {
		return stats, err
	}
	return stats, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create directory").WithContext("path", filepath.Dir(path)).Build()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write file").WithContext("path", path).Build()
	}
	return nil
}
