// Package gitinfo derives site metadata from the project's git repository.
package gitinfo

import (
	stderrors "errors"
	"net/url"
	"path"
	"strings"

	"github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/sitedeploy/internal/foundation/errors"
)

// DefaultRemote is the remote consulted when deriving a base path.
const DefaultRemote = "origin"

// RemoteURL returns the first URL of the named remote of the repository
// containing dir. Parent directories are searched for the .git directory.
func RemoteURL(dir, remoteName string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if stderrors.Is(err, git.ErrRepositoryNotExists) {
			return "", errors.GitError("not a git repository").WithCause(err).WithContext("dir", dir).Build()
		}
		return "", errors.GitError("open repository").WithCause(err).WithContext("dir", dir).Build()
	}
	remote, err := repo.Remote(remoteName)
	if err != nil {
		return "", errors.GitError("remote not found").WithCause(err).WithContext("remote", remoteName).Build()
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", errors.GitError("remote has no URL").WithContext("remote", remoteName).Build()
	}
	return urls[0], nil
}

// RepositoryName extracts the repository name from a remote URL. Both URL
// and scp-like ("git@host:owner/name.git") forms are accepted.
func RepositoryName(remoteURL string) string {
	raw := strings.TrimSpace(remoteURL)
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" {
		p = u.Path
	} else if i := strings.Index(raw, ":"); i >= 0 && !strings.Contains(raw[:i], "/") {
		p = raw[i+1:]
	}
	p = strings.TrimRight(p, "/")
	name := path.Base(p)
	name = strings.TrimSuffix(name, ".git")
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// BasePathForRepository returns the public base path a project pages site
// for the repository is served under. User and organization sites
// ("<owner>.github.io" style names) are served from the root.
func BasePathForRepository(name string) string {
	if name == "" || strings.HasSuffix(strings.ToLower(name), ".github.io") {
		return ""
	}
	return "/" + name
}

// BasePathFromRepository derives the base path from the origin remote of the
// repository containing dir.
func BasePathFromRepository(dir string) (string, error) {
	remote, err := RemoteURL(dir, DefaultRemote)
	if err != nil {
		return "", err
	}
	name := RepositoryName(remote)
	if name == "" {
		return "", errors.GitError("cannot derive repository name").WithContext("remote_url", remote).Build()
	}
	return BasePathForRepository(name), nil
}
