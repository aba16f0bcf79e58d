package fetch

import (
	"context"
	"net/url"
	"path"
	"strings"
)

// Fetcher retrieves a library source tree into dest and refreshes it later.
type Fetcher interface {
	// Fetch populates dest, which must not exist, from url at ref.
	Fetch(ctx context.Context, url, ref, dest string) error
	// Update brings an existing dest up to date with url at ref.
	Update(ctx context.Context, url, ref, dest string) error
}

// archiveExtensions are recognized archive suffixes, longest first.
var archiveExtensions = []string{".tar.gz", ".tgz", ".tar", ".zip"}

// ArchiveExtension returns the archive suffix of rawURL's path, or "".
func ArchiveExtension(rawURL string) string {
	p := urlPath(rawURL)
	lower := strings.ToLower(p)
	for _, ext := range archiveExtensions {
		if strings.HasSuffix(lower, ext) {
			return ext
		}
	}
	return ""
}

// ArchiveBaseName returns the file name of rawURL without its archive
// extension, e.g. "jsmn-1.0" for https://host/jsmn-1.0.tar.gz.
func ArchiveBaseName(rawURL string) string {
	base := path.Base(urlPath(rawURL))
	if ext := ArchiveExtension(rawURL); ext != "" {
		return base[:len(base)-len(ext)]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		return base[:i]
	}
	return base
}

// RepoBaseName returns the last path segment of a repository URL without
// a trailing ".git".
func RepoBaseName(repoURL string) string {
	u := strings.TrimRight(repoURL, "/")
	if i := strings.LastIndexAny(u, "/:"); i >= 0 {
		u = u[i+1:]
	}
	return strings.TrimSuffix(u, ".git")
}

func urlPath(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		return u.Path
	}
	return rawURL
}
