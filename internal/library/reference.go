package library

import (
	"errors"
	"fmt"
	"strings"

	"github.com/esp8266-setup/esp8266-setup/internal/fetch"
)

// ErrMissingRef is returned for a git reference without a branch, tag or
// commit.
var ErrMissingRef = errors.New("please supply a branch, tag or commit ID (append @master if unsure)")

// Kind identifies how a reference is resolved.
type Kind int

const (
	KindGit Kind = iota
	KindArchive
	KindInstalled
	KindDefinitionFile
	KindCatalog
)

func (k Kind) String() string {
	switch k {
	case KindGit:
		return "git"
	case KindArchive:
		return "archive download"
	case KindInstalled:
		return "installed"
	case KindDefinitionFile:
		return "definition file"
	case KindCatalog:
		return "catalog"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Reference is a parsed library reference.
type Reference struct {
	Raw  string
	Kind Kind

	// URL and Ref locate the upstream source of git and archive references.
	// Git URLs have their "git+" prefix removed.
	URL string
	Ref string

	// Name is the derived library name. It is empty for definition files,
	// whose name comes from the file's contents.
	Name string

	// Path is the definition file of a KindDefinitionFile reference.
	Path string
}

// ParseReference classifies raw. The first matching shape wins: git
// URL, archive URL, installed library name, definition file path and
// finally catalog name. installed reports whether lib/<name>/library.json
// exists; it may be nil.
func ParseReference(raw string, installed func(name string) bool) (*Reference, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty library reference")
	}

	switch {
	case strings.HasPrefix(raw, "git+"):
		url, ref, err := splitGitURL(strings.TrimPrefix(raw, "git+"))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", raw, err)
		}
		return &Reference{Raw: raw, Kind: KindGit, URL: url, Ref: ref, Name: fetch.RepoBaseName(url)}, nil

	case strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://"):
		return &Reference{Raw: raw, Kind: KindArchive, URL: raw, Name: fetch.ArchiveBaseName(raw)}, nil

	case installed != nil && installed(raw):
		return &Reference{Raw: raw, Kind: KindInstalled, Name: raw}, nil

	case strings.HasSuffix(strings.ToLower(raw), ".json"):
		return &Reference{Raw: raw, Kind: KindDefinitionFile, Path: raw}, nil

	default:
		return &Reference{Raw: raw, Kind: KindCatalog, Name: raw}, nil
	}
}

// splitGitURL splits "<url>@<ref>" on the last "@". When that "@" belongs
// to the user part of the URL (git@host:owner/repo.git,
// ssh://git@host/repo.git) the ref is missing.
func splitGitURL(s string) (url, ref string, err error) {
	i := strings.LastIndex(s, "@")
	if i <= 0 || i == len(s)-1 {
		return "", "", ErrMissingRef
	}
	url, ref = s[:i], s[i+1:]

	// Git refs cannot contain ':'.
	if strings.Contains(ref, ":") {
		return "", "", ErrMissingRef
	}
	hostPart := url
	if j := strings.Index(hostPart, "://"); j >= 0 {
		hostPart = hostPart[j+3:]
	}
	if !strings.ContainsAny(hostPart, "/:") {
		return "", "", ErrMissingRef
	}
	return url, ref, nil
}
