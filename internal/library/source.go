package library

import (
	"strings"
)

// Source is where a library's upstream tree comes from.
type Source struct {
	Kind Kind // KindGit, KindArchive or KindDefinitionFile for local-only libraries
	URL  string
	Ref  string
}

// String returns the source type shown to users.
func (s Source) String() string {
	switch s.Kind {
	case KindGit, KindArchive:
		return s.Kind.String()
	default:
		return "local"
	}
}

// sourceOf parses a definition url. An empty or unrecognized url denotes a
// local library with nothing to fetch.
func sourceOf(url string) (Source, error) {
	if !strings.HasPrefix(url, "git+") && !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return Source{Kind: KindDefinitionFile, URL: url}, nil
	}
	ref, err := ParseReference(url, nil)
	if err != nil {
		return Source{}, err
	}
	return Source{Kind: ref.Kind, URL: ref.URL, Ref: ref.Ref}, nil
}
