package makefile

import "strings"

// ProjectSettings holds optional changes to a project Makefile.
// Nil fields are left unchanged.
type ProjectSettings struct {
	Name        *string
	FlashLayout *string
	SDKLibs     []string
}

// ApplyProject applies the provided settings to a project Makefile.
func ApplyProject(text string, s ProjectSettings) (string, error) {
	var err error
	if s.Name != nil {
		if text, err = Set(text, Project, *s.Name); err != nil {
			return "", err
		}
	}
	if s.SDKLibs != nil {
		if text, err = Set(text, Libs, strings.Join(nonEmpty(s.SDKLibs), " ")); err != nil {
			return "", err
		}
	}
	if s.FlashLayout != nil {
		if text, err = SetFlashLayout(text, *s.FlashLayout); err != nil {
			return "", err
		}
	}
	return text, nil
}

// LibrarySettings holds optional changes to a library Makefile.
// Nil fields are left unchanged.
type LibrarySettings struct {
	Name            *string
	SDKDependencies []string
	Includes        *string
	CFlags          *string
	LDFlags         *string
}

// ApplyLibrary applies the provided settings to a library Makefile. It
// returns the SDK keywords it did not recognize.
func ApplyLibrary(text string, s LibrarySettings) (string, []string, error) {
	var (
		err     error
		unknown []string
	)
	if s.Name != nil {
		if text, err = Set(text, Project, *s.Name); err != nil {
			return "", nil, err
		}
	}
	if s.SDKDependencies != nil || s.Includes != nil {
		existing, err := Get(text, IncDir)
		if err != nil {
			return "", nil, err
		}
		var extra []string
		if s.Includes != nil {
			extra = []string{*s.Includes}
		}
		var merged string
		merged, unknown = MergeIncludes(existing, s.SDKDependencies, extra)
		if text, err = Set(text, IncDir, merged); err != nil {
			return "", nil, err
		}
	}
	if s.CFlags != nil {
		if text, err = Set(text, CFlags, strings.TrimSpace(*s.CFlags)); err != nil {
			return "", nil, err
		}
	}
	if s.LDFlags != nil {
		if text, err = Set(text, LDFlags, strings.TrimSpace(*s.LDFlags)); err != nil {
			return "", nil, err
		}
	}
	return text, unknown, nil
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
