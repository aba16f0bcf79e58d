package manifest

// FileName is the name of a library definition inside a library directory.
const FileName = "library.json"

// Library is a library definition. It describes where a library comes from,
// what it needs from the SDK and, for libraries that do not follow the
// lib/<name> layout, how to convert them.
type Library struct {
	Name            string   `json:"name"`
	Version         string   `json:"version,omitempty"`
	Description     string   `json:"description,omitempty"`
	Author          string   `json:"author,omitempty"`
	License         string   `json:"license,omitempty"`
	URL             string   `json:"url,omitempty"`
	Dependencies    []string `json:"dependencies"`
	SDKDependencies []string `json:"sdk_dependencies"`
	ExtraCFlags     string   `json:"extra_cflags,omitempty"`
	ExtraLDFlags    string   `json:"extra_ldflags,omitempty"`
	ExtraIncludes   string   `json:"extra_includes,omitempty"`

	// Conversion inputs. Paths in Source and Include are relative to the
	// root of the fetched upstream tree; RunScript is relative to the
	// directory holding the definition.
	RunScript string   `json:"run_script,omitempty"`
	Source    []string `json:"source,omitempty"`
	Include   []string `json:"include,omitempty"`
}

// Overrides holds optional field changes. A nil field is left unchanged.
// List fields take comma separated values.
type Overrides struct {
	Name            *string
	Author          *string
	License         *string
	URL             *string
	Dependencies    *string
	SDKDependencies *string
	CFlags          *string
	LDFlags         *string
	Includes        *string
}

// Apply sets every provided override on l.
func (l *Library) Apply(o Overrides) {
	if o.Name != nil {
		l.Name = *o.Name
	}
	if o.Author != nil {
		l.Author = *o.Author
	}
	if o.License != nil {
		l.License = *o.License
	}
	if o.URL != nil {
		l.URL = *o.URL
	}
	if o.Dependencies != nil {
		l.Dependencies = SplitList(*o.Dependencies)
	}
	if o.SDKDependencies != nil {
		l.SDKDependencies = SplitList(*o.SDKDependencies)
	}
	if o.CFlags != nil {
		l.ExtraCFlags = *o.CFlags
	}
	if o.LDFlags != nil {
		l.ExtraLDFlags = *o.LDFlags
	}
	if o.Includes != nil {
		l.ExtraIncludes = *o.Includes
	}
}

// Overrides returns overrides that set every field of l. Empty optional
// fields are left nil.
func (l *Library) Overrides() Overrides {
	o := Overrides{
		Name:            strPtr(l.Name),
		Author:          strPtr(l.Author),
		License:         strPtr(l.License),
		URL:             strPtr(l.URL),
		Dependencies:    strPtr(joinList(l.Dependencies)),
		SDKDependencies: strPtr(joinList(l.SDKDependencies)),
	}
	if l.ExtraCFlags != "" {
		o.CFlags = strPtr(l.ExtraCFlags)
	}
	if l.ExtraLDFlags != "" {
		o.LDFlags = strPtr(l.ExtraLDFlags)
	}
	if l.ExtraIncludes != "" {
		o.Includes = strPtr(l.ExtraIncludes)
	}
	return o
}

// NeedsConversion reports whether the definition carries conversion inputs.
func (l *Library) NeedsConversion() bool {
	return l.RunScript != ""
}

func strPtr(s string) *string { return &s }
