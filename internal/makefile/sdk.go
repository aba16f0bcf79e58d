package makefile

import (
	"slices"
	"sort"
	"strings"
)

// sdkIncludes maps SDK component keywords to their include flags.
var sdkIncludes = map[string][]string{
	"lwip": {
		"-I$(SDK_PATH)/include/lwip",
		"-I$(SDK_PATH)/include/lwip/ipv4",
		"-I$(SDK_PATH)/include/lwip/ipv6",
		"-I$(SDK_PATH)/include/lwip/posix",
	},
	"espconn": {"-I$(SDK_PATH)/include/espconn"},
	"json":    {"-I$(SDK_PATH)/include/json"},
	"mbedtls": {"-I$(SDK_PATH)/include/mbedtls"},
	"nopoll":  {"-I$(SDK_PATH)/include/nopoll"},
	"openssl": {"-I$(SDK_PATH)/include/openssl"},
	"spiffs":  {"-I$(SDK_PATH)/include/spiffs"},
	"ssl":     {"-I$(SDK_PATH)/include/ssl"},
}

// SDKIncludes returns the include flags for an SDK keyword.
func SDKIncludes(keyword string) ([]string, bool) {
	inc, ok := sdkIncludes[keyword]
	if !ok {
		return nil, false
	}
	return slices.Clone(inc), true
}

// SDKKeywords returns every known SDK keyword, sorted.
func SDKKeywords() []string {
	keys := make([]string, 0, len(sdkIncludes))
	for k := range sdkIncludes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MergeIncludes adds the include flags of sdkDeps and the extra tokens to the
// existing INCDIR value. Existing tokens keep their order, new ones follow in
// request order and duplicates are dropped. Unknown SDK keywords are returned
// so the caller can warn about them.
func MergeIncludes(existing string, sdkDeps, extra []string) (string, []string) {
	var (
		tokens  []string
		seen    = map[string]bool{}
		unknown []string
	)
	add := func(tok string) {
		if tok == "" || seen[tok] {
			return
		}
		seen[tok] = true
		tokens = append(tokens, tok)
	}

	for _, tok := range strings.Fields(existing) {
		add(tok)
	}
	for _, dep := range sdkDeps {
		dep = strings.TrimSpace(dep)
		if dep == "" {
			continue
		}
		inc, ok := SDKIncludes(dep)
		if !ok {
			unknown = append(unknown, dep)
			continue
		}
		for _, tok := range inc {
			add(tok)
		}
	}
	for _, e := range extra {
		for _, tok := range strings.Fields(e) {
			add(tok)
		}
	}

	return strings.Join(tokens, " "), unknown
}
