package scaffold

import (
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/esp8266-setup/esp8266-setup/internal/config"
)

// Substitute replaces every %key% marker in text with its value. Keys are
// applied in sorted order and unknown markers are left intact.
func Substitute(text string, values map[string]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		text = strings.ReplaceAll(text, "%"+k+"%", values[k])
	}
	return text
}

// DefaultValues returns the markers available to every template: the
// current year and the current user.
func DefaultValues() map[string]string {
	return map[string]string{
		"year": strconv.Itoa(time.Now().Year()),
		"user": config.CurrentUser(),
	}
}

// values merges extra into the default values.
func values(extra map[string]string) map[string]string {
	v := DefaultValues()
	for k, val := range extra {
		v[k] = val
	}
	return v
}

// headerGuard derives a C include guard from a library name.
func headerGuard(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String() + "_h_included"
}
