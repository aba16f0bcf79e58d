package manifest

import "strings"

// SplitList splits a comma separated list, dropping empty items.
func SplitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func joinList(items []string) string {
	return strings.Join(items, ",")
}
