package scaffold

import (
	"strconv"
	"testing"
	"time"
)

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		values map[string]string
		want   string
	}{
		{"single", "# %project%", map[string]string{"project": "demo"}, "# demo"},
		{"repeated", "%a%-%a%", map[string]string{"a": "x"}, "x-x"},
		{"unknown left intact", "%year% %missing%", map[string]string{"year": "2017"}, "2017 %missing%"},
		{"printf verbs untouched", `printf("%s\n")`, map[string]string{"s": "boom"}, `printf("%s\n")`},
		{"no values", "%user%", nil, "%user%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Substitute(tt.text, tt.values); got != tt.want {
				t.Errorf("Substitute() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultValues(t *testing.T) {
	v := DefaultValues()
	if v["year"] != strconv.Itoa(time.Now().Year()) {
		t.Errorf("year = %q", v["year"])
	}
	if v["user"] == "" {
		t.Error("user should not be empty")
	}
}

func TestHeaderGuard(t *testing.T) {
	tests := map[string]string{
		"jsmn":        "jsmn_h_included",
		"my-lib":      "my_lib_h_included",
		"lib.v2":      "lib_v2_h_included",
		"mqtt_client": "mqtt_client_h_included",
	}
	for in, want := range tests {
		if got := headerGuard(in); got != want {
			t.Errorf("headerGuard(%q) = %q, want %q", in, got, want)
		}
	}
}
