package manifest

import "testing"

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.1", -1},
		{"v1.2.0", "1.2.0", 0},
		{"2.0.0", "1.9.9", 1},
		{"0.10.0", "0.9.0", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			got, err := CompareVersions(tt.a, tt.b)
			if err != nil {
				t.Fatalf("CompareVersions() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("CompareVersions(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}

	if _, err := CompareVersions("latest", "1.0.0"); err == nil {
		t.Error("expected error for non-semver version")
	}
}

func TestDisplayVersion(t *testing.T) {
	if got := (&Library{}).DisplayVersion(); got != "unknown" {
		t.Errorf("DisplayVersion() = %q, want %q", got, "unknown")
	}
	if got := (&Library{Version: "v1.0.0"}).DisplayVersion(); got != "v1.0.0" {
		t.Errorf("DisplayVersion() = %q, want %q", got, "v1.0.0")
	}
	if got := (&Library{Version: "0.3.1"}).DisplayVersion(); got != "v0.3.1" {
		t.Errorf("DisplayVersion() = %q, want %q", got, "v0.3.1")
	}
}
