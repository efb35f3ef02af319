package pkg

import (
	"os"
	"runtime/debug"
	"strings"
	"testing"

	"golang.org/x/mod/semver"
)

func TestVersion_File(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatal(err)
	}

	want := strings.TrimSpace(string(buf))
	if !semver.IsValid("v" + want) {
		t.Errorf("VERSION %q is not a semantic version", want)
	}

	none := func() (*debug.BuildInfo, bool) { return nil, false }
	if got := moduleVersion(none); got != want {
		t.Errorf("moduleVersion = %q, want %q", got, want)
	}
}

func TestVersion_BuildInfo(t *testing.T) {
	tests := []struct {
		main string
		file bool
		want string
	}{
		{main: "v1.4.2", want: "1.4.2"},
		{main: "(devel)", file: true},
		{main: "v0.0.0-20250101000000-abcdefabcdef", file: true},
		{main: "", file: true},
	}

	for _, tt := range tests {
		t.Run(tt.main, func(t *testing.T) {
			info := func() (*debug.BuildInfo, bool) {
				return &debug.BuildInfo{Main: debug.Module{Version: tt.main}}, true
			}

			want := tt.want
			if tt.file {
				want = strings.TrimSpace(version)
			}

			if got := moduleVersion(info); got != want {
				t.Errorf("moduleVersion = %q, want %q", got, want)
			}
		})
	}
}
