package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "key")
	if err := os.WriteFile(file, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	t.Setenv("CAREER_NAVIGATOR_TEST_KEY", " from-env ")

	cases := []struct {
		name string
		src  Source
		want string
	}{
		{name: "file wins", src: Source{File: file, Value: "inline", Env: "CAREER_NAVIGATOR_TEST_KEY"}, want: "from-file"},
		{name: "inline before env", src: Source{Value: " inline ", Env: "CAREER_NAVIGATOR_TEST_KEY"}, want: "inline"},
		{name: "env fallback", src: Source{Env: "CAREER_NAVIGATOR_TEST_KEY"}, want: "from-env"},
	}

	for _, tc := range cases {
		got, err := Load(tc.src)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, []byte("   "), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	t.Setenv("CAREER_NAVIGATOR_EMPTY_KEY", "")

	cases := []struct {
		name string
		src  Source
		want string
	}{
		{name: "missing file", src: Source{Name: "api key", File: filepath.Join(dir, "missing")}, want: "reading api key from file"},
		{name: "empty file", src: Source{Name: "api key", File: empty}, want: "is empty"},
		{name: "empty env", src: Source{Name: "api key", Env: "CAREER_NAVIGATOR_EMPTY_KEY"}, want: "set CAREER_NAVIGATOR_EMPTY_KEY"},
		{name: "nothing", src: Source{}, want: "secret is not configured"},
	}

	for _, tc := range cases {
		_, err := Load(tc.src)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected error containing %q, got %v", tc.name, tc.want, err)
		}
	}
}
