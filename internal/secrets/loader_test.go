package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "secret")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		src     Source
		want    string
		wantErr string
	}{
		{name: "inline value is trimmed", src: Source{Value: "  redis://localhost:6379/0 \n"}, want: "redis://localhost:6379/0"},
		{
			name: "file wins over value",
			src:  Source{Value: "inline", File: writeFile(t, "postgres://u:p@db/sponsorpath\n")},
			want: "postgres://u:p@db/sponsorpath",
		},
		{name: "empty file", src: Source{Name: "storage url", File: writeFile(t, " \n")}, wantErr: "storage url file"},
		{name: "missing file", src: Source{File: filepath.Join(t.TempDir(), "missing")}, wantErr: "reading secret from file"},
		{name: "nothing configured", src: Source{Name: "storage url"}, wantErr: "storage url: secret is not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestLoadNotConfiguredIsDetectable(t *testing.T) {
	_, err := Load(Source{})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
