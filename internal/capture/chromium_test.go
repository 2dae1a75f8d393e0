package capture

import (
	"os"
	"path/filepath"
	"testing"

	"jobcal/internal/config"
)

func TestFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Listen = "127.0.0.1:9090"
	cfg.BasicAuth = &config.BasicAuthConfig{Username: "me", Password: "pw"}

	opts := FromConfig(cfg)
	if opts.URL != "http://127.0.0.1:9090/calendar" {
		t.Fatalf("URL = %q", opts.URL)
	}
	if opts.Width != 1280 || opts.Height != 900 {
		t.Fatalf("viewport = %dx%d", opts.Width, opts.Height)
	}

	n, err := opts.normalized()
	if err != nil {
		t.Fatalf("normalized: %v", err)
	}
	if n.URL != "http://me:pw@127.0.0.1:9090/calendar" {
		t.Fatalf("credentials not embedded: %q", n.URL)
	}
	if n.Timeout != DefaultTimeout {
		t.Fatalf("timeout = %v", n.Timeout)
	}
}

func TestNormalizedRequiresURLAndOutput(t *testing.T) {
	if _, err := (Options{Output: "x.png"}).normalized(); err == nil {
		t.Fatalf("expected error without URL")
	}
	if _, err := (Options{URL: "http://x"}).normalized(); err == nil {
		t.Fatalf("expected error without output")
	}
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "preview.png")
	if err := writeFileAtomic(path, []byte("png")); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "png" {
		t.Fatalf("read back %q, %v", got, err)
	}
}
