package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func capture(t *testing.T, level Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := SetOutput(&buf)
	SetLevel(level)
	t.Cleanup(func() {
		SetOutput(prev)
		SetLevel(LevelInfo)
	})
	return &buf
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t, LevelWarn)

	Debug("debug line")
	Info("info line")
	Warn("warn line", "k", "v")
	Error("error line", errors.New("boom"))

	got := buf.String()
	if strings.Contains(got, "debug line") || strings.Contains(got, "info line") {
		t.Fatalf("expected debug/info to be filtered, got %q", got)
	}
	if !strings.Contains(got, "[WARN] warn line k=v") {
		t.Fatalf("missing warn line in %q", got)
	}
	if !strings.Contains(got, "[ERROR] error line err=boom") {
		t.Fatalf("missing error line in %q", got)
	}
}

func TestValuesWithSpacesAreQuoted(t *testing.T) {
	buf := capture(t, LevelDebug)

	Info("projected", "title", "Application Submitted", "count", 2, "dangling")

	got := buf.String()
	if !strings.Contains(got, `title="Application Submitted" count=2`) {
		t.Fatalf("unexpected line %q", got)
	}
	if strings.Contains(got, "dangling") {
		t.Fatalf("odd trailing key should be dropped: %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestWriterAdapters(t *testing.T) {
	buf := capture(t, LevelDebug)

	w := Writer{Level: LevelDebug, Msg: "http request"}
	if _, err := w.Write([]byte("GET /health 200\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	Writer{Level: LevelError, Msg: "panic"}.Println("boom", 42)

	got := buf.String()
	if !strings.Contains(got, `[DEBUG] http request detail="GET /health 200"`) {
		t.Fatalf("access log line missing in %q", got)
	}
	if !strings.Contains(got, `[ERROR] panic detail="boom 42"`) {
		t.Fatalf("println line missing in %q", got)
	}
}
