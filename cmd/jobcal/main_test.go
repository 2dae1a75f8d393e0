package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", "jobcal.yaml", "--log-level", "error"}, args...))
	if err := root.Execute(); err != nil {
		t.Fatalf("jobcal %v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

const invite = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:one@example.com\r\n" +
	"DTSTAMP:20240301T000000Z\r\n" +
	"DTSTART:20240306T140000Z\r\n" +
	"DTEND:20240306T150000Z\r\n" +
	"SUMMARY:Onsite interview\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestAddImportExportWeek(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	// First run writes the default config; switch it to UTC for stable output.
	run(t, "week", "--date", "2024-03-06")
	cfgPath := filepath.Join(dir, "jobcal.yaml")
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("config not created: %v", err)
	}
	data = bytes.Replace(data, []byte("timezone: Local"), []byte("timezone: UTC"), 1)
	if err := os.WriteFile(cfgPath, data, 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	id := strings.TrimSpace(run(t, "add", "--company", "Acme", "--position", "Eng", "--applied", "2024-03-04"))
	if id == "" {
		t.Fatalf("add printed no id")
	}

	invitePath := filepath.Join(dir, "invite.ics")
	if err := os.WriteFile(invitePath, []byte(invite), 0o600); err != nil {
		t.Fatalf("write invite: %v", err)
	}
	if out := run(t, "import-ics", "--application", id, invitePath); !strings.Contains(out, "imported 1 event(s)") {
		t.Fatalf("import output = %q", out)
	}

	feed := run(t, "export")
	for _, want := range []string{"BEGIN:VCALENDAR", "Onsite interview · Acme", "Application Submitted · Acme"} {
		if !strings.Contains(feed, want) {
			t.Fatalf("export missing %q:\n%s", want, feed)
		}
	}

	week := run(t, "week", "--date", "2024-03-06")
	for _, want := range []string{"Mon 03-04", "Application Submitted", "14:00-15:00", "Onsite interview"} {
		if !strings.Contains(week, want) {
			t.Fatalf("week output missing %q:\n%s", want, week)
		}
	}
}

func TestAddRejectsBadDate(t *testing.T) {
	t.Chdir(t.TempDir())

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", "jobcal.yaml", "add", "--company", "Acme", "--applied", "someday maybe"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected bad applied date to fail")
	}
}
