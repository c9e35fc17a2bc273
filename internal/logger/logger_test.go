package logger

import (
	"bytes"
	"strings"
	"testing"
)

func newTestLogger(service string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := New(service).SetOutput(&buf).SetLevel(DEBUG)
	return l, &buf
}

func TestLogger_WritesLevelAndService(t *testing.T) {
	l, buf := newTestLogger("auth")

	l.Info("user %s registered", "abc")

	got := strings.TrimSpace(buf.String())
	want := "INFO  [auth] user abc registered"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	l, buf := newTestLogger("auth")
	l.SetLevel(WARN)

	l.Debug("debug")
	l.Info("info")
	l.Warn("warn")

	out := buf.String()
	if strings.Contains(out, "debug") || strings.Contains(out, "info") {
		t.Errorf("expected lower levels to be filtered, got %q", out)
	}
	if !strings.Contains(out, "WARN") {
		t.Errorf("expected warn line, got %q", out)
	}
}

func TestLogger_WithAppendsSortedFields(t *testing.T) {
	l, buf := newTestLogger("mailer")

	child := l.With("to", "a@x.com").With("attempt", 2)
	child.Warn("delivery failed")

	got := strings.TrimSpace(buf.String())
	want := "WARN  [mailer] delivery failed attempt=2 to=a@x.com"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestLogger_WithDoesNotMutateParent(t *testing.T) {
	l, buf := newTestLogger("svc")

	_ = l.With("k", "v")
	l.Info("plain")

	if strings.Contains(buf.String(), "k=v") {
		t.Errorf("parent logger picked up child field: %q", buf.String())
	}
}

func TestLogger_FatalCallsExit(t *testing.T) {
	l, _ := newTestLogger("svc")
	code := -1
	l.exit = func(c int) { code = c }

	l.Fatal("boom")

	if code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   DEBUG,
		"INFO":    INFO,
		"warning": WARN,
		"error":   ERROR,
		"fatal":   FATAL,
		"":        INFO,
		"bogus":   INFO,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
