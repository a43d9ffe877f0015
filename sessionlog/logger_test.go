package sessionlog

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestWarnOnceSuppressesRepeats(t *testing.T) {
	var buf bytes.Buffer
	l := New(log.New(&buf, "", 0))

	l.WarnOnce("unknown-signal-code", "unknown signal code %d", 42)
	l.WarnOnce("unknown-signal-code", "unknown signal code %d", 43)

	out := buf.String()
	if strings.Count(out, "unknown signal code") != 1 {
		t.Fatalf("expected exactly one warning, got log: %q", out)
	}
}

func TestWarnOnceDistinguishesKinds(t *testing.T) {
	var buf bytes.Buffer
	l := New(log.New(&buf, "", 0))

	l.WarnOnce("missing-time", "missing time")
	l.WarnOnce("unknown-signal-code", "unknown signal code")

	out := buf.String()
	if strings.Count(out, "\n") != 2 {
		t.Fatalf("expected two distinct log lines, got: %q", out)
	}
}

func TestResetClearsSuppression(t *testing.T) {
	var buf bytes.Buffer
	l := New(log.New(&buf, "", 0))

	l.WarnOnce("buffer-full", "buffer full")
	l.Reset()
	l.WarnOnce("buffer-full", "buffer full")

	out := buf.String()
	if strings.Count(out, "buffer full") != 2 {
		t.Fatalf("expected warning to fire again after Reset, got: %q", out)
	}
}

func TestPrintfWritesUnconditionally(t *testing.T) {
	var buf bytes.Buffer
	l := New(log.New(&buf, "", 0))

	l.Printf("first")
	l.Printf("first")

	if strings.Count(buf.String(), "first") != 2 {
		t.Fatalf("expected Printf to not dedupe, got: %q", buf.String())
	}
}
