package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewWithOutput_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("dash", "warn", &buf)

	log.Info("hidden", "k", 1)
	log.Warn("shown", "k", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line leaked through warn level: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "k=2") {
		t.Fatalf("warn line missing or without fields: %s", out)
	}
}

func TestNewWithOutput_UnknownLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("dash", "loud", &buf)

	log.Debug("debug line")
	log.Info("info line")

	out := buf.String()
	if strings.Contains(out, "debug line") {
		t.Fatalf("debug should be filtered at default level: %s", out)
	}
	if !strings.Contains(out, "info line") {
		t.Fatalf("expected info line: %s", out)
	}
}
