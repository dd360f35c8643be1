package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_DefaultAppLabel(t *testing.T) {
	var buf bytes.Buffer
	lg := New(Options{Level: Info, Format: FormatJSON, Output: &buf})

	lg.Info("hola", nil)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal entry: %v", err)
	}
	if entry["app"] != DefaultApp {
		t.Fatalf("expected app=%q, got %v", DefaultApp, entry["app"])
	}
	if entry["level"] != "info" || entry["msg"] != "hola" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestLog_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	lg := New(Options{Level: Warn, Output: &buf})

	lg.Debug("no", nil)
	lg.Info("no", nil)
	lg.Warn("si", nil)

	out := buf.String()
	if strings.Count(out, "\n") != 1 || !strings.Contains(out, "msg=si") {
		t.Fatalf("expected only the warn line, got %q", out)
	}
}

func TestWith_MergesFields(t *testing.T) {
	var buf bytes.Buffer
	lg := New(Options{Level: Info, Format: FormatJSON, Output: &buf})

	lg.With(map[string]any{"mod": "wizard"}).Info("step", map[string]any{"step": "gallery"})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal entry: %v", err)
	}
	if entry["mod"] != "wizard" || entry["step"] != "gallery" {
		t.Fatalf("expected merged fields, got %v", entry)
	}
}

func TestFormatText_StableKeyOrder(t *testing.T) {
	var buf bytes.Buffer
	lg := New(Options{Level: Info, App: "api", Output: &buf})

	lg.With(map[string]any{"mod": "modal"}).Info("open", map[string]any{"zeta": 1, "alpha": 2})

	line := strings.TrimSpace(buf.String())
	for _, pair := range [][2]string{
		{"ts=", "level="},
		{"level=", "app=api"},
		{"app=api", "mod=modal"},
		{"mod=modal", "msg=open"},
		{"msg=open", "alpha=2"},
		{"alpha=2", "zeta=1"},
	} {
		if strings.Index(line, pair[0]) >= strings.Index(line, pair[1]) {
			t.Fatalf("expected %q before %q in %q", pair[0], pair[1], line)
		}
	}
}
