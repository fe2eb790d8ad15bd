package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestPackage_Functions_UseDefaultLogger(t *testing.T) {
	original := defaultLog
	t.Cleanup(func() { defaultLog = original })

	var buf bytes.Buffer

	Config(
		WithOutput(&buf),
		WithLevel(LevelTrace),
		WithFormat(FormatJSON),
		WithPretty(false),
	)

	ctx := context.Background()

	tests := []struct {
		name  string
		log   func(string, ...slog.Attr)
		level string
	}{
		{"Trace", Trace, "TRACE"},
		{"Debug", Debug, "DEBUG"},
		{"Info", Info, "INFO"},
		{"Warn", Warn, "WARN"},
		{"Error", Error, "ERROR"},
		{"TraceContext", func(m string, a ...slog.Attr) { TraceContext(ctx, m, a...) }, "TRACE"},
		{"DebugContext", func(m string, a ...slog.Attr) { DebugContext(ctx, m, a...) }, "DEBUG"},
		{"InfoContext", func(m string, a ...slog.Attr) { InfoContext(ctx, m, a...) }, "INFO"},
		{"WarnContext", func(m string, a ...slog.Attr) { WarnContext(ctx, m, a...) }, "WARN"},
		{"ErrorContext", func(m string, a ...slog.Attr) { ErrorContext(ctx, m, a...) }, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log("package message", slog.String("key", "value"))

			entry := decode(t, &buf)
			if entry["msg"] != "package message" {
				t.Errorf("msg = %v", entry["msg"])
			}

			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %s", entry["level"], tt.level)
			}

			if entry["key"] != "value" {
				t.Errorf("key = %v, want value", entry["key"])
			}
		})
	}
}

func TestPackage_With(t *testing.T) {
	original := defaultLog
	t.Cleanup(func() { defaultLog = original })

	var buf bytes.Buffer

	Config(WithOutput(&buf), WithPretty(false))
	With(slog.String("cmd", "get")).Info("done")

	if !strings.Contains(buf.String(), `"cmd":"get"`) {
		t.Errorf("attribute missing: %q", buf.String())
	}

	if Default().Format() != FormatJSON {
		t.Errorf("Default().Format() = %v", Default().Format())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"trace":  LevelTrace,
		"TRACE":  LevelTrace,
		"debug":  LevelDebug,
		"warn":   LevelWarn,
		"error":  LevelError,
		"bogus":  DefaultLevel,
		"info+2": Level(slog.LevelInfo + 2),
		"":       DefaultLevel,
	}

	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLevel_String(t *testing.T) {
	tests := map[Level]string{
		LevelTrace:                 "trace",
		LevelInfo:                  "info",
		Level(slog.LevelInfo + 2):  "info+2",
		Level(slog.LevelError + 4): "error+4",
	}

	for level, want := range tests {
		if got := level.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(level), got, want)
		}
	}

	if got := Format(9).String(); got != "Format(9)" {
		t.Errorf("Format(9).String() = %q", got)
	}
}
