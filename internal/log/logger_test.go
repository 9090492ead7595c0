package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func captureLogger(buf *bytes.Buffer, component string) *Logger {
	return New(Config{
		Component: component,
		Handler:   slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
}

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := captureLogger(&buf, ComponentWorker)

	logger.Info("export done", FieldMonth, "2024-03", FieldBooks, 7)

	out := buf.String()
	for _, want := range []string{
		FieldComponent + "=" + ComponentWorker,
		FieldMonth + "=2024-03",
		FieldBooks + "=7",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log line %q missing %q", out, want)
		}
	}
}

func TestWithComponentOverrides(t *testing.T) {
	var buf bytes.Buffer
	logger := captureLogger(&buf, ComponentApp).WithComponent(ComponentWorker)

	if logger.Component() != ComponentWorker {
		t.Fatalf("component = %q", logger.Component())
	}

	logger.Error("boom", FieldError, "broken pipe")
	if out := buf.String(); !strings.Contains(out, FieldComponent+"="+ComponentWorker) {
		t.Fatalf("log line %q missing overridden component", out)
	}
}
