package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func jsonLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: FormatJSON}, "test-svc", buf)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
		t.Fatalf("invalid json line %q: %v", buf.String(), err)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.Service() != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.Service())
	}
}

func TestNewInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "invalid-level")
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug should be filtered at info level, got %q", buf.String())
	}
	l.Info("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected info line, got %q", buf.String())
	}
}

func TestJSONOutputCarriesServiceAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "debug")
	l.Info("loaded", Fields("count", 3))

	m := decodeLine(t, &buf)
	if m[FieldService] != "test-svc" {
		t.Errorf("service = %v", m[FieldService])
	}
	if m["count"] != float64(3) {
		t.Errorf("count = %v", m["count"])
	}
	if m["message"] != "loaded" {
		t.Errorf("message = %v", m["message"])
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "info").WithComponent("sources")
	l.Info("x")
	if m := decodeLine(t, &buf); m[FieldComponent] != "sources" {
		t.Errorf("component = %v", m[FieldComponent])
	}
	if l.Service() != "test-svc" {
		t.Errorf("service should be preserved, got %q", l.Service())
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithTrace(ctx, "trace-1", "span-1")

	jsonLogger(&buf, "info").WithContext(ctx).Info("x")
	m := decodeLine(t, &buf)
	for key, want := range map[string]string{
		FieldRequestID: "req-1",
		FieldTraceID:   "trace-1",
		FieldSpanID:    "span-1",
	} {
		if m[key] != want {
			t.Errorf("%s = %v, want %s", key, m[key], want)
		}
	}
}

func TestWithContextWithoutValuesReturnsSameLogger(t *testing.T) {
	l := Nop()
	if got := l.WithContext(context.Background()); got != l {
		t.Error("expected the receiver back when ctx carries no ids")
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf, "info").WithError(errors.New("boom")).Error("failed")
	if m := decodeLine(t, &buf); m[FieldError] != "boom" {
		t.Errorf("error = %v", m[FieldError])
	}
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Error("nothing", Fields("a", 1))
	l.WithComponent("c").WithFields(Fields("k", "v")).Debug("nothing")
}

func TestRequestIDFromContext(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty id, got %q", got)
	}
	ctx := ContextWithRequestID(context.Background(), "abc")
	if got := RequestIDFromContext(ctx); got != "abc" {
		t.Errorf("got %q, want abc", got)
	}
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, 2, "dropped", "tail")
	if len(m) != 1 || m["a"] != 1 {
		t.Errorf("unexpected fields %v", m)
	}
}

func TestErrorAndDurationFields(t *testing.T) {
	ef := ErrorFields("load", errors.New("nope"))
	if ef[FieldOperation] != "load" || ef[FieldError] != "nope" {
		t.Errorf("unexpected error fields %v", ef)
	}
	df := DurationFields("load", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("unexpected duration fields %v", df)
	}
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Level != "info" || cfg.Format != FormatConsole || cfg.Output != OutputStderr {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	cfg.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Error("expected invalid level error")
	}
	cfg.Level = "info"
	cfg.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("expected invalid format error")
	}
}

func TestLevelTag(t *testing.T) {
	if got := levelTag("info", true); got != "[INF]" {
		t.Errorf("got %q", got)
	}
	if got := levelTag("custom", true); got != "[CUSTOM]" {
		t.Errorf("got %q", got)
	}
	if got := levelTag("warn", false); !strings.Contains(got, "[WRN]") {
		t.Errorf("got %q", got)
	}
}

func TestGlobalLogger(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	SetGlobalLogger(Nop())
	Info("quiet")
	if got := GetGlobalLogger().Service(); got != "" {
		t.Errorf("expected the nop logger, got service %q", got)
	}
}
