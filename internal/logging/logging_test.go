package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// captureLogOutput redirects the global logger to a buffer at debug level.
func captureLogOutput(t *testing.T, format Format, f func()) string {
	t.Helper()
	var buf bytes.Buffer
	InitLoggerTo(&buf, LevelDebug, format)
	defer InitLogger(LevelInfo, FormatJSON)
	f()
	return buf.String()
}

func decodeLines(t *testing.T, out string) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		entries = append(entries, m)
	}
	return entries
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("text"); err != nil || f != FormatText {
		t.Errorf("ParseFormat(text) = %v, %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat('') = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) expected error")
	}
}

func TestInitLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerTo(&buf, LevelWarn, FormatJSON)
	defer InitLogger(LevelInfo, FormatJSON)

	Info("hidden")
	Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn message missing")
	}
}

func TestTextFormat(t *testing.T) {
	out := captureLogOutput(t, FormatText, func() {
		Info("opened", "translation", "kjv")
	})
	if !strings.Contains(out, "msg=opened") || !strings.Contains(out, "translation=kjv") {
		t.Errorf("unexpected text output: %s", out)
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	if got := GetRequestID(ctx); got != "req-1" {
		t.Errorf("GetRequestID() = %q", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID(empty) = %q", got)
	}

	out := captureLogOutput(t, FormatJSON, func() {
		InfoContext(ctx, "with id")
	})
	entries := decodeLines(t, out)
	if len(entries) != 1 || entries[0]["request_id"] != "req-1" {
		t.Errorf("entries = %v, want request_id req-1", entries)
	}
}

func TestTranslationEvent(t *testing.T) {
	out := captureLogOutput(t, FormatJSON, func() {
		TranslationEvent("switch", "asv", "from", "kjv")
	})
	entries := decodeLines(t, out)
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}
	e := entries[0]
	if e["msg"] != "translation_event" || e["event"] != "switch" || e["translation"] != "asv" || e["from"] != "kjv" {
		t.Errorf("entry = %v", e)
	}
}

func TestQueryFailure(t *testing.T) {
	out := captureLogOutput(t, FormatJSON, func() {
		QueryFailure("load verses", "kjv", errors.New("disk I/O error"), "book", 1)
	})
	entries := decodeLines(t, out)
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}
	e := entries[0]
	if e["level"] != "ERROR" || e["error"] != "disk I/O error" || e["operation"] != "load verses" {
		t.Errorf("entry = %v", e)
	}
}

func TestCombinedMiddleware(t *testing.T) {
	var seen string
	handler := CombinedMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	out := captureLogOutput(t, FormatJSON, func() {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books", nil))

		if seen == "" {
			t.Error("request ID not set on context")
		}
		if rec.Header().Get("X-Request-ID") != seen {
			t.Errorf("X-Request-ID = %q, want %q", rec.Header().Get("X-Request-ID"), seen)
		}
	})

	entries := decodeLines(t, out)
	if len(entries) != 1 {
		t.Fatalf("got %d entries", len(entries))
	}
	e := entries[0]
	if e["msg"] != "http_request" || e["path"] != "/books" || e["status_code"] != float64(http.StatusTeapot) {
		t.Errorf("entry = %v", e)
	}
	if e["request_id"] != seen {
		t.Errorf("request_id = %v, want %s", e["request_id"], seen)
	}
}

func TestRequestIDMiddlewareReusesHeader(t *testing.T) {
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "abc" {
		t.Errorf("X-Request-ID = %q, want abc", got)
	}
}
