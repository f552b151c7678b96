package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// captureLogs swaps the global logger for one writing into a buffer.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &m); err != nil {
		t.Fatalf("bad log line %q: %v", lines[len(lines)-1], err)
	}
	return m
}

func TestRedact(t *testing.T) {
	in := "id=123e4567-e89b-12d3-a456-426614174000 mail=zahra@example.com tel=+1 212-555-1212"
	out := redact(in)
	for _, leaked := range []string{"123e4567", "zahra@example.com", "555-1212"} {
		if strings.Contains(out, leaked) {
			t.Fatalf("%q leaked in %q", leaked, out)
		}
	}
	for _, marker := range []string{"[REDACTED:id]", "[REDACTED:email]", "[REDACTED:phone]"} {
		if !strings.Contains(out, marker) {
			t.Fatalf("missing %s in %q", marker, out)
		}
	}
	if redact("") != "" {
		t.Fatal("empty input should stay empty")
	}
}

func TestRedactingLogger_ScrubsAndLevels(t *testing.T) {
	buf := captureLogs(t)
	r := newEngine(RequestID(), UserIdentity(UserIdentityOptions{}), RedactingLogger(RedactOptions{
		MaskHeaders: []string{"X-Api-Key"},
		MaskQuery:   []string{"text"},
	}))
	r.GET("/ok", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("inside")
		c.String(http.StatusOK, "ok")
	})
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/err", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	req := httptest.NewRequest(http.MethodGet, "/ok?text=i+feel+sad&mail=zahra@example.com", nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("X-Api-Key", "k")
	req.Header.Set(HeaderUserID, "u1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	raw := buf.String()
	for _, leaked := range []string{"secret", "feel", "zahra@example.com"} {
		if strings.Contains(raw, leaked) {
			t.Fatalf("%q leaked into logs: %s", leaked, raw)
		}
	}
	line := lastLine(t, buf)
	if line["level"] != "info" || line["message"] != "http_request" || line["user_id"] != "u1" || line["path"] != "/ok" {
		t.Fatalf("unexpected access line: %v", line)
	}
	if !strings.Contains(raw, `"message":"inside"`) {
		t.Fatal("request-scoped logger not attached")
	}

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bad", nil))
	if lvl := lastLine(t, buf)["level"]; lvl != "warn" {
		t.Fatalf("4xx level = %v", lvl)
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/err", nil))
	if lvl := lastLine(t, buf)["level"]; lvl != "error" {
		t.Fatalf("5xx level = %v", lvl)
	}
}
