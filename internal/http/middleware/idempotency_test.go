package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type lookupCall struct {
	userID, scope, key string
	now                time.Time
}

func TestIdempotencyValidator(t *testing.T) {
	fixed := time.Date(2026, 3, 4, 10, 0, 0, 0, time.FixedZone("x", 3600))
	var calls []lookupCall
	lookup := func(_ context.Context, userID, scope, key string, now time.Time) (bool, error) {
		calls = append(calls, lookupCall{userID, scope, key, now})
		switch key {
		case "seen":
			return true, nil
		case "broken":
			return true, errors.New("db down")
		}
		return false, nil
	}
	r := newEngine(UserIdentity(UserIdentityOptions{}), IdempotencyValidator(IdempotencyOptions{
		MaxLen: 16,
		Scope:  func(*gin.Context) string { return "chat.turns" },
		Now:    func() time.Time { return fixed },
	}, lookup))
	handler := func(c *gin.Context) {
		k, _ := GetIdempotencyKey(c)
		c.JSON(http.StatusOK, gin.H{"key": k, "replay": IsReplay(c), "bypass": IsRateBypass(c)})
	}
	r.POST("/turns", handler)
	r.GET("/turns", handler)

	do := func(method, key string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(method, "/turns", nil)
		req.Header.Set(HeaderUserID, "u1")
		if key != "" {
			req.Header.Set(HeaderIdempotencyKey, key)
		}
		r.ServeHTTP(w, req)
		return w
	}

	if body := decodeBody(t, do(http.MethodPost, "")); body["key"] != "" || len(calls) != 0 {
		t.Fatalf("no header should be a no-op: %v, calls=%d", body, len(calls))
	}

	body := decodeBody(t, do(http.MethodPost, "fresh-1"))
	if body["key"] != "fresh-1" || body["replay"] != false {
		t.Fatalf("fresh key: %v", body)
	}
	if c := calls[0]; c.userID != "u1" || c.scope != "chat.turns" || c.key != "fresh-1" || !c.now.Equal(fixed) || c.now.Location() != time.UTC {
		t.Fatalf("lookup args: %+v", c)
	}

	body = decodeBody(t, do(http.MethodPost, "seen"))
	if body["replay"] != true || body["bypass"] != true {
		t.Fatalf("seen key should replay: %v", body)
	}

	body = decodeBody(t, do(http.MethodPost, "broken"))
	if body["replay"] != false {
		t.Fatalf("lookup errors must not replay: %v", body)
	}

	n := len(calls)
	body = decodeBody(t, do(http.MethodGet, "seen"))
	if body["key"] != "" || len(calls) != n {
		t.Fatalf("safe methods ignore the key: %v", body)
	}

	for _, bad := range []string{"has space", strings.Repeat("k", 17), "semi;colon"} {
		w := do(http.MethodPost, bad)
		if w.Code != http.StatusBadRequest || decodeBody(t, w)["code"] != "bad_idempotency_key" {
			t.Fatalf("key %q: status %d body %s", bad, w.Code, w.Body.String())
		}
	}
}

func TestIdempotencyValidator_DefaultsAndCustomPattern(t *testing.T) {
	var scope string
	lookup := func(_ context.Context, _, s, _ string, _ time.Time) (bool, error) {
		scope = s
		return false, nil
	}
	r := newEngine(IdempotencyValidator(IdempotencyOptions{Pattern: regexp.MustCompile(`^[0-9]+$`)}, lookup))
	r.POST("/x/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x/1", nil)
	req.Header.Set(HeaderIdempotencyKey, "123")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent || scope != "/x/:id" {
		t.Fatalf("status %d, scope %q", w.Code, scope)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/x/1", nil)
	req.Header.Set(HeaderIdempotencyKey, "abc")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("custom pattern not applied: %d", w.Code)
	}
}

func TestMarkReplayed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	base := testutil.ToFloat64(idemReplays.WithLabelValues("test.scope"))
	MarkReplayed(c, "test.scope")
	if w.Header().Get(HeaderIdempotencyReplayed) != "true" {
		t.Fatal("replay header missing")
	}
	if got := testutil.ToFloat64(idemReplays.WithLabelValues("test.scope")) - base; got != 1 {
		t.Fatalf("replay counter delta = %v", got)
	}
}
