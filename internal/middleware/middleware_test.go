package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiterRefills(t *testing.T) {
	now := time.Date(2025, 3, 24, 8, 0, 0, 0, time.UTC)
	rl := newRateLimiter(2, time.Minute, func() time.Time { return now })

	for i := 0; i < 2; i++ {
		if ok, _ := rl.Allow("10.0.0.1"); !ok {
			t.Fatalf("request %d rejected", i+1)
		}
	}
	ok, wait := rl.Allow("10.0.0.1")
	if ok || wait != time.Minute {
		t.Errorf("third request: ok=%v wait=%v", ok, wait)
	}
	if ok, _ := rl.Allow("10.0.0.2"); !ok {
		t.Error("other client should have its own bucket")
	}

	now = now.Add(61 * time.Second)
	if ok, _ := rl.Allow("10.0.0.1"); !ok {
		t.Error("bucket not refilled after one interval")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	r := gin.New()
	rl := newRateLimiter(1, time.Hour, time.Now)
	r.POST("/generate", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusAccepted) })

	codes := make([]int, 2)
	var last *httptest.ResponseRecorder
	for i := range codes {
		last = httptest.NewRecorder()
		r.ServeHTTP(last, httptest.NewRequest(http.MethodPost, "/generate", nil))
		codes[i] = last.Code
	}
	if codes[0] != http.StatusAccepted || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}

func brotliRouter() *gin.Engine {
	r := gin.New()
	r.Use(Brotli())
	r.GET("/json", func(c *gin.Context) {
		c.String(http.StatusOK, strings.Repeat("Aufgabe ", 500))
	})
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/pdf", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/pdf", bytes.Repeat([]byte("%PDF-1.4 "), 500))
	})
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept-Encoding", "gzip, br")
	r.ServeHTTP(w, req)
	return w
}

func TestBrotliCompressesLargeText(t *testing.T) {
	w := get(brotliRouter(), "/json")
	if w.Header().Get("Content-Encoding") != "br" {
		t.Fatalf("Content-Encoding = %q", w.Header().Get("Content-Encoding"))
	}
	body, err := io.ReadAll(brotli.NewReader(w.Body))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(body) != strings.Repeat("Aufgabe ", 500) {
		t.Errorf("decoded body has %d bytes", len(body))
	}
}

func TestBrotliPassesThrough(t *testing.T) {
	r := brotliRouter()

	w := get(r, "/small")
	if w.Header().Get("Content-Encoding") != "" || w.Body.String() != "ok" {
		t.Errorf("small body: encoding=%q body=%q", w.Header().Get("Content-Encoding"), w.Body.String())
	}

	w = get(r, "/pdf")
	if w.Header().Get("Content-Encoding") != "" || !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")) {
		t.Error("PDF should not be recompressed")
	}
}

func TestCacheControl(t *testing.T) {
	r := gin.New()
	r.GET("/status", NoStore(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/download", PrivateMaxAge(3600), func(c *gin.Context) { c.Status(http.StatusOK) })

	if got := get(r, "/status").Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("status Cache-Control = %q", got)
	}
	if got := get(r, "/download").Header().Get("Cache-Control"); got != "private, max-age=3600" {
		t.Errorf("download Cache-Control = %q", got)
	}
}
