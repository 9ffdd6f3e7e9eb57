package middleware

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
)

// testPeer returns the socket peer address app.Test reports.
func testPeer(t *testing.T) string {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString(c.IP())
	})
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	return string(body)
}

func TestOriginMiddleware(t *testing.T) {
	peer := testPeer(t)

	tests := []struct {
		name     string
		header   string
		proxies  []string
		xff      string
		expected string // empty means the peer address
	}{
		{
			name:     "no proxy header configured uses peer address",
			header:   "",
			xff:      "203.0.113.9",
			expected: "",
		},
		{
			name:     "proxy header single address",
			header:   "X-Forwarded-For",
			xff:      "203.0.113.9",
			expected: "203.0.113.9",
		},
		{
			name:     "proxy header takes right-most address",
			header:   "X-Forwarded-For",
			xff:      " 198.51.100.4 , 10.0.0.1",
			expected: "10.0.0.1",
		},
		{
			name:     "trusted hops are skipped from the right",
			header:   "X-Forwarded-For",
			proxies:  []string{"10.0.0.0/8", peer},
			xff:      "6.6.6.6, 198.51.100.4, 10.0.0.2",
			expected: "198.51.100.4",
		},
		{
			name:     "single trusted proxy ip",
			header:   "X-Forwarded-For",
			proxies:  []string{"10.0.0.2", "bogus", peer},
			xff:      "198.51.100.4, 10.0.0.2",
			expected: "198.51.100.4",
		},
		{
			name:     "untrusted peer ignores header",
			header:   "X-Forwarded-For",
			proxies:  []string{"192.0.2.0/24"},
			xff:      "203.0.113.9",
			expected: "",
		},
		{
			name:     "missing proxy header falls back to peer",
			header:   "X-Real-IP",
			xff:      "203.0.113.9",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(NewOriginMiddleware(tt.header, tt.proxies).Handle)
			app.Get("/", func(c fiber.Ctx) error {
				return c.SendString(Origin(c))
			})

			req, _ := http.NewRequest(http.MethodGet, "/", nil)
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			body, _ := io.ReadAll(resp.Body)
			got := string(body)
			if tt.expected == "" {
				if got == "" || got == "203.0.113.9" {
					t.Errorf("Origin() = %q, want the peer address", got)
				}
				return
			}
			if got != tt.expected {
				t.Errorf("Origin() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestOriginIgnoresRotatedClientEntries(t *testing.T) {
	app := fiber.New()
	app.Use(NewOriginMiddleware("X-Forwarded-For", nil).Handle)
	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString(Origin(c))
	})

	seen := make(map[string]bool)
	for _, client := range []string{"6.6.6.1", "6.6.6.2", "6.6.6.3"} {
		req, _ := http.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", client+", 10.0.0.1")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		body, _ := io.ReadAll(resp.Body)
		seen[string(body)] = true
	}
	if len(seen) != 1 || !seen["10.0.0.1"] {
		t.Errorf("expected every request keyed to 10.0.0.1, got %v", seen)
	}
}

func TestOriginWithoutMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString(Origin(c))
	})

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) == 0 {
		t.Error("expected peer address fallback, got empty origin")
	}
}

func TestPrometheusHandlerExposesMetrics(t *testing.T) {
	app := fiber.New()
	app.Use(PrometheusMiddleware())
	app.Get("/ping", func(c fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", PrometheusHandler())

	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	if _, err := app.Test(req); err != nil {
		t.Fatalf("ping failed: %v", err)
	}

	req, _ = http.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("metrics failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `pincheck_http_requests_total{method="GET",path="/ping",status="200"}`) {
		t.Errorf("metrics output missing ping counter:\n%s", body)
	}
}

