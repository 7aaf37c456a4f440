// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"

	"github.com/danielhkuo/quickly-elect/models"
)

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: ErrorHandler,
	})
}

func decodeError(t *testing.T, resp *http.Response) models.ErrorResponse {
	t.Helper()
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	var er models.ErrorResponse
	if err := json.Unmarshal(body, &er); err != nil {
		t.Fatalf("Failed to decode error body %q: %v", body, err)
	}
	return er
}

func TestRejectionResponse(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{"not eligible", fmt.Errorf("%w: voter 1", models.ErrNotEligible), http.StatusForbidden, models.ReasonNotEligible},
		{"position closed", models.ErrPositionClosed, http.StatusConflict, models.ReasonPositionClosed},
		{"conflict", models.ErrConflict, http.StatusConflict, models.ReasonConflict},
		{"invalid candidate", models.ErrInvalidCandidate, http.StatusUnprocessableEntity, models.ReasonInvalidCandidate},
		{"too many", models.ErrTooManySelections, http.StatusUnprocessableEntity, models.ReasonTooManySelections},
		{"not found", models.ErrPositionNotFound, http.StatusNotFound, models.ReasonPositionNotFound},
		{"storage", fmt.Errorf("%w: boom", models.ErrStorage), http.StatusServiceUnavailable, models.ReasonStorage},
		{"timeout", fmt.Errorf("%w: %w", models.ErrStorage, context.DeadlineExceeded), http.StatusGatewayTimeout, ReasonTimeout},
		{"unknown", errors.New("mystery"), http.StatusInternalServerError, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp()
			app.Get("/", func(c *fiber.Ctx) error { return RejectionResponse(c, tc.err) })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			if resp.StatusCode != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, resp.StatusCode)
			}
			er := decodeError(t, resp)
			if er.Reason != tc.wantReason {
				t.Errorf("Expected reason %q, got %q", tc.wantReason, er.Reason)
			}
			if strings.Contains(er.Message, "boom") || strings.Contains(er.Message, "mystery") {
				t.Errorf("internal error text leaked: %q", er.Message)
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	app := newTestApp()
	app.Get("/fiber", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusBadRequest, "bad input") })
	app.Get("/engine", func(c *fiber.Ctx) error { return models.ErrConflict })

	resp, _ := app.Test(httptest.NewRequest("GET", "/fiber", nil), -1)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}
	if er := decodeError(t, resp); er.Message != "bad input" || er.Error != "Bad Request" {
		t.Errorf("unexpected body: %+v", er)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/engine", nil), -1)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", resp.StatusCode)
	}

	// Unknown route goes through the handler too
	resp, _ = app.Test(httptest.NewRequest("GET", "/missing", nil), -1)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
}

func TestErrorResponse(t *testing.T) {
	app := newTestApp()
	app.Get("/", func(c *fiber.Ctx) error {
		return ErrorResponse(c, http.StatusBadRequest, "Invalid JSON")
	})

	resp, _ := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Expected JSON content type, got %q", ct)
	}
	er := decodeError(t, resp)
	if er.Error != "Bad Request" || er.Message != "Invalid JSON" {
		t.Errorf("unexpected body: %+v", er)
	}
}

func TestWithTimeout(t *testing.T) {
	app := newTestApp()
	app.Use(WithTimeout(50 * time.Millisecond))
	app.Get("/", func(c *fiber.Ctx) error {
		deadline, ok := c.UserContext().Deadline()
		if !ok {
			return c.SendString("no deadline")
		}
		if time.Until(deadline) > 50*time.Millisecond {
			return c.SendString("deadline too far")
		}
		return c.SendString("ok")
	})

	resp, _ := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Errorf("Expected request deadline, got %q", body)
	}
}

func TestSubmitLimiter(t *testing.T) {
	app := newTestApp()
	app.Post("/ballots", SubmitLimiter(2), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusCreated) })

	send := func(ip string) int {
		req := httptest.NewRequest("POST", "/ballots", nil)
		req.Header.Set("X-Real-IP", ip)
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("app.Test() error = %v", err)
		}
		return resp.StatusCode
	}

	for i := 0; i < 2; i++ {
		if got := send("10.0.0.1"); got != http.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i, got)
		}
	}
	if got := send("10.0.0.1"); got != http.StatusTooManyRequests {
		t.Errorf("Expected 429 after limit, got %d", got)
	}
	if got := send("10.0.0.2"); got != http.StatusCreated {
		t.Errorf("Other client should not be limited, got %d", got)
	}
}

func TestSubmitLimiterDisabled(t *testing.T) {
	app := newTestApp()
	app.Post("/ballots", SubmitLimiter(0), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusCreated) })

	for i := 0; i < 50; i++ {
		resp, _ := app.Test(httptest.NewRequest("POST", "/ballots", nil), -1)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("request %d limited with limiter disabled: %d", i, resp.StatusCode)
		}
	}
}

func TestParseJSONBody(t *testing.T) {
	app := newTestApp()
	app.Post("/", func(c *fiber.Ctx) error {
		var req models.LoginRequest
		if err := ParseJSONBody(c, &req); err != nil {
			return ErrorResponse(c, http.StatusBadRequest, "Invalid JSON")
		}
		return c.SendString(req.Login)
	})

	testCases := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"valid", `{"login":"2020-0001","credential":"x"}`, http.StatusOK, "2020-0001"},
		{"malformed", `{"login":`, http.StatusBadRequest, ""},
		{"empty", ``, http.StatusBadRequest, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, _ := app.Test(httptest.NewRequest("POST", "/", strings.NewReader(tc.body)), -1)
			if resp.StatusCode != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, resp.StatusCode)
			}
			if tc.wantBody != "" {
				body, _ := io.ReadAll(resp.Body)
				if string(body) != tc.wantBody {
					t.Errorf("Expected body %q, got %q", tc.wantBody, body)
				}
			}
		})
	}
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name     string
		headers  map[string]string
		expected string
	}{
		{"X-Forwarded-For single", map[string]string{"X-Forwarded-For": "203.0.113.1"}, "203.0.113.1"},
		{"X-Forwarded-For chain", map[string]string{"X-Forwarded-For": "203.0.113.1, 198.51.100.1"}, "203.0.113.1"},
		{"X-Real-IP", map[string]string{"X-Real-IP": "203.0.113.5"}, "203.0.113.5"},
		{"XFF wins over X-Real-IP", map[string]string{"X-Forwarded-For": "1.1.1.1", "X-Real-IP": "2.2.2.2"}, "1.1.1.1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp()
			app.Get("/", func(c *fiber.Ctx) error { return c.SendString(GetClientIP(c)) })

			req := httptest.NewRequest("GET", "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			resp, _ := app.Test(req, -1)
			body, _ := io.ReadAll(resp.Body)
			if string(body) != tc.expected {
				t.Errorf("Expected IP %q, got %q", tc.expected, body)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	app := newTestApp()
	app.Use(CORS())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest("OPTIONS", "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, _ := app.Test(req, -1)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected preflight 204, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected Allow-Origin *, got %q", got)
	}
}

func TestRequestID(t *testing.T) {
	app := newTestApp()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(requestID(c))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	generated := resp.Header.Get(HeaderRequestID)
	if len(generated) != 16 {
		t.Errorf("Expected a 16 character generated ID, got %q", generated)
	}
	if string(body) != generated {
		t.Errorf("Locals ID %q does not match header %q", body, generated)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderRequestID, "client-123")
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(HeaderRequestID); got != "client-123" {
		t.Errorf("Expected caller ID to be kept, got %q", got)
	}
}
