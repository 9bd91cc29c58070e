package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/juruladenbam/bam-sub001/common/ratelimit"
)

type fakeChecker struct {
	result  *ratelimit.RateLimitResult
	err     error
	clients []string
}

func (f *fakeChecker) CheckClientLimit(ctx context.Context, clientID string, policy ratelimit.Policy) (*ratelimit.RateLimitResult, error) {
	f.clients = append(f.clients, clientID)
	return f.result, f.err
}

func serve(mw echo.MiddlewareFunc, req *http.Request) *httptest.ResponseRecorder {
	e := echo.New()
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, mw)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireInternalService(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "nope", http.StatusUnauthorized},
		{"valid", "s3cret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(InternalServiceHeader, tt.header)
			}
			rec := serve(RequireInternalService("s3cret"), req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestClientRateLimit_Denied(t *testing.T) {
	checker := &fakeChecker{result: &ratelimit.RateLimitResult{Allowed: false, CurrentCount: 6, Limit: 5, RetryAfterSeconds: 17}}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(ClientIDHeader, "portal-user-7")

	rec := serve(ClientRateLimitMiddleware(checker, ratelimit.PerMinute(ratelimit.ScopeResolve, 5), "s3cret"), req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "17", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate_limit_exceeded")
	assert.Equal(t, []string{"portal-user-7"}, checker.clients)
}

func TestClientRateLimit_FailsOpen(t *testing.T) {
	checker := &fakeChecker{err: errors.New("redis down")}
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	rec := serve(ClientRateLimitMiddleware(checker, ratelimit.PolicyFor(ratelimit.ScopeResolve), "s3cret"), req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientRateLimit_InternalBypass(t *testing.T) {
	checker := &fakeChecker{result: &ratelimit.RateLimitResult{Allowed: false}}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(InternalServiceHeader, "s3cret")

	rec := serve(ClientRateLimitMiddleware(checker, ratelimit.PolicyFor(ratelimit.ScopeResolve), "s3cret"), req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, checker.clients)
}
