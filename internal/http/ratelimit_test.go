package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteLimiterAllowsUpToBudget(t *testing.T) {
	l := newWriteLimiter(3)
	defer l.stop()

	for i := 0; i < 3; i++ {
		assert.True(t, l.allow("owner-a"), "request %d", i+1)
	}
	assert.False(t, l.allow("owner-a"))
}

func TestWriteLimiterIsPerOwner(t *testing.T) {
	l := newWriteLimiter(1)
	defer l.stop()

	assert.True(t, l.allow("owner-a"))
	assert.False(t, l.allow("owner-a"))
	assert.True(t, l.allow("owner-b"))
}

func TestWriteLimiterStopIsIdempotent(t *testing.T) {
	l := newWriteLimiter(1)
	l.stop()
	l.stop()
}

func TestLimitWritesRejectsOverBudget(t *testing.T) {
	s := newTestServer(t)
	s.limiter.stop()
	s.limiter = newWriteLimiter(1)
	defer s.limiter.stop()

	createTx(t, s, `{"date":"2024-01-15","amount":"1.00","kind":"Expense","merchant":"A","account":"B"}`)

	rec := doRequest(t, s, http.MethodPost, "/api/transactions",
		`{"date":"2024-01-15","amount":"1.00","kind":"Expense","merchant":"A","account":"B"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// Reads are never limited.
	rec = doRequest(t, s, http.MethodGet, "/api/transactions", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
