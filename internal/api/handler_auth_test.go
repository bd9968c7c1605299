package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postLogin(ts *testServer, password string) (*loginResult, int) {
	w := doJSON(ts.router, http.MethodPost, "/api/admin/auth",
		map[string]string{"password": password}, "")
	var result loginResult
	_ = json.Unmarshal(w.Body.Bytes(), &result)
	return &result, w.Code
}

type loginResult struct {
	Success bool `json:"success"`
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	result, code := postLogin(ts, testAdminPassword)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, result.Success)

	result, code = postLogin(ts, "wrong")
	require.Equal(t, http.StatusOK, code)
	assert.False(t, result.Success)
}

func TestLogin_RateLimited(t *testing.T) {
	ts := newTestServer(t)

	for i := 0; i < 5; i++ {
		_, code := postLogin(ts, "wrong")
		require.Equal(t, http.StatusOK, code, "attempt %d", i+1)
	}

	_, code := postLogin(ts, "wrong")
	assert.Equal(t, http.StatusTooManyRequests, code)

	// Even the right password is throttled once the window is spent.
	_, code = postLogin(ts, testAdminPassword)
	assert.Equal(t, http.StatusTooManyRequests, code)
}

func TestLogin_EmptyPassword(t *testing.T) {
	ts := newTestServer(t)
	_, code := postLogin(ts, "")
	assert.Equal(t, http.StatusBadRequest, code)
}
