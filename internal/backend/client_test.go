package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", 2*time.Second)
}

func TestStudentLoginSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/student/login", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("code"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "aarfa", body["name"])

		json.NewEncoder(w).Encode(map[string]any{
			"result": true,
			"msg":    "OK",
			"student": map[string]any{
				"id":      "u-1",
				"name":    "aarfa",
				"modules": []string{"CS2850"},
			},
		})
	})

	acct, err := c.StudentLogin(context.Background(), "aarfa", "pwd")
	assert.NoError(t, err)
	assert.Equal(t, "aarfa", acct.Name)
	assert.Equal(t, []string{"CS2850"}, acct.Modules)
}

func TestLoginUpstreamFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"result": false, "msg": "student not found"})
	})

	_, err := c.StudentLogin(context.Background(), "nobody", "pwd")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstream))
	// The upstream msg surfaces verbatim so the client can show it.
	assert.Equal(t, "student not found", err.Error())
}

func TestBackendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(srv.URL, "k", time.Second)

	_, err := c.LecturerLogin(context.Background(), "x", "y")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstream))
	assert.Equal(t, "API_ERROR", err.Error())
}

func TestBadResponseBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway timeout</html>"))
	})

	err := c.StudentEnroll(context.Background(), "aarfa", "pwd", []string{"CS2850"})
	assert.Error(t, err)
	assert.Equal(t, "API_ERROR", err.Error())
}

func TestMakeLecture(t *testing.T) {
	var got map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lecture/make", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(map[string]any{"result": true, "msg": "OK"})
	})

	err := c.MakeLecture(context.Background(), "Operating Systems", "CS2850", "Dr. Alwash", "2026-09-01", "10:00")
	assert.NoError(t, err)
	assert.Equal(t, "Operating Systems", got["title"])
	assert.Equal(t, "Dr. Alwash", got["lecturer"])
	assert.Equal(t, "10:00", got["time"])
}

func TestLoginSuccessWithoutAccountRecord(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"result": true, "msg": "OK"})
	})

	acct, err := c.StudentLogin(context.Background(), "aarfa", "pwd")
	assert.Nil(t, acct)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstream))
	assert.Equal(t, "API_ERROR", err.Error())

	lacct, err := c.LecturerLogin(context.Background(), "Dr. Alwash", "pwd")
	assert.Nil(t, lacct)
	assert.Error(t, err)
	assert.Equal(t, "API_ERROR", err.Error())
}

func TestEmptyMsgFallback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"result": false})
	})

	err := c.LecturerHire(context.Background(), "x", "y", []string{"m"})
	assert.Error(t, err)
	assert.Equal(t, "request failed", err.Error())
}
