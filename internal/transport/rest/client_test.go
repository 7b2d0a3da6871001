package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mdw "user-admin-console/internal/transport/http/middleware"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL+"/", opts...)
	require.NoError(t, err)
	return c
}

func TestNewClientRejectsBadBaseURL(t *testing.T) {
	_, err := NewClient("  ")
	assert.ErrorIs(t, err, errBaseURLRequired)

	_, err = NewClient("not a url")
	assert.Error(t, err)
}

func TestCallSendsJSONAndDecodes(t *testing.T) {
	var gotMethod, gotPath, gotQuery, gotCT string
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotQuery = r.Method, r.URL.Path, r.URL.RawQuery
		gotCT = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"u1"}`)
	})

	res, err := c.Call(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/users",
		Query:  map[string][]string{"x": {"1"}},
		Body:   map[string]string{"username": "johndoe"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, res.Status)

	var out struct{ ID string }
	require.NoError(t, res.Decode(&out))
	assert.Equal(t, "u1", out.ID)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/users", gotPath)
	assert.Equal(t, "x=1", gotQuery)
	assert.Equal(t, "application/json", gotCT)
	assert.Equal(t, "johndoe", gotBody["username"])
}

func TestCallMergesHeaders(t *testing.T) {
	var got http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = io.WriteString(w, `{}`)
	}, WithHeader("X-Client", "console"), WithTokenSource(StaticToken("tok")))

	_, err := c.Call(context.Background(), Request{
		Path:   "/users",
		Header: http.Header{"X-Trace": {"abc"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Len(t, got.Values("Content-Type"), 1)
	assert.Equal(t, "console", got.Get("X-Client"))
	assert.Equal(t, "abc", got.Get("X-Trace"))
	assert.Equal(t, "Bearer tok", got.Get("Authorization"))
}

func TestCallRejectionUsesServerMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"user not found"}`)
	})

	_, err := c.Call(context.Background(), Request{Path: "/users/missing"})
	require.Error(t, err)
	e, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, KindRejected, e.Kind)
	assert.Equal(t, http.StatusNotFound, e.Status)
	assert.Equal(t, "user not found", e.Error())
	assert.True(t, IsNotFound(err))
}

func TestCallRejectionFallbackMessage(t *testing.T) {
	for name, body := range map[string]string{
		"html":          "<html>boom</html>",
		"empty":         "",
		"no message":    `{"error":"x"}`,
		"blank message": `{"message":"  "}`,
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = io.WriteString(w, body)
			})
			_, err := c.Call(context.Background(), Request{Path: "/users"})
			require.Error(t, err)
			assert.Equal(t, "An error occurred", err.Error())
			assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
		})
	}
}

func TestCallNetworkFailure(t *testing.T) {
	boom := errors.New("dial tcp: connection refused")
	c, err := NewClient("http://api.test", WithHTTPClient(&http.Client{
		Transport: mdw.RoundTripperFunc(func(*http.Request) (*http.Response, error) { return nil, boom }),
	}))
	require.NoError(t, err)

	_, err = c.Call(context.Background(), Request{Path: "/users"})
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	assert.Equal(t, "Network error", err.Error())
	assert.Equal(t, 0, StatusOf(err))
	assert.ErrorIs(t, err, boom)
}

func TestDecodeErrorAndEmptyBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = io.WriteString(w, `{"id":`)
	})

	type out struct{ ID string }
	_, err := Do[out](context.Background(), c, Request{Path: "/users/1"})
	require.Error(t, err)
	e, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, KindDecode, e.Kind)

	got, err := Do[out](context.Background(), c, Request{Method: http.MethodDelete, Path: "/users/1"})
	require.NoError(t, err)
	assert.Equal(t, "", got.ID)
}

func TestTokenSourceFailureStopsCall(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true },
		WithTokenSource(TokenFunc(func(context.Context) (string, error) { return "", errors.New("expired") })))

	_, err := c.Call(context.Background(), Request{Path: "/users"})
	require.Error(t, err)
	e, _ := As(err)
	assert.Equal(t, KindRequest, e.Kind)
	assert.False(t, called)
}

func TestMiddlewareApplied(t *testing.T) {
	var rid string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rid = r.Header.Get(mdw.KeyRequestID)
		_, _ = io.WriteString(w, `{}`)
	}, WithMiddleware(mdw.RequestID()))

	_, err := c.Call(context.Background(), Request{Path: "/users"})
	require.NoError(t, err)
	assert.NotEmpty(t, rid)
	assert.True(t, strings.Count(rid, "-") == 4)
}
