package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestServiceTokenMiddleware(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, err := w.Write([]byte("ok"))
		require.NoError(t, err, "should write response")
	})

	middleware := ServiceTokenMiddleware("svc-secret")
	srv := httptest.NewServer(middleware(h))
	defer srv.Close()

	doRequest := func(t *testing.T, authorization string) *http.Response {
		t.Helper()

		req, err := http.NewRequest(http.MethodPost, srv.URL+"/test", nil)
		require.NoError(t, err)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() }) // nolint:errcheck
		return resp
	}

	t.Run("valid token passes through", func(t *testing.T) {
		resp := doRequest(t, "Bearer svc-secret")

		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Equal(t, "ok", string(body))
	})

	t.Run("wrong token rejected", func(t *testing.T) {
		resp := doRequest(t, "Bearer other-secret")

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("missing header rejected", func(t *testing.T) {
		resp := doRequest(t, "")

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("non bearer scheme rejected", func(t *testing.T) {
		resp := doRequest(t, "Basic svc-secret")

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
