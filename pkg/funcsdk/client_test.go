package funcsdk_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/portal/pkg/funcsdk"
	"github.com/stretchr/testify/require"
)

const pngB64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJ"

// fakeFunction answers every request with status and body and records what
// it received.
type fakeFunction struct {
	status int
	body   string

	path        string
	contentType string
	payload     map[string]string
}

func (f *fakeFunction) start(t *testing.T) *funcsdk.Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.path = r.URL.Path
		f.contentType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &f.payload)

		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(f.body))
	}))
	t.Cleanup(srv.Close)

	return funcsdk.NewClient(srv.URL + "/function/")
}

func TestGeneratePassword(t *testing.T) {
	t.Parallel()

	t.Run("JSON qrcode", func(t *testing.T) {
		fn := &fakeFunction{status: http.StatusOK, body: `{"qrcode":"` + pngB64 + `","password":"Xy12abCD34ef"}`}
		client := fn.start(t)

		res, err := client.GeneratePassword(context.Background(), "alice")
		require.NoError(t, err)

		require.Equal(t, "/function/gen-password", fn.path)
		require.Equal(t, "application/json", fn.contentType)
		require.Equal(t, map[string]string{"username": "alice"}, fn.payload)

		require.True(t, res.Success)
		require.Equal(t, "data:image/png;base64,"+pngB64, res.QRCodeBase64)
		require.Equal(t, "Xy12abCD34ef", res.Password)
	})

	t.Run("raw base64", func(t *testing.T) {
		fn := &fakeFunction{status: http.StatusOK, body: pngB64}
		res, err := fn.start(t).GeneratePassword(context.Background(), "alice")
		require.NoError(t, err)

		require.Equal(t, "data:image/png;base64,"+pngB64, res.QRCodeBase64)
		require.NotEmpty(t, res.Password)
	})

	t.Run("plain text", func(t *testing.T) {
		fn := &fakeFunction{status: http.StatusOK, body: "quota exceeded"}
		res, err := fn.start(t).GeneratePassword(context.Background(), "alice")
		require.NoError(t, err)

		require.False(t, res.Success)
		require.Equal(t, "quota exceeded", res.Message)
	})
}

func TestGenerate2FA(t *testing.T) {
	t.Parallel()

	fn := &fakeFunction{status: http.StatusOK, body: pngB64}
	res, err := fn.start(t).Generate2FA(context.Background(), "bob")
	require.NoError(t, err)

	require.Equal(t, "/function/generate2fa", fn.path)
	require.Equal(t, map[string]string{"username": "bob"}, fn.payload)
	require.Equal(t, "Generated 2FA secret", res.Secret)
	require.Empty(t, res.Password)
}

func TestAuthenticateUser(t *testing.T) {
	t.Parallel()

	t.Run("sends all credentials", func(t *testing.T) {
		fn := &fakeFunction{status: http.StatusOK, body: `{"success":true,"message":"ok"}`}
		res, err := fn.start(t).AuthenticateUser(context.Background(), funcsdk.Credentials{
			Username: "alice",
			Password: "pw",
			OTP:      "123456",
		})
		require.NoError(t, err)

		require.Equal(t, "/function/authuser", fn.path)
		require.Equal(t, map[string]string{"username": "alice", "password": "pw", "otp": "123456"}, fn.payload)
		require.Equal(t, funcsdk.AuthResult{Success: true, Message: "ok"}, *res)
	})

	t.Run("missing credentials text", func(t *testing.T) {
		fn := &fakeFunction{status: http.StatusOK, body: "Missing credentials"}
		res, err := fn.start(t).AuthenticateUser(context.Background(), funcsdk.Credentials{})
		require.NoError(t, err)
		require.False(t, res.Success)
	})

	t.Run("expired text", func(t *testing.T) {
		fn := &fakeFunction{status: http.StatusOK, body: "Credentials expired"}
		res, err := fn.start(t).AuthenticateUser(context.Background(), funcsdk.Credentials{Username: "alice"})
		require.NoError(t, err)
		require.False(t, res.Success)
		require.True(t, res.Expired)
	})
}

func TestRequestError(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError, http.StatusBadGateway} {
		fn := &fakeFunction{status: status, body: `{"qrcode":"` + pngB64 + `"}`}
		client := fn.start(t)

		calls := map[string]func() (any, error){
			"gen-password": func() (any, error) { return client.GeneratePassword(context.Background(), "a") },
			"generate2fa":  func() (any, error) { return client.Generate2FA(context.Background(), "a") },
			"authuser": func() (any, error) {
				return client.AuthenticateUser(context.Background(), funcsdk.Credentials{Username: "a"})
			},
		}

		for endpoint, call := range calls {
			res, err := call()
			require.Error(t, err)

			var reqErr *funcsdk.RequestError
			require.True(t, errors.As(err, &reqErr), "%s: got %T", endpoint, err)
			require.Equal(t, status, reqErr.StatusCode)
			require.Equal(t, endpoint, reqErr.Endpoint)
			require.NotEmpty(t, reqErr.Body)

			// The typed nil pointer is still a nil result.
			require.Nil(t, res)
		}
	}
}

func TestRequestErrorWriteError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	(&funcsdk.RequestError{Endpoint: "authuser", Operation: "authentication", StatusCode: 503}).WriteError(rec)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.JSONEq(t, `{"error":"upstream_error","error_description":"authentication failed"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	(&funcsdk.RequestError{Operation: "authentication", StatusCode: 302}).WriteError(rec)
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestNetworkError(t *testing.T) {
	t.Parallel()

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := funcsdk.NewClient(url).GeneratePassword(context.Background(), "alice")

		var netErr *funcsdk.NetworkError
		require.ErrorAs(t, err, &netErr)
		require.Equal(t, "gen-password", netErr.Endpoint)
		require.False(t, netErr.Timeout())

		rec := httptest.NewRecorder()
		netErr.WriteError(rec)
		require.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("oversized body is rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(pngB64))
			_, _ = w.Write(bytes.Repeat([]byte("A"), 4<<20))
		}))
		t.Cleanup(srv.Close)

		res, err := funcsdk.NewClient(srv.URL).Generate2FA(context.Background(), "alice")
		require.Nil(t, res)

		var netErr *funcsdk.NetworkError
		require.ErrorAs(t, err, &netErr)
		require.ErrorIs(t, err, funcsdk.ErrResponseTooLarge)
		require.False(t, netErr.Timeout())

		rec := httptest.NewRecorder()
		netErr.WriteError(rec)
		require.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("body at the limit is accepted", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body := pngB64 + strings.Repeat("A", 4<<20-len(pngB64))
			_, _ = w.Write([]byte(body))
		}))
		t.Cleanup(srv.Close)

		res, err := funcsdk.NewClient(srv.URL).Generate2FA(context.Background(), "alice")
		require.NoError(t, err)
		require.True(t, res.Success)
	})

	t.Run("deadline exceeded", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		t.Cleanup(srv.Close)
		t.Cleanup(func() { close(release) })

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := funcsdk.NewClient(srv.URL).AuthenticateUser(ctx, funcsdk.Credentials{Username: "alice"})

		var netErr *funcsdk.NetworkError
		require.ErrorAs(t, err, &netErr)
		require.True(t, netErr.Timeout())
		require.ErrorIs(t, err, context.DeadlineExceeded)

		rec := httptest.NewRecorder()
		netErr.WriteError(rec)
		require.Equal(t, http.StatusGatewayTimeout, rec.Code)
	})
}
