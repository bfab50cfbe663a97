package coupon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHTTPDirectoryValidCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/coupons/SAVE10", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"valid":true,"discountPercentage":10}`))
	}))
	defer srv.Close()

	d := NewHTTPDirectory(srv.URL, time.Second)
	v, err := d.Validate(context.Background(), "SAVE10")
	require.NoError(t, err)
	require.True(t, v.Valid)
	require.Equal(t, int32(1000), v.PercentBps)
}

func TestHTTPDirectoryUnknownCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	d := NewHTTPDirectory(srv.URL, time.Second)
	v, err := d.Validate(context.Background(), "NOPE")
	require.NoError(t, err)
	require.False(t, v.Valid)
	require.Equal(t, "unknown code", v.Reason)
}

func TestHTTPDirectoryServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewHTTPDirectory(srv.URL, time.Second)
	_, err := d.Validate(context.Background(), "SAVE10")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPDirectoryTimeoutIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	d := NewHTTPDirectory(srv.URL, 50*time.Millisecond)
	d.Client.MaxAttempts = 1
	_, err := d.Validate(context.Background(), "SAVE10")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPDirectoryBadBodyIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	d := NewHTTPDirectory(srv.URL, time.Second)
	_, err := d.Validate(context.Background(), "SAVE10")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPDirectoryNotConfigured(t *testing.T) {
	var d *HTTPDirectory
	_, err := d.Validate(context.Background(), "SAVE10")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestStaticDirectory(t *testing.T) {
	d := StaticDirectory{"SAVE10": {Valid: true, PercentBps: 1000}}

	v, err := d.Validate(context.Background(), "SAVE10")
	require.NoError(t, err)
	require.True(t, v.Valid)

	v, err = d.Validate(context.Background(), "MISSING")
	require.NoError(t, err)
	require.False(t, v.Valid)
}
