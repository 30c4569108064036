package net

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"InpaintBoard/internal/editor"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Inpaint(t *testing.T) {
	var (
		gotImage []byte
		gotMask  string
		gotAuth  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		file, _, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			return
		}
		gotImage, _ = io.ReadAll(file)
		gotMask = r.FormValue("mask")
		_, _ = w.Write([]byte("result"))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second, zerolog.Nop())
	out, err := client.Inpaint(context.Background(), []byte("original"), "data:image/png;base64,AAAA", "tok")

	require.NoError(t, err)
	assert.Equal(t, []byte("result"), out)
	assert.Equal(t, []byte("original"), gotImage)
	assert.Equal(t, "data:image/png;base64,AAAA", gotMask)
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestHTTPClient_NoTokenNoHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, time.Second, zerolog.Nop()).Inpaint(context.Background(), []byte("x"), "m", "")
	require.NoError(t, err)
}

func TestHTTPClient_ResultTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 33))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second, zerolog.Nop())
	client.MaxResult = 32

	_, err := client.Inpaint(context.Background(), []byte("x"), "m", "")
	assert.ErrorIs(t, err, ErrResultTooLarge)
	assert.ErrorIs(t, err, editor.ErrTransport)

	client.MaxResult = 33
	out, err := client.Inpaint(context.Background(), []byte("x"), "m", "")
	require.NoError(t, err)
	assert.Len(t, out, 33)
}

func TestHTTPClient_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "empty body", status: http.StatusOK, body: "", wantErr: editor.ErrEmptyResult},
		{name: "unauthorized", status: http.StatusUnauthorized, body: "nope", wantErr: editor.ErrAuth},
		{name: "forbidden", status: http.StatusForbidden, wantErr: editor.ErrAuth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPClient(srv.URL, time.Second, zerolog.Nop()).Inpaint(context.Background(), []byte("x"), "m", "t")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHTTPClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, time.Second, zerolog.Nop()).Inpaint(context.Background(), []byte("x"), "m", "")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	assert.Equal(t, "model crashed", statusErr.Body)
	assert.NotErrorIs(t, err, editor.ErrAuth)
}

func TestNewInpainter(t *testing.T) {
	tests := []struct {
		endpoint string
		want     any
		wantErr  bool
	}{
		{endpoint: "http://localhost:8080/inpaint", want: &HTTPClient{}},
		{endpoint: "https://example.com/inpaint", want: &HTTPClient{}},
		{endpoint: "ws://localhost:8080/inpaint", want: &WSClient{}},
		{endpoint: "wss://example.com/inpaint", want: &WSClient{}},
		{endpoint: "ftp://example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			got, err := NewInpainter(tt.endpoint, time.Second, zerolog.Nop())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, got)
		})
	}
}
