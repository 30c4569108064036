package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// StaticToken always returns the same token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

type tokenResponse struct {
	Token string `json:"token"`
}

// TokenEndpoint fetches a fresh token from URL before every request. The
// endpoint answers GET with {"token": "..."}. Key, when set, is sent as the
// bearer credential of the token request itself.
type TokenEndpoint struct {
	URL  string
	Key  string
	HTTP *http.Client
}

func NewTokenEndpoint(url, key string, timeout time.Duration) *TokenEndpoint {
	return &TokenEndpoint{URL: url, Key: key, HTTP: &http.Client{Timeout: timeout}}
}

func (e *TokenEndpoint) Token(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.URL, nil)
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	setBearer(req.Header, e.Key)

	client := e.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var out tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if out.Token == "" {
		return "", errors.New("token endpoint returned an empty token")
	}
	return out.Token, nil
}
