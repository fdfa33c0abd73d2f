package oauth2

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTokenServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.Form.Get("grant_type") != "client_credentials" {
			t.Errorf("unexpected grant type %q", r.Form.Get("grant_type"))
		}
		id, secret, _ := r.BasicAuth()
		if id != "agroguard-cli" || secret != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-123","token_type":"bearer","expires_in":3600,"scope":"farmers.write"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDriver_Token(t *testing.T) {
	var hits int32
	srv := newTokenServer(t, &hits)

	d := NewDriver(&Config{
		ClientID:     "agroguard-cli",
		ClientSecret: "s3cret",
		TokenURL:     srv.URL,
		Scopes:       []string{"farmers.write"},
	})

	tok, err := d.Token(context.Background())
	if err != nil {
		t.Fatalf("Token error: %v", err)
	}
	if tok.AccessToken != "tok-123" {
		t.Errorf("unexpected access token %q", tok.AccessToken)
	}
	if tok.Expiry.Before(time.Now().Add(time.Hour - time.Minute)) {
		t.Errorf("unexpected expiry %v", tok.Expiry)
	}
	if err := d.Ping(context.Background()); err != nil {
		t.Errorf("Ping error: %v", err)
	}
}

func TestDriver_TokenRejected(t *testing.T) {
	var hits int32
	srv := newTokenServer(t, &hits)

	d := NewDriver(&Config{ClientID: "agroguard-cli", ClientSecret: "wrong", TokenURL: srv.URL})

	if _, err := d.Token(context.Background()); err == nil {
		t.Error("expected error for rejected credentials")
	}
}

func TestDriver_NotConfigured(t *testing.T) {
	d := NewDriver(nil)

	if err := d.Ping(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
	if d.Name() != "auth" {
		t.Errorf("unexpected name %q", d.Name())
	}
}

func TestDriver_HTTPClient(t *testing.T) {
	var tokenHits int32
	tokenSrv := newTokenServer(t, &tokenHits)

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("unexpected Authorization header %q", got)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer api.Close()

	d := NewDriver(&Config{ClientID: "agroguard-cli", ClientSecret: "s3cret", TokenURL: tokenSrv.URL})
	client := d.HTTPClient(context.Background(), &http.Client{Timeout: 5 * time.Second})

	if client.Timeout != 5*time.Second {
		t.Errorf("base timeout not kept: %s", client.Timeout)
	}

	for i := 0; i < 3; i++ {
		resp, err := client.Get(api.URL + "/farmers")
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("request %d: status %d", i, resp.StatusCode)
		}
	}

	if n := atomic.LoadInt32(&tokenHits); n != 1 {
		t.Errorf("token should be fetched once and reused, fetched %d times", n)
	}
}
