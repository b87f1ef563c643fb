package discord

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func fakeDiscord(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		if r.Form.Get("client_secret") != "shh" || r.Form.Get("grant_type") != "authorization_code" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		if r.Form.Get("code") != "good" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"Bearer"}`))
	})
	mux.HandleFunc("/users/@me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"401: Unauthorized"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"42","username":"ann","global_name":"Ann"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestExchangeAndIdentify(t *testing.T) {
	srv := fakeDiscord(t)
	c := NewClient("app", "shh", srv.URL+"/")
	ctx := context.Background()

	tok, err := c.ExchangeCode(ctx, "good")
	if err != nil {
		t.Fatalf("ExchangeCode: %v", err)
	}
	if tok != "tok-1" {
		t.Fatalf("token = %q", tok)
	}
	u, err := c.CurrentUser(ctx, tok)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if u.ID != "42" || u.DisplayName() != "Ann" {
		t.Fatalf("user = %+v", u)
	}
}

func TestExchangeRejected(t *testing.T) {
	srv := fakeDiscord(t)
	c := NewClient("app", "shh", srv.URL)

	_, err := c.ExchangeCode(context.Background(), "bad")
	if !errors.Is(err, ErrExchange) {
		t.Fatalf("err = %v, want ErrExchange", err)
	}
	if _, err := c.CurrentUser(context.Background(), "nope"); !errors.Is(err, ErrExchange) {
		t.Fatalf("CurrentUser err = %v, want ErrExchange", err)
	}
}

func TestDisplayNameFallsBack(t *testing.T) {
	if (User{Username: "ann"}).DisplayName() != "ann" {
		t.Fatal("expected username fallback")
	}
}
