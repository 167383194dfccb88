package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/desertthunder/anirec/internal/shared"
	tu "github.com/desertthunder/anirec/internal/testing"
	"golang.org/x/time/rate"
)

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			srv := NewAPIService("http://example.com/", customClient)

			if srv.baseURL != "http://example.com" {
				t.Errorf("expected trailing slash trimmed, got %s", srv.baseURL)
			}
			if srv.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Empty BaseURL", func(t *testing.T) {
			srv := NewAPIService("", nil)

			if srv.BaseURL() != "http://127.0.0.1:8000" {
				t.Errorf("expected default baseURL, got %s", srv.BaseURL())
			}
			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("Successful Request With JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if r.URL.Path != "/animes/popular" {
					t.Errorf("expected path '/animes/popular', got %s", r.URL.Path)
				}
				if r.Header.Get("X-Request-ID") == "" {
					t.Error("expected X-Request-ID header")
				}
				if r.Header.Get("Authorization") != "" {
					t.Errorf("expected no Authorization header, got %q", r.Header.Get("Authorization"))
				}

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode([]map[string]any{{"anime_id": 1, "title": "Naruto"}})
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			resp, err := srv.Get(context.Background(), "/animes/popular")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.OK() {
				t.Errorf("expected status 200, got %d", resp.StatusCode)
			}
			if !resp.IsJSON || resp.JSONData == nil {
				t.Error("expected response to be JSON")
			}
		})

		t.Run("Successful Request With Non-JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("plain text"))
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Get(context.Background(), "/")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON {
				t.Error("expected response not to be JSON")
			}
			if string(resp.Body) != "plain text" {
				t.Errorf("expected body 'plain text', got %s", resp.Body)
			}
		})

		t.Run("Attaches Stored Bearer Token", func(t *testing.T) {
			var got string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("Authorization")
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			srv.SetTokenProvider(tu.NewTokenStore("abc.def.ghi"))
			if _, err := srv.Get(context.Background(), "/users/me"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if got != "Bearer abc.def.ghi" {
				t.Errorf("expected bearer header, got %q", got)
			}
		})

		t.Run("Token Read Failure Sends Unauthenticated Request", func(t *testing.T) {
			var got string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("Authorization")
			}))
			defer server.Close()

			store := tu.NewTokenStore("abc")
			store.Err = errors.New("disk gone")
			srv := NewAPIService(server.URL, nil)
			srv.SetTokenProvider(store)

			if _, err := srv.Get(context.Background(), "/"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != "" {
				t.Errorf("expected no Authorization header, got %q", got)
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}

			_, err := NewAPIService("http://example.com", client).Get(context.Background(), "/")
			if err == nil || !strings.Contains(err.Error(), "request failed") {
				t.Errorf("expected request failed error, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     make(http.Header),
				}, nil),
			}

			_, err := NewAPIService("http://example.com", client).Get(context.Background(), "/")
			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected read error, got %v", err)
			}
		})

		t.Run("Failed Request Creation", func(t *testing.T) {
			_, err := NewAPIService("http://example.com", nil).Get(context.Background(), "/\x7f")
			if err == nil || !strings.Contains(err.Error(), "failed to create request") {
				t.Errorf("expected create error, got %v", err)
			}
		})

		t.Run("With Canceled Context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			if _, err := NewAPIService(server.URL, nil).Get(ctx, "/"); err == nil {
				t.Error("expected error for canceled context")
			}
		})

		t.Run("Limiter Wait Fails On Canceled Context", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil)
			srv.SetLimiter(rate.NewLimiter(rate.Limit(1), 1))

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := srv.Get(ctx, "/")
			if err == nil || !strings.Contains(err.Error(), "rate limiter") {
				t.Errorf("expected limiter error, got %v", err)
			}
		})

		t.Run("Response Headers Are Preserved", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Custom-Header", "custom-value")
				w.Write([]byte("{}"))
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Get(context.Background(), "/")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.Headers.Get("X-Custom-Header") != "custom-value" {
				t.Error("expected custom header to be preserved")
			}
		})
	})

	t.Run("Post", func(t *testing.T) {
		t.Run("Sends JSON Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST method, got %s", r.Method)
				}
				if r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("expected JSON content type, got %s", r.Header.Get("Content-Type"))
				}
				body, _ := io.ReadAll(r.Body)
				if string(body) != `{"anime_id":1}` {
					t.Errorf("unexpected body %s", body)
				}
				w.WriteHeader(http.StatusCreated)
			}))
			defer server.Close()

			resp, err := NewAPIService(server.URL, nil).Post(context.Background(), "/users/me/favorites", []byte(`{"anime_id":1}`))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.StatusCode != http.StatusCreated {
				t.Errorf("expected status 201, got %d", resp.StatusCode)
			}
		})
	})

	t.Run("PostForm", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Content-Type") != "application/x-www-form-urlencoded" {
				t.Errorf("expected form content type, got %s", r.Header.Get("Content-Type"))
			}
			if err := r.ParseForm(); err != nil {
				t.Fatalf("parse form: %v", err)
			}
			if r.PostForm.Get("username") != "a@b.c" {
				t.Errorf("expected username a@b.c, got %s", r.PostForm.Get("username"))
			}
		}))
		defer server.Close()

		form := url.Values{"username": {"a@b.c"}}
		if _, err := NewAPIService(server.URL, nil).PostForm(context.Background(), "/users/login", form); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("Put And Delete", func(t *testing.T) {
		var methods []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			methods = append(methods, r.Method)
		}))
		defer server.Close()

		srv := NewAPIService(server.URL, nil)
		if _, err := srv.Put(context.Background(), "/users/me", []byte(`{}`)); err != nil {
			t.Fatalf("put: %v", err)
		}
		if _, err := srv.Delete(context.Background(), "/users/me"); err != nil {
			t.Fatalf("delete: %v", err)
		}

		if len(methods) != 2 || methods[0] != http.MethodPut || methods[1] != http.MethodDelete {
			t.Errorf("unexpected methods %v", methods)
		}
	})
}

func TestNewLimiter(t *testing.T) {
	tests := []struct {
		name    string
		cfg     shared.BackendConfig
		wantNil bool
		burst   int
	}{
		{name: "disabled", cfg: shared.BackendConfig{RequestsPerSecond: 0}, wantNil: true},
		{name: "burst floor", cfg: shared.BackendConfig{RequestsPerSecond: 2, Burst: 0}, burst: 1},
		{name: "configured", cfg: shared.BackendConfig{RequestsPerSecond: 5, Burst: 3}, burst: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLimiter(tt.cfg)
			if tt.wantNil {
				if l != nil {
					t.Error("expected nil limiter")
				}
				return
			}
			if l == nil {
				t.Fatal("expected limiter")
			}
			if l.Burst() != tt.burst {
				t.Errorf("expected burst %d, got %d", tt.burst, l.Burst())
			}
		})
	}
}
