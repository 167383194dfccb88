package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/anirec/internal/repositories"
	"github.com/desertthunder/anirec/internal/services"
	"github.com/desertthunder/anirec/internal/shared"
	tu "github.com/desertthunder/anirec/internal/testing"
	"github.com/golang-jwt/jwt/v5"
	"github.com/urfave/cli/v3"
)

// fakeBackend serves the recommendation API from memory.
type fakeBackend struct {
	mu        sync.Mutex
	favorites []map[string]any
	added     []int64
}

func (f *fakeBackend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	catalog := []map[string]any{
		{"anime_id": 20, "title": "Naruto", "score": 8.0, "genres": "Action, Adventure", "favorites_count": 100},
		{"anime_id": 20, "title": "Naruto (dup)"},
		{"anime_id": 21, "title": "One Piece", "score": 8.7, "genres": []string{"Adventure"}, "favorites_count": 300},
		{"title": "No Id"},
	}

	mux.HandleFunc("GET /animes/search", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, catalog)
	})
	mux.HandleFunc("GET /animes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, catalog)
	})
	mux.HandleFunc("GET /animes/popular", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, catalog[2:3])
	})
	mux.HandleFunc("GET /animes/recommend", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"recommendations": catalog[2:3]})
	})
	mux.HandleFunc("GET /animes/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "20":
			writeJSON(w, http.StatusOK, catalog[0])
		case "21":
			writeJSON(w, http.StatusOK, catalog[2])
		default:
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Anime not found"})
		}
	})
	mux.HandleFunc("POST /users/login", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("password") != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "tok", "token_type": "bearer"})
	})
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": 7, "email": "a@b.c", "is_active": true})
	})
	mux.HandleFunc("GET /users/me/favorites", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, f.favorites)
	})
	mux.HandleFunc("POST /users/me/favorites", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.favorites = append(f.favorites, body)
		f.added = append(f.added, int64(body["anime_id"].(float64)))
		writeJSON(w, http.StatusOK, body)
	})
	mux.HandleFunc("GET /users/me/recommendations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, catalog[2:3])
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type testEnv struct {
	runner  *Runner
	output  *bytes.Buffer
	creds   *repositories.CredentialRepository
	backend *fakeBackend
}

func newTestEnv(t *testing.T, input string) *testEnv {
	t.Helper()

	backend := &fakeBackend{}
	server := httptest.NewServer(backend.handler(t))
	t.Cleanup(server.Close)

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	shared.ConfigureDatabase(db, 1, 1)
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	creds := repositories.NewCredentialRepository(db)
	api := services.NewAPIService(server.URL, server.Client())
	api.SetTokenProvider(creds)

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		API:         api,
		Credentials: creds,
		History:     repositories.NewSearchHistoryRepository(db),
		Logger:      shared.NewLogger(&bytes.Buffer{}),
		Output:      output,
		Input:       strings.NewReader(input),
	})
	return &testEnv{runner: runner, output: output, creds: creds, backend: backend}
}

func (e *testEnv) run(args ...string) error {
	app := &cli.Command{Name: "anirec", Commands: e.runner.register()}
	return app.Run(context.Background(), append([]string{"anirec"}, args...))
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	if err := e.creds.SaveToken("tok"); err != nil {
		t.Fatalf("failed to save token: %v", err)
	}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			api := services.NewAPIService("http://example.com", nil)
			store := tu.NewTokenStore("")

			runner := NewRunner(RunnerOpts{
				Config:      config,
				Logger:      logger,
				Output:      output,
				API:         api,
				Credentials: store,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
			if _, ok := runner.backend.(*services.AnimeService); !ok {
				t.Errorf("expected default anime service backend, got %T", runner.backend)
			}
			if runner.rec == nil {
				t.Error("expected reconciler to be built")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected stdout output")
			}
			if runner.configPath != "config.toml" {
				t.Errorf("expected default config path, got %q", runner.configPath)
			}
			if runner.api.BaseURL() != runner.config.Backend.BaseURL {
				t.Errorf("expected api at %q, got %q", runner.config.Backend.BaseURL, runner.api.BaseURL())
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "{\"key\":\"value\"}\n" {
			t.Errorf("unexpected output %q", output.String())
		}

		output.Reset()
		runner.writeJSON(map[string]string{"key": "value"}, true)
		if !strings.Contains(output.String(), "\n  \"key\"") {
			t.Errorf("expected indented output, got %q", output.String())
		}
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		runner.writePlain("Hello %s", "World")
		if output.String() != "Hello World" {
			t.Errorf("unexpected output %q", output.String())
		}

		t.Run("write error", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			if err := runner.writePlain("x"); err == nil {
				t.Error("expected write error")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"setup", "anime", "user", "favorites", "recommendations", "api", "tui"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, name := range want {
			if commands[i].Name != name {
				t.Errorf("command %d: expected %q, got %q", i, name, commands[i].Name)
			}
		}
	})
}

func TestAnimeCommands(t *testing.T) {
	t.Run("search dedupes and records history", func(t *testing.T) {
		env := newTestEnv(t, "")

		if err := env.run("anime", "search", "naruto"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := env.output.String()
		if !strings.Contains(out, `Results for "naruto" (2)`) {
			t.Errorf("expected two results, got:\n%s", out)
		}
		if strings.Contains(out, "Naruto (dup)") || strings.Contains(out, "No Id") {
			t.Errorf("expected duplicates and id-less entries dropped, got:\n%s", out)
		}

		env.output.Reset()
		if err := env.run("anime", "history"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(env.output.String(), "naruto") {
			t.Errorf("expected keyword in history, got:\n%s", env.output.String())
		}

		env.output.Reset()
		env.run("anime", "history", "--clear")
		env.output.Reset()
		env.run("anime", "history")
		if !strings.Contains(env.output.String(), "No searches yet.") {
			t.Errorf("expected cleared history, got:\n%s", env.output.String())
		}
	})

	t.Run("search requires keyword", func(t *testing.T) {
		env := newTestEnv(t, "")
		if err := env.run("anime", "search"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("list filters and sorts", func(t *testing.T) {
		env := newTestEnv(t, "")

		if err := env.run("anime", "list", "--sort", "score", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		var items []map[string]any
		if err := json.Unmarshal(env.output.Bytes(), &items); err != nil {
			t.Fatalf("expected JSON output: %v", err)
		}
		if len(items) != 2 || items[0]["title"] != "One Piece" {
			t.Errorf("expected One Piece first of 2, got %v", items)
		}

		env.output.Reset()
		env.run("anime", "list", "--genre", "action")
		if !strings.Contains(env.output.String(), "Anime (1)") {
			t.Errorf("expected genre filter to keep 1, got:\n%s", env.output.String())
		}
	})

	t.Run("invalid sort", func(t *testing.T) {
		env := newTestEnv(t, "")
		if err := env.run("anime", "popular", "--sort", "random"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("popular and recommend", func(t *testing.T) {
		env := newTestEnv(t, "")

		if err := env.run("anime", "popular"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := env.run("anime", "recommend", "Naruto"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := env.output.String()
		if !strings.Contains(out, "Popular (1)") || !strings.Contains(out, `Similar to "Naruto" (1)`) {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("show", func(t *testing.T) {
		env := newTestEnv(t, "")

		if err := env.run("anime", "show", "20"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := env.output.String()
		if !strings.Contains(out, "Naruto") || !strings.Contains(out, "One Piece [8.70] (id 21)") {
			t.Errorf("expected detail with similar titles, got:\n%s", out)
		}
		if strings.Count(out, "(id 20)") != 0 {
			t.Errorf("expected the anime itself excluded from similar titles, got:\n%s", out)
		}
	})

	t.Run("show errors", func(t *testing.T) {
		env := newTestEnv(t, "")

		if err := env.run("anime", "show", "abc"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if err := env.run("anime", "show", "99"); !errors.Is(err, shared.ErrAnimeNotFound) {
			t.Errorf("expected ErrAnimeNotFound, got %v", err)
		}
	})
}

func TestUserCommands(t *testing.T) {
	t.Run("login stores token and logout clears it", func(t *testing.T) {
		env := newTestEnv(t, "secret\n")

		if err := env.run("user", "login", "--email", "a@b.c"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(env.output.String(), "Logged in as a@b.c") {
			t.Errorf("unexpected output:\n%s", env.output.String())
		}
		if token, _ := env.creds.Token(); token != "tok" {
			t.Errorf("expected stored token, got %q", token)
		}

		if err := env.run("user", "logout"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token, _ := env.creds.Token(); token != "" {
			t.Errorf("expected token cleared, got %q", token)
		}
	})

	t.Run("login failure is uniform", func(t *testing.T) {
		env := newTestEnv(t, "")

		err := env.run("user", "login", "--email", "a@b.c", "--password", "wrong")
		if !errors.Is(err, shared.ErrLoginFailed) {
			t.Errorf("expected ErrLoginFailed, got %v", err)
		}
		if strings.Contains(err.Error(), "Incorrect") {
			t.Errorf("expected backend detail withheld, got %v", err)
		}
	})

	t.Run("me requires session", func(t *testing.T) {
		env := newTestEnv(t, "")
		if err := env.run("user", "me"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}

		env.login(t)
		if err := env.run("user", "me"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(env.output.String(), "Email:     a@b.c") {
			t.Errorf("unexpected output:\n%s", env.output.String())
		}
	})

	t.Run("status reads claims", func(t *testing.T) {
		env := newTestEnv(t, "")

		env.run("user", "status")
		if !strings.Contains(env.output.String(), "Not logged in.") {
			t.Errorf("unexpected output:\n%s", env.output.String())
		}

		claims := jwt.RegisteredClaims{Subject: "a@b.c", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("key"))
		if err != nil {
			t.Fatalf("failed to sign token: %v", err)
		}
		env.creds.SaveToken(token)

		env.output.Reset()
		if err := env.run("user", "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := env.output.String()
		if !strings.Contains(out, "Logged in as a@b.c") || !strings.Contains(out, "Token expired") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("delete requires confirmation", func(t *testing.T) {
		env := newTestEnv(t, "")
		env.login(t)
		if err := env.run("user", "delete"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("short password rejected locally", func(t *testing.T) {
		env := newTestEnv(t, "")
		env.login(t)
		if err := env.run("user", "password", "--new", "ab"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestFavoritesCommands(t *testing.T) {
	t.Run("requires session", func(t *testing.T) {
		env := newTestEnv(t, "")
		if err := env.run("favorites", "list"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("add then list", func(t *testing.T) {
		env := newTestEnv(t, "")
		env.login(t)

		if err := env.run("favorites", "add", "20"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(env.backend.added) != 1 || env.backend.added[0] != 20 {
			t.Errorf("expected anime 20 posted, got %v", env.backend.added)
		}

		env.output.Reset()
		if err := env.run("favorites", "add", "20"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(env.output.String(), "already a favorite") {
			t.Errorf("unexpected output:\n%s", env.output.String())
		}

		env.output.Reset()
		env.run("favorites", "list")
		if !strings.Contains(env.output.String(), "Favorites (1)") {
			t.Errorf("unexpected output:\n%s", env.output.String())
		}
	})

	t.Run("add unknown anime", func(t *testing.T) {
		env := newTestEnv(t, "")
		env.login(t)
		if err := env.run("favorites", "add", "99"); !errors.Is(err, shared.ErrAnimeNotFound) {
			t.Errorf("expected ErrAnimeNotFound, got %v", err)
		}
	})

	t.Run("export csv", func(t *testing.T) {
		env := newTestEnv(t, "")
		env.login(t)
		env.backend.favorites = []map[string]any{{"anime_id": 20, "title": "Naruto"}}

		path := filepath.Join(t.TempDir(), "favorites.csv")
		if err := env.run("favorites", "export", "--format", "csv", "--output", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		content := tu.MustReadFile(t, path)
		if !strings.Contains(content, "20,Naruto") {
			t.Errorf("unexpected CSV:\n%s", content)
		}
	})

	t.Run("recommendations without favorites", func(t *testing.T) {
		env := newTestEnv(t, "")
		env.login(t)

		if err := env.run("recommendations"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(env.output.String(), "Add favorites") {
			t.Errorf("unexpected output:\n%s", env.output.String())
		}
	})

	t.Run("recommendations with favorites", func(t *testing.T) {
		env := newTestEnv(t, "")
		env.login(t)
		env.backend.favorites = []map[string]any{{"anime_id": 20, "title": "Naruto"}}

		if err := env.run("recommendations"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(env.output.String(), "Recommended for you (1)") {
			t.Errorf("unexpected output:\n%s", env.output.String())
		}
	})
}

func TestFavoritesSimilar(t *testing.T) {
	env := newTestEnv(t, "")
	env.login(t)
	env.backend.favorites = []map[string]any{{"anime_id": 20, "title": "Naruto"}}

	dir := filepath.Join(t.TempDir(), "similar")
	if err := env.run("favorites", "similar", "--format", "csv", "--output", dir); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	tu.AssertFileExists(t, filepath.Join(dir, "20.csv"))
	tu.AssertFileExists(t, filepath.Join(dir, "export_manifest.json"))
	if !strings.Contains(env.output.String(), "1 exported, 0 failed") {
		t.Errorf("unexpected output:\n%s", env.output.String())
	}
}

func TestAPIDump(t *testing.T) {
	env := newTestEnv(t, "")
	env.login(t)

	if err := env.run("api", "dump"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	out := env.output.String()
	if !strings.Contains(out, `"user": {`) || !strings.Contains(out, `"popular": [`) {
		t.Errorf("expected user and popular payloads, got:\n%s", out)
	}
}

func TestAPIGet(t *testing.T) {
	env := newTestEnv(t, "")

	if err := env.run("api", "get", "--compact", "/animes/popular"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.HasPrefix(env.output.String(), `[{"anime_id":21`) {
		t.Errorf("unexpected output %q", env.output.String())
	}

	if err := env.run("api", "get", "/animes/99"); !errors.Is(err, shared.ErrAPIRequest) {
		t.Errorf("expected ErrAPIRequest, got %v", err)
	}
}

func TestSetup(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	config := "[backend]\nbase_url = \"http://127.0.0.1:8000\"\n\n[database]\npath = \"" +
		filepath.ToSlash(filepath.Join(dir, "anirec.db")) + "\"\n"
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	env := newTestEnv(t, "")
	if err := env.run("setup", "--config", configPath); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	tu.AssertFileExists(t, filepath.Join(dir, "anirec.db"))
	if !strings.Contains(env.output.String(), "Database ready") {
		t.Errorf("unexpected output:\n%s", env.output.String())
	}
}
