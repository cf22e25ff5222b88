package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/ava/internal/application"
	"github.com/eugenenazirov/ava/internal/cli"
	"github.com/eugenenazirov/ava/internal/config"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	t.Setenv("PORT", "")
	t.Setenv("RATE_LIMIT_RPS", "")
	t.Setenv("RATE_LIMIT_BURST", "")
	t.Setenv("MAX_BODY_BYTES", "")

	cfg, err := config.Load(nil)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	app, err := application.New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("build application: %v", err)
	}

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestEchoIntegrationFlow(t *testing.T) {
	srv := newServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("X-Test", "1")

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("expected a generated request ID")
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var payload struct {
		Message string            `json:"message"`
		Method  string            `json:"method"`
		Headers map[string]string `json:"headers"`
		Body    string            `json:"body"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Method != http.MethodPost || payload.Body != "hello" {
		t.Fatalf("unexpected echo %+v", payload)
	}
	if payload.Headers["x-test"] != "1" {
		t.Fatalf("expected x-test header, got %v", payload.Headers)
	}
	if payload.Headers["host"] == "" {
		t.Fatalf("expected host header, got %v", payload.Headers)
	}

	for _, method := range []string{http.MethodGet, http.MethodDelete, http.MethodPatch} {
		req, _ := http.NewRequest(method, srv.URL+"/", nil)
		resp, err := srv.Client().Do(req)
		if err != nil {
			t.Fatalf("%s failed: %v", method, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", method, resp.StatusCode)
		}
	}

	resp, err = srv.Client().Get(srv.URL + "/missing")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCLISettingsFlow(t *testing.T) {
	t.Setenv("PROJECT_ROOT", "")
	t.Setenv("PROJECT_MODULES", "")
	t.Setenv("CONFIG_DIR", "")
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ava_app_verbose", "true")

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "ava"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "ava", "settings.toml"), []byte("[app]\nverbose = false\n"), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "env_example"), []byte("VERBOSE=true\n"), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	var stdout, stderr bytes.Buffer
	code := cli.Run([]string{"--root", root, "debug", "settings", "--key", "app.verbose"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	if got := stdout.String(); got != "true\n" {
		t.Fatalf("expected environment to override TOML, got %q", got)
	}

	if os.Getenv("PROJECT_ROOT") != root {
		t.Fatalf("expected PROJECT_ROOT to be exported")
	}

	stdout.Reset()
	code = cli.Run([]string{"--root", root, "debug", "settings", "--key", "environment.verbose"}, &stdout, &stderr)
	if code != 0 || stdout.String() != "true\n" {
		t.Fatalf("expected VERBOSE from the seeded env file, got %d %q", code, stdout.String())
	}
}
