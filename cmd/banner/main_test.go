package main

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikequentel/banner/internal/banner"
	"github.com/mikequentel/banner/internal/config"
	"github.com/mikequentel/banner/internal/logging"
	"github.com/mikequentel/banner/internal/model"
	"github.com/mikequentel/banner/internal/xapi"
)

var secrets = map[string]string{
	config.EnvConsumerKey:       "ck-4f1e9a",
	config.EnvConsumerSecret:    "cs-77d0b2c1",
	config.EnvAccessToken:       "at-1234-9a8b",
	config.EnvAccessTokenSecret: "ats-5e6f7a8b",
}

// rewriteTransport redirects all HTTP requests to a local httptest server,
// allowing us to test commands that use hardcoded external URLs.
type rewriteTransport struct {
	base   http.RoundTripper
	target string // e.g., "http://127.0.0.1:PORT"
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = strings.TrimPrefix(rt.target, "http://")
	return rt.base.RoundTrip(req)
}

type cliResult struct {
	stdout string
	stderr string
	logs   string
	err    error
}

// captured is everything a user or log collector could see.
func (r cliResult) captured() string {
	s := r.stdout + r.stderr + r.logs
	if r.err != nil {
		s += r.err.Error()
	}
	return s
}

// setupEnv points config at a scratch directory with all credentials set
// and returns a banner image path inside it.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)

	for k, v := range secrets {
		t.Setenv(k, v)
	}
	t.Setenv("BANNER_HISTORY_DB", filepath.Join(dir, "data", "history.db"))
	t.Setenv("BANNER_TIMEOUT", "5s")

	path := filepath.Join(dir, "final_plot.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nbanner-bytes"), 0o644))
	t.Setenv("BANNER_PATH", path)
	return path
}

func runCLI(t *testing.T, srv *httptest.Server, args ...string) cliResult {
	t.Helper()

	var stdout, stderr, logs bytes.Buffer

	prev := slog.Default()
	slog.SetDefault(logging.New("debug", &logs))
	t.Cleanup(func() { slog.SetDefault(prev) })

	apiHTTPClient = &http.Client{Transport: rewriteTransport{base: http.DefaultTransport, target: srv.URL}}
	t.Cleanup(func() { apiHTTPClient = nil })

	uploadDryRun, uploadNoHistory, historyLimit = false, false, 10

	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	return cliResult{stdout: stdout.String(), stderr: stderr.String(), logs: logs.String(), err: err}
}

func bannerServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/1.1/account/update_profile_banner.json", r.URL.Path)
		if body != "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func assertNoSecrets(t *testing.T, r cliResult) {
	t.Helper()
	captured := r.captured()
	for name, v := range secrets {
		assert.NotContains(t, captured, v, "value of %s leaked", name)
	}
}

// ===================== exitCode =====================

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing credentials", fmt.Errorf("validate config: %w", model.ErrMissingCredentials), exitConfig},
		{"image not found", fmt.Errorf("%w: x.png", banner.ErrImageNotFound), exitNoImage},
		{"remote", fmt.Errorf("upload banner: %w", &xapi.RemoteError{Op: "update_profile_banner", StatusCode: 401}), exitRemote},
		{"other", errors.New("boom"), exitGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

// ===================== upload =====================

func TestUpload_Success(t *testing.T) {
	path := setupEnv(t)
	srv, calls := bannerServer(t, http.StatusOK, "")

	r := runCLI(t, srv, "upload")
	require.NoError(t, r.err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Contains(t, r.stdout, "Banner updated from "+path)
	assert.Contains(t, r.stdout, "image/png")
	assertNoSecrets(t, r)

	h := runCLI(t, srv, "history")
	require.NoError(t, h.err)
	assert.Contains(t, h.stdout, path)
	assert.Contains(t, h.stdout, model.StatusOK)
}

func TestUpload_PathArgument(t *testing.T) {
	setupEnv(t)
	srv, calls := bannerServer(t, http.StatusOK, "")

	other := filepath.Join(t.TempDir(), "other.png")
	require.NoError(t, os.WriteFile(other, []byte("\x89PNG\r\n\x1a\nother"), 0o644))

	r := runCLI(t, srv, "upload", other, "--no-history")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, other)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.NoFileExists(t, os.Getenv("BANNER_HISTORY_DB"))
}

func TestUpload_MissingCredential(t *testing.T) {
	for name := range secrets {
		t.Run(name, func(t *testing.T) {
			setupEnv(t)
			t.Setenv(name, "")
			srv, calls := bannerServer(t, http.StatusOK, "")

			r := runCLI(t, srv, "upload")
			require.Error(t, r.err)
			assert.Equal(t, exitConfig, exitCode(r.err))
			assert.Contains(t, r.stderr, name)
			assert.Zero(t, atomic.LoadInt32(calls))
			assertNoSecrets(t, r)
		})
	}
}

func TestUpload_MissingFile(t *testing.T) {
	setupEnv(t)
	srv, calls := bannerServer(t, http.StatusOK, "")

	r := runCLI(t, srv, "upload", "does/not/exist.png")
	require.Error(t, r.err)
	assert.Equal(t, exitNoImage, exitCode(r.err))
	assert.Contains(t, r.stderr, "does/not/exist.png")
	assert.Zero(t, atomic.LoadInt32(calls))
}

func TestUpload_Rejected(t *testing.T) {
	setupEnv(t)
	srv, calls := bannerServer(t, http.StatusUnauthorized,
		`{"errors":[{"code":89,"message":"Invalid or expired token."}]}`)

	r := runCLI(t, srv, "upload")
	require.Error(t, r.err)
	assert.Equal(t, exitRemote, exitCode(r.err))
	assert.Contains(t, r.stderr, "Invalid or expired token")
	assert.Equal(t, int32(1), atomic.LoadInt32(calls), "must not retry")
	assertNoSecrets(t, r)

	h := runCLI(t, srv, "history")
	require.NoError(t, h.err)
	assert.Contains(t, h.stdout, model.StatusFailed)
	assert.Contains(t, h.stdout, "Invalid or expired token")
}

func TestUpload_Twice(t *testing.T) {
	setupEnv(t)
	srv, calls := bannerServer(t, http.StatusOK, "")

	require.NoError(t, runCLI(t, srv, "upload").err)
	require.NoError(t, runCLI(t, srv, "upload").err)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestUpload_DryRun(t *testing.T) {
	path := setupEnv(t)
	srv, calls := bannerServer(t, http.StatusOK, "")

	r := runCLI(t, srv, "upload", "--dry-run")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "DRY RUN")
	assert.Contains(t, r.stdout, path)
	assert.Zero(t, atomic.LoadInt32(calls))
	assertNoSecrets(t, r)
}

// ===================== verify =====================

func TestVerify(t *testing.T) {
	setupEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/1.1/account/verify_credentials.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":42,"screen_name":"timteafan","profile_banner_url":"https://pbs.twimg.com/profile_banners/42/1"}`))
	}))
	defer srv.Close()

	r := runCLI(t, srv, "verify")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "@timteafan (id 42)")
	assert.Contains(t, r.stdout, "https://pbs.twimg.com/profile_banners/42/1")
	assertNoSecrets(t, r)
}

func TestVerify_MissingCredential(t *testing.T) {
	setupEnv(t)
	t.Setenv(config.EnvConsumerSecret, "")
	srv, calls := bannerServer(t, http.StatusOK, "")

	r := runCLI(t, srv, "verify")
	require.Error(t, r.err)
	assert.Equal(t, exitConfig, exitCode(r.err))
	assert.Zero(t, atomic.LoadInt32(calls))
}

// ===================== history =====================

func TestHistory_Empty(t *testing.T) {
	setupEnv(t)
	srv, _ := bannerServer(t, http.StatusOK, "")

	r := runCLI(t, srv, "history")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "No uploads recorded.")
}
