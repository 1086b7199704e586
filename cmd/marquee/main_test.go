package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	canPrompt = func() bool { return false }
}

func fakeTMDB(t *testing.T) *httptest.Server {
	t.Helper()
	listing := func(body string) string {
		return `{"page":1,"total_pages":1,"total_results":1,"results":[` + body + `]}`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/movie/now_playing":
			fmt.Fprint(w, listing(`{"id":693134,"title":"Dune: Part Two","release_date":"2024-02-27"}`))
		case "/movie/top_rated":
			fmt.Fprint(w, listing(`{"id":238,"title":"The Godfather","release_date":"1972-03-14"}`))
		case "/movie/upcoming":
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"status_code":11,"status_message":"Internal error","success":false}`)
		case "/trending/movie/day", "/trending/movie/week":
			fmt.Fprint(w, listing(`{"id":693134,"title":"Dune: Part Two","release_date":"2024-02-27","media_type":"movie"},`+
				`{"id":1399,"title":"Game of Thrones","media_type":"tv"}`))
		case "/movie/693134":
			fmt.Fprint(w, `{"id":693134,"title":"Dune: Part Two","release_date":"2024-02-27","tagline":"Long live the fighters.",
				"runtime":166,"genres":[{"id":878,"name":"Science Fiction"}],"vote_average":8.2,"vote_count":5000}`)
		case "/movie/693134/credits":
			fmt.Fprint(w, `{"id":693134,"cast":[{"id":1,"name":"Zendaya","character":"Chani","order":1},
				{"id":2,"name":"Timothée Chalamet","character":"Paul Atreides","order":0}]}`)
		case "/movie/693134/reviews":
			fmt.Fprint(w, listing(`{"id":"r1","author":"critic","content":"Great","created_at":"2024-03-01T10:00:00.000Z"}`))
		case "/movie/693134/recommendations":
			fmt.Fprint(w, listing(`{"id":438631,"title":"Dune"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"status_code":34,"status_message":"The resource you requested could not be found."}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`tmdb:
  api_key: test-key
  base_url: %s
cache:
  dir: %s
logging:
  file: %s
  level: DEBUG
`, baseURL, filepath.Join(dir, "cache"), filepath.Join(dir, "marquee.log"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDashboardCommand(t *testing.T) {
	srv := fakeTMDB(t)
	cfgPath := writeConfig(t, srv.URL)

	out, err := execute(t, "dashboard", "--config", cfgPath)
	require.NoError(t, err)

	assert.Contains(t, out, "== Now Playing (1) ==")
	assert.Contains(t, out, "Dune: Part Two (2024-02-27)")
	assert.Contains(t, out, "== Top Rated (1) ==")
	assert.Contains(t, out, "== Trending Today (1) ==", "tv entries are skipped")
	assert.NotContains(t, out, "Game of Thrones")
	assert.Contains(t, out, "== Upcoming (0) ==")
	assert.Contains(t, out, "Internal error")
	assert.Contains(t, out, "latest error (Upcoming)")
}

func TestSearchCommand(t *testing.T) {
	srv := fakeTMDB(t)
	cfgPath := writeConfig(t, srv.URL)

	out, err := execute(t, "search", "--config", cfgPath, "dune")
	require.NoError(t, err)
	assert.Contains(t, out, `1 results for "dune"`, "duplicates across categories collapse")
	assert.Contains(t, out, "693134")

	out, err = execute(t, "search", "--config", cfgPath, "godfathr")
	require.NoError(t, err)
	assert.Contains(t, out, `No results for "godfathr"`)
	assert.Contains(t, out, "Did you mean:")
	assert.Contains(t, out, "The Godfather")
}

func TestShowCommand(t *testing.T) {
	srv := fakeTMDB(t)
	cfgPath := writeConfig(t, srv.URL)

	out, err := execute(t, "show", "--config", cfgPath, "693134")
	require.NoError(t, err)
	assert.Contains(t, out, "Dune: Part Two (2024)")
	assert.Contains(t, out, "Long live the fighters.")
	assert.Contains(t, out, "2h 46m")
	assert.Contains(t, out, "Timothée Chalamet as Paul Atreides")
	assert.Contains(t, out, "1 reviews")
	assert.Contains(t, out, "Recommended: Dune")

	_, err = execute(t, "show", "--config", cfgPath, "404")
	assert.Error(t, err)
}

func TestCacheClearCommand(t *testing.T) {
	srv := fakeTMDB(t)
	cfgPath := writeConfig(t, srv.URL)

	_, err := execute(t, "dashboard", "--config", cfgPath)
	require.NoError(t, err)

	out, err := execute(t, "cache", "clear", "--config", cfgPath, "--category", "top-rated")
	require.NoError(t, err)
	assert.Equal(t, "Cleared Top Rated\n", out)

	out, err = execute(t, "cache", "clear", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared cached listings")

	_, err = execute(t, "cache", "clear", "--config", cfgPath, "--category", "nope")
	assert.Error(t, err)

	cacheDir := filepath.Join(filepath.Dir(cfgPath), "cache")
	require.DirExists(t, cacheDir)
	out, err = execute(t, "cache", "clear", "--config", cfgPath, "--all")
	require.NoError(t, err)
	assert.Contains(t, out, cacheDir)
	assert.NoDirExists(t, cacheDir)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "marquee dev\n", out)
}

func TestMissingCredentials(t *testing.T) {
	t.Setenv("MARQUEE_TMDB_API_KEY", "")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf("logging:\n  file: %s\ncache:\n  dir: %s\n",
		filepath.Join(dir, "marquee.log"), filepath.Join(dir, "cache"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := execute(t, "dashboard", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}
