package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bnema/fileassist/internal/adapters/repo/jsonfile"
	"github.com/bnema/fileassist/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionFlag(t *testing.T) {
	stdout, _, err := executeCLI(t, "", "--version")
	require.NoError(t, err)
	assert.Equal(t, "fileassist dev\n", stdout)
}

func TestRejectsPositionalArguments(t *testing.T) {
	_, _, err := executeCLI(t, "", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fileassist", "config.toml")

	stdout, _, err := executeCLI(t, "", "--write-default-config", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote default config to "+path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "[llm]")
	assert.Contains(t, string(content), "llama3")

	_, _, err = executeCLI(t, "", "--write-default-config", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInvalidConfigIsRejected(t *testing.T) {
	dir := t.TempDir()
	configPath := writeConfigFixture(t, dir, "http://127.0.0.1:1")

	_, _, err := executeCLI(t, "", "--config", configPath, "--provider", "anthropic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestStartupFailsWhenModelIsMissing(t *testing.T) {
	dir := t.TempDir()
	server := newFakeOllama(t, []string{"mistral:7b"}, nil)
	configPath := writeConfigFixture(t, dir, server.URL)

	stdout, _, err := executeCLI(t, "quit\n", "--config", configPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, errProviderUnavailable)
	assert.Contains(t, stdout, "Ollama Error")
	assert.Contains(t, stdout, "ollama pull llama3")
	assert.FileExists(t, filepath.Join(dir, "session_context.json"))
}

func TestStartupFailsWhenServerIsDown(t *testing.T) {
	dir := t.TempDir()
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()
	configPath := writeConfigFixture(t, dir, url)

	stdout, _, err := executeCLI(t, "", "--config", configPath)
	require.Error(t, err)
	assert.Contains(t, stdout, "Ollama Error")
	assert.Contains(t, stdout, "ollama serve")
}

func TestListThenQuitPersistsState(t *testing.T) {
	dir := t.TempDir()
	docs := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(docs, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "apple.txt"), []byte("apple"), 0o644))

	intent := map[string]any{
		"chain_of_thought":     "The user wants a folder listing.",
		"clarification_needed": false,
		"actions": []map[string]any{{
			"action_name": "list_folder_contents",
			"parameters":  map[string]any{"folder_path": docs},
		}},
	}
	server := newFakeOllama(t, []string{"llama3:latest"}, intent)
	configPath := writeConfigFixture(t, dir, server.URL)

	stdin := fmt.Sprintf("list contents of %q\nquit\n", docs)
	stdout, _, err := executeCLI(t, stdin, "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "apple.txt")
	assert.Contains(t, stdout, "Goodbye.")

	repo, err := jsonfile.NewRepository(filepath.Join(dir, "session_context.json"), nil)
	require.NoError(t, err)
	session, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, docs, session.LastFolderListedPath)
	assert.Equal(t, domain.StatusSuccess, session.LastCommandStatus)

	logData, err := os.ReadFile(filepath.Join(dir, "activity_log.jsonl"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(logData)), "\n")
	require.Len(t, lines, 1)

	var entry domain.ActivityEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, domain.ActionListFolderContents, entry.Action)
	assert.Equal(t, domain.StatusSuccess, entry.Status)
}

func TestNoPromptRefusesMoves(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "x.txt")
	require.NoError(t, os.WriteFile(source, []byte("x"), 0o644))

	intent := map[string]any{
		"chain_of_thought": "Move the file.",
		"actions": []map[string]any{{
			"action_name": "move_item",
			"parameters": map[string]any{
				"source_path":      source,
				"destination_path": filepath.Join(dir, "archive") + string(filepath.Separator),
			},
		}},
	}
	server := newFakeOllama(t, []string{"llama3"}, intent)
	configPath := writeConfigFixture(t, dir, server.URL)

	_, _, err := executeCLI(t, "move it\n", "--config", configPath, "--no-prompt")
	require.NoError(t, err)
	assert.FileExists(t, source)
	assert.NoDirExists(t, filepath.Join(dir, "archive"))
}

func executeCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// newFakeOllama serves /api/tags with models and answers every generate call
// with intent encoded as the model response.
func newFakeOllama(t *testing.T, models []string, intent map[string]any) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, _ *http.Request) {
		list := make([]map[string]string, 0, len(models))
		for _, name := range models {
			list = append(list, map[string]string{"name": name})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"models": list})
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, _ *http.Request) {
		raw, err := json.Marshal(intent)
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"response": string(raw), "done": true})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func writeConfigFixture(t *testing.T, dir string, baseURL string) string {
	t.Helper()

	content := fmt.Sprintf(`[llm]
provider = "ollama"
base_url = %q
model = "llama3"
request_timeout = "5s"
check_timeout = "2s"

[paths]
activity_log = %q
session_context = %q

[activity]
max_bytes = 1048576
lookup_window = 50

[log]
level = "error"
`, baseURL, filepath.Join(dir, "activity_log.jsonl"), filepath.Join(dir, "session_context.json"))

	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
