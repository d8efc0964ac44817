package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/lensline/internal/analysis"
	"github.com/Veraticus/lensline/internal/common"
	"github.com/Veraticus/lensline/internal/export"
	"github.com/Veraticus/lensline/internal/model"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

// setupEnv points every path at a temp dir and disables the remote service.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("LENSLINE_API_OFFLINE", "true")
	t.Setenv("LENSLINE_LOGGING_LEVEL", "error")
	return dir
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeImage(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, pngHeader, 0o600))
	return path
}

func TestCLI_SessionLifecycle(t *testing.T) {
	setupEnv(t)

	out, err := runCLI(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")

	out, err = runCLI(t, "", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, Demo User! (demo session)")

	out, err = runCLI(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "demo@lensline.ai")
	assert.Contains(t, out, "156")

	_, err = runCLI(t, "", "logout")
	require.NoError(t, err)

	out, err = runCLI(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")
}

func TestCLI_LoginOffline(t *testing.T) {
	setupEnv(t)

	_, err := runCLI(t, "hunter2\n", "login", "--email", "a@example.com")
	require.Error(t, err)
	assert.Equal(t, "Login failed", err.Error())
	assert.ErrorIs(t, err, common.ErrOffline)

	_, err = runCLI(t, "", "profile", "update", "--name", "New")
	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestCLI_AnalyzeAndHistory(t *testing.T) {
	dir := setupEnv(t)
	first := writeImage(t, dir, "first.png")
	second := writeImage(t, dir, "second.png")

	out, err := runCLI(t, "", "analyze", first)
	require.NoError(t, err)
	assert.Contains(t, out, "Placeholder result")

	out, err = runCLI(t, "", "analyze", "--quiet", second, "https://example.com/photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "(placeholder)"))

	out, err = runCLI(t, "", "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "3 of 3 analyses")

	out, err = runCLI(t, "", "history", "export")
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, export.Header, rows[0])

	ids := make([]string, 0, 3)
	for _, row := range rows[1:] {
		ids = append(ids, row[0])
		assert.Equal(t, "true", row[8], "offline records are synthetic")
	}

	out, err = runCLI(t, "", "history", "show", ids[0])
	require.NoError(t, err)
	assert.Contains(t, out, ids[0])

	out, err = runCLI(t, "", "history", "delete", ids[0])
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 1 analyses")

	_, err = runCLI(t, "", "history", "show", ids[0])
	assert.ErrorIs(t, err, common.ErrNotFound)

	out, err = runCLI(t, "", "history", "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "local history kept")

	out, err = runCLI(t, "n\n", "history", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")

	out, err = runCLI(t, "", "history", "clear", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared 2 analyses")

	out, err = runCLI(t, "", "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No analyses found")
}

func TestCLI_AnalyzeRejectsBadInput(t *testing.T) {
	dir := setupEnv(t)
	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("just some text"), 0o600))

	_, err := runCLI(t, "", "analyze", text)
	assert.ErrorIs(t, err, common.ErrUnsupportedImage)

	_, err = runCLI(t, "", "analyze", filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	out, err := runCLI(t, "", "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No analyses found", "rejected input must not add records")
}

func TestCLI_StoreHistoryOff(t *testing.T) {
	dir := setupEnv(t)

	out, err := runCLI(t, "", "settings", "toggle", "privacy.storeHistory")
	require.NoError(t, err)
	assert.Contains(t, out, "privacy.storeHistory = false")

	_, err = runCLI(t, "", "analyze", writeImage(t, dir, "a.png"))
	require.NoError(t, err)

	out, err = runCLI(t, "", "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No analyses found")
}

func TestCLI_Settings(t *testing.T) {
	setupEnv(t)

	out, err := runCLI(t, "", "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "privacy.autoDelete")
	assert.Contains(t, out, "30days")

	_, err = runCLI(t, "", "settings", "set", "privacy.autoDelete", "7days")
	require.NoError(t, err)

	out, err = runCLI(t, "", "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "7days")

	_, err = runCLI(t, "", "settings", "set", "appearance.theme", "neon")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = runCLI(t, "", "settings", "toggle", "appearance.theme")
	assert.Error(t, err)
}

func TestCLI_StatsAndMetrics(t *testing.T) {
	dir := setupEnv(t)
	metricsPath := filepath.Join(dir, "lensline.prom")

	_, err := runCLI(t, "", "--metrics-file", metricsPath, "analyze", writeImage(t, dir, "a.png"))
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `lensline_remote_failures_total{operation="analyze"} 1`)
	assert.Contains(t, string(data), "lensline_history_records 1")
	assert.Contains(t, string(data), "lensline_command_duration_seconds")

	out, err := runCLI(t, "", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Total scans")
	assert.Contains(t, out, "First Scan")
}

func TestCLI_InvalidConfig(t *testing.T) {
	setupEnv(t)
	t.Setenv("LENSLINE_BLOB_BACKEND", "floppy")

	_, err := runCLI(t, "", "history", "list")
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestParseInputs(t *testing.T) {
	files := map[string][]byte{
		"ok.png":   pngHeader,
		"text.txt": []byte("hello"),
	}
	readFile := func(name string) ([]byte, error) {
		data, ok := files[name]
		if !ok {
			return nil, os.ErrNotExist
		}
		return data, nil
	}

	tests := []struct {
		wantErr error
		name    string
		args    []string
		wantURL []bool
	}{
		{name: "file and url", args: []string{"ok.png", "https://example.com/a.jpg"}, wantURL: []bool{false, true}},
		{name: "unsupported file", args: []string{"text.txt"}, wantErr: common.ErrUnsupportedImage},
		{name: "missing file", args: []string{"ok.png", "gone.png"}, wantErr: os.ErrNotExist},
		{name: "bad url", args: []string{"https://"}, wantErr: common.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs, err := parseInputs(tt.args, readFile)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, inputs, len(tt.wantURL))
			for i, isURL := range tt.wantURL {
				assert.Equal(t, !isURL, inputs[i].IsFile())
			}
		})
	}
}

func TestQueryFromFlags(t *testing.T) {
	newCmd := func(args ...string) *cobra.Command {
		cmd := historyListCmd(&globals{})
		require.NoError(t, cmd.ParseFlags(args))
		return cmd
	}

	q, err := queryFromFlags(newCmd("--verdict", "fake", "--search", "abc", "--sort", "oldest"))
	require.NoError(t, err)
	assert.Equal(t, analysis.Query{Verdict: model.VerdictFake, Search: "abc", Sort: analysis.SortOldest}, q)

	q, err = queryFromFlags(newCmd())
	require.NoError(t, err)
	assert.Equal(t, analysis.Query{Sort: analysis.SortNewest}, q)

	_, err = queryFromFlags(newCmd("--verdict", "maybe"))
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = queryFromFlags(newCmd("--sort", "random"))
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestProfilePatchFromFlags(t *testing.T) {
	cmd := profileCmd(&globals{})
	update, _, err := cmd.Find([]string{"update"})
	require.NoError(t, err)
	require.NoError(t, update.ParseFlags([]string{"--name", "Ada", "--avatar", ""}))

	patch := profilePatchFromFlags(update)
	require.NotNil(t, patch.Name)
	assert.Equal(t, "Ada", *patch.Name)
	assert.Nil(t, patch.Email)
	require.NotNil(t, patch.Avatar, "an explicitly empty flag is still sent")
	assert.Empty(t, *patch.Avatar)
}

func TestReadLine(t *testing.T) {
	line, err := readLine(strings.NewReader("secret\r\nignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "secret", line)

	line, err = readLine(strings.NewReader("no-newline"))
	require.NoError(t, err)
	assert.Equal(t, "no-newline", line)

	_, err = readLine(strings.NewReader(""))
	assert.ErrorIs(t, err, io.EOF)
}
