package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairizuanbinnoorazman/testcase-generator/testcase"
)

const loginBlocks = `Here are your test cases.

Test Case 1:
Description: Valid login
Preconditions: User account exists
Steps:
1. Open the login page
2. Enter valid credentials
Expected Results: Dashboard is shown

Test Case 2:
Description: Locked account
Preconditions: Account is locked
Steps:
1. Enter valid credentials
Expected Results: Lockout message is shown
`

// runCLI executes the root command with an isolated home directory and
// returns what was written to stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TESTGEN_SETTINGS_DIR", "")
	t.Setenv("TESTGEN_PASSPHRASE", "")
	t.Setenv("TESTGEN_LOG_LEVEL", "")
	return home
}

func TestVersion(t *testing.T) {
	isolateHome(t)

	stdout, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "testgen dev (commit: none, built: unknown)\n", stdout)
}

func TestConfigInitAndShow(t *testing.T) {
	home := isolateHome(t)

	stdout, _, err := runCLI(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Config file created at "+filepath.Join(home, configFileName))

	data, err := os.ReadFile(filepath.Join(home, configFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "settings_dir: "+filepath.Join(home, ".testgen"))
	assert.Contains(t, string(data), "log_level: warn")

	stdout, _, err = runCLI(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Config file already exists")

	stdout, _, err = runCLI(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Settings dir: "+filepath.Join(home, ".testgen"))
	assert.Contains(t, stdout, "Passphrase:   (not set)")
	assert.Contains(t, stdout, "Config file:  "+filepath.Join(home, configFileName))
}

func TestConfigShow_FlagsAndEnv(t *testing.T) {
	isolateHome(t)
	t.Setenv("TESTGEN_SETTINGS_DIR", "/from/env")

	stdout, _, err := runCLI(t, "config", "show", "--json", "--passphrase", "correct-horse-battery")
	require.NoError(t, err)

	var resolved fileConfig
	require.NoError(t, json.Unmarshal([]byte(stdout), &resolved))
	assert.Equal(t, "/from/env", resolved.SettingsDir)
	assert.Equal(t, "corr...tery", resolved.Passphrase)
	assert.Equal(t, "warn", resolved.LogLevel)

	stdout, _, err = runCLI(t, "config", "show", "--json", "--settings-dir", "/from/flag", "--debug")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(stdout), &resolved))
	assert.Equal(t, "/from/flag", resolved.SettingsDir)
	assert.Equal(t, "debug", resolved.LogLevel)
}

func TestScriptCmd(t *testing.T) {
	isolateHome(t)
	input := filepath.Join(t.TempDir(), "cases.txt")
	require.NoError(t, os.WriteFile(input, []byte(loginBlocks), 0644))

	t.Run("all cases", func(t *testing.T) {
		stdout, _, err := runCLI(t, "script", input)
		require.NoError(t, err)
		assert.Contains(t, stdout, "def test_test_case_1():")
		assert.Contains(t, stdout, "def test_test_case_2():")
		assert.Contains(t, stdout, "    # Open the login page\n")
	})

	t.Run("single case", func(t *testing.T) {
		stdout, _, err := runCLI(t, "script", input, "--id", "TC2")
		require.NoError(t, err)
		assert.NotContains(t, stdout, "test_test_case_1")
		assert.Contains(t, stdout, "def test_test_case_2():")
	})

	t.Run("unknown case", func(t *testing.T) {
		_, _, err := runCLI(t, "script", input, "--id", "TC9")
		require.Error(t, err)
		assert.ErrorIs(t, err, testcase.ErrTestCaseNotFound)
	})

	t.Run("json", func(t *testing.T) {
		stdout, _, err := runCLI(t, "script", input, "--json")
		require.NoError(t, err)

		var scripts []struct {
			Name     string `json:"name"`
			Code     string `json:"code"`
			FilePath string `json:"filePath"`
		}
		require.NoError(t, json.Unmarshal([]byte(stdout), &scripts))
		require.Len(t, scripts, 2)
		assert.Equal(t, "tests/test_test_case_1.py", scripts[0].FilePath)
	})

	t.Run("output file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "nested", "test_login.py")
		_, stderr, err := runCLI(t, "script", input, "-o", out)
		require.NoError(t, err)
		assert.Contains(t, stderr, "Wrote 2 pytest skeleton(s)")

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(string(data), "import pytest"))
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := runCLI(t, "script", filepath.Join(t.TempDir(), "missing.txt"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

// newOllamaServer answers every generate call with reply and records the
// model that was requested.
func newOllamaServer(t *testing.T, reply string) (*httptest.Server, *string) {
	t.Helper()
	var model string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		model = req.Model
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"response": reply})
	}))
	t.Cleanup(server.Close)
	return server, &model
}

func TestGenerate_WithOllama(t *testing.T) {
	isolateHome(t)
	settingsDir := t.TempDir()
	server, model := newOllamaServer(t, loginBlocks)

	_, _, err := runCLI(t, "settings", "baseurl", "ollama", server.URL, "--settings-dir", settingsDir)
	require.NoError(t, err)
	_, _, err = runCLI(t, "settings", "select", "ollama", "--settings-dir", settingsDir)
	require.NoError(t, err)

	pytestFile := filepath.Join(t.TempDir(), "test_login.py")
	stdout, stderr, err := runCLI(t, "generate", "User can log in",
		"--settings-dir", settingsDir,
		"--format", "json",
		"--coverage", "90",
		"--pytest", pytestFile,
	)
	require.NoError(t, err)
	assert.Equal(t, "llama2", *model)

	var cases []testcase.TestCase
	require.NoError(t, json.Unmarshal([]byte(stdout), &cases))
	require.Len(t, cases, 2)
	assert.Equal(t, "TC1", cases[0].ID)
	assert.Equal(t, "Valid login", cases[0].Description)
	assert.Equal(t, []string{"Open the login page", "Enter valid credentials"}, cases[0].Steps)

	assert.Contains(t, stderr, "Wrote 2 pytest skeleton(s)")
	data, err := os.ReadFile(pytestFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "def test_test_case_2():")
}

func TestGenerate_TextOutputWithProviderOverride(t *testing.T) {
	isolateHome(t)
	settingsDir := t.TempDir()
	server, _ := newOllamaServer(t, loginBlocks)

	_, _, err := runCLI(t, "settings", "baseurl", "ollama", server.URL, "--settings-dir", settingsDir)
	require.NoError(t, err)

	stdout, _, err := runCLI(t, "generate", "User", "can", "log", "in",
		"--settings-dir", settingsDir,
		"--provider", "ollama",
	)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "Test Case 1:\nDescription: Valid login\n"))
	assert.Contains(t, stdout, "Test Case 2:\n")
}

func TestGenerate_Validation(t *testing.T) {
	isolateHome(t)
	settingsDir := t.TempDir()

	tests := []struct {
		name    string
		args    []string
		wantErr error
		wantMsg string
	}{
		{
			name:    "unknown format",
			args:    []string{"--format", "yaml"},
			wantErr: errUnknownFormat,
		},
		{
			name:    "coverage out of range",
			args:    []string{"--coverage", "10"},
			wantErr: testcase.ErrInvalidCoverage,
		},
		{
			name:    "unknown environment",
			args:    []string{"--environment", "qa"},
			wantErr: testcase.ErrInvalidEnvironment,
		},
		{
			name:    "unknown provider",
			args:    []string{"--provider", "anthropic"},
			wantMsg: "invalid AI provider",
		},
		{
			name:    "missing template",
			args:    []string{"--template", filepath.Join(settingsDir, "missing.txt")},
			wantMsg: "failed to read template",
		},
		{
			name:    "missing api key",
			args:    []string{"--provider", "groq"},
			wantMsg: "api key is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"generate", "User can log in", "--settings-dir", settingsDir}, tt.args...)
			_, _, err := runCLI(t, args...)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestReadTemplate(t *testing.T) {
	dir := t.TempDir()

	content, err := readTemplate("")
	require.NoError(t, err)
	assert.Empty(t, content)

	valid := filepath.Join(dir, "template.txt")
	require.NoError(t, os.WriteFile(valid, []byte("Use Given/When/Then."), 0644))
	content, err = readTemplate(valid)
	require.NoError(t, err)
	assert.Equal(t, "Use Given/When/Then.", content)

	binary := filepath.Join(dir, "template.bin")
	require.NoError(t, os.WriteFile(binary, []byte{0xff, 0xfe, 0x00}, 0644))
	_, err = readTemplate(binary)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid UTF-8")
}

func TestRenderCases(t *testing.T) {
	cases := testcase.Parse(loginBlocks)

	var buf bytes.Buffer
	require.NoError(t, renderCases(&buf, cases, formatMarkdown, false))
	assert.Equal(t, testcase.Markdown(cases), buf.String())

	buf.Reset()
	require.NoError(t, renderCases(&buf, cases, formatText, false))
	assert.Equal(t, testcase.Format(cases)+"\n", buf.String())

	buf.Reset()
	require.NoError(t, renderCases(&buf, cases, formatJSON, false))
	var decoded []testcase.TestCase
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, cases, decoded)

	assert.ErrorIs(t, renderCases(&buf, cases, "html", false), errUnknownFormat)
}

func TestWritePytestFile_NoCases(t *testing.T) {
	err := writePytestFile(context.Background(), filepath.Join(t.TempDir(), "out.py"), nil)
	require.Error(t, err)
}
