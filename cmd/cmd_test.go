package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/condfix/fix"
	tt "github.com/gnolang/condfix/internal/types"
)

func init() {
	color.NoColor = true
}

func resetFlags() {
	cfgFile = fix.DefaultConfigFile
	timeout = defaultTimeout
	verbose = false
	ignoreRules, ignorePaths = "", ""
	checkJSONOutput, outPath = false, ""
	dryRun, showDiff, commit = false, false, false
	forceInit = false
	commitRunner = nil
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func setupProject(t *testing.T, files map[string]string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir, filepath.Join(dir, fix.DefaultConfigFile)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestRootWithoutArgs(t *testing.T) {
	out, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
}

func TestCheck(t *testing.T) {
	dir, config := setupProject(t, map[string]string{
		"a.php":     "<?php\nif ($a) {}\n",
		"clean.php": "<?php\necho 1;\n",
	})

	out, err := execute(t, "check", "--config", config, dir)
	assert.ErrorIs(t, err, ErrIssuesFound)
	assert.Contains(t, out, "warning: explicit-condition")
	assert.Contains(t, out, filepath.Join(dir, "a.php")+":2:5")
	assert.Contains(t, out, "true == $a")
	assert.NotContains(t, out, "clean.php")

	// check never writes
	assert.Equal(t, "<?php\nif ($a) {}\n", readFile(t, filepath.Join(dir, "a.php")))
}

func TestRootBehavesLikeCheck(t *testing.T) {
	dir, config := setupProject(t, map[string]string{
		"a.php": "<?php\nreturn is_null($a);\n",
	})

	out, err := execute(t, "--config", config, dir)
	assert.ErrorIs(t, err, ErrIssuesFound)
	assert.Contains(t, out, "null-strict")
}

func TestCheckClean(t *testing.T) {
	dir, config := setupProject(t, map[string]string{
		"clean.php": "<?php\nif (true === $a) {}\n",
	})

	out, err := execute(t, "check", "--config", config, dir)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCheckJSON(t *testing.T) {
	dir, config := setupProject(t, map[string]string{
		"a.php": "<?php\nif ($a) {}\n",
	})
	output := filepath.Join(dir, "issues.json")

	_, err := execute(t, "check", "--config", config, "--json", "-o", output, dir)
	assert.ErrorIs(t, err, ErrIssuesFound)

	var issues map[string][]tt.Issue
	require.NoError(t, json.Unmarshal([]byte(readFile(t, output)), &issues))
	fileIssues := issues[filepath.Join(dir, "a.php")]
	require.Len(t, fileIssues, 1)
	assert.Equal(t, "explicit-condition", fileIssues[0].Rule)
	assert.Equal(t, "true == $a", fileIssues[0].Suggestion)
	assert.Contains(t, readFile(t, output), `"severity": "warning"`)
}

func TestFix(t *testing.T) {
	dir, config := setupProject(t, map[string]string{
		"a.php":            "<?php\nif (!$a || is_null($b)) {}\n",
		"vendor/lib.php":   "<?php\nif ($a) {}\n",
		"legacy/keep.php":  "<?php\nif ($a) {}\n",
		"notes/readme.txt": "if ($a) {}",
	})

	out, err := execute(t, "fix", "--config", config, "--ignore-paths", filepath.Join(dir, "legacy"), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Fixed 1 file(s)")

	assert.Equal(t, "<?php\nif (false == $a || null === $b) {}\n", readFile(t, filepath.Join(dir, "a.php")))
	assert.Equal(t, "<?php\nif ($a) {}\n", readFile(t, filepath.Join(dir, "vendor", "lib.php")))
	assert.Equal(t, "<?php\nif ($a) {}\n", readFile(t, filepath.Join(dir, "legacy", "keep.php")))
}

func TestFixDryRunDiff(t *testing.T) {
	dir, config := setupProject(t, map[string]string{
		"a.php": "<?php\nif ($a) {}\n",
	})

	out, err := execute(t, "fix", "--config", config, "--dry-run", "--diff", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "-if ($a) {}\n+if (true == $a) {}\n")
	assert.Contains(t, out, "Would fix 1 file(s)")
	assert.Equal(t, "<?php\nif ($a) {}\n", readFile(t, filepath.Join(dir, "a.php")))
}

func TestFixIgnoreRule(t *testing.T) {
	dir, config := setupProject(t, map[string]string{
		"a.php": "<?php\nif ($a) { return is_null($b); }\n",
	})

	_, err := execute(t, "fix", "--config", config, "--ignore", "explicit-condition", dir)
	require.NoError(t, err)
	assert.Equal(t, "<?php\nif ($a) { return null === $b; }\n", readFile(t, filepath.Join(dir, "a.php")))
}

func TestFixWithConfiguration(t *testing.T) {
	dir, config := setupProject(t, map[string]string{
		"a.php": "<?php\nif ($a) { return is_null($b); }\n",
		fix.DefaultConfigFile: `rules:
  null-strict:
    severity: off
  explicit-condition:
    severity: warning
`,
	})

	_, err := execute(t, "fix", "--config", config, dir)
	require.NoError(t, err)
	assert.Equal(t, "<?php\nif (true == $a) { return is_null($b); }\n", readFile(t, filepath.Join(dir, "a.php")))
}

func TestFixCommit(t *testing.T) {
	dir, config := setupProject(t, map[string]string{
		"a.php":     "<?php\nif ($a) { return is_null($b); }\n",
		"clean.php": "<?php\necho 1;\n",
	})

	var calls []string
	runner := func(ctx context.Context, dir string, args ...string) ([]byte, error) {
		calls = append(calls, strings.Join(args, " "))
		return nil, nil
	}

	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"fix", "--config", config, "--commit", dir})
	commitRunner = runner
	t.Cleanup(resetFlags)
	require.NoError(t, rootCmd.Execute())

	file := filepath.Join(dir, "a.php")
	assert.Equal(t, []string{
		"add -- " + file,
		"commit -m apply null strict, explicit condition -- " + file,
	}, calls)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, fix.DefaultConfigFile)

	out, err := execute(t, "init", "--config", config)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration file created")

	loaded, err := fix.LoadConfig(config)
	require.NoError(t, err)
	assert.Equal(t, fix.DefaultConfig(), loaded)

	_, err = execute(t, "init", "--config", config)
	assert.Error(t, err)

	_, err = execute(t, "init", "--config", config, "--force")
	assert.NoError(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b ,"))
}
