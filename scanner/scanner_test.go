package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		fullPath := filepath.Join(root, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
	}
}

func TestProjectScanner(t *testing.T) {
	tempDir := t.TempDir()
	writeTree(t, tempDir, map[string]string{
		"index.php":                "<?php echo 1;",
		"src/Model.php":            "<?php class Model {}",
		"readme.txt":               "This is a text file",
		"vendor/lib/Lib.php":       "<?php class Lib {}",
		"node_modules/x/tool.php":  "<?php",
		"src/cache/compiled.php":   "<?php",
		"src/legacy/Old.php":       "<?php",
		"tests/legacy/OldTest.php": "<?php",
	})

	scanner := New(tempDir, ".php").Ignore("cache", filepath.Join(tempDir, "src", "legacy"))
	scannedFiles, err := scanner.Scan()
	require.NoError(t, err)

	var paths []string
	for _, file := range scannedFiles {
		rel, err := filepath.Rel(tempDir, file.Path)
		require.NoError(t, err)
		paths = append(paths, filepath.ToSlash(rel))
		assert.Greater(t, file.Size, int64(0), "File size should be greater than 0")
	}

	assert.Equal(t, []string{"index.php", "src/Model.php", "tests/legacy/OldTest.php"}, paths)
}

func TestScannerWithoutExtensions(t *testing.T) {
	tempDir := t.TempDir()
	writeTree(t, tempDir, map[string]string{
		"a.php":   "<?php",
		"b.phtml": "<?php",
	})

	files, err := New(tempDir).Scan()
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestScannerMissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), ".php").Scan()
	assert.Error(t, err)
}
