package scan

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCollectWalksDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.py"), "def run():\n    run()\n")
	writeFile(t, filepath.Join(root, "web", "app.js"), "async function go() {}")
	writeFile(t, filepath.Join(root, "node_modules", "dep", "index.js"), "ignored")
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "ref: refs/heads/main")
	writeFile(t, filepath.Join(root, "logo.png"), "not really an image")
	writeFile(t, filepath.Join(root, "blob.dat"), "bin\x00ary")

	single := filepath.Join(t.TempDir(), "extra.go")
	writeFile(t, single, "package extra")

	var (
		mu   sync.Mutex
		seen []string
	)
	files, err := Collect(context.Background(), []string{root, single}, Options{
		VisitFunc: func(v FileVisit) {
			mu.Lock()
			seen = append(seen, v.Key)
			mu.Unlock()
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "def run():\n    run()\n", files["main.py"])
	assert.Equal(t, "async function go() {}", files["web/app.js"])
	assert.Equal(t, "package extra", files[filepath.ToSlash(filepath.Clean(single))])
	assert.Len(t, files, 3)
	assert.Len(t, seen, 3)
}

func TestCollectSkipsLargeFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "big.txt"), strings.Repeat("x", 64))
	writeFile(t, filepath.Join(root, "small.txt"), "ok")

	files, err := Collect(context.Background(), []string{root}, Options{MaxFileBytes: 16, Concurrency: 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"small.txt": "ok"}, files)

	files, err = Collect(context.Background(), []string{root}, Options{MaxFileBytes: -1})
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestCollectRejectsEscapingSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	outside := filepath.Join(t.TempDir(), "secret.txt")
	writeFile(t, outside, "secret")

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ok.py"), "pass")
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "link.txt")))

	files, err := Collect(context.Background(), []string{root}, Options{})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ok.py": "pass"}, files)
}

func TestCollectMissingPath(t *testing.T) {
	_, err := Collect(context.Background(), []string{filepath.Join(t.TempDir(), "nope")}, Options{})
	assert.Error(t, err)
}

func TestCollectHonorsCancellation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.py"), "pass")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Collect(ctx, []string{root}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
