// Package scanner discovers the source files to fix under a root directory.
package scanner

import (
	"io/fs"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gnolang/condfix/internal/trie"
)

// DefaultIgnoredDirs are skipped unless the scanner is told otherwise.
var DefaultIgnoredDirs = []string{"vendor", "node_modules", ".git"}

type FileInfo struct {
	Path string
	Size int64
}

type Scanner struct {
	rootDir    string
	extensions []string
	ignored    *trie.PathSet
	ignoreBase map[string]bool
}

func New(rootDir string, extensions ...string) *Scanner {
	s := &Scanner{
		rootDir:    rootDir,
		extensions: extensions,
		ignored:    trie.NewPathSet(),
		ignoreBase: make(map[string]bool),
	}
	for _, dir := range DefaultIgnoredDirs {
		s.ignoreBase[dir] = true
	}
	return s
}

// Ignore skips the given paths. A bare directory name such as "cache" is
// skipped at any depth; a path with separators is skipped only at that
// location.
func (s *Scanner) Ignore(paths ...string) *Scanner {
	for _, p := range paths {
		if filepath.Base(p) == filepath.Clean(p) {
			s.ignoreBase[filepath.Clean(p)] = true
			continue
		}
		s.ignored.Add(p)
	}
	return s
}

// Scan walks the root directory and returns the matching files sorted by
// path.
func (s *Scanner) Scan() ([]FileInfo, error) {
	var (
		files []FileInfo
		mutex sync.Mutex
		wg    sync.WaitGroup
	)

	err := filepath.WalkDir(s.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != s.rootDir && s.isIgnored(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.isTargetFile(path) && !s.ignored.Contains(path) {
			wg.Add(1)
			go func() {
				defer wg.Done()
				fileInfo := FileInfo{Path: path}
				if info, err := d.Info(); err == nil {
					fileInfo.Size = info.Size()
				}
				mutex.Lock()
				files = append(files, fileInfo)
				mutex.Unlock()
			}()
		}
		return nil
	})

	wg.Wait()
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

func (s *Scanner) isIgnored(dir string) bool {
	return s.ignoreBase[filepath.Base(dir)] || s.ignored.Contains(dir)
}

func (s *Scanner) isTargetFile(path string) bool {
	if len(s.extensions) == 0 {
		return true
	}

	ext := filepath.Ext(path)
	for _, targetExt := range s.extensions {
		if ext == targetExt {
			return true
		}
	}
	return false
}
