package internal

import (
	"crypto/md5"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	cacheFileName = "condfix_cache.gob"
	cacheFormat   = 1
	defaultMaxAge = 24 * time.Hour
)

// cleanEntry records that a file needed no rewrite.
type cleanEntry struct {
	Sum         string
	ModTime     time.Time
	Fingerprint string
	CheckedAt   time.Time
}

type cacheFile struct {
	Format  int
	Entries map[string]cleanEntry
}

// Cache remembers the PHP files that needed no rewrite, so that unchanged
// files are not tokenized again. An entry only counts for the rule key it
// was recorded with and while the dependency files, such as the
// configuration, are unchanged.
type Cache struct {
	dir     string
	mu      sync.Mutex
	maxAge  time.Duration
	depsSum string
	entries map[string]cleanEntry
}

// NewCache opens the cache stored in dir, creating the directory if needed.
func NewCache(dir string, dependencyFiles ...string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	depsSum, err := dependencySum(dependencyFiles)
	if err != nil {
		return nil, err
	}

	c := &Cache{
		dir:     dir,
		maxAge:  defaultMaxAge,
		depsSum: depsSum,
		entries: make(map[string]cleanEntry),
	}
	if err := c.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}
	return c, nil
}

func (c *Cache) path() string {
	return filepath.Join(c.dir, cacheFileName)
}

func (c *Cache) load() error {
	f, err := os.Open(c.path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	var stored cacheFile
	if err := gob.NewDecoder(f).Decode(&stored); err != nil {
		return fmt.Errorf("failed to decode %s: %w", c.path(), err)
	}
	// an older layout is dropped rather than migrated
	if stored.Format == cacheFormat && stored.Entries != nil {
		c.entries = stored.Entries
	}
	return nil
}

// save writes the entries to a temporary file and renames it over the
// cache file, so a concurrent reader never sees a partial file.
func (c *Cache) save() error {
	tmp, err := os.CreateTemp(c.dir, cacheFileName+".*")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(cacheFile{Format: cacheFormat, Entries: c.entries}); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), c.path())
}

// fingerprint ties an entry to the rules that found the file clean.
func (c *Cache) fingerprint(ruleKey string) string {
	return c.depsSum + ":" + ruleKey
}

// MarkClean records that filename, as it is now on disk, needed no rewrite
// under ruleKey.
func (c *Cache) MarkClean(filename, ruleKey string) error {
	sum, modTime, err := fileSum(filename)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[filename] = cleanEntry{
		Sum:         sum,
		ModTime:     modTime,
		Fingerprint: c.fingerprint(ruleKey),
		CheckedAt:   time.Now(),
	}
	return c.save()
}

// IsClean reports whether filename was recorded clean under ruleKey and has
// not changed since. Stale entries are dropped.
func (c *Cache) IsClean(filename, ruleKey string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[filename]
	if !ok {
		return false
	}
	if c.isStale(filename, ruleKey, entry) {
		delete(c.entries, filename)
		return false
	}
	return true
}

func (c *Cache) isStale(filename, ruleKey string, entry cleanEntry) bool {
	if time.Since(entry.CheckedAt) > c.maxAge {
		return true
	}
	if entry.Fingerprint != c.fingerprint(ruleKey) {
		return true
	}
	sum, modTime, err := fileSum(filename)
	return err != nil || sum != entry.Sum || !modTime.Equal(entry.ModTime)
}

// Forget drops the entry of filename.
func (c *Cache) Forget(filename string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[filename]; ok {
		delete(c.entries, filename)
		_ = c.save()
	}
}

func (c *Cache) SetMaxAge(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.maxAge = d
}

// InvalidateAll empties the cache, on disk too.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cleanEntry)
	_ = c.save()
}

func fileSum(filename string) (string, time.Time, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", time.Time{}, err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to hash %s: %w", filename, err)
	}
	info, err := f.Stat()
	if err != nil {
		return "", time.Time{}, err
	}
	return hex.EncodeToString(h.Sum(nil)), info.ModTime(), nil
}

// dependencySum hashes the dependency files in path order. A missing file
// contributes an empty hash so that creating it later invalidates entries.
func dependencySum(files []string) (string, error) {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	h := md5.New()
	for _, file := range sorted {
		sum, _, err := fileSum(file)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to hash dependency %s: %w", file, err)
		}
		io.WriteString(h, file+"="+sum+"\n")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ruleKey identifies the rule set and PHP version a file was checked with.
func ruleKey(rules []string, phpVersion string) string {
	sorted := append([]string(nil), rules...)
	sort.Strings(sorted)
	return phpVersion + "|" + strings.Join(sorted, ",")
}
