package fix

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/gnolang/condfix/internal"
	"github.com/gnolang/condfix/scanner"
)

type FixEngine interface {
	Run(filename string) (internal.Result, error)
	RunSource(source []byte) (internal.Result, error)
	IgnoreRule(rule string)
	IgnorePath(path string)
}

// Processor handles a single file.
type Processor func(engine FixEngine, filename string) (internal.Result, error)

// New creates an engine configured from the file at configurationPath.
// A missing configuration file yields the default configuration.
func New(logger *zap.Logger, configurationPath string) (*internal.Engine, error) {
	config, err := LoadConfig(configurationPath)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(logger, config, configurationPath)
}

// NewWithConfig creates an engine from an already loaded configuration.
// dependencies are files whose change invalidates the cache.
func NewWithConfig(logger *zap.Logger, config Config, dependencies ...string) (*internal.Engine, error) {
	engine, err := internal.NewEngine(logger, config.engineOptions())
	if err != nil {
		return nil, err
	}
	for _, path := range config.IgnorePaths {
		engine.IgnorePath(path)
	}

	if config.CacheDir != "" {
		var deps []string
		for _, dep := range dependencies {
			if dep != "" {
				deps = append(deps, dep)
			}
		}
		cache, err := internal.NewCache(config.CacheDir, deps...)
		if err != nil {
			return nil, err
		}
		engine.SetCache(cache)
	}
	return engine, nil
}

// Options tune ProcessPath.
type Options struct {
	// Progress receives the progress bar; nil disables it.
	Progress io.Writer
	Workers  int
	Ignore   []string
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine FixEngine,
	paths []string,
	opts Options,
	processor Processor,
) ([]internal.Result, error) {
	var allResults []internal.Result
	for _, path := range paths {
		results, err := ProcessPath(ctx, logger, engine, path, opts, processor)
		allResults = append(allResults, results...)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return allResults, err
		}
	}

	return allResults, nil
}

// ProcessPath runs processor on path, or on every PHP file below it when
// path is a directory. Files that fail are logged and skipped. On
// cancellation the results gathered so far are returned with ctx.Err().
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine FixEngine,
	path string,
	opts Options,
	processor Processor,
) ([]internal.Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !hasDesiredExtension(path) {
			return nil, nil
		}
		result, err := processor(engine, path)
		if err != nil {
			return nil, err
		}
		return []internal.Result{result}, nil
	}

	scanned, err := scanner.New(path, desiredExtensions...).Ignore(opts.Ignore...).Scan()
	if err != nil {
		return nil, fmt.Errorf("error scanning %s: %w", path, err)
	}
	files := make([]string, len(scanned))
	for i, f := range scanned {
		files[i] = f.Path
	}

	bar := newProgressBar(opts.Progress, path, len(files))

	type fileResult struct {
		index  int
		result internal.Result
		err    error
	}
	resultChan := make(chan fileResult, len(files))

	// limit the number of workers
	maxWorkers := opts.Workers
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	sem := make(chan struct{}, maxWorkers)

	dispatched := 0
	for i, filePath := range files {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
		case sem <- struct{}{}:
			dispatched++
			go func(i int, fp string) {
				defer func() { <-sem }()
				result, err := processor(engine, fp)
				if bar != nil {
					_ = bar.Add(1)
				}
				resultChan <- fileResult{index: i, result: result, err: err}
			}(i, filePath)
		}
	}

	// collect results in file order
	collected := make([]*internal.Result, len(files))
	for n := 0; n < dispatched; n++ {
		r := <-resultChan
		if r.err != nil {
			logger.Error("Error processing file", zap.String("file", files[r.index]), zap.Error(r.err))
			continue
		}
		collected[r.index] = &r.result
	}
	if bar != nil {
		_ = bar.Finish()
	}

	results := make([]internal.Result, 0, dispatched)
	for _, r := range collected {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results, ctx.Err()
}

func newProgressBar(w io.Writer, description string, total int) *progressbar.ProgressBar {
	if w == nil || total == 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func ProcessFile(engine FixEngine, filePath string) (internal.Result, error) {
	return engine.Run(filePath)
}

func ProcessSource(engine FixEngine, source []byte) (internal.Result, error) {
	return engine.RunSource(source)
}

var desiredExtensions = []string{".php"}

func hasDesiredExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, desired := range desiredExtensions {
		if ext == desired {
			return true
		}
	}
	return false
}

// WriteResult writes the fixed source of result back to its file and
// reports whether the file changed. In dry-run mode nothing is written.
func WriteResult(result internal.Result, dryRun bool) (bool, error) {
	if !result.Changed() {
		return false, nil
	}
	if result.Filename == "" {
		return false, errors.New("result has no filename")
	}
	if dryRun {
		return true, nil
	}

	info, err := os.Stat(result.Filename)
	if err != nil {
		return false, fmt.Errorf("error accessing %s: %w", result.Filename, err)
	}
	if err := os.WriteFile(result.Filename, result.Fixed, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("error writing %s: %w", result.Filename, err)
	}
	return true, nil
}
