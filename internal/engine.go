package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/VKCOM/php-parser/pkg/version"
	"go.uber.org/zap"

	"github.com/gnolang/condfix/internal/classify"
	"github.com/gnolang/condfix/internal/lexer"
	"github.com/gnolang/condfix/internal/nolint"
	"github.com/gnolang/condfix/internal/rewrite"
	"github.com/gnolang/condfix/internal/syntax"
	"github.com/gnolang/condfix/internal/trie"
	tt "github.com/gnolang/condfix/internal/types"
)

// Options configures an Engine.
type Options struct {
	Rules           map[string]tt.ConfigRule
	PHPVersion      string
	Functions       []string
	StrictFunctions []string
	StrictPattern   string
}

// Engine manages the fixing process.
type Engine struct {
	logger       *zap.Logger
	rules        map[string]tt.ConfigRule
	ignoredRules map[string]bool
	ignoredPaths []string
	ignoredDirs  *trie.PathSet
	classifier   *classify.Classifier
	phpVersion   *version.Version
	cache        *Cache

	watch watchState
}

// Result is the outcome of running the engine on one source.
type Result struct {
	Filename string
	Original []byte
	Fixed    []byte
	Issues   []tt.Issue
}

// Changed reports whether any fixer rewrote the source.
func (r Result) Changed() bool {
	return string(r.Original) != string(r.Fixed)
}

// Define the fixerConstructor type
type fixerConstructor func(opts ...rewrite.Option) (rewrite.Fixer, error)

// Create a map to hold the mappings of rule names to their constructors
var allFixerConstructors = map[string]fixerConstructor{
	rewrite.ExplicitConditionName: func(opts ...rewrite.Option) (rewrite.Fixer, error) {
		return rewrite.NewExplicitCondition(opts...)
	},
	rewrite.NullStrictName: func(opts ...rewrite.Option) (rewrite.Fixer, error) {
		return rewrite.NewNullStrict(opts...)
	},
}

// fixerOrder is the order in which fixers run over a file. null-strict
// runs first so that explicit-condition sees canonical null checks.
var fixerOrder = []string{rewrite.NullStrictName, rewrite.ExplicitConditionName}

var ruleMessages = map[string]string{
	rewrite.ExplicitConditionName: "condition should be compared explicitly against a boolean",
	rewrite.NullStrictName:        "null check should be a strict comparison against null",
}

// RuleNames returns the names of every known rule, in execution order.
func RuleNames() []string {
	return append([]string(nil), fixerOrder...)
}

// DefaultRules returns the configuration used when none is given.
func DefaultRules() map[string]tt.ConfigRule {
	rules := make(map[string]tt.ConfigRule, len(allFixerConstructors))
	for name := range allFixerConstructors {
		rules[name] = tt.ConfigRule{Severity: tt.SeverityWarning}
	}
	return rules
}

// NewEngine creates a new fix engine.
func NewEngine(logger *zap.Logger, opts Options) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	classifierOpts := []classify.Option{classify.WithStrictFunctions(opts.StrictFunctions...)}
	if len(opts.Functions) > 0 {
		classifierOpts = append(classifierOpts, classify.WithFunctions(classify.BuiltinFunctions().With(opts.Functions...)))
	}
	if opts.StrictPattern != "" {
		classifierOpts = append(classifierOpts, classify.WithStrictPattern(opts.StrictPattern))
	}
	classifier, err := classify.New(classifierOpts...)
	if err != nil {
		return nil, err
	}

	phpVersion, err := syntax.ParseVersion(opts.PHPVersion)
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		logger:     logger,
		classifier: classifier,
		phpVersion: phpVersion,
	}
	if err := engine.applyRules(opts.Rules); err != nil {
		return nil, err
	}
	return engine, nil
}

func (e *Engine) applyRules(rules map[string]tt.ConfigRule) error {
	e.rules = DefaultRules()
	for key, rule := range rules {
		if _, ok := allFixerConstructors[key]; !ok {
			e.logger.Warn("unknown rule in configuration", zap.String("rule", key))
			continue
		}
		e.rules[key] = rule
		if rule.Severity == tt.SeverityOff {
			e.IgnoreRule(key)
		}
	}
	return nil
}

func (e *Engine) IgnoreRule(rule string) {
	if e.ignoredRules == nil {
		e.ignoredRules = make(map[string]bool)
	}
	e.ignoredRules[rule] = true
}

// IgnorePath excludes files matching a glob pattern or lying under a directory.
func (e *Engine) IgnorePath(path string) {
	if strings.ContainsAny(path, "*?[") {
		e.ignoredPaths = append(e.ignoredPaths, filepath.Clean(path))
		return
	}
	if e.ignoredDirs == nil {
		e.ignoredDirs = trie.NewPathSet()
	}
	e.ignoredDirs.Add(path)
}

// SetCache enables caching of files found to need no fix.
func (e *Engine) SetCache(c *Cache) {
	e.cache = c
}

// cacheKey identifies the enabled rules, their settings and the PHP version.
func (e *Engine) cacheKey() string {
	var rules []string
	for _, name := range fixerOrder {
		if !e.ignoredRules[name] {
			rules = append(rules, fmt.Sprintf("%s%+v", name, e.rules[name]))
		}
	}
	return ruleKey(rules, fmt.Sprintf("%d.%d", e.phpVersion.Major, e.phpVersion.Minor))
}

func (e *Engine) isIgnoredPath(filename string) bool {
	if e.ignoredDirs.Contains(filename) {
		return true
	}
	clean := filepath.Clean(filename)
	for _, pattern := range e.ignoredPaths {
		if ok, _ := filepath.Match(pattern, clean); ok {
			return true
		}
	}
	return false
}

// Run applies all enabled fixers to the given file. The file is not written.
func (e *Engine) Run(filename string) (Result, error) {
	if e.isIgnoredPath(filename) {
		e.logger.Debug("skipping ignored path", zap.String("file", filename))
		return Result{Filename: filename}, nil
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return Result{Filename: filename}, fmt.Errorf("error reading file: %w", err)
	}

	if e.cache != nil {
		if e.cache.IsClean(filename, e.cacheKey()) {
			e.logger.Debug("skipping clean file", zap.String("file", filename))
			return Result{Filename: filename, Original: content, Fixed: content}, nil
		}
	}

	result, err := e.RunSource(content)
	result.Filename = filename
	for i := range result.Issues {
		result.Issues[i].Filename = filename
		result.Issues[i].Start.Filename = filename
		result.Issues[i].End.Filename = filename
	}
	if err != nil {
		return result, fmt.Errorf("%s: %w", filename, err)
	}

	if e.cache != nil {
		if result.Changed() {
			e.cache.Forget(filename)
		} else if err := e.cache.MarkClean(filename, e.cacheKey()); err != nil {
			e.logger.Warn("failed to update cache", zap.String("file", filename), zap.Error(err))
		}
	}
	return result, nil
}

// RunSource applies all enabled fixers to source. On error the returned
// result carries the original source unchanged.
func (e *Engine) RunSource(source []byte) (Result, error) {
	unchanged := Result{Original: source, Fixed: source}

	buf, err := lexer.Tokenize(string(source))
	if err != nil {
		return unchanged, fmt.Errorf("error tokenizing source: %w", err)
	}

	nolintMgr := nolint.ParseComments(buf)
	skip := func(rule string, line int) bool {
		return nolintMgr.IsNolint(line, rule)
	}

	var issues []tt.Issue
	for _, name := range fixerOrder {
		if e.ignoredRules[name] {
			continue
		}
		fixer, err := e.newFixer(name, skip)
		if err != nil {
			return unchanged, err
		}

		var edits []rewrite.Edit
		buf, edits, err = fixer.Fix(buf)
		if err != nil {
			return unchanged, fmt.Errorf("%s: %w", name, err)
		}
		issues = append(issues, e.issuesFromEdits(name, edits)...)
	}

	fixed := []byte(lexer.Render(buf))
	if string(fixed) != string(source) {
		if err := e.validate(source, fixed); err != nil {
			return unchanged, err
		}
	}

	return Result{Original: source, Fixed: fixed, Issues: issues}, nil
}

func (e *Engine) newFixer(name string, skip func(string, int) bool) (rewrite.Fixer, error) {
	construct, ok := allFixerConstructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown rule %q", name)
	}

	rule := e.rules[name]
	opts := []rewrite.Option{
		rewrite.WithLogger(e.logger.With(zap.String("rule", name))),
		rewrite.WithClassifier(e.classifier),
		rewrite.WithSkip(skip),
		rewrite.WithAssignments(rule.Assignments),
	}
	if rule.MaxDepth > 0 {
		opts = append(opts, rewrite.WithMaxDepth(rule.MaxDepth))
	}
	if rule.Predicate != "" {
		opts = append(opts, rewrite.WithPredicate(rule.Predicate))
	}
	return construct(opts...)
}

// validate rejects a rewrite that breaks source which parsed before.
func (e *Engine) validate(original, fixed []byte) error {
	if err := syntax.Validate(original, e.phpVersion); err != nil {
		e.logger.Debug("original source does not parse, skipping validation", zap.Error(err))
		return nil
	}
	if err := syntax.Validate(fixed, e.phpVersion); err != nil {
		return fmt.Errorf("rewrite produced invalid source: %w", err)
	}
	return nil
}

func (e *Engine) issuesFromEdits(rule string, edits []rewrite.Edit) []tt.Issue {
	issues := make([]tt.Issue, 0, len(edits))
	for _, edit := range edits {
		endLine, endCol := endPosition(edit.Line, edit.Col, edit.Before)
		issues = append(issues, tt.Issue{
			Rule:       rule,
			Category:   "style",
			Message:    ruleMessages[rule],
			Suggestion: edit.After,
			Note:       "replaces: " + strings.TrimSpace(edit.Before),
			Start:      tt.Position{Line: edit.Line, Column: edit.Col},
			End:        tt.Position{Line: endLine, Column: endCol},
			Severity:   e.rules[rule].Severity,
		})
	}
	return issues
}

// endPosition returns the position of the last byte of text when text
// starts at line:col. Columns count bytes, as the lexer does.
func endPosition(line, col int, text string) (int, int) {
	endLine, endCol := line, col
	for i := 0; i < len(text); i++ {
		endLine, endCol = line, col
		if text[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return endLine, endCol
}
