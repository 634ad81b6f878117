// Package git commits fixed files, one commit per file and rule.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Runner executes a git command in dir and returns its combined output.
type Runner func(ctx context.Context, dir string, args ...string) ([]byte, error)

// ExecRunner runs the git binary found in PATH.
func ExecRunner(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return out.Bytes(), fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(out.String()))
	}
	return out.Bytes(), nil
}

// Committer stages and commits fixed files in a working copy.
type Committer struct {
	Dir    string
	DryRun bool

	run    Runner
	logger *zap.Logger
}

func New(dir string, dryRun bool, logger *zap.Logger) *Committer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Committer{Dir: dir, DryRun: dryRun, run: ExecRunner, logger: logger}
}

// WithRunner replaces the command runner.
func (c *Committer) WithRunner(run Runner) *Committer {
	c.run = run
	return c
}

// Message returns the commit message for a rule: "apply " followed by the
// rule name with dashes and underscores turned into spaces.
func Message(rule string) string {
	words := strings.NewReplacer("-", " ", "_", " ").Replace(rule)
	return "apply " + words
}

// Commit stages file and commits it alone with the message of rule.
func (c *Committer) Commit(ctx context.Context, file, rule string) error {
	msg := Message(rule)
	if c.DryRun {
		c.logger.Info("would commit", zap.String("file", file), zap.String("message", msg))
		return nil
	}

	if _, err := c.run(ctx, c.Dir, "add", "--", file); err != nil {
		return fmt.Errorf("staging %s: %w", file, err)
	}
	if _, err := c.run(ctx, c.Dir, "commit", "-m", msg, "--", file); err != nil {
		return fmt.Errorf("committing %s: %w", file, err)
	}
	c.logger.Debug("committed", zap.String("file", file), zap.String("message", msg))
	return nil
}
