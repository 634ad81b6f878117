package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/condfix/fix"
	"github.com/gnolang/condfix/formatter"
	"github.com/gnolang/condfix/internal"
	"github.com/gnolang/condfix/internal/git"
)

var (
	dryRun   bool
	showDiff bool
	commit   bool

	// commitRunner runs git for --commit; nil uses the git binary.
	commitRunner git.Runner
)

var fixCmd = &cobra.Command{
	Use:   "fix [paths...]",
	Short: "Rewrite conditions and null checks in place",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		engine, _, err := newEngine()
		if err != nil {
			return fmt.Errorf("failed to initialize engine: %w", err)
		}

		results, err := fix.ProcessFiles(ctx, logger, engine, args, processOptions(cmd), fix.ProcessFile)
		if err != nil {
			return err
		}
		return runAutoFix(ctx, cmd, results)
	},
}

func init() {
	addIgnoreFlags(fixCmd)
	fixCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show fixes without applying them")
	fixCmd.Flags().BoolVar(&showDiff, "diff", false, "Print a unified diff of every fixed file")
	fixCmd.Flags().BoolVar(&commit, "commit", false, "Commit every fixed file with git")
}

func runAutoFix(ctx context.Context, cmd *cobra.Command, results []internal.Result) error {
	out := cmd.OutOrStdout()

	var committer *git.Committer
	if commit {
		committer = git.New(".", dryRun, logger)
		if commitRunner != nil {
			committer.WithRunner(commitRunner)
		}
	}

	fixed := 0
	for _, result := range results {
		changed, err := fix.WriteResult(result, dryRun)
		if err != nil {
			logger.Error("error writing file", zap.String("file", result.Filename), zap.Error(err))
			continue
		}
		if !changed {
			continue
		}
		fixed++

		if showDiff {
			diff, err := formatter.UnifiedDiff(result)
			if err != nil {
				logger.Error("error building diff", zap.String("file", result.Filename), zap.Error(err))
			} else {
				fmt.Fprint(out, formatter.ColorizeDiff(diff))
			}
		}

		if committer != nil {
			if err := commitResult(ctx, committer, result); err != nil {
				return err
			}
		}
	}

	verb := "Fixed"
	if dryRun {
		verb = "Would fix"
	}
	fmt.Fprintf(out, "%s %d file(s)\n", verb, fixed)
	return nil
}

func commitResult(ctx context.Context, committer *git.Committer, result internal.Result) error {
	var rules []string
	seen := make(map[string]bool)
	for _, issue := range result.Issues {
		if !seen[issue.Rule] {
			seen[issue.Rule] = true
			rules = append(rules, issue.Rule)
		}
	}

	file, err := filepath.Abs(result.Filename)
	if err != nil {
		return err
	}
	return committer.Commit(ctx, file, strings.Join(rules, ", "))
}
