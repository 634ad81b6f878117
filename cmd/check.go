package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/condfix/fix"
	"github.com/gnolang/condfix/formatter"
	"github.com/gnolang/condfix/internal"
	tt "github.com/gnolang/condfix/internal/types"
)

var (
	checkJSONOutput bool
	outPath         string
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Report the rewrites that fix would apply, without writing",
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

		issues := collectIssues(results)
		if err := printIssues(cmd.OutOrStdout(), issues, checkJSONOutput, outPath); err != nil {
			return err
		}
		if len(issues) > 0 {
			return ErrIssuesFound
		}
		return nil
	},
}

func init() {
	addIgnoreFlags(checkCmd)
	checkCmd.Flags().BoolVar(&checkJSONOutput, "json", false, "Output issues in JSON format")
	checkCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
}

func collectIssues(results []internal.Result) []tt.Issue {
	var issues []tt.Issue
	for _, result := range results {
		issues = append(issues, result.Issues...)
	}
	return issues
}

func groupByFile(issues []tt.Issue) (map[string][]tt.Issue, []string) {
	issuesByFile := make(map[string][]tt.Issue)
	for _, issue := range issues {
		issuesByFile[issue.Filename] = append(issuesByFile[issue.Filename], issue)
	}

	sortedFiles := make([]string, 0, len(issuesByFile))
	for filename := range issuesByFile {
		sortedFiles = append(sortedFiles, filename)
	}
	sort.Strings(sortedFiles)
	return issuesByFile, sortedFiles
}

func printIssues(w io.Writer, issues []tt.Issue, isJSON bool, jsonOutput string) error {
	issuesByFile, sortedFiles := groupByFile(issues)

	if !isJSON {
		for _, filename := range sortedFiles {
			sourceCode, err := internal.ReadSourceCode(filename)
			if err != nil {
				logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
				continue
			}
			fmt.Fprint(w, formatter.GenerateFormattedIssue(issuesByFile[filename], sourceCode))
		}
		return nil
	}

	d, err := json.MarshalIndent(issuesByFile, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling issues to JSON: %w", err)
	}
	if jsonOutput == "" {
		_, err = fmt.Fprintln(w, string(d))
		return err
	}
	if err := os.WriteFile(jsonOutput, d, 0o644); err != nil {
		return fmt.Errorf("error writing JSON output file: %w", err)
	}
	return nil
}
