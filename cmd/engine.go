package cmd

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/condfix/fix"
	"github.com/gnolang/condfix/internal"
)

var (
	ignoreRules string
	ignorePaths string
)

func addIgnoreFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ignoreRules, "ignore", "",
		"Comma-separated list of rules to ignore ("+strings.Join(internal.RuleNames(), ", ")+")")
	cmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of paths to ignore")
}

// newEngine builds the engine from the configuration file and the ignore
// flags.
func newEngine() (*internal.Engine, fix.Config, error) {
	config, err := fix.LoadConfig(cfgFile)
	if err != nil {
		return nil, config, err
	}
	engine, err := fix.NewWithConfig(logger, config, cfgFile)
	if err != nil {
		return nil, config, err
	}

	for _, rule := range splitList(ignoreRules) {
		if !slices.Contains(internal.RuleNames(), rule) {
			logger.Warn("ignoring unknown rule", zap.String("rule", rule))
		}
		engine.IgnoreRule(rule)
	}
	for _, path := range splitList(ignorePaths) {
		engine.IgnorePath(path)
	}
	return engine, config, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func processOptions(cmd *cobra.Command) fix.Options {
	opts := fix.Options{Ignore: splitList(ignorePaths)}
	if verbose {
		opts.Progress = cmd.ErrOrStderr()
	}
	return opts
}
