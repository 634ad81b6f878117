package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/condfix/formatter"
	"github.com/gnolang/condfix/internal"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Report rewrites for PHP files as they are saved",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"."}
		}

		engine, _, err := newEngine()
		if err != nil {
			return fmt.Errorf("failed to initialize engine: %w", err)
		}

		out := cmd.OutOrStdout()
		if err := engine.Watch(args, func(result internal.Result, err error) {
			if err != nil {
				return
			}
			printWatchResult(out, result)
		}); err != nil {
			return err
		}
		if err := engine.StartWatching(); err != nil {
			return err
		}
		defer func() {
			if err := engine.StopWatching(); err != nil {
				logger.Error("error stopping watcher", zap.Error(err))
			}
		}()

		fmt.Fprintf(out, "Watching %v, press Ctrl+C to stop\n", args)

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sig)

		select {
		case <-sig:
		case <-cmd.Context().Done():
		}
		return nil
	},
}

func printWatchResult(w io.Writer, result internal.Result) {
	if len(result.Issues) == 0 {
		fmt.Fprintf(w, "%s: clean\n", result.Filename)
		return
	}
	source := internal.NewSourceCode(result.Original)
	fmt.Fprint(w, formatter.GenerateFormattedIssue(result.Issues, source))
}
