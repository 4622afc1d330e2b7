package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/lantern/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "lantern: %v\n", err)
		return 1
	}
	return 0
}

// newRootCmd builds the command tree. Without a subcommand lantern starts the
// interactive UI.
func newRootCmd(out io.Writer) *cobra.Command {
	var opts app.Options

	root := &cobra.Command{
		Use:   "lantern",
		Short: "Terminal client for a policy research service",
		Long: `lantern sends research questions to an analysis service and shows the
answer together with the sources it was drawn from.

Run without arguments to start the interactive interface.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), opts)
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "config file path (default ~/.config/lantern/config.toml)")
	flags.StringVar(&opts.PrefsPath, "prefs", "", "preferences file path (default ~/.config/lantern/prefs.toml)")
	flags.StringVar(&opts.BaseURL, "base-url", "", "analysis service address, overrides api_base")
	flags.DurationVar(&opts.Timeout, "timeout", 0, "request timeout, overrides request_timeout")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newRunCmd(&opts), newHistoryCmd(&opts))
	return root
}

func newRunCmd(opts *app.Options) *cobra.Command {
	var (
		once     app.OnceOptions
		noSearch bool
		demo     bool
	)

	cmd := &cobra.Command{
		Use:   "run [query...]",
		Short: "Ask a single question and print the answer as markdown",
		Example: `  lantern run "current federal PFAS drinking water limits"
  lantern run --no-search --max-results 5 --save brief.md water reuse permits`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			once.Query = strings.Join(args, " ")
			if cmd.Flags().Changed("no-search") {
				once.ExcludeWebSearch = &noSearch
			}
			if cmd.Flags().Changed("demo") {
				once.DemoMode = &demo
			}
			return app.RunOnce(cmd.Context(), *opts, once, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&once.MaxResults, "max-results", 0, "number of web results to use (1-10)")
	cmd.Flags().BoolVar(&noSearch, "no-search", false, "skip web search")
	cmd.Flags().BoolVar(&demo, "demo", false, "ask the service for its canned demo answer")
	cmd.Flags().StringVar(&once.SavePath, "save", "", "also write the markdown answer to this file")
	return cmd
}

func newHistoryCmd(opts *app.Options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}
			return app.History(*opts, limit, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of entries to show")
	return cmd
}
