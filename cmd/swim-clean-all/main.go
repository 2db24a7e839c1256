package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

const (
	exitOK          = 0
	exitError       = 1
	exitConfigError = 2
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// execute runs the command line and maps the result to an exit status.
func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCommand()
	cmd.SetArgs(stripPluginArg(args))
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return exitConfigError
	}
	return exitError
}

// stripPluginArg drops the subcommand name swim passes through when the tool
// runs as "swim clean-all". A directory literally named clean-all cannot be
// given as the first argument because of this.
func stripPluginArg(args []string) []string {
	if len(args) > 0 && args[0] == "clean-all" {
		return args[1:]
	}
	return args
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}
	cmd := &cobra.Command{
		Use:   "swim-clean-all [search-root]",
		Short: "Recursively clean all swim projects under a directory",
		Long: `Recursively clean all swim projects in a given directory.

Every directory holding a swim.toml is a project; its build directory is
removed. Directories matching --skip (or the skip list of the config file)
are not searched. Symbolic links are followed only while they stay inside
the search root.

Skip entries that are absolute or start with ~, ./ or ../ are paths: the
directory and everything below it is left out. Bare names such as "vendor"
or "old-*" match a directory name at any depth. Other relative entries such
as "archive/**/legacy" are matched against the path below the search root.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.root = args[0]
			}
			opts.maxDepthSet = cmd.Flags().Changed("max-depth")
			return runRoot(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVar(&opts.skip, "skip", nil, "directory to skip when traversing; repeat for more")
	flags.IntVar(&opts.maxDepth, "max-depth", DefaultMaxDepth, "maximum depth search limit")
	flags.StringVar(&opts.configPath, "config", "", "manually specify a config path, e.g., foo.toml")
	flags.BoolVar(&opts.ignoreConfig, "ignore-config", false, "do not load and extend the config file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "print debugging information")
	flags.BoolVarP(&opts.dryRun, "dry-run", "n", false, "report what would be cleaned without removing anything")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "ask before cleaning each project")
	flags.BoolVar(&opts.plain, "plain", false, "disable the progress display")
	return cmd
}

func runRoot(cmd *cobra.Command, opts *cliOptions) error {
	log := newLogger(cmd.ErrOrStderr(), opts.verbose)

	var file *fileConfig
	if !opts.ignoreConfig {
		var err error
		file, err = loadFileConfig(configFilePath(opts.configPath, log), log)
		if err != nil {
			return err
		}
	}

	cfg, err := buildSearchConfig(*opts, file)
	if err != nil {
		return err
	}
	log.Infof("Searching in: %s", cfg.Root)
	log.Infof("Skipping directories: %s", strings.Join(cfg.Skip, ", "))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runOpts := runOptions{DryRun: opts.dryRun, Interactive: opts.interactive}
	var report Report
	if useTUI(cmd.OutOrStdout(), opts.plain, opts.verbose) {
		report, err = runWithTUI(ctx, cfg, runOpts, cmd.InOrStdin(), cmd.OutOrStdout(), log)
	} else {
		sink := newPlainProgress(cmd.OutOrStdout(), cmd.InOrStdin(), log, opts.verbose)
		report, err = run(ctx, cfg, runOpts, sink, log)
	}

	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return err
	}
	if renderErr := report.Render(cmd.OutOrStdout()); renderErr != nil && err == nil {
		err = renderErr
	}
	return err
}
