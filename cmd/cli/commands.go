package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/bcompare-mcp/bcompare-go/internal/app"
	"github.com/bcompare-mcp/bcompare-go/internal/config"
	"github.com/bcompare-mcp/bcompare-go/internal/domain"
	"github.com/bcompare-mcp/bcompare-go/internal/fileinfo"
	"github.com/bcompare-mcp/bcompare-go/internal/observability"
	"github.com/bcompare-mcp/bcompare-go/internal/operations"
)

type globalFlags struct {
	JSON       bool
	Executable string
	Timeout    time.Duration
	LogLevel   string
}

type cli struct {
	stdout, stderr io.Writer
	code           *int
	flags          globalFlags
}

func newRootCommand(stdout, stderr io.Writer, code *int) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr, code: code}

	root := &cobra.Command{
		Use:           "bcompare-cli",
		Short:         "Run Beyond Compare comparisons, syncs and merges",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.BoolVar(&c.flags.JSON, "json", false, "print the full result as JSON")
	pf.StringVar(&c.flags.Executable, "executable", "", "Beyond Compare executable (overrides BC_MCP_EXECUTABLE)")
	pf.DurationVar(&c.flags.Timeout, "timeout", 0, "per-operation timeout (overrides BC_MCP_TIMEOUT)")
	pf.StringVar(&c.flags.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		c.compareFilesCommand(),
		c.compareFoldersCommand(),
		c.syncCommand(),
		c.reportCommand(),
		c.mergeCommand(),
		c.infoCommand(),
		c.fileInfoCommand(),
	)
	return root
}

func (c *cli) compareFilesCommand() *cobra.Command {
	var req operations.CompareFilesRequest
	cmd := &cobra.Command{
		Use:   "compare-files LEFT RIGHT",
		Short: "Compare two files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.LeftFile, req.RightFile = args[0], args[1]
			return c.runOperation(cmd.Context(), req.Operation())
		},
	}
	cmd.Flags().StringVar(&req.OutputFormat, "format", "text", "output format: text, html")
	cmd.Flags().BoolVar(&req.IgnoreCase, "ignore-case", false, "ignore case differences")
	cmd.Flags().BoolVar(&req.IgnoreWhitespace, "ignore-whitespace", false, "ignore unimportant whitespace")
	cmd.Flags().StringVar(&req.ReportPath, "report", "", "keep the html report at this path")
	return cmd
}

func (c *cli) compareFoldersCommand() *cobra.Command {
	var (
		req         operations.CompareFoldersRequest
		noRecursive bool
	)
	cmd := &cobra.Command{
		Use:   "compare-folders LEFT RIGHT",
		Short: "Compare two folders",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.LeftFolder, req.RightFolder = args[0], args[1]
			recursive := !noRecursive
			req.Recursive = &recursive
			return c.runOperation(cmd.Context(), req.Operation())
		},
	}
	cmd.Flags().BoolVar(&noRecursive, "no-recursive", false, "compare only the top level")
	cmd.Flags().StringSliceVar(&req.Excludes, "exclude", nil, "glob patterns to exclude")
	cmd.Flags().BoolVar(&req.NoDefaultExcludes, "no-default-excludes", false, "do not apply the configured default excludes")
	return cmd
}

func (c *cli) syncCommand() *cobra.Command {
	var (
		req   operations.SyncFoldersRequest
		apply bool
	)
	cmd := &cobra.Command{
		Use:   "sync SOURCE TARGET",
		Short: "Synchronize two folders (preview unless --apply)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.SourceFolder, req.TargetFolder = args[0], args[1]
			preview := !apply
			req.PreviewOnly = &preview
			return c.runOperation(cmd.Context(), req.Operation())
		},
	}
	cmd.Flags().StringVar(&req.Direction, "direction", "left-to-right", "left-to-right, right-to-left, or bidirectional")
	cmd.Flags().BoolVar(&req.DeleteOrphans, "delete-orphans", false, "delete files missing from the source side")
	cmd.Flags().BoolVar(&apply, "apply", false, "perform the sync instead of previewing it")
	return cmd
}

func (c *cli) reportCommand() *cobra.Command {
	var req operations.GenerateReportRequest
	cmd := &cobra.Command{
		Use:   "report LEFT RIGHT",
		Short: "Write a comparison report",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.LeftPath, req.RightPath = args[0], args[1]
			return c.runOperation(cmd.Context(), req.Operation())
		},
	}
	cmd.Flags().StringVar(&req.ReportType, "type", "html", "report type: html, xml, csv, text")
	cmd.Flags().StringVarP(&req.OutputFile, "output", "o", "", "report path (derived when empty)")
	return cmd
}

func (c *cli) mergeCommand() *cobra.Command {
	var req operations.MergeFilesRequest
	cmd := &cobra.Command{
		Use:   "merge LEFT RIGHT",
		Short: "Merge two files, optionally against a common base",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.LeftFile, req.RightFile = args[0], args[1]
			return c.runOperation(cmd.Context(), req.Operation())
		},
	}
	cmd.Flags().StringVar(&req.BaseFile, "base", "", "common ancestor for a three-way merge")
	cmd.Flags().StringVarP(&req.OutputFile, "output", "o", "", "merged file (printed when empty)")
	return cmd
}

func (c *cli) infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the Beyond Compare installation in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			info, err := a.Service.Info(cmd.Context())
			if err != nil {
				return err
			}
			if c.flags.JSON {
				return c.printJSON(info)
			}
			fmt.Fprintf(c.stdout, "executable: %s\nplatform:   %s\n", info.Executable, info.Platform)
			if info.Help != "" {
				fmt.Fprintf(c.stdout, "\n%s\n", info.Help)
			}
			return nil
		},
	}
}

func (c *cli) fileInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fileinfo PATH",
		Short: "Describe a file: size, type, hash and catalogue membership",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			info, err := fileinfo.Inspect(args[0], cfg.Catalog)
			if err != nil {
				return err
			}
			return c.printJSON(info)
		},
	}
}

func (c *cli) runOperation(ctx context.Context, op domain.Operation) error {
	a, err := c.app(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	res := a.Service.Run(ctx, op)
	*c.code = exitCode(res)

	if c.flags.JSON {
		return c.printJSON(res)
	}
	fmt.Fprintln(c.stdout, operations.Summarize(res))
	if res.MergedContent != "" {
		fmt.Fprint(c.stdout, res.MergedContent)
	}
	return nil
}

func (c *cli) config() (config.Config, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return config.Config{}, err
	}
	if c.flags.Executable != "" {
		cfg.Executable = c.flags.Executable
	}
	if c.flags.Timeout > 0 {
		cfg.Timeout = c.flags.Timeout
	}
	if c.flags.LogLevel != "" {
		cfg.LogLevel = c.flags.LogLevel
	}
	return cfg, nil
}

func (c *cli) app(ctx context.Context) (*app.App, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	// The CLI is quiet by default; its output is the result.
	level := cfg.LogLevel
	if c.flags.LogLevel == "" {
		level = "warn"
	}
	logger := observability.InitLogger(c.stderr, level, "text")
	return app.New(ctx, cfg, logger, "bcompare-cli", version)
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitCode maps a result onto the process exit status.
func exitCode(res domain.Result) int {
	switch {
	case res.Failure != nil || res.Outcome == nil:
		return exitFailure
	case res.Outcome.Same():
		return exitSame
	case res.Outcome.Kind == domain.OutcomeError:
		return exitFailure
	default:
		return exitDifferent
	}
}
