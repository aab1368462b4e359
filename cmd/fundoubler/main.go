package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/AATruttse/fundoubler/internal/cleanup"
	"github.com/AATruttse/fundoubler/internal/config"
	"github.com/AATruttse/fundoubler/internal/core"
	"github.com/AATruttse/fundoubler/internal/report"
	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorOrange = "\033[38;5;208m"
	colorGray   = "\033[38;5;245m"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fundoubler",
		Short: "Fundoubler - duplicate file finder",
		Long: `Find groups of duplicate files by name, size, timestamps or content
and optionally delete the redundant copies.`,
		Version:       core.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			printMainBanner(cmd.OutOrStdout())
			_ = cmd.Help()
		},
	}

	// Disable built-in help command
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.AddCommand(scanCmd())

	return rootCmd
}

// printMainBanner prints the main banner
func printMainBanner(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%sFUNDOUBLER%s\n", colorOrange, colorReset)
	fmt.Fprintf(w, "%sDuplicate File Finder v%s%s\n", colorGray, core.Version, colorReset)
	fmt.Fprintln(w)
}

// scanCmd creates the scan command
func scanCmd() *cobra.Command {
	var (
		defaultsFile string
		progress     bool
	)

	cmd := &cobra.Command{
		Use:   "scan [path] [output-file]",
		Short: "Find duplicate files under path",
		Long: `Recursively walk path, group files that are equal by the enabled criteria
and print every group. With --delete the redundant copies are removed,
interactively or, with --force-delete, keeping the first file of each group.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(defaultsFile)
			if err != nil {
				return err
			}

			if err := applyFlags(cmd.Flags(), cfg); err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.Path = args[0]
			}
			if len(args) > 1 {
				cfg.OutputFile = args[1]
			}

			return runScan(cmd, cfg, progress)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&defaultsFile, "defaults-file", "", "YAML defaults file (default: "+config.DefaultConfigFile+" if present)")
	flags.BoolVar(&progress, "progress", false, "Show a progress spinner on stderr")

	// Equality criteria
	flags.Bool("name", false, "Compare files by base name")
	flags.Bool("size", false, "Compare files by size")
	flags.Bool("date-created", false, "Compare files by creation time")
	flags.Bool("date-modified", false, "Compare files by modification time")
	flags.Bool("hash", false, "Compare files by MD5 and SHA-512 digests")
	flags.Bool("hash-md5", false, "Compare files by MD5 digest")
	flags.Bool("hash-sha512", false, "Compare files by SHA-512 digest")
	flags.Bool("content", false, "Compare files by content (SHA-512)")

	// Filters
	flags.String("min-size", "", "Skip files smaller than this (e.g. 10K, 1M)")
	flags.String("max-size", "", "Skip files larger than this")
	flags.String("min-createdate", "", "Skip files created before this date")
	flags.String("max-createdate", "", "Skip files created after this date")
	flags.String("min-moddate", "", "Skip files modified before this date")
	flags.String("max-moddate", "", "Skip files modified after this date")
	flags.String("name-filter", "", "Only consider files whose base name matches this regexp")

	// Results
	flags.Int("first-n", 0, "Report only the first N groups, 0 = all (config default 100)")
	flags.StringSlice("sort", nil, "Sort fields in priority order: name, size, created, modified with optional :desc")
	for _, f := range sortFlags {
		flags.Bool(f.flag, false, f.usage)
	}

	// Deletion
	flags.Bool("delete", false, "Delete duplicates, asking for every file")
	flags.Bool("force-delete", false, "With --delete, keep the first file of each group and delete the rest without asking")
	flags.Bool("silent", false, "Print nothing except interactive prompts")
	flags.Bool("debug", false, "Dry run: log deletions without removing anything")

	// Diagnostics
	flags.CountP("verbose", "v", "Verbose output, repeat for more")
	flags.Bool("debug-config", false, "Print the configuration before running")
	flags.Bool("hide-config", false, "Never print the configuration")
	flags.Bool("show-options-only", false, "Print the configuration and exit")

	// Scan, report and log settings
	flags.Int("workers", 1, "Number of hashing workers, 0 = CPU cores")
	flags.StringSlice("exclude", nil, "Gitignore-style patterns to exclude (comma-separated)")
	flags.StringP("report", "r", "", "Report file format: text, json, yaml, md")
	flags.StringP("output", "o", "", "Report file path, "+config.DateTemplate+" is replaced by the date")
	flags.String("log-file", "", "Log file path, "+config.DateTemplate+" is replaced by the date")
	flags.Int("log-max-size", 0, "Log file size in MB before rotation")
	flags.Int("log-max-backups", 0, "Rotated log files to keep")

	return cmd
}

// sortFlags are the boolean sort switches, appended in this order after
// any --sort entries
var sortFlags = []struct {
	flag  string
	entry string
	usage string
}{
	{"sort-name", "name", "Sort by name"},
	{"sort-name-desc", "name:desc", "Sort by name, descending"},
	{"sort-size", "size", "Sort by size"},
	{"sort-size-desc", "size:desc", "Sort by size, descending"},
	{"sort-create", "created", "Sort by creation time"},
	{"sort-create-desc", "created:desc", "Sort by creation time, descending"},
	{"sort-mod", "modified", "Sort by modification time"},
	{"sort-mod-desc", "modified:desc", "Sort by modification time, descending"},
}

// applyFlags overrides config fields for the flags the user actually set
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	bools := map[string]*bool{
		"name":              &cfg.Name,
		"size":              &cfg.Size,
		"date-created":      &cfg.DateCreated,
		"date-modified":     &cfg.DateModified,
		"hash":              &cfg.Hash,
		"hash-md5":          &cfg.HashMD5,
		"hash-sha512":       &cfg.HashSHA512,
		"content":           &cfg.Content,
		"delete":            &cfg.Delete,
		"force-delete":      &cfg.ForceDelete,
		"silent":            &cfg.SilentMode,
		"debug":             &cfg.Debug,
		"debug-config":      &cfg.DebugConfig,
		"hide-config":       &cfg.HideConfig,
		"show-options-only": &cfg.ShowOptionsOnly,
	}
	strs := map[string]*string{
		"min-size":       &cfg.MinSize,
		"max-size":       &cfg.MaxSize,
		"min-createdate": &cfg.MinCreateDate,
		"max-createdate": &cfg.MaxCreateDate,
		"min-moddate":    &cfg.MinModDate,
		"max-moddate":    &cfg.MaxModDate,
		"name-filter":    &cfg.NameFilter,
		"report":         &cfg.ReportFormat,
		"output":         &cfg.OutputFile,
		"log-file":       &cfg.LogFile,
	}
	ints := map[string]*int{
		"first-n":         &cfg.FirstN,
		"workers":         &cfg.Workers,
		"verbose":         &cfg.Verbose,
		"log-max-size":    &cfg.LogMaxSizeMB,
		"log-max-backups": &cfg.LogMaxBackups,
	}
	slices := map[string]*[]string{
		"sort":    &cfg.Sort,
		"exclude": &cfg.Exclude,
	}

	var err error
	for name, target := range bools {
		if flags.Changed(name) {
			if *target, err = flags.GetBool(name); err != nil {
				return err
			}
		}
	}
	for name, target := range strs {
		if flags.Changed(name) {
			if *target, err = flags.GetString(name); err != nil {
				return err
			}
		}
	}
	for name, target := range ints {
		if !flags.Changed(name) {
			continue
		}
		if name == "verbose" {
			*target, err = flags.GetCount(name)
		} else {
			*target, err = flags.GetInt(name)
		}
		if err != nil {
			return err
		}
	}
	for name, target := range slices {
		if flags.Changed(name) {
			if *target, err = flags.GetStringSlice(name); err != nil {
				return err
			}
		}
	}

	for _, f := range sortFlags {
		if !flags.Changed(f.flag) {
			continue
		}
		on, err := flags.GetBool(f.flag)
		if err != nil {
			return err
		}
		if on {
			cfg.Sort = append(cfg.Sort, f.entry)
		}
	}

	return nil
}

// runScan runs one complete pass: resolve, scan, print, clean up, report
func runScan(cmd *cobra.Command, cfg *config.Config, progress bool) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	settings, err := cfg.Resolve()
	if err != nil {
		return err
	}

	if (cfg.DebugConfig || cfg.ShowOptionsOnly) && !cfg.HideConfig {
		if err := printConfig(stdout, cfg); err != nil {
			return err
		}
	}
	if cfg.ShowOptionsOnly {
		return nil
	}

	runID := uuid.NewString()
	logger, closeLog, err := newLogger(cfg, settings.Verbose, runID, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	fs := afero.NewOsFs()
	generator, err := report.NewGenerator(cfg, fs, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scanner := core.NewScanner(settings, fs, logger)

	var bar *progressbar.ProgressBar
	if progress && !settings.Silent {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionSetDescription("Scanning files..."),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		)
	}
	scanner.SetProgressCallback(func(phase string, current, total int, message string) {
		if bar != nil {
			_ = bar.Add(1)
		}
		if settings.Verbose > 0 {
			fmt.Fprintln(stdout, message)
		}
	})

	results, err := scanner.Scan(ctx, settings.Root)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		logger.Error("Scan failed", zap.Error(err))
		return err
	}
	results.RunID = runID

	generator.PrintGroups(stdout, results)

	var decider cleanup.Decider
	if settings.Delete && !settings.ForceDelete {
		decider = cleanup.NewTerminalDecider(cmd.InOrStdin(), stdout)
	}
	summary, cleanupErr := cleanup.NewExecutor(settings, fs, decider, stdout, logger).Execute(ctx, results.Groups)
	if cleanupErr != nil && !errors.Is(cleanupErr, context.Canceled) {
		logger.Error("Cleanup failed", zap.Error(cleanupErr))
	}

	results.ReportPath, err = generator.Generate(results, summary)
	if err != nil {
		logger.Error("Report failed", zap.Error(err))
		return err
	}

	if settings.Verbose > 0 {
		generator.PrintSummary(stderr, results, summary)
	}
	if results.ReportPath != "" && !settings.Silent {
		fmt.Fprintf(stderr, "  %sReport:%s    %s%s%s\n", colorGray, colorReset, colorOrange, results.ReportPath, colorReset)
	}

	return cleanupErr
}

// printConfig dumps the effective configuration as YAML
func printConfig(w io.Writer, cfg *config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	fmt.Fprintln(w, "# fundoubler configuration")
	_, err = w.Write(data)
	return err
}
