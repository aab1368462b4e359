package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/AATruttse/fundoubler/internal/config"
	"github.com/AATruttse/fundoubler/pkg/models"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorOrange = "\033[38;5;208m"
	colorGray   = "\033[38;5;245m"
)

// FormatDuration formats duration to a human-readable string with max 2 decimal places
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		// Milliseconds
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	} else if d < time.Minute {
		// Seconds
		return fmt.Sprintf("%.2fs", d.Seconds())
	} else if d < time.Hour {
		// Minutes and seconds
		mins := int(d.Minutes())
		secs := d.Seconds() - float64(mins*60)
		return fmt.Sprintf("%dm%.2fs", mins, secs)
	}
	// Hours, minutes and seconds
	hours := int(d.Hours())
	mins := int(d.Minutes()) - hours*60
	secs := d.Seconds() - float64(hours*3600) - float64(mins*60)
	return fmt.Sprintf("%dh%dm%.2fs", hours, mins, secs)
}

// FormatBytes renders a byte count with a binary unit
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// Generator renders duplicate groups to the console and to report files
type Generator struct {
	config *config.Config
	fs     afero.Fs
	logger *zap.Logger
}

// NewGenerator creates a new report generator
func NewGenerator(cfg *config.Config, fs afero.Fs, logger *zap.Logger) (*Generator, error) {
	switch normalizeFormat(cfg.ReportFormat) {
	case "text", "json", "yaml", "markdown":
	default:
		return nil, fmt.Errorf("unknown report format: %s", cfg.ReportFormat)
	}

	return &Generator{
		config: cfg,
		fs:     fs,
		logger: logger,
	}, nil
}

func normalizeFormat(format string) string {
	switch strings.ToLower(format) {
	case "", "txt", "text":
		return "text"
	case "json":
		return "json"
	case "yaml", "yml":
		return "yaml"
	case "md", "markdown":
		return "markdown"
	}
	return format
}

// PrintGroups writes every group header followed by its members indented
// by four spaces. Nothing is written in silent mode.
func (g *Generator) PrintGroups(w io.Writer, results *models.ScanResults) {
	if g.config.SilentMode {
		return
	}
	writeGroups(w, results.Groups)
}

func writeGroups(w io.Writer, groups []*models.Group) {
	for _, group := range groups {
		fmt.Fprintln(w, group.Header())
		for _, f := range group.Files {
			fmt.Fprintf(w, "    %s\n", f.Path)
		}
	}
}

// PrintSummary prints run statistics with colors
func (g *Generator) PrintSummary(w io.Writer, results *models.ScanResults, cleanup *models.CleanupSummary) {
	stats := results.Stats

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s%sSCAN COMPLETE%s\n", colorBold, colorOrange, colorReset)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %sPath:%s        %s\n", colorGray, colorReset, results.ScanPath)
	fmt.Fprintf(w, "  %sFiles:%s       %d\n", colorGray, colorReset, stats.TotalFiles)
	fmt.Fprintf(w, "  %sFiltered:%s    %d\n", colorGray, colorReset, stats.FilteredOut)
	fmt.Fprintf(w, "  %sHashed:%s      %d\n", colorGray, colorReset, stats.HashedFiles)
	if stats.ReadErrors > 0 {
		fmt.Fprintf(w, "  %sErrors:%s      %s%d%s\n", colorGray, colorReset, colorRed, stats.ReadErrors, colorReset)
	}
	fmt.Fprintf(w, "  %sDuration:%s    %s\n", colorGray, colorReset, FormatDuration(results.Duration))
	fmt.Fprintln(w)

	if stats.TotalGroups == 0 {
		fmt.Fprintf(w, "  %s%s✓ No duplicates found%s\n", colorBold, colorGreen, colorReset)
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "  %s%sDUPLICATE GROUPS: %d%s (reported %d)\n", colorBold, colorYellow, stats.TotalGroups, colorReset, stats.ReportedGroups)
	fmt.Fprintf(w, "  %sRedundant:%s   %d files, %s\n", colorGray, colorReset, stats.DuplicateFiles, FormatBytes(stats.ReclaimableSize))

	if cleanup != nil && len(cleanup.Groups) > 0 {
		label := "Deleted:"
		if cleanup.DryRun {
			label = "Dry run:"
		}
		fmt.Fprintf(w, "  %s%s%s    %d deleted, %d kept, %d failed, %s freed\n",
			colorGray, label, colorReset, cleanup.Deleted, cleanup.Kept, cleanup.Failed, FormatBytes(cleanup.FreedBytes))
	}
	fmt.Fprintln(w)
}

// Generate writes the report file when an output file is configured and
// returns its absolute path
func (g *Generator) Generate(results *models.ScanResults, cleanup *models.CleanupSummary) (string, error) {
	if g.config.OutputFile == "" {
		return "", nil
	}

	format := normalizeFormat(g.config.ReportFormat)
	outputFile := config.ExpandDate(g.config.OutputFile, time.Now())

	g.logger.Info("Generating report",
		zap.String("format", format),
		zap.String("output", outputFile))

	var (
		data []byte
		err  error
	)
	switch format {
	case "json":
		data, err = g.generateJSON(results, cleanup)
	case "yaml":
		data, err = g.generateYAML(results, cleanup)
	case "markdown":
		data = g.generateMarkdown(results, cleanup)
	default:
		data = g.generateText(results, cleanup)
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate %s report: %w", format, err)
	}

	if err := afero.WriteFile(g.fs, outputFile, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", outputFile, err)
	}

	// Get absolute path
	absPath, err := filepath.Abs(outputFile)
	if err != nil {
		return outputFile, nil
	}
	return absPath, nil
}
