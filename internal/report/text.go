package report

import (
	"fmt"
	"strings"

	"github.com/AATruttse/fundoubler/pkg/models"
)

// generateText generates a text report
func (g *Generator) generateText(results *models.ScanResults, cleanup *models.CleanupSummary) []byte {
	var sb strings.Builder
	stats := results.Stats

	// Header
	sb.WriteString(strings.Repeat("=", 79) + "\n")
	sb.WriteString(fmt.Sprintf("  FUNDOUBLER DUPLICATE REPORT v%s\n", results.Version))
	sb.WriteString(strings.Repeat("=", 79) + "\n\n")

	// Summary
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 79) + "\n")
	sb.WriteString(fmt.Sprintf("Run:              %s\n", results.RunID))
	sb.WriteString(fmt.Sprintf("Scan Path:        %s\n", results.ScanPath))
	sb.WriteString(fmt.Sprintf("Criteria:         %s\n", criteriaString(results.Criteria)))
	sb.WriteString(fmt.Sprintf("Sort:             %s\n", sortString(results.Sort)))
	sb.WriteString(fmt.Sprintf("Start Time:       %s\n", results.StartTime.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("End Time:         %s\n", results.EndTime.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Duration:         %s\n", FormatDuration(results.Duration)))
	sb.WriteString(fmt.Sprintf("Total Files:      %d\n", stats.TotalFiles))
	sb.WriteString(fmt.Sprintf("Filtered Out:     %d\n", stats.FilteredOut))
	sb.WriteString(fmt.Sprintf("Skipped Files:    %d\n", stats.SkippedFiles))
	sb.WriteString(fmt.Sprintf("Hashed Files:     %d\n", stats.HashedFiles))
	sb.WriteString(fmt.Sprintf("Read Errors:      %d\n", stats.ReadErrors))
	sb.WriteString(fmt.Sprintf("GROUPS FOUND:     %d (reported %d)\n", stats.TotalGroups, stats.ReportedGroups))
	sb.WriteString(fmt.Sprintf("Redundant Files:  %d (%s)\n", stats.DuplicateFiles, FormatBytes(stats.ReclaimableSize)))
	sb.WriteString("\n")

	if len(results.Groups) > 0 {
		sb.WriteString("DUPLICATE GROUPS\n")
		sb.WriteString(strings.Repeat("-", 79) + "\n")
		writeGroups(&sb, results.Groups)
		sb.WriteString("\n")
	}

	if cleanup != nil && len(cleanup.Groups) > 0 {
		title := "CLEANUP"
		if cleanup.DryRun {
			title = "CLEANUP (DRY RUN)"
		}
		sb.WriteString(title + "\n")
		sb.WriteString(strings.Repeat("-", 79) + "\n")
		for _, outcome := range cleanup.Groups {
			sb.WriteString(outcome.Header + "\n")
			for _, d := range outcome.Decisions {
				sb.WriteString(fmt.Sprintf("    %-8s %s", d.Action, d.Path))
				if d.Error != "" {
					sb.WriteString(" - " + d.Error)
				}
				sb.WriteString("\n")
			}
		}
		sb.WriteString(fmt.Sprintf("\nDeleted: %d, kept: %d, failed: %d, freed: %s\n",
			cleanup.Deleted, cleanup.Kept, cleanup.Failed, FormatBytes(cleanup.FreedBytes)))
	}

	if len(stats.ErrorFiles) > 0 {
		sb.WriteString("\nERRORS\n")
		sb.WriteString(strings.Repeat("-", 79) + "\n")
		for _, path := range stats.ErrorFiles {
			sb.WriteString("  " + path + "\n")
		}
	}

	return []byte(sb.String())
}

// criteriaString lists the enabled criteria in header order
func criteriaString(c models.Criteria) string {
	var parts []string
	if c.Name {
		parts = append(parts, "name")
	}
	if c.Size {
		parts = append(parts, "size")
	}
	if c.Created {
		parts = append(parts, "created")
	}
	if c.Modified {
		parts = append(parts, "modified")
	}
	if c.MD5 {
		parts = append(parts, "MD5")
	}
	if c.SHA512 {
		parts = append(parts, "SHA512")
	}
	return strings.Join(parts, ", ")
}

func sortString(keys []models.SortKey) string {
	if len(keys) == 0 {
		return "none"
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
	}
	return strings.Join(parts, ", ")
}
