package report

import (
	"fmt"
	"strings"

	"github.com/AATruttse/fundoubler/pkg/models"
)

// generateMarkdown generates a Markdown report
func (g *Generator) generateMarkdown(results *models.ScanResults, cleanup *models.CleanupSummary) []byte {
	var sb strings.Builder
	stats := results.Stats

	// Header
	sb.WriteString(fmt.Sprintf("# Fundoubler Duplicate Report v%s\n\n", results.Version))

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Parameter | Value |\n")
	sb.WriteString("|-----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Scan Path | `%s` |\n", results.ScanPath))
	sb.WriteString(fmt.Sprintf("| Criteria | %s |\n", criteriaString(results.Criteria)))
	sb.WriteString(fmt.Sprintf("| Sort | %s |\n", sortString(results.Sort)))
	sb.WriteString(fmt.Sprintf("| Start Time | %s |\n", results.StartTime.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("| Duration | %s |\n", FormatDuration(results.Duration)))
	sb.WriteString(fmt.Sprintf("| Total Files | %d |\n", stats.TotalFiles))
	sb.WriteString(fmt.Sprintf("| Filtered Out | %d |\n", stats.FilteredOut))
	sb.WriteString(fmt.Sprintf("| Read Errors | %d |\n", stats.ReadErrors))
	sb.WriteString(fmt.Sprintf("| **Duplicate Groups** | **%d** |\n", stats.TotalGroups))
	sb.WriteString(fmt.Sprintf("| Redundant Files | %d (%s) |\n", stats.DuplicateFiles, FormatBytes(stats.ReclaimableSize)))
	sb.WriteString("\n")

	if len(results.Groups) == 0 {
		sb.WriteString("> ✅ **No duplicates found**\n\n")
		return []byte(sb.String())
	}

	sb.WriteString("## Groups\n\n")
	for i, group := range results.Groups {
		sb.WriteString(fmt.Sprintf("### %d. `%s`\n\n", i+1, escapeBackticks(group.Header())))
		for j, f := range group.Files {
			marker := ""
			if j == 0 {
				marker = " *(first)*"
			}
			sb.WriteString(fmt.Sprintf("- `%s`%s\n", escapeBackticks(f.Path), marker))
		}
		sb.WriteString("\n")
	}

	if cleanup != nil && len(cleanup.Groups) > 0 {
		sb.WriteString("## Cleanup\n\n")
		if cleanup.DryRun {
			sb.WriteString("> Dry run: nothing was removed.\n\n")
		}
		sb.WriteString("| File | Action |\n")
		sb.WriteString("|------|--------|\n")
		for _, outcome := range cleanup.Groups {
			for _, d := range outcome.Decisions {
				action := string(d.Action)
				if d.Error != "" {
					action += ": " + d.Error
				}
				sb.WriteString(fmt.Sprintf("| `%s` | %s |\n", escapeBackticks(d.Path), action))
			}
		}
		sb.WriteString("\n")
	}

	return []byte(sb.String())
}

func escapeBackticks(s string) string {
	return strings.ReplaceAll(s, "`", "'")
}
