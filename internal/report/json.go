package report

import (
	"encoding/json"

	"github.com/AATruttse/fundoubler/pkg/models"
	"gopkg.in/yaml.v3"
)

// GroupView is the serializable form of a duplicate group
type GroupView struct {
	Header string            `json:"header" yaml:"header"`
	Wasted int64             `json:"wasted_bytes" yaml:"wasted_bytes"`
	Files  []models.FileView `json:"files" yaml:"files"`
}

// FileReport combines scan results, groups and cleanup outcome for
// structured output
type FileReport struct {
	Summary *models.ScanResults    `json:"summary" yaml:"summary"`
	Groups  []GroupView            `json:"groups" yaml:"groups"`
	Cleanup *models.CleanupSummary `json:"cleanup,omitempty" yaml:"cleanup,omitempty"`
}

func newFileReport(results *models.ScanResults, cleanup *models.CleanupSummary) *FileReport {
	report := &FileReport{
		Summary: results,
		Groups:  make([]GroupView, 0, len(results.Groups)),
	}
	if cleanup != nil && len(cleanup.Groups) > 0 {
		report.Cleanup = cleanup
	}

	for _, g := range results.Groups {
		view := GroupView{Header: g.Header(), Wasted: g.Wasted()}
		for _, f := range g.Files {
			view.Files = append(view.Files, f.View())
		}
		report.Groups = append(report.Groups, view)
	}
	return report
}

// generateJSON generates a JSON report
func (g *Generator) generateJSON(results *models.ScanResults, cleanup *models.CleanupSummary) ([]byte, error) {
	return json.MarshalIndent(newFileReport(results, cleanup), "", "  ")
}

// generateYAML generates a YAML report
func (g *Generator) generateYAML(results *models.ScanResults, cleanup *models.CleanupSummary) ([]byte, error) {
	return yaml.Marshal(newFileReport(results, cleanup))
}
