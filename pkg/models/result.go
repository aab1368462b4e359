package models

import "time"

// Group is a set of at least two files sharing one Key
type Group struct {
	Key   Key
	Files []*FileRecord
}

// Header returns the report header line of the group
func (g *Group) Header() string {
	return g.Key.String()
}

// Wasted returns the bytes held by every member except the first
func (g *Group) Wasted() int64 {
	var total int64
	for i, f := range g.Files {
		if i == 0 {
			continue
		}
		total += f.Bytes
	}
	return total
}

// ScanResults contains the complete scan results
type ScanResults struct {
	// Summary
	RunID     string        `json:"run_id" yaml:"run_id"`
	StartTime time.Time     `json:"start_time" yaml:"start_time"`
	EndTime   time.Time     `json:"end_time" yaml:"end_time"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	ScanPath  string        `json:"scan_path" yaml:"scan_path"`
	Version   string        `json:"version" yaml:"version"`

	// Configuration echo
	Criteria Criteria  `json:"criteria" yaml:"criteria"`
	Sort     []SortKey `json:"sort,omitempty" yaml:"sort,omitempty"`

	// Groups in final (sorted, truncated) order
	Groups []*Group `json:"-" yaml:"-"`

	// Statistics
	Stats *ScanStatistics `json:"statistics" yaml:"statistics"`

	// Report path
	ReportPath string `json:"report_path,omitempty" yaml:"report_path,omitempty"`
}

// ScanStatistics contains detailed scan statistics
type ScanStatistics struct {
	// Walk
	TotalFiles   int `json:"total_files" yaml:"total_files"`
	TotalDirs    int `json:"total_dirs" yaml:"total_dirs"`
	SkippedFiles int `json:"skipped_files" yaml:"skipped_files"` // Irregular entries and excludes
	FilteredOut  int `json:"filtered_out" yaml:"filtered_out"`
	HashedFiles  int `json:"hashed_files" yaml:"hashed_files"`
	Fingerprints int `json:"fingerprints" yaml:"fingerprints"`

	// Duplicates
	TotalGroups     int   `json:"total_groups" yaml:"total_groups"` // Before first_n truncation
	ReportedGroups  int   `json:"reported_groups" yaml:"reported_groups"`
	DuplicateFiles  int   `json:"duplicate_files" yaml:"duplicate_files"`
	ReclaimableSize int64 `json:"reclaimable_bytes" yaml:"reclaimable_bytes"`

	// Errors
	ReadErrors int      `json:"read_errors" yaml:"read_errors"`
	ErrorFiles []string `json:"error_files,omitempty" yaml:"error_files,omitempty"`

	// Performance
	FilesPerSecond float64 `json:"files_per_second" yaml:"files_per_second"`
	WorkersUsed    int     `json:"workers_used" yaml:"workers_used"`
}

// AddError records a recoverable per-file error
func (s *ScanStatistics) AddError(path string) {
	s.ReadErrors++
	s.ErrorFiles = append(s.ErrorFiles, path)
}

// Action is the decision taken for one group member
type Action string

const (
	ActionKeep   Action = "keep"
	ActionDelete Action = "delete"
	ActionDryRun Action = "dry-run"
	ActionFailed Action = "failed"
)

// Decision is the outcome for one file
type Decision struct {
	Path   string `json:"path" yaml:"path"`
	Action Action `json:"action" yaml:"action"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// GroupOutcome collects the decisions made for one group
type GroupOutcome struct {
	Header    string     `json:"header" yaml:"header"`
	Decisions []Decision `json:"decisions" yaml:"decisions"`
	Deleted   int        `json:"deleted" yaml:"deleted"`
}

// CleanupSummary is the result of the deletion pass
type CleanupSummary struct {
	Groups     []GroupOutcome `json:"groups" yaml:"groups"`
	Deleted    int            `json:"deleted" yaml:"deleted"`
	Failed     int            `json:"failed" yaml:"failed"`
	Kept       int            `json:"kept" yaml:"kept"`
	DryRun     bool           `json:"dry_run" yaml:"dry_run"`
	FreedBytes int64          `json:"freed_bytes" yaml:"freed_bytes"`
}
