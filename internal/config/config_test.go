package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AATruttse/fundoubler/pkg/models"
)

func TestLoadConfig(t *testing.T) {
	// Test default config loading (without config file)
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	// Check defaults
	if cfg.Path != "." {
		t.Errorf("Default path = %v, want %v", cfg.Path, ".")
	}

	if cfg.Workers != 1 {
		t.Errorf("Default workers = %v, want %v", cfg.Workers, 1)
	}

	if cfg.FirstN != 100 {
		t.Errorf("Default first_n = %v, want %v", cfg.FirstN, 100)
	}

	if cfg.ReportFormat != "text" {
		t.Errorf("Default report_format = %v, want %v", cfg.ReportFormat, "text")
	}

	if cfg.LogMaxSizeMB != 100 || cfg.LogMaxBackups != 10 {
		t.Errorf("Default log limits = %v/%v, want 100/10", cfg.LogMaxSizeMB, cfg.LogMaxBackups)
	}

	if cfg.Name || cfg.Size || cfg.Hash || cfg.HashMD5 || cfg.HashSHA512 || cfg.Content {
		t.Error("No equality criterion must be enabled by default")
	}

	if cfg.Delete || cfg.ForceDelete {
		t.Error("Deletion must be disabled by default")
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fundoubler.yaml")
	content := `
path: /srv/photos
hash_sha512: true
size: true
first_n: 5
sort:
  - name
  - size:desc
exclude:
  - "*.tmp"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Path != "/srv/photos" {
		t.Errorf("path = %v, want %v", cfg.Path, "/srv/photos")
	}
	if !cfg.HashSHA512 || !cfg.Size {
		t.Error("criteria from file not applied")
	}
	if cfg.FirstN != 5 {
		t.Errorf("first_n = %v, want %v", cfg.FirstN, 5)
	}
	if len(cfg.Sort) != 2 || cfg.Sort[1] != "size:desc" {
		t.Errorf("sort = %v, want [name size:desc]", cfg.Sort)
	}
	if len(cfg.Exclude) != 1 || cfg.Exclude[0] != "*.tmp" {
		t.Errorf("exclude = %v, want [*.tmp]", cfg.Exclude)
	}
	// Untouched keys keep their defaults
	if cfg.Workers != 1 {
		t.Errorf("workers = %v, want %v", cfg.Workers, 1)
	}
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("FUNDOUBLER_FIRST_N", "7")
	t.Setenv("FUNDOUBLER_HASH_MD5", "true")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.FirstN != 7 {
		t.Errorf("first_n = %v, want %v", cfg.FirstN, 7)
	}
	if !cfg.HashMD5 {
		t.Error("hash_md5 from environment not applied")
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("LoadConfig() expected error for a missing explicit file, got nil")
	}
}

func TestExpandDate(t *testing.T) {
	now := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		input    string
		expected string
	}{
		{"./fundoubler%DATE%.log", "./fundoubler20240309.log"},
		{"report.txt", "report.txt"},
		{"%DATE%-%DATE%", "20240309-20240309"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ExpandDate(tt.input, now); got != tt.expected {
				t.Errorf("ExpandDate(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
		want    []models.SortKey
		wantErr error
	}{
		{"Empty", nil, nil, nil},
		{"Default direction", []string{"name"}, []models.SortKey{{Field: models.SortByName}}, nil},
		{"Ordered list", []string{"size:desc", "name:asc"}, []models.SortKey{
			{Field: models.SortBySize, Descending: true},
			{Field: models.SortByName},
		}, nil},
		{"Aliases", []string{"create", "date_modified:DESC"}, []models.SortKey{
			{Field: models.SortByCreated},
			{Field: models.SortByModified, Descending: true},
		}, nil},
		{"Repeat ignored", []string{"size", "size:asc"}, []models.SortKey{{Field: models.SortBySize}}, nil},
		{"Conflict", []string{"size", "size:desc"}, nil, ErrSortConflict},
		{"Unknown field", []string{"color"}, nil, ErrInvalidSort},
		{"Unknown direction", []string{"name:up"}, nil, ErrInvalidSort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSort(tt.entries)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseSort() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSort() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseSort() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseSort()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func validConfig() *Config {
	return &Config{
		Path:         ".",
		Workers:      1,
		FirstN:       100,
		ReportFormat: "text",
		HashSHA512:   true,
	}
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr error
	}{
		{"No criteria", func(c *Config) { c.HashSHA512 = false }, ErrNoCriteria},
		{"Sort conflict", func(c *Config) { c.Sort = []string{"name", "name:desc"} }, ErrSortConflict},
		{"Bad date", func(c *Config) { c.MinModDate = "yesterday-ish" }, ErrInvalidDate},
		{"Bad regexp", func(c *Config) { c.NameFilter = "([" }, ErrInvalidNameFilter},
		{"Bad size", func(c *Config) { c.MaxSize = "lots" }, ErrInvalidSize},
		{"Inverted sizes", func(c *Config) { c.MinSize, c.MaxSize = "2K", "1K" }, ErrInvalidSize},
		{"Negative workers", func(c *Config) { c.Workers = -1 }, ErrInvalidConfig},
		{"Unknown report format", func(c *Config) { c.ReportFormat = "pdf" }, ErrInvalidConfig},
		{"Empty path", func(c *Config) { c.Path = "" }, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)
			_, err := cfg.Resolve()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Resolve() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	cfg := validConfig()
	cfg.HashSHA512 = false
	cfg.Content = true
	cfg.Hash = false
	cfg.Size = true
	cfg.MinSize = "1K"
	cfg.MaxModDate = "2024-01-31"
	cfg.NameFilter = `\.jpe?g$`
	cfg.Sort = []string{"modified:desc"}
	cfg.ForceDelete = true
	cfg.Workers = 0

	s, err := cfg.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := models.Criteria{Size: true, SHA512: true}
	if s.Criteria != want {
		t.Errorf("Criteria = %+v, want %+v", s.Criteria, want)
	}
	if s.MinSize != 1024 {
		t.Errorf("MinSize = %v, want %v", s.MinSize, 1024)
	}
	if mod, ok := s.MaxModified.Get(); !ok || !mod.Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("MaxModified = %v, want 2024-01-31", s.MaxModified)
	}
	if s.NameFilter == nil || !s.NameFilter.MatchString("cat.jpg") {
		t.Error("NameFilter not compiled")
	}
	if s.ForceDelete {
		t.Error("ForceDelete must stay off without Delete")
	}
	if s.Workers != DefaultWorkers() {
		t.Errorf("Workers = %v, want %v", s.Workers, DefaultWorkers())
	}
	if !s.NeedsSize() || s.NeedsCreated() || !s.NeedsModified() {
		t.Error("Needed attributes not derived from criteria, filters and sort")
	}
}

func TestResolve_HashEnablesBothDigests(t *testing.T) {
	cfg := validConfig()
	cfg.HashSHA512 = false
	cfg.Hash = true

	s, err := cfg.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !s.Criteria.MD5 || !s.Criteria.SHA512 {
		t.Errorf("Criteria = %+v, want both digests", s.Criteria)
	}
}

func TestResolve_Modes(t *testing.T) {
	cfg := validConfig()
	cfg.Delete = true
	cfg.ForceDelete = true
	cfg.Debug = true
	cfg.SilentMode = true
	cfg.Verbose = 2

	s, err := cfg.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !s.Delete || !s.ForceDelete || !s.DryRun {
		t.Errorf("Delete/ForceDelete/DryRun = %v/%v/%v, want all true", s.Delete, s.ForceDelete, s.DryRun)
	}
	if !s.Silent || s.Verbose != 0 {
		t.Errorf("Silent/Verbose = %v/%v, want true/0", s.Silent, s.Verbose)
	}
}
