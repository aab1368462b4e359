package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AATruttse/fundoubler/internal/config"
	"github.com/AATruttse/fundoubler/internal/duplicates"
	"github.com/AATruttse/fundoubler/internal/filesystem"
	"github.com/AATruttse/fundoubler/pkg/models"
	"github.com/sourcegraph/conc/stream"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Version is reported in results and by the CLI
const Version = "0.1.0"

// ErrRootNotAccessible is returned when the start path can't be enumerated
var ErrRootNotAccessible = filesystem.ErrRootNotAccessible

// ProgressCallback is called for every walked file. Total is zero since
// the tree is walked only once.
type ProgressCallback func(phase string, current, total int, message string)

// Scanner is the duplicate detection engine
type Scanner struct {
	settings         *config.Settings
	fs               afero.Fs
	logger           *zap.Logger
	walker           *filesystem.Walker
	extractor        *duplicates.Extractor
	table            *duplicates.Table
	results          *models.ScanResults
	progressCallback ProgressCallback
	mu               sync.Mutex
}

// NewScanner creates a new scanner instance
func NewScanner(settings *config.Settings, fs afero.Fs, logger *zap.Logger) *Scanner {
	return &Scanner{
		settings: settings,
		fs:       fs,
		logger:   logger,
		results: &models.ScanResults{
			Stats: &models.ScanStatistics{},
		},
	}
}

// SetProgressCallback sets the progress callback function
func (s *Scanner) SetProgressCallback(cb ProgressCallback) {
	s.progressCallback = cb
}

// reportProgress calls the progress callback if set
func (s *Scanner) reportProgress(phase string, current, total int, message string) {
	if s.progressCallback != nil {
		s.progressCallback(phase, current, total, message)
	}
}

// Scan walks root and returns the sorted, truncated duplicate groups.
// Per-file problems are logged and counted; only a root that can't be read
// or a cancelled context fail the scan.
func (s *Scanner) Scan(ctx context.Context, root string) (*models.ScanResults, error) {
	s.logger.Info("Starting scan",
		zap.String("path", root),
		zap.Any("criteria", s.settings.Criteria),
		zap.Int("workers", s.settings.Workers))

	// Initialize
	s.results.StartTime = time.Now()
	s.results.ScanPath = root
	s.results.Version = Version
	s.results.Criteria = s.settings.Criteria
	s.results.Sort = s.settings.Sort

	s.walker = filesystem.NewWalker(s.fs, s.settings.Exclude, s.logger)
	s.extractor = duplicates.NewExtractor(s.settings, s.fs, s.logger)
	s.table = duplicates.NewTable(s.settings.Criteria)

	workers := s.settings.Workers
	if workers <= 0 {
		workers = config.DefaultWorkers()
	}
	s.results.Stats.WorkersUsed = workers

	if err := s.collect(ctx, root, workers); err != nil {
		return nil, err
	}

	s.results.Stats.Fingerprints = s.table.Len()
	groups := s.table.Groups()
	s.results.Stats.TotalGroups = len(groups)

	duplicates.NewComparator(s.settings.Sort).Sort(groups)
	s.results.Groups = duplicates.Truncate(groups, s.settings.FirstN)

	// Finalize results
	s.results.EndTime = time.Now()
	s.results.Duration = s.results.EndTime.Sub(s.results.StartTime)

	s.calculateStats()

	s.logger.Info("Scan completed",
		zap.Duration("duration", s.results.Duration),
		zap.Int("files", s.results.Stats.TotalFiles),
		zap.Int("filtered_out", s.results.Stats.FilteredOut),
		zap.Int("read_errors", s.results.Stats.ReadErrors),
		zap.Int("groups", s.results.Stats.TotalGroups),
		zap.Int("reported_groups", s.results.Stats.ReportedGroups))

	return s.results, nil
}

// collect walks the tree and fills the grouping table. Hashing runs on a
// bounded pool; results are added to the table in walk order.
func (s *Scanner) collect(ctx context.Context, root string, workers int) error {
	hashing := stream.New().WithMaxGoroutines(workers)
	needsContent := s.extractor.NeedsContent()
	stats := s.results.Stats

	walkErr := s.walker.Walk(ctx, root, func(fi *models.FileInfo) error {
		rec := s.inspect(fi)
		if rec == nil {
			return nil
		}

		if !needsContent {
			s.mu.Lock()
			s.add(rec)
			s.mu.Unlock()
			return nil
		}

		// s.mu must not be held here: Go blocks while the pool is full and
		// the callbacks need the lock to drain it
		hashing.Go(func() stream.Callback {
			err := s.extractor.Fingerprint(rec)
			return func() {
				s.mu.Lock()
				defer s.mu.Unlock()
				if err != nil {
					stats.AddError(rec.Path)
					return
				}
				stats.HashedFiles++
				s.add(rec)
			}
		})
		return nil
	})

	// Tasks already submitted still have to finish before returning
	hashing.Wait()

	stats.SkippedFiles += s.walker.Excluded()

	if walkErr != nil {
		return fmt.Errorf("scan %s: %w", root, walkErr)
	}
	return nil
}

// inspect counts a walked entry and returns its record when it survived
// the filters
func (s *Scanner) inspect(fi *models.FileInfo) *models.FileRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := s.results.Stats

	if fi.IsDir && fi.Err == nil {
		stats.TotalDirs++
		return nil
	}

	stats.TotalFiles++
	s.logger.Debug("Walking", zap.String("path", fi.Path))
	s.reportProgress("walk", stats.TotalFiles, 0, fi.Path)

	rec, outcome := s.extractor.Inspect(fi)
	switch outcome {
	case duplicates.Failed:
		stats.AddError(fi.Path)
	case duplicates.Irregular:
		stats.SkippedFiles++
	case duplicates.Filtered:
		stats.FilteredOut++
	}
	return rec
}

// add stores a finished record; callers hold s.mu
func (s *Scanner) add(rec *models.FileRecord) {
	s.table.Add(rec)
}

// calculateStats calculates final statistics
func (s *Scanner) calculateStats() {
	stats := s.results.Stats
	stats.ReportedGroups = len(s.results.Groups)

	for _, g := range s.results.Groups {
		stats.DuplicateFiles += len(g.Files) - 1
		stats.ReclaimableSize += g.Wasted()
	}

	duration := s.results.Duration.Seconds()
	if duration > 0 {
		stats.FilesPerSecond = float64(stats.TotalFiles) / duration
	}
}
