package duplicates

import (
	"time"

	"github.com/AATruttse/fundoubler/internal/config"
	"github.com/AATruttse/fundoubler/internal/filesystem"
	"github.com/AATruttse/fundoubler/pkg/models"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Outcome tells what Inspect did with a walked entry
type Outcome int

const (
	Accepted  Outcome = iota // record produced, may still need hashing
	Directory                // directories are walked, never fingerprinted
	Irregular                // symlinks, devices, sockets, FIFOs
	Filtered                 // rejected by a size, date or name filter
	Failed                   // metadata unavailable
)

// Extractor turns walked entries into fingerprints. Metadata and filters
// are handled by Inspect, the expensive content read by Fingerprint, so
// that nothing is read for a file a filter already rejected.
type Extractor struct {
	settings *config.Settings
	fs       afero.Fs
	logger   *zap.Logger

	needSize     bool
	needCreated  bool
	needModified bool
}

// NewExtractor creates a new fingerprint extractor
func NewExtractor(settings *config.Settings, fs afero.Fs, logger *zap.Logger) *Extractor {
	return &Extractor{
		settings:     settings,
		fs:           fs,
		logger:       logger,
		needSize:     settings.NeedsSize(),
		needCreated:  settings.NeedsCreated(),
		needModified: settings.NeedsModified(),
	}
}

// Inspect resolves the metadata the configuration needs and applies the
// early filters in order: min size, max size, creation date bounds,
// modification date bounds, name filter.
func (e *Extractor) Inspect(fi *models.FileInfo) (*models.FileRecord, Outcome) {
	if fi.Err != nil || fi.Info == nil {
		e.logger.Warn("Can't get metadata for file", zap.String("path", fi.Path), zap.Error(fi.Err))
		return nil, Failed
	}
	if fi.IsDir {
		return nil, Directory
	}
	if !fi.IsRegular {
		kind := "irregular"
		if fi.IsSymlink {
			kind = "symlink"
		}
		e.logger.Debug("Skipping entry",
			zap.String("path", fi.Path),
			zap.String("kind", kind),
			zap.Stringer("mode", fi.Info.Mode()))
		return nil, Irregular
	}

	rec := &models.FileRecord{
		Path:  fi.Path,
		Name:  fi.Name,
		Bytes: fi.Info.Size(),
	}

	if e.needSize {
		rec.Size = models.Some(fi.Info.Size())
	}
	if e.needCreated {
		if created, ok := filesystem.CreationTime(fi.Path, fi.Info); ok {
			rec.Created = models.Some(created)
		}
	}
	if e.needModified {
		rec.Modified = models.Some(fi.Info.ModTime())
	}

	if reason := e.filter(rec); reason != "" {
		e.logger.Debug("Filtered out", zap.String("path", fi.Path), zap.String("reason", reason))
		return nil, Filtered
	}

	return rec, Accepted
}

// filter returns the name of the first filter rejecting the record
func (e *Extractor) filter(rec *models.FileRecord) string {
	s := e.settings

	if size, ok := rec.Size.Get(); ok {
		if s.MinSize > 0 && size < s.MinSize {
			return "min_size"
		}
		if s.MaxSize > 0 && size > s.MaxSize {
			return "max_size"
		}
	}
	if outside(rec.Created, s.MinCreated, s.MaxCreated) {
		return "created"
	}
	if outside(rec.Modified, s.MinModified, s.MaxModified) {
		return "modified"
	}
	if s.NameFilter != nil && !s.NameFilter.MatchString(rec.Name) {
		return "name_filter"
	}

	return ""
}

// outside reports whether a present timestamp lies outside the present
// bounds. A missing timestamp or bound never rejects.
func outside(ts, from, to models.Optional[time.Time]) bool {
	t, ok := ts.Get()
	if !ok {
		return false
	}
	if lo, ok := from.Get(); ok && t.Before(lo) {
		return true
	}
	if hi, ok := to.Get(); ok && t.After(hi) {
		return true
	}
	return false
}

// NeedsContent reports whether Fingerprint has any work to do
func (e *Extractor) NeedsContent() bool {
	return e.settings.Criteria.NeedsContent()
}

// Fingerprint reads the file once and fills the enabled digests. It is
// safe to call concurrently for different records.
func (e *Extractor) Fingerprint(rec *models.FileRecord) error {
	c := e.settings.Criteria
	if !c.NeedsContent() {
		return nil
	}

	digests, err := filesystem.HashFile(e.fs, rec.Path, c.MD5, c.SHA512)
	if err != nil {
		e.logger.Warn("Can't hash file", zap.String("path", rec.Path), zap.Error(err))
		return err
	}

	if c.MD5 {
		rec.MD5 = models.Some(digests.MD5)
	}
	if c.SHA512 {
		rec.SHA512 = models.Some(digests.SHA512)
	}
	return nil
}
