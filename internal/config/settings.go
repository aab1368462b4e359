package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/AATruttse/fundoubler/internal/filesystem"
	"github.com/AATruttse/fundoubler/pkg/models"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cast"
)

// Configuration errors. All of them are fatal and reported before any
// filesystem access.
var (
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrNoCriteria        = errors.New("need to turn on at least one file equality criterion")
	ErrSortConflict      = errors.New("can't sort results in straight and reversed order simultaneously")
	ErrInvalidSort       = errors.New("invalid sort field")
	ErrInvalidDate       = errors.New("can't parse date")
	ErrInvalidNameFilter = errors.New("can't parse file name filter")
	ErrInvalidSize       = errors.New("invalid size bound")
)

var sortEntryRe = regexp.MustCompile(`^\s*[A-Za-z_]+\s*(:\s*(?i:asc|desc)\s*)?$`)

// Validate checks the shape of every field
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Workers, validation.Min(0)),
		validation.Field(&c.Verbose, validation.Min(0)),
		validation.Field(&c.FirstN, validation.Min(0)),
		validation.Field(&c.Sort, validation.Each(validation.Match(sortEntryRe))),
		validation.Field(&c.ReportFormat, validation.In("text", "txt", "json", "yaml", "yml", "md", "markdown")),
		validation.Field(&c.LogMaxSizeMB, validation.Min(0)),
		validation.Field(&c.LogMaxBackups, validation.Min(0)),
	)
}

// Settings is the resolved run configuration. It is built once by
// Config.Resolve and only read afterwards.
type Settings struct {
	Root     string
	Criteria models.Criteria

	// Filters; zero sizes and unset dates are unbounded
	MinSize     int64
	MaxSize     int64
	MinCreated  models.Optional[time.Time]
	MaxCreated  models.Optional[time.Time]
	MinModified models.Optional[time.Time]
	MaxModified models.Optional[time.Time]
	NameFilter  *regexp.Regexp

	FirstN  int
	Sort    []models.SortKey
	Exclude []string
	Workers int

	Delete      bool
	ForceDelete bool // only ever true together with Delete
	DryRun      bool
	Silent      bool
	Verbose     int
}

// NeedsSize reports whether the size of every file has to be resolved
func (s *Settings) NeedsSize() bool {
	return s.Criteria.Size || s.MinSize > 0 || s.MaxSize > 0 || s.sortsBy(models.SortBySize)
}

// NeedsCreated reports whether creation times have to be resolved
func (s *Settings) NeedsCreated() bool {
	return s.Criteria.Created || s.MinCreated.Set || s.MaxCreated.Set || s.sortsBy(models.SortByCreated)
}

// NeedsModified reports whether modification times have to be resolved
func (s *Settings) NeedsModified() bool {
	return s.Criteria.Modified || s.MinModified.Set || s.MaxModified.Set || s.sortsBy(models.SortByModified)
}

func (s *Settings) sortsBy(field models.SortField) bool {
	for _, k := range s.Sort {
		if k.Field == field {
			return true
		}
	}
	return false
}

// Resolve validates the configuration and produces Settings
func (c *Config) Resolve() (*Settings, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	criteria := models.Criteria{
		Name:     c.Name,
		Size:     c.Size,
		Created:  c.DateCreated,
		Modified: c.DateModified,
		MD5:      c.HashMD5 || c.Hash,
		SHA512:   c.HashSHA512 || c.Hash || c.Content,
	}
	if !criteria.Any() {
		return nil, ErrNoCriteria
	}

	sortKeys, err := ParseSort(c.Sort)
	if err != nil {
		return nil, err
	}

	s := &Settings{
		Root:     c.Path,
		Criteria: criteria,
		FirstN:   c.FirstN,
		Sort:     sortKeys,
		Exclude:  append([]string(nil), c.Exclude...),
		Workers:  c.Workers,
		Delete:   c.Delete,
		DryRun:   c.Debug,
		Silent:   c.SilentMode,
		Verbose:  c.Verbose,
	}
	s.ForceDelete = c.ForceDelete && c.Delete
	if s.Silent {
		s.Verbose = 0
	}
	if s.Workers == 0 {
		s.Workers = DefaultWorkers()
	}

	if s.MinSize, err = parseSize(c.MinSize, "min_size"); err != nil {
		return nil, err
	}
	if s.MaxSize, err = parseSize(c.MaxSize, "max_size"); err != nil {
		return nil, err
	}
	if s.MinSize > 0 && s.MaxSize > 0 && s.MinSize > s.MaxSize {
		return nil, fmt.Errorf("%w: min_size %d is greater than max_size %d", ErrInvalidSize, s.MinSize, s.MaxSize)
	}

	dates := []struct {
		key    string
		value  string
		target *models.Optional[time.Time]
	}{
		{"min_createdate", c.MinCreateDate, &s.MinCreated},
		{"max_createdate", c.MaxCreateDate, &s.MaxCreated},
		{"min_moddate", c.MinModDate, &s.MinModified},
		{"max_moddate", c.MaxModDate, &s.MaxModified},
	}
	for _, d := range dates {
		if *d.target, err = parseDate(d.value, d.key); err != nil {
			return nil, err
		}
	}

	if c.NameFilter != "" {
		re, err := regexp.Compile(c.NameFilter)
		if err != nil {
			return nil, fmt.Errorf("%w from regexp %s: %v", ErrInvalidNameFilter, c.NameFilter, err)
		}
		s.NameFilter = re
	}

	return s, nil
}

// ParseSort turns "field[:asc|desc]" entries into an ordered list of
// sort keys. Repeating a field with the same direction is ignored,
// asking for both directions of one field is an error.
func ParseSort(entries []string) ([]models.SortKey, error) {
	var keys []models.SortKey
	seen := make(map[models.SortField]bool)

	for _, entry := range entries {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}

		name, dir, _ := strings.Cut(entry, ":")
		field, ok := sortAliases[strings.TrimSpace(name)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSort, entry)
		}

		var desc bool
		switch strings.TrimSpace(dir) {
		case "", "asc":
		case "desc":
			desc = true
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidSort, entry)
		}

		if prev, exists := seen[field]; exists {
			if prev != desc {
				return nil, fmt.Errorf("%w: %s", ErrSortConflict, field)
			}
			continue
		}
		seen[field] = desc
		keys = append(keys, models.SortKey{Field: field, Descending: desc})
	}

	return keys, nil
}

var sortAliases = map[string]models.SortField{
	"name":          models.SortByName,
	"size":          models.SortBySize,
	"created":       models.SortByCreated,
	"create":        models.SortByCreated,
	"date_created":  models.SortByCreated,
	"modified":      models.SortByModified,
	"mod":           models.SortByModified,
	"date_modified": models.SortByModified,
}

func parseSize(value, key string) (int64, error) {
	size, err := filesystem.ParseSize(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %v", ErrInvalidSize, key, value, err)
	}
	return size, nil
}

func parseDate(value, key string) (models.Optional[time.Time], error) {
	if strings.TrimSpace(value) == "" {
		return models.Optional[time.Time]{}, nil
	}
	t, err := cast.ToTimeE(value)
	if err != nil {
		return models.Optional[time.Time]{}, fmt.Errorf("%w: %s %s - %v", ErrInvalidDate, key, value, err)
	}
	return models.Some(t), nil
}
