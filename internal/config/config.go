package config

import (
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultConfigFile is read when no --defaults-file is given; a missing
// default file is not an error
const DefaultConfigFile = "fundoubler.yaml"

// DateTemplate is replaced by the current date in log and output file names
const DateTemplate = "%DATE%"

// Config represents the fundoubler configuration as loaded from defaults,
// the YAML defaults file, environment and CLI flags. Resolve turns it into
// the immutable Settings the engine runs with.
type Config struct {
	// Scan settings
	Path    string   `mapstructure:"path" yaml:"path"`       // start path
	Workers int      `mapstructure:"workers" yaml:"workers"` // hashing workers, 1 = sequential
	Exclude []string `mapstructure:"exclude" yaml:"exclude"` // gitignore-style patterns

	// Diagnostics
	Verbose         int  `mapstructure:"verbose" yaml:"verbose"`
	Debug           bool `mapstructure:"debug" yaml:"debug"` // dry run
	DebugConfig     bool `mapstructure:"debug_config" yaml:"debug_config"`
	HideConfig      bool `mapstructure:"hide_config" yaml:"hide_config"`
	ShowOptionsOnly bool `mapstructure:"show_options_only" yaml:"show_options_only"`

	// Deletion
	Delete      bool `mapstructure:"delete" yaml:"delete"`
	ForceDelete bool `mapstructure:"force_delete" yaml:"force_delete"`
	SilentMode  bool `mapstructure:"silent_mode" yaml:"silent_mode"`

	// Equality criteria
	Name         bool `mapstructure:"name" yaml:"name"`
	Size         bool `mapstructure:"size" yaml:"size"`
	DateCreated  bool `mapstructure:"date_created" yaml:"date_created"`
	DateModified bool `mapstructure:"date_modified" yaml:"date_modified"`
	Hash         bool `mapstructure:"hash" yaml:"hash"` // both digests
	HashMD5      bool `mapstructure:"hash_md5" yaml:"hash_md5"`
	HashSHA512   bool `mapstructure:"hash_sha512" yaml:"hash_sha512"`
	Content      bool `mapstructure:"content" yaml:"content"` // served by SHA-512

	// Filters
	MinSize       string `mapstructure:"min_size" yaml:"min_size"` // "0" = unbounded, accepts K/M/G
	MaxSize       string `mapstructure:"max_size" yaml:"max_size"`
	MinCreateDate string `mapstructure:"min_createdate" yaml:"min_createdate"`
	MaxCreateDate string `mapstructure:"max_createdate" yaml:"max_createdate"`
	MinModDate    string `mapstructure:"min_moddate" yaml:"min_moddate"`
	MaxModDate    string `mapstructure:"max_moddate" yaml:"max_moddate"`
	NameFilter    string `mapstructure:"name_filter" yaml:"name_filter"`

	// Results
	FirstN int      `mapstructure:"first_n" yaml:"first_n"`
	Sort   []string `mapstructure:"sort" yaml:"sort"` // "name", "size:desc", ...

	// Report settings
	ReportFormat string `mapstructure:"report_format" yaml:"report_format"` // text, json, yaml, md
	OutputFile   string `mapstructure:"output_file" yaml:"output_file"`

	// Log settings
	LogFile       string `mapstructure:"log_file" yaml:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb" yaml:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups" yaml:"log_max_backups"`
}

// LoadConfig loads configuration from defaults, an optional YAML file and
// environment variables (FUNDOUBLER_*)
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("path", ".")
	v.SetDefault("workers", 1)
	v.SetDefault("exclude", []string{})
	v.SetDefault("verbose", 0)
	v.SetDefault("debug", false)
	v.SetDefault("debug_config", false)
	v.SetDefault("hide_config", false)
	v.SetDefault("show_options_only", false)
	v.SetDefault("delete", false)
	v.SetDefault("force_delete", false)
	v.SetDefault("silent_mode", false)

	// No criterion is on by default, the user has to pick at least one
	for _, key := range []string{"name", "size", "date_created", "date_modified", "hash", "hash_md5", "hash_sha512", "content"} {
		v.SetDefault(key, false)
	}

	v.SetDefault("min_size", "0")
	v.SetDefault("max_size", "0")
	v.SetDefault("min_createdate", "")
	v.SetDefault("max_createdate", "")
	v.SetDefault("min_moddate", "")
	v.SetDefault("max_moddate", "")
	v.SetDefault("name_filter", "")
	v.SetDefault("first_n", 100)
	v.SetDefault("sort", []string{})
	v.SetDefault("report_format", "text")
	v.SetDefault("output_file", "")
	v.SetDefault("log_file", "./fundoubler"+DateTemplate+".log")
	v.SetDefault("log_max_size_mb", 100)
	v.SetDefault("log_max_backups", 10)

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Read environment variables
	v.SetEnvPrefix("FUNDOUBLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || isNotExist(err)) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &cfg, nil
}

// DefaultWorkers returns the pool size used for "workers: 0"
func DefaultWorkers() int {
	return runtime.NumCPU()
}

// ExpandDate replaces the %DATE% template with YYYYMMDD of now
func ExpandDate(name string, now time.Time) string {
	return strings.ReplaceAll(name, DateTemplate, now.Format("20060102"))
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
