package models

import (
	"os"
	"time"
)

// Optional holds a value that may not have been computed
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some wraps a present value
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Get returns the value and whether it is present
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Set
}

// FileInfo contains basic file information observed during the walk
type FileInfo struct {
	Path      string      // Path as produced by the walk (root-joined)
	Name      string      // Base name
	Info      os.FileInfo // Lstat result, nil when unavailable
	IsDir     bool
	IsSymlink bool
	IsRegular bool
	Err       error // Per-entry lstat/readdir failure
}

// FileRecord is one file fingerprint. Fields that no criterion, filter or
// sort field needs are left unset.
type FileRecord struct {
	Path     string // Identity used for deletion
	Name     string // Base name
	Bytes    int64  // On-disk size for byte totals, never part of the key
	Size     Optional[int64]
	Created  Optional[time.Time]
	Modified Optional[time.Time]
	MD5      Optional[string] // Lowercase hex
	SHA512   Optional[string] // Lowercase hex
}

// FileView is the serializable form of a FileRecord
type FileView struct {
	Path     string     `json:"path" yaml:"path"`
	Name     string     `json:"name" yaml:"name"`
	Size     *int64     `json:"size,omitempty" yaml:"size,omitempty"`
	Created  *time.Time `json:"created,omitempty" yaml:"created,omitempty"`
	Modified *time.Time `json:"modified,omitempty" yaml:"modified,omitempty"`
	MD5      string     `json:"md5,omitempty" yaml:"md5,omitempty"`
	SHA512   string     `json:"sha512,omitempty" yaml:"sha512,omitempty"`
}

// View converts the record into its serializable form
func (r *FileRecord) View() FileView {
	v := FileView{
		Path:   r.Path,
		Name:   r.Name,
		MD5:    r.MD5.Value,
		SHA512: r.SHA512.Value,
	}
	if size, ok := r.Size.Get(); ok {
		v.Size = &size
	}
	if created, ok := r.Created.Get(); ok {
		v.Created = &created
	}
	if modified, ok := r.Modified.Get(); ok {
		v.Modified = &modified
	}
	return v
}
