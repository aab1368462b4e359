package models

import (
	"strconv"
	"strings"
	"time"
)

// Criteria selects which attributes make two files duplicates
type Criteria struct {
	Name     bool `json:"name" yaml:"name"`
	Size     bool `json:"size" yaml:"size"`
	Created  bool `json:"date_created" yaml:"date_created"`
	Modified bool `json:"date_modified" yaml:"date_modified"`
	MD5      bool `json:"hash_md5" yaml:"hash_md5"`
	SHA512   bool `json:"hash_sha512" yaml:"hash_sha512"`
}

// Any reports whether at least one criterion is enabled
func (c Criteria) Any() bool {
	return c.Name || c.Size || c.Created || c.Modified || c.MD5 || c.SHA512
}

// NeedsContent reports whether files have to be read
func (c Criteria) NeedsContent() bool {
	return c.MD5 || c.SHA512
}

// Key is the projection of a FileRecord onto the enabled criteria.
// It is comparable and used directly as a map key; timestamps are
// stored as Unix nanoseconds for that reason.
type Key struct {
	Name     Optional[string]
	Size     Optional[int64]
	Created  Optional[int64]
	Modified Optional[int64]
	MD5      Optional[string]
	SHA512   Optional[string]
}

// HeaderTimeFormat is the layout of timestamps in group headers
const HeaderTimeFormat = "2006-01-02 15:04:05"

// String renders the group header: only present fields, in fixed order
func (k Key) String() string {
	var sb strings.Builder

	sep := func(s string) {
		if sb.Len() > 0 {
			sb.WriteString(s)
		}
	}

	if name, ok := k.Name.Get(); ok {
		sb.WriteString(name)
	}
	if size, ok := k.Size.Get(); ok {
		sep(" - ")
		sb.WriteString(strconv.FormatInt(size, 10))
	}
	if created, ok := k.Created.Get(); ok {
		sep(", ")
		sb.WriteString("created: " + formatNanos(created))
	}
	if modified, ok := k.Modified.Get(); ok {
		sep(", ")
		sb.WriteString("modified: " + formatNanos(modified))
	}
	if md5, ok := k.MD5.Get(); ok {
		sep(", ")
		sb.WriteString("MD5: " + md5)
	}
	if sha512, ok := k.SHA512.Get(); ok {
		sep(", ")
		sb.WriteString("SHA512: " + sha512)
	}

	return sb.String()
}

func formatNanos(n int64) string {
	return time.Unix(0, n).UTC().Format(HeaderTimeFormat)
}

// SortField is an attribute groups and files can be ordered by
type SortField string

const (
	SortByName     SortField = "name"
	SortBySize     SortField = "size"
	SortByCreated  SortField = "created"
	SortByModified SortField = "modified"
)

// SortKey is one entry of the ordered sort list
type SortKey struct {
	Field      SortField `json:"field" yaml:"field"`
	Descending bool      `json:"descending" yaml:"descending"`
}

// String returns the "field:asc" / "field:desc" form
func (s SortKey) String() string {
	if s.Descending {
		return string(s.Field) + ":desc"
	}
	return string(s.Field) + ":asc"
}
