package filesystem

import (
	"crypto/md5"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// Digests holds the lowercase hex digests of one file
type Digests struct {
	MD5    string
	SHA512 string
}

// HashFile opens the file once and feeds its whole content to the
// requested hashers
func HashFile(fs afero.Fs, path string, withMD5, withSHA512 bool) (Digests, error) {
	var d Digests
	if !withMD5 && !withSHA512 {
		return d, nil
	}

	f, err := fs.Open(path)
	if err != nil {
		return d, fmt.Errorf("can't open file: %w", err)
	}
	defer f.Close()

	var (
		md5h    hash.Hash
		sha512h hash.Hash
		writers []io.Writer
	)
	if withMD5 {
		md5h = md5.New()
		writers = append(writers, md5h)
	}
	if withSHA512 {
		sha512h = sha512.New()
		writers = append(writers, sha512h)
	}

	if _, err := io.Copy(io.MultiWriter(writers...), f); err != nil {
		return d, fmt.Errorf("can't read file: %w", err)
	}

	if md5h != nil {
		d.MD5 = hex.EncodeToString(md5h.Sum(nil))
	}
	if sha512h != nil {
		d.SHA512 = hex.EncodeToString(sha512h.Sum(nil))
	}
	return d, nil
}

// CreationTime returns the birth time of the file when the platform and
// the filesystem record one
func CreationTime(path string, info os.FileInfo) (time.Time, bool) {
	return creationTime(path, info)
}

// ErrInvalidSize is returned by ParseSize for malformed input
var ErrInvalidSize = errors.New("invalid size")

// ParseSize parses size string (e.g., "650K", "1M") to bytes.
// An empty string is zero.
func ParseSize(sizeStr string) (int64, error) {
	sizeStr = strings.TrimSpace(sizeStr)
	if len(sizeStr) == 0 {
		return 0, nil
	}

	// Get last character (unit)
	last := sizeStr[len(sizeStr)-1]
	var multiplier int64 = 1

	switch last {
	case 'K', 'k':
		multiplier = 1024
		sizeStr = sizeStr[:len(sizeStr)-1]
	case 'M', 'm':
		multiplier = 1024 * 1024
		sizeStr = sizeStr[:len(sizeStr)-1]
	case 'G', 'g':
		multiplier = 1024 * 1024 * 1024
		sizeStr = sizeStr[:len(sizeStr)-1]
	}

	// Parse number
	size, err := strconv.ParseInt(sizeStr, 10, 64)
	if err != nil || size < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, sizeStr)
	}

	return size * multiplier, nil
}
