package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AATruttse/fundoubler/pkg/models"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ErrRootNotAccessible is returned when the start path itself can't be
// read. Failures below the root are reported per entry instead.
var ErrRootNotAccessible = errors.New("can't read start path")

// Walker walks the filesystem and reports every entry to a callback
type Walker struct {
	fs       afero.Fs
	logger   *zap.Logger
	exclude  *ignore.GitIgnore
	excluded int
}

// NewWalker creates a new filesystem walker. Exclude patterns use the
// gitignore syntax and are matched against root-relative paths.
func NewWalker(fs afero.Fs, exclude []string, logger *zap.Logger) *Walker {
	w := &Walker{
		fs:     fs,
		logger: logger,
	}
	if len(exclude) > 0 {
		w.exclude = ignore.CompileIgnoreLines(exclude...)
	}
	return w
}

// Excluded returns the number of entries skipped by exclude patterns
func (w *Walker) Excluded() int {
	return w.excluded
}

// Walk recursively walks the directory tree in lexical order. Entries that
// can't be read below the root are passed to the callback with Err set.
func (w *Walker) Walk(ctx context.Context, root string, callback func(*models.FileInfo) error) error {
	return afero.Walk(w.fs, root, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil && path == root {
			return fmt.Errorf("%w %s: %v", ErrRootNotAccessible, root, err)
		}

		if path != root && w.shouldExclude(root, path, info) {
			w.excluded++
			w.logger.Debug("Skipping excluded path", zap.String("path", path))
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		fileInfo := &models.FileInfo{
			Path: path,
			Name: filepath.Base(path),
			Info: info,
			Err:  err,
		}
		if info != nil {
			fileInfo.IsDir = info.IsDir()
			fileInfo.IsSymlink = info.Mode()&os.ModeSymlink != 0
			fileInfo.IsRegular = info.Mode().IsRegular()
		}

		return callback(fileInfo)
	})
}

// shouldExclude checks the root-relative path against exclude patterns.
// Directories are also tried with a trailing slash so "dir/" patterns
// prune the whole subtree.
func (w *Walker) shouldExclude(root, path string, info os.FileInfo) bool {
	if w.exclude == nil {
		return false
	}

	relPath, err := filepath.Rel(root, path)
	if err != nil {
		relPath = path
	}

	relPath = filepath.ToSlash(relPath)
	if w.exclude.MatchesPath(relPath) {
		return true
	}
	return info != nil && info.IsDir() && w.exclude.MatchesPath(relPath+"/")
}
