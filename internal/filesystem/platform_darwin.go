//go:build darwin

package filesystem

import (
	"os"
	"syscall"
	"time"
)

// creationTime gets the birth time from FileInfo (macOS)
func creationTime(_ string, info os.FileInfo) (time.Time, bool) {
	if info == nil {
		return time.Time{}, false
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(stat.Birthtimespec.Sec, stat.Birthtimespec.Nsec), true
}
