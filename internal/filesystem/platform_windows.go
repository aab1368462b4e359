//go:build windows

package filesystem

import (
	"os"
	"syscall"
	"time"
)

// creationTime gets the creation time from FileInfo (Windows)
func creationTime(_ string, info os.FileInfo) (time.Time, bool) {
	if info == nil {
		return time.Time{}, false
	}
	stat, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(0, stat.CreationTime.Nanoseconds()), true
}
