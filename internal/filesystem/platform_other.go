//go:build !linux && !darwin && !windows

package filesystem

import (
	"os"
	"time"
)

// creationTime is not available on this platform
func creationTime(_ string, _ os.FileInfo) (time.Time, bool) {
	return time.Time{}, false
}
