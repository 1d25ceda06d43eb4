//go:build !linux

package cache

import (
	"os"
	"time"
)

// entryTimestamp returns the modification time, or the given fallback
// when the filesystem reports none. Access time is not portably available
// off Linux without cgo-level stat handling.
func entryTimestamp(info os.FileInfo, fallback time.Time) time.Time {
	if mod := info.ModTime(); !mod.IsZero() {
		return mod
	}
	return fallback
}
