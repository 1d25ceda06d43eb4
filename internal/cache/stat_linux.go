//go:build linux

package cache

import (
	"os"
	"syscall"
	"time"
)

// entryTimestamp returns the best-available timestamp for a cached
// executable: last-access time, then modification time, then inode change
// time, then the given fallback.
func entryTimestamp(info os.FileInfo, fallback time.Time) time.Time {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		if mod := info.ModTime(); !mod.IsZero() {
			return mod
		}
		return fallback
	}

	if stat.Atim.Sec > 0 {
		return time.Unix(stat.Atim.Sec, stat.Atim.Nsec)
	}
	if stat.Mtim.Sec > 0 {
		return time.Unix(stat.Mtim.Sec, stat.Mtim.Nsec)
	}
	if stat.Ctim.Sec > 0 {
		return time.Unix(stat.Ctim.Sec, stat.Ctim.Nsec)
	}
	return fallback
}
