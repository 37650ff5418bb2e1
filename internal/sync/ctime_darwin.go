//go:build darwin

package sync

import (
	"os"
	"syscall"
	"time"
)

// changeTime extracts the inode change time, the cheapest signal that a
// file was touched since a given instant.
func changeTime(info os.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Ctimespec.Sec, st.Ctimespec.Nsec)
	}
	return info.ModTime()
}
