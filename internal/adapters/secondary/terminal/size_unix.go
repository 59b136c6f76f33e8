//go:build !windows

package terminal

import (
	"golang.org/x/sys/unix"
)

// cellPixels returns the pixel size of one cell from the window size ioctl
func cellPixels(fd uintptr) (int, int, bool) {
	ws, err := unix.IoctlGetWinsize(int(fd), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 || ws.Row == 0 || ws.Xpixel == 0 || ws.Ypixel == 0 {
		return 0, 0, false
	}
	return int(ws.Xpixel / ws.Col), int(ws.Ypixel / ws.Row), true
}
