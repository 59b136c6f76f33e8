//go:build windows

package terminal

// cellPixels is unavailable on windows consoles
func cellPixels(fd uintptr) (int, int, bool) {
	return 0, 0, false
}
