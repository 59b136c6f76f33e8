//go:build windows

package input

import (
	"os"
)

// windows consoles have no resize signal; size changes are picked up on the
// next redraw
func notifyResize(signals chan os.Signal) {}
