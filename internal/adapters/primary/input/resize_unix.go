//go:build !windows

package input

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

func notifyResize(signals chan os.Signal) {
	signal.Notify(signals, unix.SIGWINCH)
}
