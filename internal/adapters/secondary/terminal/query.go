package terminal

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
)

const (
	// kittyQuery asks for a 1x1 RGB image to be validated but not stored;
	// the trailing primary device attributes request bounds the answer
	kittyQuery  = "\x1b_Gi=31,s=1,v=1,a=q,t=d,f=24;AAAA\x1b\\"
	deviceQuery = "\x1b[c"
	kittyOK     = "\x1b_Gi=31;OK"
)

var deviceAttributes = regexp.MustCompile(`\x1b\[\?[0-9;]*c`)

// protocolFromEnv recognizes terminals that advertise themselves
func protocolFromEnv(getenv func(string) string) entities.ImageProtocol {
	if getenv("KITTY_WINDOW_ID") != "" || getenv("TERM") == "xterm-kitty" || getenv("TERM") == "xterm-ghostty" {
		return entities.ProtocolKitty
	}
	switch strings.ToLower(getenv("TERM_PROGRAM")) {
	case "iterm.app", "wezterm":
		return entities.ProtocolITerm2
	case "ghostty":
		return entities.ProtocolKitty
	}
	return ""
}

// queryCapability sends the graphics query and reads answers until the
// device attributes reply arrives or the timeout expires
func queryCapability(ctx context.Context, write func([]byte) error, responses <-chan []byte, timeout time.Duration) (entities.ImageProtocol, error) {
	if err := write([]byte(kittyQuery + deviceQuery)); err != nil {
		return "", fmt.Errorf("writing capability query: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var answer []byte
	for {
		select {
		case <-ctx.Done():
			if bytes.Contains(answer, []byte(kittyOK)) {
				return entities.ProtocolKitty, nil
			}
			return "", entities.ErrCapabilityTimeout
		case data, ok := <-responses:
			if !ok {
				return "", entities.ErrCapabilityTimeout
			}
			answer = append(answer, data...)
			if !deviceAttributes.Match(answer) {
				continue
			}
			if bytes.Contains(answer, []byte(kittyOK)) {
				return entities.ProtocolKitty, nil
			}
			return entities.ProtocolBlocks, nil
		}
	}
}
