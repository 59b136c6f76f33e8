package graphics

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/nfnt/resize"

	"github.com/fredcamaral/slideterm/internal/domain/entities"
)

const (
	// kittyChunkSize is the largest base64 payload per graphics command
	kittyChunkSize = 4096

	// Native transports receive at most this many pixels per cell
	maxCellPixelsX = 20
	maxCellPixelsY = 40

	upperHalfBlock = "▀"
)

// kittyImage is an image encoded as kitty graphics protocol commands
type kittyImage struct {
	columns, rows int
	payload       []byte
}

func (k *kittyImage) Protocol() entities.ImageProtocol { return entities.ProtocolKitty }
func (k *kittyImage) Cells() (int, int)                 { return k.columns, k.rows }

// itermImage is an image encoded as an iTerm2 inline file escape
type itermImage struct {
	columns, rows int
	payload       []byte
}

func (i *itermImage) Protocol() entities.ImageProtocol { return entities.ProtocolITerm2 }
func (i *itermImage) Cells() (int, int)                 { return i.columns, i.rows }

// blockImage is an image approximated with half-block characters, two pixels
// per cell
type blockImage struct {
	columns, rows int
	lines         []entities.Text
}

func (b *blockImage) Protocol() entities.ImageProtocol { return entities.ProtocolBlocks }
func (b *blockImage) Cells() (int, int)                 { return b.columns, b.rows }

// encodePNG shrinks img to the cell budget and encodes it as PNG
func encodePNG(img image.Image, columns, rows int) ([]byte, error) {
	scaled := resize.Thumbnail(uint(columns*maxCellPixelsX), uint(rows*maxCellPixelsY), img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeKitty(img image.Image, columns, rows int) (*kittyImage, error) {
	data, err := encodePNG(img, columns, rows)
	if err != nil {
		return nil, err
	}
	encoded := base64.StdEncoding.EncodeToString(data)

	var sb strings.Builder
	for first := true; first || len(encoded) > 0; first = false {
		chunk := encoded
		if len(chunk) > kittyChunkSize {
			chunk = chunk[:kittyChunkSize]
		}
		encoded = encoded[len(chunk):]
		more := 0
		if len(encoded) > 0 {
			more = 1
		}
		if first {
			fmt.Fprintf(&sb, "\x1b_Ga=T,f=100,q=2,c=%d,r=%d,m=%d;%s\x1b\\", columns, rows, more, chunk)
			continue
		}
		fmt.Fprintf(&sb, "\x1b_Gm=%d;%s\x1b\\", more, chunk)
	}
	return &kittyImage{columns: columns, rows: rows, payload: []byte(sb.String())}, nil
}

func encodeITerm(img image.Image, columns, rows int) (*itermImage, error) {
	data, err := encodePNG(img, columns, rows)
	if err != nil {
		return nil, err
	}
	payload := fmt.Sprintf("\x1b]1337;File=inline=1;size=%d;width=%d;height=%d;preserveAspectRatio=1:%s\a",
		len(data), columns, rows, base64.StdEncoding.EncodeToString(data))
	return &itermImage{columns: columns, rows: rows, payload: []byte(payload)}, nil
}

func encodeBlocks(img image.Image, columns, rows int) *blockImage {
	scaled := resize.Resize(uint(columns), uint(rows*2), img, resize.Bilinear)
	bounds := scaled.Bounds()

	lines := make([]entities.Text, 0, rows)
	for row := 0; row < rows; row++ {
		line := make(entities.Text, 0, columns)
		for col := 0; col < columns; col++ {
			x := bounds.Min.X + col
			y := bounds.Min.Y + row*2
			line = append(line, entities.StyledSpan{
				Text: upperHalfBlock,
				Role: entities.RoleText,
				Style: entities.Style{
					Foreground: hexColor(scaled.At(x, y)),
					Background: hexColor(scaled.At(x, y+1)),
				},
			})
		}
		lines = append(lines, line)
	}
	return &blockImage{columns: columns, rows: rows, lines: lines}
}

// hexColor converts a pixel to "#rrggbb"; fully transparent pixels map to the
// terminal default
func hexColor(c color.Color) entities.Color {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return ""
	}
	if a != 0xffff {
		r = r * 0xffff / a
		g = g * 0xffff / a
		b = b * 0xffff / a
	}
	return entities.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}
