package terminal

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/muesli/cancelreader"
)

// Chunk is one read from the input tty
type Chunk struct {
	Data []byte
	Err  error
}

// inputPump owns the only reader of the input tty. Reads go to the key
// stream, or to a capability query while one is in flight.
type inputPump struct {
	reader cancelreader.CancelReader
	keys   chan Chunk
	logger *slog.Logger

	mu   sync.Mutex
	sink chan []byte
}

func startInputPump(in io.Reader, logger *slog.Logger) (*inputPump, error) {
	reader, err := cancelreader.NewReader(in)
	if err != nil {
		return nil, err
	}
	p := &inputPump{
		reader: reader,
		keys:   make(chan Chunk, 16),
		logger: logger,
	}
	go p.run()
	return p, nil
}

func (p *inputPump) run() {
	defer close(p.keys)
	buf := make([]byte, 256)
	for {
		n, err := p.reader.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			if sink := p.currentSink(); sink != nil {
				select {
				case sink <- data:
				default:
					p.logger.Debug("dropping input during capability query")
				}
			} else {
				p.keys <- Chunk{Data: data}
			}
		}
		if err != nil {
			if !errors.Is(err, cancelreader.ErrCanceled) && !errors.Is(err, io.EOF) {
				p.keys <- Chunk{Err: err}
			}
			return
		}
	}
}

func (p *inputPump) currentSink() chan []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sink
}

// divert routes input to the returned channel until restore
func (p *inputPump) divert() <-chan []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sink = make(chan []byte, 64)
	return p.sink
}

func (p *inputPump) restore() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sink = nil
}

func (p *inputPump) cancel() {
	p.reader.Cancel()
}
