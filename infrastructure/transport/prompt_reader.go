package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultTimeout = 60 * time.Second
	BufferSize     = 4096

	pollInterval = 500 * time.Millisecond
)

var errPromptTimeout = errors.New("timeout waiting for prompt")

// outputChunk is one read from a pumped stream
type outputChunk struct {
	data []byte
	err  error
}

// pumpOutput copies r into a channel from its own goroutine until r fails
// or done is closed. The channel is closed after the last chunk.
func pumpOutput(r io.Reader, done <-chan struct{}) <-chan outputChunk {
	ch := make(chan outputChunk, 16)
	go func() {
		defer close(ch)
		for {
			buf := make([]byte, BufferSize)
			n, err := r.Read(buf)
			if n > 0 {
				select {
				case ch <- outputChunk{data: buf[:n]}:
				case <-done:
					return
				}
			}
			if err != nil {
				select {
				case ch <- outputChunk{err: err}:
				case <-done:
				}
				return
			}
		}
	}()
	return ch
}

// promptReader accumulates device output until one of the expected prompts
// shows up. It reads either r, polling with setDeadline, or chunks fed by
// pumpOutput.
type promptReader struct {
	r           io.Reader
	setDeadline func(time.Time) error
	chunks      <-chan outputChunk
	logger      logrus.FieldLogger
	raw         bool
	buf         []byte
}

func (p *promptReader) readUntil(pattern string, timeout time.Duration) (string, error) {
	return p.readUntilAny([]string{pattern}, timeout)
}

func (p *promptReader) readUntilAny(patterns []string, timeout time.Duration) (string, error) {
	var output strings.Builder
	output.Grow(BufferSize)
	deadline := time.Now().Add(timeout)

	for {
		data, err := p.next(deadline)
		if len(data) > 0 {
			output.Write(data)
			if p.raw {
				p.logger.Infof("Switch output: Read: %s", string(data))
			}
			text := output.String()
			for _, pattern := range patterns {
				if strings.Contains(text, pattern) {
					return text, nil
				}
			}
		}

		if err != nil {
			if errors.Is(err, errPromptTimeout) {
				return output.String(), fmt.Errorf("%w: %s", errPromptTimeout, strings.Join(patterns, ", "))
			}
			return output.String(), fmt.Errorf("read error: %w", err)
		}

		if time.Now().After(deadline) {
			return output.String(), fmt.Errorf("%w: %s", errPromptTimeout, strings.Join(patterns, ", "))
		}
	}
}

// next returns the following piece of output, or errPromptTimeout once
// deadline has passed with nothing to read
func (p *promptReader) next(deadline time.Time) ([]byte, error) {
	if p.chunks != nil {
		timer := time.NewTimer(max(time.Until(deadline), 0))
		defer timer.Stop()
		select {
		case chunk, ok := <-p.chunks:
			if !ok {
				return nil, io.EOF
			}
			return chunk.data, chunk.err
		case <-timer.C:
			return nil, errPromptTimeout
		}
	}

	if p.buf == nil {
		p.buf = make([]byte, BufferSize)
	}
	if p.setDeadline != nil {
		_ = p.setDeadline(time.Now().Add(pollInterval))
	}
	n, err := p.r.Read(p.buf)
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			if time.Now().After(deadline) {
				return p.buf[:n], errPromptTimeout
			}
			return p.buf[:n], nil
		}
	}
	return p.buf[:n], err
}

// trimEcho drops the echoed command line and the trailing prompt line
func trimEcho(output string) string {
	output = strings.ReplaceAll(output, "\r\n", "\n")
	lines := strings.Split(output, "\n")
	if len(lines) < 3 {
		return ""
	}
	return strings.Join(lines[1:len(lines)-1], "\n")
}
