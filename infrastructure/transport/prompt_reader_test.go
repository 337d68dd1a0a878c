package transport

import (
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/platform/ios"
)

// chunkReader returns one chunk per Read and then a fixed error
type chunkReader struct {
	chunks []string
	err    error
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		return 0, c.err
	}
	n := copy(p, c.chunks[0])
	c.chunks = c.chunks[1:]
	return n, nil
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

var _ net.Error = timeoutError{}

func TestPromptReader_ReadUntilAny(t *testing.T) {
	logger, hook := test.NewNullLogger()
	reader := &promptReader{
		r:      &chunkReader{chunks: []string{"User Access Verification\r\n", "switch01>"}, err: errors.New("unexpected")},
		logger: logger,
		raw:    true,
	}

	output, err := reader.readUntilAny([]string{ios.PromptPrivileged, ios.PromptEnable}, time.Second)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(output, "switch01>"))
	assert.Len(t, hook.AllEntries(), 2, "raw output logs each chunk")
}

func TestPromptReader_ReadError(t *testing.T) {
	logger, _ := test.NewNullLogger()
	reader := &promptReader{r: strings.NewReader("no prompt here"), logger: logger}

	output, err := reader.readUntil(ios.PromptPrivileged, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read error")
	assert.Equal(t, "no prompt here", output)
}

func TestPromptReader_TimeoutAfterDeadline(t *testing.T) {
	logger, _ := test.NewNullLogger()
	deadlines := 0
	reader := &promptReader{
		r:           &chunkReader{chunks: []string{"Building configuration..."}, err: timeoutError{}},
		setDeadline: func(time.Time) error { deadlines++; return nil },
		logger:      logger,
	}

	_, err := reader.readUntil(ios.PromptPrivileged, 0)
	require.ErrorIs(t, err, errPromptTimeout)
	assert.Positive(t, deadlines)
}

func TestPromptReader_PumpedOutput(t *testing.T) {
	logger, _ := test.NewNullLogger()
	pr, pw := io.Pipe()
	done := make(chan struct{})
	defer close(done)
	reader := &promptReader{chunks: pumpOutput(pr, done), logger: logger}

	go func() {
		time.Sleep(3 * pollInterval)
		_, _ = pw.Write([]byte("show clock\r\n"))
		_, _ = pw.Write([]byte("10:00:00\r\nswitch01#"))
	}()

	output, err := reader.readUntil(ios.PromptPrivileged, 10*time.Second)
	require.NoError(t, err, "silence longer than the poll interval is not an error")
	assert.Equal(t, "10:00:00", trimEcho(output))

	_, err = reader.readUntil(ios.PromptPrivileged, 100*time.Millisecond)
	require.ErrorIs(t, err, errPromptTimeout)

	require.NoError(t, pw.Close())
	_, err = reader.readUntil(ios.PromptPrivileged, time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, io.EOF)
	assert.NotErrorIs(t, err, errPromptTimeout)
}

func TestTrimEcho(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "echo output prompt", input: "show clock\n*10:00:00.000 UTC Mon Jan 1 2024\nswitch01#", expected: "*10:00:00.000 UTC Mon Jan 1 2024"},
		{name: "crlf", input: "show clock\r\nline1\r\nline2\r\nswitch01#", expected: "line1\nline2"},
		{name: "echo and prompt only", input: "shutdown\nswitch01(config-if)#", expected: ""},
		{name: "single line", input: "switch01#", expected: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, trimEcho(tt.input))
		})
	}
}
