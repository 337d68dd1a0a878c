package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ErrNoInput is returned when the input stream ends before an answer
var ErrNoInput = errors.New("no answer on input")

// Terminal asks questions on an input and output stream
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
	// readPassword reads a line without echo; replaced in tests
	readPassword func(fd int) ([]byte, error)
}

// NewTerminal creates a terminal over stdin and stdout
func NewTerminal() *Terminal {
	return New(os.Stdin, os.Stdout, int(os.Stdin.Fd()))
}

// New creates a terminal over arbitrary streams. fd is used for password
// input when it refers to a terminal.
func New(in io.Reader, out io.Writer, fd int) *Terminal {
	return &Terminal{
		in:           bufio.NewReader(in),
		out:          out,
		fd:           fd,
		readPassword: term.ReadPassword,
	}
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question. Only y or yes, in any case, approves.
func (t *Terminal) Confirm(question string) (bool, error) {
	fmt.Fprint(t.out, question)
	answer, err := t.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// Ask reads a free-form answer
func (t *Terminal) Ask(label string) (string, error) {
	fmt.Fprint(t.out, label)
	return t.readLine()
}

// AskInt reads a non-negative integer, asking again on invalid input
func (t *Terminal) AskInt(label string) (int, error) {
	for {
		answer, err := t.Ask(label)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 0 {
			return n, nil
		}
		fmt.Fprintln(t.out, "Please enter a whole number of days.")
	}
}

// Password reads a secret without echo when attached to a terminal
func (t *Terminal) Password(label string) (string, error) {
	fmt.Fprint(t.out, label)
	if !term.IsTerminal(t.fd) {
		return t.readLine()
	}
	secret, err := t.readPassword(t.fd)
	fmt.Fprintln(t.out)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}
