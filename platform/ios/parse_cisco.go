package ios

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/entities"
)

// LastInputDateLayout is the absolute date format accepted in "Last input" lines
const LastInputDateLayout = "2006-01-02"

const maxLineSize = 1024 * 1024

var (
	ethernetHeaderRegex = regexp.MustCompile(`^([A-Za-z-]*Ethernet\d+(?:/\d+)+(?:\.\d+)?)(?:\s|,|$)`)
	lastInputRegex      = regexp.MustCompile(`\bLast input\s+([^,]+?),`)
	clockUptimeRegex    = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})$`)
	compactUptimeRegex  = regexp.MustCompile(`^(?:(\d+)y)?(?:(\d+)w)?(?:(\d+)d)?(?:(\d+)h)?$`)
	commandErrHints     = []string{
		"invalid input",
		"unknown command",
		"incomplete command",
		"ambiguous command",
		"unrecognized command",
		"invalid command",
		"syntax error",
		"cannot find command",
	}

	errUnsupportedFormat = errors.New("unsupported format")
)

type parseState int

const (
	scanning parseState = iota
	awaitingLastInput
)

// Parser reads Cisco IOS "show interfaces" output.
type Parser struct {
	logger   logrus.FieldLogger
	now      func() time.Time
	location *time.Location
}

// NewParser creates a parser. now anchors relative "Last input" values
// such as 3d04h; dates are read in the local time zone.
func NewParser(logger logrus.FieldLogger, now func() time.Time) *Parser {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if now == nil {
		now = time.Now
	}
	return &Parser{logger: logger, now: now, location: time.Local}
}

// WithLocation returns a copy of the parser reading dates in loc.
func (p *Parser) WithLocation(loc *time.Location) *Parser {
	clone := *p
	clone.location = loc
	return &clone
}

// Parse yields one record per Ethernet interface that reports a usable
// "Last input" value. Interfaces whose block carries no such line are
// dropped silently; interfaces with a value that cannot be read are dropped
// with a warning.
func (p *Parser) Parse(r io.Reader) iter.Seq[entities.InterfaceRecord] {
	return func(yield func(entities.InterfaceRecord) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

		state := scanning
		pending := ""
		for scanner.Scan() {
			line := strings.TrimRight(scanner.Text(), "\r")

			if isBlockHeader(line) {
				if state == awaitingLastInput {
					p.logger.WithField("interface", pending).Debug("No Last input line in block, interface ignored")
				}
				state, pending = scanning, ""
				if match := ethernetHeaderRegex.FindStringSubmatch(line); match != nil {
					state, pending = awaitingLastInput, match[1]
				}
				continue
			}

			if state != awaitingLastInput {
				continue
			}
			match := lastInputRegex.FindStringSubmatch(line)
			if match == nil {
				continue
			}
			state = scanning
			name := pending
			pending = ""

			lastInput, err := p.parseLastInput(match[1])
			if err != nil {
				skip := &entities.ParseSkipError{Interface: name, Value: match[1], Err: err}
				p.logger.WithField("interface", name).Warn(skip.Error())
				continue
			}
			if !yield(entities.InterfaceRecord{Name: name, LastInput: lastInput}) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			p.logger.WithError(err).Warn("Stopped reading interface output")
		}
	}
}

func (p *Parser) parseLastInput(value string) (entities.LastInput, error) {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "never") {
		return entities.NeverInput(), nil
	}
	if at, err := time.ParseInLocation(LastInputDateLayout, value, p.location); err == nil {
		return entities.InputAt(at), nil
	}
	if elapsed, ok := parseUptime(value); ok {
		return entities.InputAt(p.now().Add(-elapsed)), nil
	}
	return entities.LastInput{}, fmt.Errorf("%w: want never, %s or an IOS uptime", errUnsupportedFormat, LastInputDateLayout)
}

// parseUptime reads the elapsed-time notations IOS prints in counters:
// 00:01:02, 3d04h, 2w1d and 1y20w.
func parseUptime(value string) (time.Duration, bool) {
	if match := clockUptimeRegex.FindStringSubmatch(value); match != nil {
		hours, err := strconv.Atoi(match[1])
		if err != nil {
			return 0, false
		}
		minutes, _ := strconv.Atoi(match[2])
		seconds, _ := strconv.Atoi(match[3])
		if minutes > 59 || seconds > 59 {
			return 0, false
		}
		elapsed, ok := scale(hours, time.Hour)
		if !ok {
			return 0, false
		}
		return addDuration(elapsed, time.Duration(minutes)*time.Minute+time.Duration(seconds)*time.Second)
	}

	match := compactUptimeRegex.FindStringSubmatch(value)
	if match == nil || value == "" {
		return 0, false
	}
	units := []time.Duration{365 * 24 * time.Hour, 7 * 24 * time.Hour, 24 * time.Hour, time.Hour}
	var total time.Duration
	for i, unit := range units {
		if match[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(match[i+1])
		if err != nil {
			return 0, false
		}
		part, ok := scale(n, unit)
		if !ok {
			return 0, false
		}
		if total, ok = addDuration(total, part); !ok {
			return 0, false
		}
	}
	return total, true
}

func scale(n int, unit time.Duration) (time.Duration, bool) {
	if n < 0 || int64(n) > math.MaxInt64/int64(unit) {
		return 0, false
	}
	return time.Duration(n) * unit, true
}

func addDuration(a, b time.Duration) (time.Duration, bool) {
	if a > math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}

// isBlockHeader reports whether line starts a new interface block.
// IOS indents every line of a block except its header.
func isBlockHeader(line string) bool {
	if line == "" {
		return false
	}
	switch line[0] {
	case ' ', '\t':
		return false
	}
	return strings.Contains(line, " is ") || ethernetHeaderRegex.MatchString(line)
}

// isIOSCommandError looks only at lines IOS marks with a leading %, so
// descriptions or banners quoting an error text are not mistaken for one.
func isIOSCommandError(output string) bool {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "%") {
			continue
		}
		lower := strings.ToLower(line)
		for _, keyword := range commandErrHints {
			if strings.Contains(lower, keyword) {
				return true
			}
		}
	}
	return false
}
