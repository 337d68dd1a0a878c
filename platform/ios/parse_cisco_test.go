package ios

import (
	"bytes"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/entities"
)

const showInterfacesOutput = `Vlan1 is up, line protocol is up
  Hardware is EtherSVI, address is 0011.2233.4455 (bia 0011.2233.4455)
  Last input 00:00:00, output 00:00:00, output hang never
GigabitEthernet1/0/1 is down, line protocol is down (notconnect)
  Hardware is Gigabit Ethernet, address is 0011.2233.4401 (bia 0011.2233.4401)
  MTU 1500 bytes, BW 10000 Kbit/sec, DLY 1000 usec,
  Last input never, output never, output hang never
  Last clearing of "show interface" counters never
GigabitEthernet1/0/2 is up, line protocol is up (connected)
  Hardware is Gigabit Ethernet, address is 0011.2233.4402 (bia 0011.2233.4402)
  Last input 2024-01-15, output 00:00:01, output hang never
GigabitEthernet1/0/3 is up, line protocol is up (connected)
  Hardware is Gigabit Ethernet, address is 0011.2233.4403 (bia 0011.2233.4403)
  Last input 3d04h, output 00:00:01, output hang never
TenGigabitEthernet1/1/1 is up, line protocol is up (connected)
  Last input 00:00:12, output 00:00:00, output hang never
Port-channel1 is up, line protocol is up (connected)
  Last input never, output never, output hang never
`

var referenceNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestParser() (*Parser, *test.Hook) {
	logger, hook := test.NewNullLogger()
	parser := NewParser(logger, func() time.Time { return referenceNow }).WithLocation(time.UTC)
	return parser, hook
}

func TestParse_ShowInterfaces(t *testing.T) {
	parser, hook := newTestParser()

	records := slices.Collect(parser.Parse(strings.NewReader(showInterfacesOutput)))

	expected := []entities.InterfaceRecord{
		{Name: "GigabitEthernet1/0/1", LastInput: entities.NeverInput()},
		{Name: "GigabitEthernet1/0/2", LastInput: entities.InputAt(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))},
		{Name: "GigabitEthernet1/0/3", LastInput: entities.InputAt(referenceNow.Add(-(3*24 + 4) * time.Hour))},
		{Name: "TenGigabitEthernet1/1/1", LastInput: entities.InputAt(referenceNow.Add(-12 * time.Second))},
	}
	assert.Equal(t, expected, records)
	assert.Empty(t, hook.AllEntries(), "no warnings expected for well-formed output")
}

func TestParse_PreservesHeaderOrder(t *testing.T) {
	parser, _ := newTestParser()
	input := `GigabitEthernet1/0/9 is down, line protocol is down (notconnect)
  Last input never, output never, output hang never
FastEthernet0/2 is down, line protocol is down (notconnect)
  Last input never, output never, output hang never
GigabitEthernet1/0/3 is down, line protocol is down (notconnect)
  Last input never, output never, output hang never
`
	var names []string
	for record := range parser.Parse(strings.NewReader(input)) {
		names = append(names, record.Name)
	}
	assert.Equal(t, []string{"GigabitEthernet1/0/9", "FastEthernet0/2", "GigabitEthernet1/0/3"}, names)
}

func TestParse_HeaderWithoutLastInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name: "next header closes the block",
			input: `GigabitEthernet1/0/1 is administratively down, line protocol is down (disabled)
  Hardware is Gigabit Ethernet, address is 0011.2233.4401 (bia 0011.2233.4401)
GigabitEthernet1/0/2 is down, line protocol is down (notconnect)
  Last input never, output never, output hang never
`,
			expected: []string{"GigabitEthernet1/0/2"},
		},
		{
			name: "non ethernet header closes the block",
			input: `GigabitEthernet1/0/1 is up, line protocol is up (connected)
  Hardware is Gigabit Ethernet
Vlan10 is up, line protocol is up
  Last input never, output never, output hang never
`,
			expected: nil,
		},
		{
			name:     "end of input while waiting",
			input:    "GigabitEthernet1/0/1 is up, line protocol is up (connected)\n  Hardware is Gigabit Ethernet\n",
			expected: nil,
		},
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser, _ := newTestParser()
			var names []string
			for record := range parser.Parse(strings.NewReader(tt.input)) {
				names = append(names, record.Name)
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestParse_UnreadableDateIsSkippedWithWarning(t *testing.T) {
	parser, hook := newTestParser()
	input := `GigabitEthernet1/0/1 is up, line protocol is up (connected)
  Last input 01/15/2024, output 00:00:01, output hang never
GigabitEthernet1/0/2 is down, line protocol is down (notconnect)
  Last input never, output never, output hang never
`
	records := slices.Collect(parser.Parse(strings.NewReader(input)))

	require.Len(t, records, 1)
	assert.Equal(t, "GigabitEthernet1/0/2", records[0].Name)

	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "GigabitEthernet1/0/1", entry.Data["interface"])
	assert.Contains(t, entry.Message, "01/15/2024")
}

func TestParse_WindowsLineEndings(t *testing.T) {
	parser, _ := newTestParser()
	input := "FastEthernet0/1 is down, line protocol is down\r\n  Last input never, output never, output hang never\r\n"

	records := slices.Collect(parser.Parse(strings.NewReader(input)))
	require.Len(t, records, 1)
	assert.Equal(t, "FastEthernet0/1", records[0].Name)
	assert.True(t, records[0].LastInput.IsNever())
}

func TestParse_IsLazyAndNotRestartable(t *testing.T) {
	parser, _ := newTestParser()
	filler := "GigabitEthernet2/0/1 is down, line protocol is down (notconnect)\n" +
		"  Last input never, output never, output hang never\n"
	reader := bytes.NewBufferString(showInterfacesOutput + strings.Repeat(filler, 4096))
	seq := parser.Parse(reader)

	for record := range seq {
		assert.Equal(t, "GigabitEthernet1/0/1", record.Name)
		break
	}
	assert.NotZero(t, reader.Len(), "stopping early must leave input unread")

	var rest []string
	for record := range seq {
		rest = append(rest, record.Name)
	}
	assert.NotContains(t, rest, "GigabitEthernet1/0/1", "a consumed prefix is not replayed")
}

func TestParseUptime(t *testing.T) {
	tests := []struct {
		value    string
		expected time.Duration
		ok       bool
	}{
		{value: "00:00:01", expected: time.Second, ok: true},
		{value: "23:59:59", expected: 23*time.Hour + 59*time.Minute + 59*time.Second, ok: true},
		{value: "3d04h", expected: 76 * time.Hour, ok: true},
		{value: "2w1d", expected: 15 * 24 * time.Hour, ok: true},
		{value: "1y20w", expected: (365 + 140) * 24 * time.Hour, ok: true},
		{value: "00:61:00", ok: false},
		{value: "99999999999999999999:00:00", ok: false},
		{value: "2562047788015h", ok: false},
		{value: "300000y", ok: false},
		{value: "292y52w6d23h", ok: false},
		{value: "yesterday", ok: false},
		{value: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, ok := parseUptime(tt.value)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestIsBlockHeader(t *testing.T) {
	tests := []struct {
		line     string
		expected bool
	}{
		{line: "GigabitEthernet1/0/1 is up, line protocol is up (connected)", expected: true},
		{line: "Vlan1 is up, line protocol is up", expected: true},
		{line: "  Last input never, output never, output hang never", expected: false},
		{line: "switch01#", expected: false},
		{line: "", expected: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, isBlockHeader(tt.line), tt.line)
	}
}

func TestIsIOSCommandError(t *testing.T) {
	assert.True(t, isIOSCommandError("shutdownn\n                ^\n% Invalid input detected at '^' marker."))
	assert.True(t, isIOSCommandError("% Ambiguous command:  \"sh\""))
	assert.True(t, isIOSCommandError("  % Incomplete command."))
	assert.False(t, isIOSCommandError("switch01(config-if)#"))
	assert.False(t, isIOSCommandError("  Description: invalid input on uplink, syntax error in patch panel"))
}

func TestParse_OverflowingUptimeIsSkippedWithWarning(t *testing.T) {
	parser, hook := newTestParser()
	input := `GigabitEthernet1/0/1 is up, line protocol is up (connected)
  Last input 9999999999999999999h, output 00:00:01, output hang never
GigabitEthernet1/0/2 is down, line protocol is down (notconnect)
  Last input never, output never, output hang never
`
	records := slices.Collect(parser.Parse(strings.NewReader(input)))

	require.Len(t, records, 1)
	assert.Equal(t, "GigabitEthernet1/0/2", records[0].Name)
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "GigabitEthernet1/0/1", hook.LastEntry().Data["interface"])
}
