package entities

import "time"

// LastInput holds the device-reported time an interface last received traffic
type LastInput struct {
	never bool
	at    time.Time
}

// NeverInput returns the state for an interface that never received traffic
func NeverInput() LastInput {
	return LastInput{never: true}
}

// InputAt returns the state for an interface last seen receiving at t
func InputAt(t time.Time) LastInput {
	return LastInput{at: t}
}

// IsNever reports whether no traffic was ever recorded
func (l LastInput) IsNever() bool {
	return l.never
}

// Time returns the last input timestamp; zero for Never
func (l LastInput) Time() time.Time {
	return l.at
}

func (l LastInput) String() string {
	if l.never {
		return "never"
	}
	return l.at.Format(time.DateOnly)
}

// InterfaceRecord is one physical interface parsed from a show interfaces snapshot
type InterfaceRecord struct {
	Name      string
	LastInput LastInput
}

// InactivityVerdict is the classification outcome for one interface
type InactivityVerdict struct {
	Interface string
	LastInput LastInput
	Idle      time.Duration // now - last input, zero for Never
	Inactive  bool
}
