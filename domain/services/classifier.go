package services

import (
	"fmt"
	"time"

	"github.com/Atlas-Disco/AdminDisableCiscoSwitch/domain/entities"
)

const day = 24 * time.Hour

// ThresholdFromDays converts an operator supplied day count into a duration
func ThresholdFromDays(days int) (time.Duration, error) {
	if days < 0 {
		return 0, fmt.Errorf("threshold must be zero or more days, got %d", days)
	}
	return time.Duration(days) * day, nil
}

// Classify decides whether record has been idle for longer than threshold.
// An interface that never received input is always inactive. A timestamp
// exactly threshold old is still active.
func Classify(record entities.InterfaceRecord, now time.Time, threshold time.Duration) entities.InactivityVerdict {
	verdict := entities.InactivityVerdict{
		Interface: record.Name,
		LastInput: record.LastInput,
	}
	if record.LastInput.IsNever() {
		verdict.Inactive = true
		return verdict
	}

	idle := now.Sub(record.LastInput.Time())
	if idle > 0 {
		verdict.Idle = idle
	}
	verdict.Inactive = idle > threshold
	return verdict
}

// ClassifyAll classifies every record in order
func ClassifyAll(records []entities.InterfaceRecord, now time.Time, threshold time.Duration) []entities.InactivityVerdict {
	verdicts := make([]entities.InactivityVerdict, 0, len(records))
	for _, record := range records {
		verdicts = append(verdicts, Classify(record, now, threshold))
	}
	return verdicts
}
