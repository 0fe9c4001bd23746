// Package temporal implements the confidence decay model: time-based decay
// toward a floor, strengthening toward a ceiling with diminishing returns,
// and staleness checks. Every function is pure; rates and thresholds come
// in as explicit arguments so callers can carry alternate configurations.
package temporal

import (
	"math"
	"strings"
	"time"
)

// DaysSinceSentinel is returned by DaysSince for absent or unparsable
// timestamps. Large enough to exceed any realistic threshold, so callers
// can compare without a null check.
const DaysSinceSentinel = 999

// A month, for decay purposes, is exactly 30 days.
const daysPerMonth = 30.0

// Config carries the process-wide temporal rates. Loaded once, read-only
// thereafter; individual calls take the rates they need so tests can run
// with alternates.
type Config struct {
	WisdomDecayRate      float64 // per 30-day month
	IdentityDecayRate    float64 // per 30-day month
	BeliefDecayRate      float64 // per 30-day month
	WisdomStrengthenRate float64
	IdentityConfirmRate  float64

	StaleThresholdDays     int
	ProactiveThresholdDays int

	// DecayFloor is the confidence below which decay never drops a value.
	DecayFloor float64

	// EdgeDecayRate and ActivationBoost apply to association edges owned by
	// collaborator stores; they live here so one config covers all rates.
	EdgeDecayRate   float64
	ActivationBoost float64
}

// DefaultConfig returns the reference rates.
func DefaultConfig() Config {
	return Config{
		WisdomDecayRate:        0.05,
		IdentityDecayRate:      0.03,
		BeliefDecayRate:        0.02,
		WisdomStrengthenRate:   0.05,
		IdentityConfirmRate:    0.02,
		StaleThresholdDays:     30,
		ProactiveThresholdDays: 14,
		DecayFloor:             0.1,
		EdgeDecayRate:          0.05,
		ActivationBoost:        0.1,
	}
}

// naiveLayouts are ISO-8601 shapes without a zone designator, parsed as
// local time. Zoned values are tried first via RFC 3339.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp as written by collaborator
// stores. Zoned values keep their zone; naive values are taken as local
// time. ok is false for empty or unparsable input.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Decay returns the confidence after time-based decay:
//
//	max(base × (1−rate)^(days/30), floor)
//
// An absent or unparsable lastUsed returns base unchanged (fail-soft).
func Decay(lastUsed string, base, rate, floor float64) float64 {
	t, ok := ParseTimestamp(lastUsed)
	if !ok {
		return base
	}
	months := float64(daysBetween(t, time.Now())) / daysPerMonth
	return math.Max(base*math.Pow(1-rate, months), floor)
}

// Strengthen moves confidence toward the ceiling with diminishing returns:
// current + (ceiling − current) × rate, clamped to the ceiling.
func Strengthen(current, rate, ceiling float64) float64 {
	next := current + (ceiling-current)*rate
	if next > ceiling {
		return ceiling
	}
	return next
}

// IsStale reports whether the last confirmation is older than the
// threshold. Absent or unparsable timestamps are stale; exactly at the
// threshold is not.
func IsStale(lastConfirmed string, thresholdDays int) bool {
	return DaysSince(lastConfirmed) > thresholdDays
}

// DaysSince returns whole days elapsed since the timestamp, or
// DaysSinceSentinel when it is absent or unparsable.
func DaysSince(timestamp string) int {
	t, ok := ParseTimestamp(timestamp)
	if !ok {
		return DaysSinceSentinel
	}
	return daysBetween(t, time.Now())
}

// daysBetween truncates to whole days; future timestamps count as zero.
func daysBetween(then, now time.Time) int {
	d := now.Sub(then)
	if d < 0 {
		return 0
	}
	return int(d.Hours() / 24)
}
