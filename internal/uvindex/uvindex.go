// Package uvindex provides the UV index scale and the time-to-burn lookup
// used by the exposure timer.
package uvindex

import "time"

// Index is a UV index value. The WHO scale is open-ended; values are
// clamped to a plausible non-negative range on ingestion.
type Index int

// MaxTracked is the highest index the lookup table distinguishes.
// Anything above maps to the same extreme-risk bucket.
const MaxTracked Index = 11

// Clamp normalises a raw provider value into the tracked range.
func Clamp(raw int) Index {
	if raw < 0 {
		return 0
	}
	if raw > int(MaxTracked) {
		return MaxTracked
	}
	return Index(raw)
}

// Level categorises a UV index per the WHO exposure categories.
type Level string

const (
	LevelNone     Level = "NONE"
	LevelLow      Level = "LOW"
	LevelModerate Level = "MODERATE"
	LevelHigh     Level = "HIGH"
	LevelVeryHigh Level = "VERY_HIGH"
	LevelExtreme  Level = "EXTREME"
)

// LevelFor returns the exposure category for an index.
func (i Index) LevelFor() Level {
	switch {
	case i <= 0:
		return LevelNone
	case i <= 2:
		return LevelLow
	case i <= 5:
		return LevelModerate
	case i <= 7:
		return LevelHigh
	case i <= 10:
		return LevelVeryHigh
	default:
		return LevelExtreme
	}
}

// timeToBurn maps each UV index to the safe unprotected exposure duration
// for untanned skin. The table is monotonically decreasing; index 0 carries
// no burn risk and is represented by a zero duration.
var timeToBurn = map[Index]time.Duration{
	1:  80 * time.Minute,
	2:  65 * time.Minute,
	3:  50 * time.Minute,
	4:  40 * time.Minute,
	5:  35 * time.Minute,
	6:  30 * time.Minute,
	7:  25 * time.Minute,
	8:  20 * time.Minute,
	9:  17*time.Minute + 30*time.Second,
	10: 15 * time.Minute,
	11: 10 * time.Minute,
}

// TimeToBurn returns the safe exposure duration for the index.
// A zero return means no burn risk (UV index 0); callers must guard
// progress-ratio divisions against it.
func TimeToBurn(i Index) time.Duration {
	if i <= 0 {
		return 0
	}
	if i > MaxTracked {
		i = MaxTracked
	}
	return timeToBurn[i]
}

// HasBurnRisk reports whether the index carries any burn risk.
func (i Index) HasBurnRisk() bool {
	return i > 0
}
