package solve

import (
	"math"

	"raildispatch.dev/core/model"
)

// dwellMinutes returns d = max(MinDwellMin, ceil(rawMinDwellSec/60)), per
// spec.md's minimum dwell constraint.
func dwellMinutes(rawMinDwellSec int) int {
	if rawMinDwellSec <= 0 {
		return MinDwellMin
	}
	d := int(math.Ceil(float64(rawMinDwellSec) / 60.0))
	if d < MinDwellMin {
		return MinDwellMin
	}
	return d
}

// headwayGapMinutes converts a headway constraint's min_gap_sec to minutes.
func headwayGapMinutes(minGapSec int) int {
	if minGapSec <= 0 {
		return 0
	}
	return int(math.Ceil(float64(minGapSec) / 60.0))
}

// speedRestrictionMinTraverse computes the minimum number of minutes a
// train needs to cross a segment of the given length under a speed cap.
func speedRestrictionMinTraverse(distanceM, maxKMH float64) int {
	if maxKMH <= 0 {
		return 1
	}
	hours := (distanceM / 1000.0) / maxKMH
	mins := int(math.Ceil(hours * 60.0))
	if mins < 1 {
		return 1
	}
	return mins
}

// interval is a half-open [start, end) span of minutes.
type interval struct {
	start, end int
}

func (iv interval) overlaps(other interval) bool {
	return iv.start < other.end && other.start < iv.end
}

// booking records which train holds an interval of a block or platform.
type booking struct {
	trainID  string
	interval interval
}

func conflicts(existing []booking, iv interval) bool {
	for _, b := range existing {
		if b.interval.overlaps(iv) {
			return true
		}
	}
	return false
}

// headwayOK checks iv against existing bookings of a headway-constrained
// segment's first block: any other train's booking must be separated from
// iv by at least gap minutes, not merely non-overlapping.
func headwayOK(existing []booking, trainID string, iv interval, constraints []model.Constraint) bool {
	if len(constraints) == 0 {
		return true
	}
	gap := 0
	for _, c := range constraints {
		if g := headwayGapMinutes(c.MinGapSec); g > gap {
			gap = g
		}
	}
	if gap == 0 {
		return true
	}

	for _, b := range existing {
		if b.trainID == trainID {
			continue
		}
		switch {
		case b.interval.end <= iv.start:
			if iv.start-b.interval.end < gap {
				return false
			}
		case iv.end <= b.interval.start:
			if b.interval.start-iv.end < gap {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func platformKey(station, platform string) string {
	return station + "/" + platform
}

func bookBlock(bookings map[string][]booking, key, trainID string, iv interval) {
	bookings[key] = append(bookings[key], booking{trainID: trainID, interval: iv})
}

func bookPlatform(bookings map[string][]booking, station, platform, trainID string, iv interval) {
	key := platformKey(station, platform)
	bookings[key] = append(bookings[key], booking{trainID: trainID, interval: iv})
}
