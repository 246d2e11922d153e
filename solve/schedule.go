package solve

import (
	"sort"

	"raildispatch.dev/core/model"
)

// scheduleTrains commits every train in order, in a single pass: each
// train books the earliest feasible arrival/platform/block assignment
// given what trains scheduled before it have already booked. This is
// sufficient to satisfy every invariant in spec.md's §8 (each booking
// step only accepts an assignment that keeps the constraint it owns
// true), though, unlike a CP-SAT search, it does not backtrack an
// earlier train to make room for a later one.
func scheduleTrains(m *Model, order []*TrainVars) (*Solution, error) {
	blockBookings := map[string][]booking{}
	platformBookings := map[string][]booking{}

	seedMaintenance(m, blockBookings)
	seedFixedOccupancies(m, platformBookings)

	for _, tv := range order {
		if err := scheduleTrain(m, tv, blockBookings, platformBookings); err != nil {
			return nil, err
		}
	}

	return extractSolution(m), nil
}

func seedMaintenance(m *Model, blockBookings map[string][]booking) {
	for segID, constraints := range m.maintenanceBySegment {
		for _, c := range constraints {
			for b := 0; b < BlocksPerSegment; b++ {
				key := model.Block{Segment: segID, Index: b}.String()
				bookBlock(blockBookings, key, "maintenance", interval{c.Start, c.End})
			}
		}
	}
}

func seedFixedOccupancies(m *Model, platformBookings map[string][]booking) {
	for _, occ := range m.Problem.FixedOccupancies {
		bookPlatform(platformBookings, occ.StationID, occ.PlatformID, occ.TrainID, interval{occ.StartMin, occ.EndMin})
	}
	for _, c := range m.platformMaintenance {
		bookPlatform(platformBookings, c.StationID, c.PlatformID, "maintenance", interval{c.Start, c.End})
	}
}

// scheduleTrain walks one train's route stop by stop, choosing the
// earliest arrival time and platform that respects the planned window,
// dwell, travel continuity and platform exclusivity, then advances the
// outgoing segment's blocks before moving to the next stop.
func scheduleTrain(m *Model, tv *TrainVars, blockBookings, platformBookings map[string][]booking) error {
	prevDeparture := -1
	minArrivalFromBlocks := 0

	for i := range tv.Stops {
		sv := &tv.Stops[i]
		planned := sv.PlannedArrival

		lowArrival := planned - MaxEarlinessMin
		if lowArrival < 0 {
			lowArrival = 0
		}
		if i > 0 {
			if prevDeparture+1 > lowArrival {
				lowArrival = prevDeparture + 1
			}
			if minArrivalFromBlocks > lowArrival {
				lowArrival = minArrivalFromBlocks
			}
		}

		highArrival := planned + MaxLatenessMin
		if highArrival > m.Horizon {
			highArrival = m.Horizon
		}
		if lowArrival > highArrival {
			return ErrNoFeasibleSolution
		}

		dwell := 0
		if sv.HasArrival && sv.HasDeparture {
			dwell = dwellMinutes(sv.RawMinDwellSec)
		}

		arrival, departure, bookEnd, platformID, ok := choosePlatform(m, sv, lowArrival, highArrival, dwell, platformBookings)
		if !ok {
			return ErrNoFeasibleSolution
		}

		sv.Arrival.Value = arrival
		sv.Departure.Value = departure
		sv.Delay.Value = arrival - planned
		for pid, bv := range sv.Uses {
			bv.Value = pid == platformID
		}
		bookPlatform(platformBookings, sv.Station, platformID, tv.Train.ID, interval{arrival, bookEnd})

		if i < len(tv.Blocks) {
			exitLast, err := scheduleBlocks(m, tv, i, departure, blockBookings)
			if err != nil {
				return err
			}
			minArrivalFromBlocks = exitLast
		}
		prevDeparture = departure
	}
	return nil
}

// choosePlatform searches arrival times in preference order (planned
// time first, then later times, earlier times only as a last resort —
// conflicts are resolved by delay, not by running early), and for each
// arrival tries departures starting at the preferred dwell (the longer
// of the hard minimum and the stop's own planned dwell) and increasing
// from there — never shorter than preferred, since a platform conflict
// is resolved by waiting longer, not by cutting the dwell short. Returns
// the first (arrival, departure, platform) triple free of conflicts.
// bookEnd is the interval end recorded in platformBookings: at least
// arrival+1, so a single-event stop (no real dwell) still occupies its
// platform for a moment instead of a zero-width interval that can never
// conflict.
func choosePlatform(m *Model, sv *StopVars, lowArrival, highArrival, dwell int, bookings map[string][]booking) (arrival, departure, bookEnd int, platformID string, ok bool) {
	candidates := platformCandidates(sv)
	planned := clampInt(sv.PlannedArrival, lowArrival, highArrival)

	preferredDwell := dwell
	if sv.HasDeparture {
		if plannedDwell := sv.PlannedDeparture - sv.PlannedArrival; plannedDwell > preferredDwell {
			preferredDwell = plannedDwell
		}
	}

	for _, a := range candidateArrivals(planned, lowArrival, highArrival) {
		start := a + preferredDwell
		if a+dwell > start {
			start = a + dwell
		}
		for d := start; d <= m.Horizon; d++ {
			end := d
			if end <= a {
				end = a + 1
			}
			for _, p := range candidates {
				key := platformKey(sv.Station, p)
				if !conflicts(bookings[key], interval{a, end}) {
					return a, d, end, p, true
				}
			}
		}
	}
	return 0, 0, 0, "", false
}

// candidateArrivals enumerates arrival minutes in the order choosePlatform
// should try them: planned first, then later times up to highArrival,
// then earlier times down to lowArrival.
func candidateArrivals(planned, lowArrival, highArrival int) []int {
	out := make([]int, 0, highArrival-lowArrival+1)
	out = append(out, planned)
	for a := planned + 1; a <= highArrival; a++ {
		out = append(out, a)
	}
	for a := planned - 1; a >= lowArrival; a-- {
		out = append(out, a)
	}
	return out
}

func clampInt(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

func platformCandidates(sv *StopVars) []string {
	if sv.PreassignedPlatform != "" {
		return []string{sv.PreassignedPlatform}
	}
	out := make([]string, 0, len(sv.Uses))
	for pid := range sv.Uses {
		out = append(out, pid)
	}
	sort.Strings(out)
	return out
}

// scheduleBlocks advances the blocks of the segment following stopIndex,
// returning the exit time of the last block (the lower bound for the next
// stop's arrival). If the segment carries an active speed restriction the
// per-block minimum traverse time is waived in favour of the segment-wide
// minimum enforced on the last block.
func scheduleBlocks(m *Model, tv *TrainVars, stopIndex, departure int, blockBookings map[string][]booking) (int, error) {
	blocks := tv.Blocks[stopIndex]
	segID := blocks[0].Block.Segment
	seg := m.Problem.Segments[segID]
	restricted := seg.SpeedRestriction != nil && seg.SpeedRestriction.Active

	var minTotal int
	if restricted {
		minTotal = speedRestrictionMinTraverse(seg.DistanceM, seg.SpeedRestriction.MaxKMH)
	}

	headway := m.headwayBySegment[segID]
	entry := departure
	entry0 := 0
	exit := 0

	for b := range blocks {
		key := blocks[b].Block.String()
		last := b == len(blocks)-1

		candidateEntry := entry
		for {
			minTraverse := 1
			if restricted {
				minTraverse = 0
				if last {
					if need := entry0 + minTotal - candidateEntry; need > minTraverse {
						minTraverse = need
					}
				}
			}

			candidateExit := candidateEntry + minTraverse
			if candidateExit > m.Horizon {
				return 0, ErrNoFeasibleSolution
			}

			iv := interval{candidateEntry, candidateExit}
			blockFree := !conflicts(blockBookings[key], iv)
			gapOK := b != 0 || headwayOK(blockBookings[key], tv.Train.ID, iv, headway)
			if blockFree && gapOK {
				bookBlock(blockBookings, key, tv.Train.ID, iv)
				blocks[b].Entry.Value = candidateEntry
				blocks[b].Exit.Value = candidateExit
				blocks[b].Occupied.Value = true
				if b == 0 {
					entry0 = candidateEntry
				}
				exit = candidateExit
				entry = candidateExit
				break
			}
			candidateEntry++
		}
	}

	return exit, nil
}
