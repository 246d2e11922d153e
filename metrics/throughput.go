package metrics

import (
	"raildispatch.dev/core/model"
	"raildispatch.dev/core/solve"
)

// SegmentThroughput is one segment's usage summary.
type SegmentThroughput struct {
	TrainCount     int
	CountByType    map[model.TrainType]int
	AvgTraverseMin float64
	UtilisationPct float64
}

// ThroughputMetrics maps segment id to its throughput summary.
type ThroughputMetrics map[string]SegmentThroughput

// Throughput computes ThroughputMetrics from a solved Solution.
func Throughput(sol *solve.Solution) ThroughputMetrics {
	type accum struct {
		countByType map[model.TrainType]int
		traverseSum int
		traverseN   int
	}
	bySegment := map[string]*accum{}

	for _, tr := range sol.Trains {
		for _, seg := range tr.Segments {
			a, ok := bySegment[seg.SegmentID]
			if !ok {
				a = &accum{countByType: map[model.TrainType]int{}}
				bySegment[seg.SegmentID] = a
			}
			a.countByType[tr.Type]++
			a.traverseSum += seg.ExitMin - seg.EntryMin
			a.traverseN++
		}
	}

	out := ThroughputMetrics{}
	for segID, a := range bySegment {
		count := 0
		for _, n := range a.countByType {
			count += n
		}
		avgTraverse := 0.0
		if a.traverseN > 0 {
			avgTraverse = float64(a.traverseSum) / float64(a.traverseN)
		}
		utilisation := 0.0
		if sol.Horizon > 0 {
			utilisation = float64(a.traverseSum) / float64(sol.Horizon) * 100.0
		}
		out[segID] = SegmentThroughput{
			TrainCount:     count,
			CountByType:    a.countByType,
			AvgTraverseMin: avgTraverse,
			UtilisationPct: utilisation,
		}
	}
	return out
}
