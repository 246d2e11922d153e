// Package metrics computes delay and throughput summaries over a
// solve.Solution, per spec.md §4.4.
package metrics

import (
	"raildispatch.dev/core/model"
	"raildispatch.dev/core/solve"
)

// TrainDelay is one train's delay summary, in minutes.
type TrainDelay struct {
	AvgDelay float64
	MaxDelay int
}

// TypeDelay is a train-type's delay summary across every sampled event.
type TypeDelay struct {
	AvgDelay float64
	MaxDelay int
	MinDelay int
	Count    int
}

// DelayMetrics is the full delay report over a solved schedule. One
// delay sample is taken per station visited by a train (solve.StopVars'
// own delay variable, arrival-relative-to-planned), not per individual
// arrival/departure output record.
type DelayMetrics struct {
	PerTrain    map[string]TrainDelay
	PerType     map[model.TrainType]TypeDelay
	OverallAvg  float64
	OverallMax  int
	OverallMin  int
	TotalEvents int
}

// Delay computes DelayMetrics from a solved Solution.
func Delay(sol *solve.Solution) DelayMetrics {
	dm := DelayMetrics{
		PerTrain: map[string]TrainDelay{},
		PerType:  map[model.TrainType]TypeDelay{},
	}

	typeSamples := map[model.TrainType][]int{}
	var overall []int

	for _, tr := range sol.Trains {
		var trainSamples []int
		for _, sv := range tr.Stops {
			trainSamples = append(trainSamples, sv.Delay)
		}
		if len(trainSamples) == 0 {
			continue
		}

		dm.PerTrain[tr.TrainID] = TrainDelay{
			AvgDelay: average(trainSamples),
			MaxDelay: maxOf(trainSamples),
		}
		typeSamples[tr.Type] = append(typeSamples[tr.Type], trainSamples...)
		overall = append(overall, trainSamples...)
	}

	for typ, samples := range typeSamples {
		dm.PerType[typ] = TypeDelay{
			AvgDelay: average(samples),
			MaxDelay: maxOf(samples),
			MinDelay: minOf(samples),
			Count:    len(samples),
		}
	}

	dm.TotalEvents = len(overall)
	if len(overall) > 0 {
		dm.OverallAvg = average(overall)
		dm.OverallMax = maxOf(overall)
		dm.OverallMin = minOf(overall)
	}

	return dm
}

func average(vs []int) float64 {
	if len(vs) == 0 {
		return 0
	}
	sum := 0
	for _, v := range vs {
		sum += v
	}
	return float64(sum) / float64(len(vs))
}

func maxOf(vs []int) int {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(vs []int) int {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
