package race

import (
	"math"
	"strings"

	"github.com/mpapenbr/race-strategy-sim/pkg/model"
)

const (
	StrategyAggressive   = "Aggressive Strategy"
	StrategyBalanced     = "Balanced Strategy"
	StrategyConservative = "Conservative Strategy"
)

// PitStopTime returns the accumulated pit time in seconds.
func PitStopTime(pitStops int, fuel model.FuelLoad) float64 {
	return float64(pitStops) * fuel.PitStopSeconds()
}

func StrategyName(s *model.Strategy) string {
	switch {
	case s.PitStops >= 3 && strings.EqualFold(string(s.FuelLoad), string(model.FuelLight)):
		return StrategyAggressive
	case s.IsConservative():
		return StrategyConservative
	default:
		return StrategyBalanced
	}
}

// LapsForDistance returns the laps needed to cover distance km.
func LapsForDistance(track *model.Track, distance float64) int {
	if track.Length <= 0 || distance <= 0 {
		return 0
	}
	return int(math.Ceil(distance / track.Length))
}

// Rating classifies a race by the minutes needed per km of track length.
func Rating(totalMinutes, trackLength float64) string {
	if trackLength <= 0 {
		return "Needs Improvement"
	}
	perKm := totalMinutes / trackLength
	switch {
	case perKm < 8:
		return "Excellent"
	case perKm < 10:
		return "Very Good"
	case perKm < 12:
		return "Good"
	case perKm < 15:
		return "Average"
	default:
		return "Needs Improvement"
	}
}
