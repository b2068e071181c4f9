package model

import "math"

// TyreCompound holds grip and wear characteristics of a tyre.
// BaseLapTimeBonus is added to the lap time, negative values are faster.
type TyreCompound struct {
	Name               string  `json:"name" yaml:"name"`
	GripLevel          float64 `json:"gripLevel" yaml:"gripLevel"`
	Durability         int     `json:"durability" yaml:"durability"` // laps before the wear cliff
	WearRate           float64 `json:"wearRate" yaml:"wearRate"`
	BaseLapTimeBonus   float64 `json:"baseLapTimeBonus" yaml:"baseLapTimeBonus"`
	OptimalTemperature int     `json:"optimalTemperature" yaml:"optimalTemperature"`
}

func (t TyreCompound) IsZero() bool {
	return t == TyreCompound{}
}

// PerformanceRating is the grip level as integer percentage.
func (t TyreCompound) PerformanceRating() int {
	return int(math.Round(t.GripLevel * 100))
}
