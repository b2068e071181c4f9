package model

import "strings"

type FuelLoad string

const (
	FuelLight  FuelLoad = "Light"
	FuelMedium FuelLoad = "Medium"
	FuelHeavy  FuelLoad = "Heavy"
)

// ParseFuelLoad matches case-insensitive. Unknown values are reported with ok=false.
func ParseFuelLoad(s string) (f FuelLoad, ok bool) {
	for _, v := range []FuelLoad{FuelLight, FuelMedium, FuelHeavy} {
		if strings.EqualFold(s, string(v)) {
			return v, true
		}
	}
	return FuelLoad(s), false
}

// PitStopSeconds is the duration of a single stop for this fuel load.
// Unknown values are handled as Medium.
func (f FuelLoad) PitStopSeconds() float64 {
	switch f {
	case FuelLight:
		return 25.0
	case FuelHeavy:
		return 35.0
	default:
		return 30.0
	}
}

// Strategy describes the planned race strategy.
// TyreStrategy is a compound sequence like "Soft-Medium-Hard", one entry per stint.
type Strategy struct {
	PitStops          int      `json:"pitStops" yaml:"pitStops"`
	TyreStrategy      string   `json:"tyreStrategy" yaml:"tyreStrategy"`
	FuelLoad          FuelLoad `json:"fuelLoad" yaml:"fuelLoad"`
	EstimatedRaceTime float64  `json:"estimatedRaceTime" yaml:"estimatedRaceTime"` // minutes
}

func (s *Strategy) IsConservative() bool {
	return s.PitStops <= 1 && strings.EqualFold(string(s.FuelLoad), string(FuelHeavy))
}
