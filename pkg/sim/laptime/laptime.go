// Package laptime computes the time of a single lap.
package laptime

import (
	"github.com/mpapenbr/race-strategy-sim/pkg/model"
	"github.com/mpapenbr/race-strategy-sim/pkg/sim/rng"
)

const (
	// MinLapTime is the lower bound of a simulated lap in seconds.
	MinLapTime = 1.0
	// MaxNoise is the bound of the random per-lap deviation in seconds.
	MaxNoise = 2.0

	minCornerFactor = 0.6
	minLengthFactor = 0.7
	refCorners      = 15.0
	refLength       = 4.5

	preCliffSlope  = 3.0
	postCliffSlope = 8.0

	rainFactor       = 1.10
	windFactor       = 1.05
	hardTrackFactor  = 1.05
	easyTrackFactor  = 0.98
	fuelCornerFactor = 0.004
)

type (
	// Input describes the situation of a single lap.
	Input struct {
		Track       *model.Track
		Weather     *model.Weather // nil is dry
		Compound    model.TyreCompound
		TyreAge     int // laps since the last tyre change
		Fuel        model.FuelLoad
		BaseLapTime float64 // seconds
	}
	Option    func(*Simulator)
	Simulator struct {
		src   rng.Source
		floor float64
	}
)

func NewSimulator(opts ...Option) *Simulator {
	ret := &Simulator{floor: MinLapTime}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.src == nil {
		ret.src = rng.New()
	}
	return ret
}

func WithSource(src rng.Source) Option {
	return func(s *Simulator) {
		s.src = src
	}
}

func WithFloor(arg float64) Option {
	return func(s *Simulator) {
		s.floor = arg
	}
}

// Lap returns the lap time in seconds including the random noise.
func (s *Simulator) Lap(in *Input) float64 {
	ret := s.Modifiers(in) + rng.Between(s.src, -MaxNoise, MaxNoise)
	return max(s.floor, ret)
}

// Modifiers returns the lap time in seconds before noise is applied.
func (s *Simulator) Modifiers(in *Input) float64 {
	cf := CornerFactor(in.Track)
	lf := LengthFactor(in.Track)

	ret := in.BaseLapTime
	ret += CompoundBonus(&in.Compound, cf, lf)
	ret += WearPenalty(&in.Compound, in.TyreAge, cf, lf)
	ret *= WeatherFactor(in.Weather)
	ret *= DifficultyFactor(in.Track.Difficulty)
	ret *= FuelFactor(in.Fuel, cf)
	return ret
}

func CornerFactor(t *model.Track) float64 {
	return max(minCornerFactor, float64(t.Corners)/refCorners)
}

func LengthFactor(t *model.Track) float64 {
	return max(minLengthFactor, t.Length/refLength)
}

func CompoundBonus(c *model.TyreCompound, cf, lf float64) float64 {
	return c.BaseLapTimeBonus * cf * cf / lf
}

// WearPenalty grows linear with age until the durability of the compound is
// exceeded. After that the age is counted from the cliff with a steeper
// slope, so the penalty drops at Durability+1 before it outgrows the old one.
func WearPenalty(c *model.TyreCompound, age int, cf, lf float64) float64 {
	if age <= c.Durability {
		return c.WearRate * float64(age) * preCliffSlope * cf * lf
	}
	return c.WearRate * float64(age-c.Durability) * postCliffSlope * cf * lf
}

func WeatherFactor(w *model.Weather) float64 {
	ret := 1.0
	if w == nil {
		return ret
	}
	if w.RainIntensity > 5 {
		ret *= rainFactor
	}
	if w.WindSpeed > 30 {
		ret *= windFactor
	}
	return ret
}

func DifficultyFactor(d model.Difficulty) float64 {
	switch d {
	case model.DifficultyHard:
		return hardTrackFactor
	case model.DifficultyEasy:
		return easyTrackFactor
	default:
		return 1.0
	}
}

// FuelFactor makes light cars faster and heavy cars slower, scaled by the
// corner factor.
func FuelFactor(f model.FuelLoad, cf float64) float64 {
	switch f {
	case model.FuelLight:
		return 1 - fuelCornerFactor*cf
	case model.FuelHeavy:
		return 1 + fuelCornerFactor*cf
	default:
		return 1.0
	}
}
