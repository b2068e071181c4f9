// Package performance derives the base vehicle performance of a car on a track.
package performance

import (
	"math"

	"github.com/mpapenbr/race-strategy-sim/pkg/model"
)

const (
	rainFuelFactor = 1.15
	windFuelFactor = 1.05
	windThreshold  = 30
	maxCornering   = 10
)

// Calculate returns the performance of car on track under weather.
// The grip part uses the weather the track is exposed to (see model.Track.Weather).
func Calculate(car *model.Car, track *model.Track, weather *model.Weather) model.Performance {
	accel := Acceleration(car)
	return model.Performance{
		TopSpeed:         TopSpeed(car),
		Acceleration:     accel,
		FuelConsumption:  FuelConsumption(car, track, weather),
		CorneringAbility: CorneringAbility(car, track),
		LapTime:          BaseLapTime(track, accel),
	}
}

func TopSpeed(car *model.Car) int {
	return int(car.Engine.Power*0.75 + car.AeroKit.TopSpeedImpact -
		car.AeroKit.DragCoefficient*120)
}

// Acceleration is the 0-100 time in seconds. Returns 0 if the engine has no
// power or no weight.
func Acceleration(car *model.Car) float64 {
	if car.Engine.Power == 0 || car.Engine.Weight == 0 {
		return 0
	}
	return car.TotalWeight() / car.Engine.Power * 6.0
}

// FuelConsumption returns liters per lap.
func FuelConsumption(car *model.Car, track *model.Track, weather *model.Weather) float64 {
	ret := car.AeroKit.DragCoefficient * 2
	if car.Engine.FuelEfficiency > 0 {
		ret += track.Length / car.Engine.FuelEfficiency
	}
	if weather == nil {
		return ret
	}
	if weather.RainIntensity > 0 {
		ret *= rainFuelFactor
	}
	if weather.WindSpeed > windThreshold {
		ret *= windFuelFactor
	}
	return ret
}

func CorneringAbility(car *model.Car, track *model.Track) int {
	grip := (car.FrontTyre.GripLevel + car.RearTyre.GripLevel) * track.EffectiveGrip()
	return min(maxCornering, int(math.Floor(grip*5+car.AeroKit.Downforce/50)))
}

// BaseLapTime is a coarse estimate in seconds used as seed for the lap simulation.
func BaseLapTime(track *model.Track, acceleration float64) float64 {
	return track.Length*25 + acceleration*2
}

func PowerToWeight(car *model.Car) float64 {
	return car.Engine.PowerToWeight()
}
