// Package validate checks cars, tracks and strategies against the accepted
// value ranges before they are handed to the simulation.
package validate

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/mpapenbr/race-strategy-sim/pkg/model"
)

const (
	MinCarWeight   = 500.0
	MaxCarWeight   = 1500.0
	MinEnginePower = 100.0
	MaxEnginePower = 500.0

	MinTrackLength = 1.0
	MaxTrackLength = 10.0
	MinCorners     = 5
	MaxCorners     = 25

	MinPitStops = 0
	MaxPitStops = 4
)

type Kind string

const (
	KindCar      Kind = "car"
	KindTrack    Kind = "track"
	KindStrategy Kind = "strategy"
)

var (
	ValidDifficulties = []model.Difficulty{
		model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard,
	}
	ValidFuelLoads = []model.FuelLoad{model.FuelLight, model.FuelMedium, model.FuelHeavy}
)

// Error is returned if at least one value is out of range.
type Error struct {
	Kind       Kind
	Messages   []string
	ValidRange string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s validation failed: %s", e.Kind, strings.Join(e.Messages, ", "))
}

// Result is returned for valid input. It may carry warnings.
type Result struct {
	Message  string
	Warnings []string
}

func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

func (r *Result) FormattedWarnings() string {
	if !r.HasWarnings() {
		return "No warnings"
	}
	return "Warnings: " + strings.Join(r.Warnings, "; ")
}

//nolint:cyclop // sequence of checks
func Car(car *model.Car) (*Result, error) {
	if car == nil {
		return nil, &Error{Kind: KindCar, Messages: []string{"car is missing"}}
	}
	var errs, warnings []string
	if car.Engine.IsZero() {
		errs = append(errs, "engine is not assigned")
	}
	if car.FrontTyre.IsZero() {
		errs = append(errs, "front tyres are not assigned")
	}
	if car.RearTyre.IsZero() {
		errs = append(errs, "rear tyres are not assigned")
	}
	if car.AeroKit.IsZero() {
		errs = append(errs, "aero kit is not assigned")
	}

	switch w := car.ChassisWeight; {
	case w <= 0:
		errs = append(errs, "car weight must be positive")
	case w < MinCarWeight:
		errs = append(errs, fmt.Sprintf("car weight (%.1f kg) is below minimum (%.1f kg)",
			w, MinCarWeight))
	case w > MaxCarWeight:
		errs = append(errs, fmt.Sprintf("car weight (%.1f kg) exceeds maximum (%.1f kg)",
			w, MaxCarWeight))
	}

	if !car.Engine.IsZero() {
		switch p := car.Engine.Power; {
		case p < MinEnginePower:
			errs = append(errs, fmt.Sprintf("engine power (%.0f HP) is below minimum (%.0f HP)",
				p, MinEnginePower))
		case p > MaxEnginePower:
			errs = append(errs, fmt.Sprintf("engine power (%.0f HP) exceeds maximum (%.0f HP)",
				p, MaxEnginePower))
		}
		if car.Engine.Weight <= 0 {
			errs = append(errs, "engine weight must be positive")
		}
		if tw := car.TotalWeight(); tw > MaxCarWeight+200 {
			warnings = append(warnings, fmt.Sprintf("total weight (%.1f kg) seems very high", tw))
		}
	}
	if strings.TrimSpace(car.Name) == "" {
		warnings = append(warnings, "car name is empty")
	}

	if len(errs) > 0 {
		return nil, &Error{
			Kind:       KindCar,
			Messages:   errs,
			ValidRange: fmt.Sprintf("%.1f-%.1f kg", MinCarWeight, MaxCarWeight),
		}
	}
	return &Result{Message: "car validation passed", Warnings: warnings}, nil
}

//nolint:cyclop // sequence of checks
func Track(track *model.Track) (*Result, error) {
	if track == nil {
		return nil, &Error{Kind: KindTrack, Messages: []string{"track is missing"}}
	}
	var errs, warnings []string
	switch l := track.Length; {
	case l <= 0:
		errs = append(errs, "track length must be positive")
	case l < MinTrackLength:
		errs = append(errs, fmt.Sprintf("track length (%.1f km) is below minimum (%.1f km)",
			l, MinTrackLength))
	case l > MaxTrackLength:
		errs = append(errs, fmt.Sprintf("track length (%.1f km) exceeds maximum (%.1f km)",
			l, MaxTrackLength))
	}
	switch c := track.Corners; {
	case c < MinCorners:
		errs = append(errs, fmt.Sprintf("corner count (%d) is below minimum (%d)", c, MinCorners))
	case c > MaxCorners:
		errs = append(errs, fmt.Sprintf("corner count (%d) exceeds maximum (%d)", c, MaxCorners))
	}
	switch {
	case strings.TrimSpace(string(track.Difficulty)) == "":
		errs = append(errs, "track difficulty is empty")
	case !lo.Contains(ValidDifficulties, track.Difficulty):
		errs = append(errs, fmt.Sprintf("invalid difficulty '%s'. Valid values: %v",
			track.Difficulty, ValidDifficulties))
	}
	if strings.TrimSpace(track.Name) == "" {
		warnings = append(warnings, "track name is empty")
	}
	if track.Length > 0 && track.Corners > 0 {
		density := float64(track.Corners) / track.Length
		if density > 8 {
			warnings = append(warnings,
				fmt.Sprintf("very high corner density (%.1f corners/km)", density))
		} else if density < 1 {
			warnings = append(warnings,
				fmt.Sprintf("very low corner density (%.1f corners/km)", density))
		}
	}
	if len(errs) > 0 {
		return nil, &Error{
			Kind:     KindTrack,
			Messages: errs,
			ValidRange: fmt.Sprintf("Length: %.1f-%.1f km, Corners: %d-%d, Difficulty: %v",
				MinTrackLength, MaxTrackLength, MinCorners, MaxCorners, ValidDifficulties),
		}
	}
	return &Result{Message: "track validation passed", Warnings: warnings}, nil
}

// Strategy checks the ranges of a strategy. Compatibility with the track is
// handled by the advisor.
func Strategy(s *model.Strategy) (*Result, error) {
	if s == nil {
		return nil, &Error{Kind: KindStrategy, Messages: []string{"strategy is missing"}}
	}
	var errs []string
	switch {
	case s.PitStops < MinPitStops:
		errs = append(errs, fmt.Sprintf("pit stop count (%d) is below minimum (%d)",
			s.PitStops, MinPitStops))
	case s.PitStops > MaxPitStops:
		errs = append(errs, fmt.Sprintf("pit stop count (%d) exceeds maximum (%d)",
			s.PitStops, MaxPitStops))
	}
	switch {
	case strings.TrimSpace(string(s.FuelLoad)) == "":
		errs = append(errs, "fuel strategy is empty")
	case !lo.Contains(ValidFuelLoads, s.FuelLoad):
		errs = append(errs, fmt.Sprintf("invalid fuel strategy '%s'. Valid values: %v",
			s.FuelLoad, ValidFuelLoads))
	}
	if s.PitStops == 0 && s.FuelLoad == model.FuelLight {
		errs = append(errs, "light fuel strategy with 0 pit stops is not feasible")
	}
	if len(errs) > 0 {
		return nil, &Error{
			Kind:       KindStrategy,
			Messages:   errs,
			ValidRange: fmt.Sprintf("Pit stops: %d-%d, Fuel: %v", MinPitStops, MaxPitStops, ValidFuelLoads),
		}
	}
	return &Result{Message: "strategy validation passed"}, nil
}

// Setup validates car, track and strategy. The first failing check is returned.
func Setup(car *model.Car, track *model.Track, s *model.Strategy) (*Result, error) {
	ret := &Result{Message: "race setup validation passed"}
	for _, check := range []func() (*Result, error){
		func() (*Result, error) { return Car(car) },
		func() (*Result, error) { return Track(track) },
		func() (*Result, error) { return Strategy(s) },
	} {
		r, err := check()
		if err != nil {
			return nil, err
		}
		ret.Warnings = append(ret.Warnings, r.Warnings...)
	}
	return ret, nil
}
