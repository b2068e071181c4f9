package cmdutil

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/mpapenbr/race-strategy-sim/pkg/catalog"
	"github.com/mpapenbr/race-strategy-sim/pkg/model"
	"github.com/mpapenbr/race-strategy-sim/pkg/scenario"
)

const (
	OutputText = "text"
	OutputJSON = "json"
)

// Selection collects the car, track, weather and strategy flags of a command.
type Selection struct {
	Car      scenario.CarSpec
	Track    string
	Weather  string
	Strategy scenario.StrategySpec
}

func (s *Selection) AddCarFlags(fs *pflag.FlagSet) {
	fs.StringVar(&s.Car.Name, "car-name", "Custom Car", "name of a custom car")
	fs.Float64Var(&s.Car.ChassisWeight, "chassis-weight", 800, "chassis weight (kg)")
	fs.StringVar(&s.Car.Engine, "engine", "",
		"engine type (Standard, Turbo), empty uses the default car")
	fs.StringVar(&s.Car.FrontTyre, "front-tyre", "Medium", "front tyre compound")
	fs.StringVar(&s.Car.RearTyre, "rear-tyre", "Medium", "rear tyre compound")
	fs.StringVar(&s.Car.AeroKit, "aero-kit", "Standard Kit", "aero kit name")
}

func (s *Selection) AddTrackFlags(fs *pflag.FlagSet) {
	fs.StringVar(&s.Track, "track", "Monza", "track name (Monaco, Monza, Silverstone)")
	fs.StringVar(&s.Weather, "weather", "Dry", "weather condition (Dry, Wet, Mixed)")
}

func (s *Selection) AddStrategyFlags(fs *pflag.FlagSet) {
	fs.StringVar(&s.Strategy.Preset, "strategy", "",
		"strategy preset (Aggressive, Balanced, Conservative)")
	fs.IntVar(&s.Strategy.PitStops, "pit-stops", 0, "pit stops of a custom strategy")
	fs.StringVar(&s.Strategy.TyreStrategy, "tyre-strategy", "",
		"compound sequence of a custom strategy, e.g. Soft-Medium")
	fs.StringVar(&s.Strategy.FuelLoad, "fuel-load", "",
		"fuel load of a custom strategy (Light, Medium, Heavy)")
}

// Scenario converts the flags into a scenario document.
func (s *Selection) Scenario(laps int, distance float64, seed uint64) *scenario.Scenario {
	return &scenario.Scenario{
		Version:  scenario.MinVersion,
		Car:      s.Car,
		Track:    s.Track,
		Weather:  s.Weather,
		Strategy: s.Strategy,
		Laps:     laps,
		Distance: distance,
		Seed:     seed,
	}
}

// TrackAndWeather resolves the track and weather flags.
func (s *Selection) TrackAndWeather() (model.Track, model.Weather, error) {
	track, ok := catalog.TrackByName(s.Track)
	if !ok {
		return model.Track{}, model.Weather{},
			fmt.Errorf("%w: track %q", scenario.ErrUnknown, s.Track)
	}
	weather, ok := catalog.WeatherByName(s.Weather)
	if !ok {
		return model.Track{}, model.Weather{},
			fmt.Errorf("%w: weather %q", scenario.ErrUnknown, s.Weather)
	}
	return track, weather, nil
}

// ParseCarSpec parses "default" or a list like
// "name=Fast,engine=Turbo,front=Soft,rear=Soft,aero=Low Drag Kit,weight=750".
func ParseCarSpec(arg string) (scenario.CarSpec, error) {
	if strings.EqualFold(strings.TrimSpace(arg), "default") {
		return scenario.CarSpec{Preset: "default"}, nil
	}
	ret := scenario.CarSpec{
		ChassisWeight: 800,
		FrontTyre:     "Medium",
		RearTyre:      "Medium",
		AeroKit:       "Standard Kit",
	}
	for _, part := range strings.Split(arg, ",") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return ret, fmt.Errorf("invalid car attribute %q (want key=value)", part)
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "name":
			ret.Name = value
		case "engine":
			ret.Engine = value
		case "front":
			ret.FrontTyre = value
		case "rear":
			ret.RearTyre = value
		case "aero":
			ret.AeroKit = value
		case "weight":
			w, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return ret, fmt.Errorf("invalid weight %q: %w", value, err)
			}
			ret.ChassisWeight = w
		default:
			return ret, fmt.Errorf("unknown car attribute %q", key)
		}
	}
	if ret.Engine == "" {
		return ret, fmt.Errorf("car %q: engine is required", arg)
	}
	if ret.Name == "" {
		ret.Name = ret.Engine + " Car"
	}
	return ret, nil
}

// Print writes v as indented json or calls text for the text format.
func Print(w io.Writer, format string, v any, text func(io.Writer)) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case OutputText, "":
		text(w)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
