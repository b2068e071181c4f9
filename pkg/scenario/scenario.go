// Package scenario reads race scenarios from yaml files.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/mpapenbr/race-strategy-sim/pkg/catalog"
	"github.com/mpapenbr/race-strategy-sim/pkg/model"
	"github.com/mpapenbr/race-strategy-sim/pkg/sim/race"
)

// MinVersion is the oldest document version that can be read.
const MinVersion = "v1.0.0"

var (
	ErrVersion = errors.New("unsupported scenario version")
	ErrUnknown = errors.New("unknown catalog entry")
)

type (
	Scenario struct {
		Version  string       `yaml:"version"`
		Name     string       `yaml:"name"`
		Car      CarSpec      `yaml:"car"`
		Track    string       `yaml:"track"`
		Weather  string       `yaml:"weather"`
		Strategy StrategySpec `yaml:"strategy"`
		Laps     int          `yaml:"laps"`
		Distance float64      `yaml:"distance"` // km, used if laps is 0
		Seed     uint64       `yaml:"seed"`
	}
	// CarSpec either names a preset ("default") or describes a custom car.
	CarSpec struct {
		Preset        string  `yaml:"preset"`
		Name          string  `yaml:"name"`
		ChassisWeight float64 `yaml:"chassisWeight"`
		Engine        string  `yaml:"engine"`
		FrontTyre     string  `yaml:"frontTyre"`
		RearTyre      string  `yaml:"rearTyre"`
		AeroKit       string  `yaml:"aeroKit"`
	}
	// StrategySpec either names a catalog strategy or describes a custom one.
	StrategySpec struct {
		Preset       string `yaml:"preset"`
		PitStops     int    `yaml:"pitStops"`
		TyreStrategy string `yaml:"tyreStrategy"`
		FuelLoad     string `yaml:"fuelLoad"`
	}

	// Resolved holds the catalog objects a scenario refers to.
	Resolved struct {
		Car      model.Car
		Track    model.Track
		Weather  model.Weather
		Strategy model.Strategy
		Laps     int
		Seed     uint64
	}
)

// UnmarshalYAML accepts a plain preset name as well as a mapping.
func (s *StrategySpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		s.Preset = node.Value
		return nil
	}
	type plain StrategySpec
	return node.Decode((*plain)(s))
}

// UnmarshalYAML accepts a plain preset name as well as a mapping.
func (c *CarSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		c.Preset = node.Value
		return nil
	}
	type plain CarSpec
	return node.Decode((*plain)(c))
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Scenario, error) {
	return parse(data, "")
}

// ParseDefaultVersion is like Parse but assumes MinVersion for documents
// without version.
func ParseDefaultVersion(data []byte) (*Scenario, error) {
	return parse(data, MinVersion)
}

func parse(data []byte, defaultVersion string) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Version == "" {
		s.Version = defaultVersion
	}
	if err := s.CheckVersion(); err != nil {
		return nil, err
	}
	return &s, nil
}

// CheckVersion rejects documents outside of the supported major version.
func (s *Scenario) CheckVersion() error {
	v := s.Version
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: %q", ErrVersion, v)
	}
	if semver.Compare(v, MinVersion) < 0 || semver.Major(v) != semver.Major(MinVersion) {
		return fmt.Errorf("%w: %s (need %s.x)", ErrVersion, v, semver.Major(MinVersion))
	}
	return nil
}

// Resolve looks up all named entries in the catalog.
func (s *Scenario) Resolve() (*Resolved, error) {
	car, err := s.Car.Resolve()
	if err != nil {
		return nil, err
	}
	track, ok := catalog.TrackByName(s.Track)
	if !ok {
		return nil, fmt.Errorf("%w: track %q", ErrUnknown, s.Track)
	}
	weather := catalog.Dry()
	if s.Weather != "" {
		if weather, ok = catalog.WeatherByName(s.Weather); !ok {
			return nil, fmt.Errorf("%w: weather %q", ErrUnknown, s.Weather)
		}
	}
	strategy, err := s.Strategy.Resolve()
	if err != nil {
		return nil, err
	}
	laps := s.Laps
	if laps == 0 {
		laps = race.LapsForDistance(&track, s.Distance)
	}
	return &Resolved{
		Car:      car,
		Track:    track,
		Weather:  weather,
		Strategy: strategy,
		Laps:     laps,
		Seed:     s.Seed,
	}, nil
}

// Resolve returns the preset or custom car. No preset and no engine means the default car.
func (c *CarSpec) Resolve() (model.Car, error) {
	if c.Preset != "" || c.Engine == "" {
		if c.Preset == "" || strings.EqualFold(c.Preset, "default") {
			return catalog.DefaultCar(), nil
		}
		return model.Car{}, fmt.Errorf("%w: car preset %q", ErrUnknown, c.Preset)
	}
	engine, ok := catalog.EngineByType(c.Engine)
	if !ok {
		return model.Car{}, fmt.Errorf("%w: engine %q", ErrUnknown, c.Engine)
	}
	front, ok := catalog.TyreByName(c.FrontTyre)
	if !ok {
		return model.Car{}, fmt.Errorf("%w: tyre %q", ErrUnknown, c.FrontTyre)
	}
	rear, ok := catalog.TyreByName(c.RearTyre)
	if !ok {
		return model.Car{}, fmt.Errorf("%w: tyre %q", ErrUnknown, c.RearTyre)
	}
	kit, ok := catalog.AeroKitByName(c.AeroKit)
	if !ok {
		return model.Car{}, fmt.Errorf("%w: aero kit %q", ErrUnknown, c.AeroKit)
	}
	return catalog.NewCar(c.Name, c.ChassisWeight, engine, front, rear, kit), nil
}

// Resolve returns the named or custom strategy. An empty spec means Balanced.
func (s *StrategySpec) Resolve() (model.Strategy, error) {
	if s.Preset != "" {
		ret, ok := catalog.StrategyByName(s.Preset)
		if !ok {
			return model.Strategy{}, fmt.Errorf("%w: strategy %q", ErrUnknown, s.Preset)
		}
		return ret, nil
	}
	if s.FuelLoad == "" && s.TyreStrategy == "" && s.PitStops == 0 {
		return catalog.Balanced(), nil
	}
	fuel, ok := model.ParseFuelLoad(s.FuelLoad)
	if !ok {
		return model.Strategy{}, fmt.Errorf("%w: fuel load %q", ErrUnknown, s.FuelLoad)
	}
	return model.Strategy{
		PitStops:     s.PitStops,
		TyreStrategy: s.TyreStrategy,
		FuelLoad:     fuel,
	}, nil
}
