// Package catalog contains the preset components, tracks, weather conditions
// and strategies.
package catalog

import (
	"strings"

	"github.com/samber/lo"

	"github.com/mpapenbr/race-strategy-sim/pkg/model"
)

func StandardEngine() model.Engine {
	return model.Engine{Type: "Standard", Power: 200, FuelEfficiency: 12.0, Weight: 150}
}

func TurboEngine() model.Engine {
	return model.Engine{Type: "Turbo", Power: 300, FuelEfficiency: 9.0, Weight: 180}
}

func SoftTyre() model.TyreCompound {
	return model.TyreCompound{
		Name: "Soft", GripLevel: 0.95, Durability: 15, WearRate: 0.08,
		BaseLapTimeBonus: -2.0, OptimalTemperature: 100,
	}
}

func MediumTyre() model.TyreCompound {
	return model.TyreCompound{
		Name: "Medium", GripLevel: 0.85, Durability: 25, WearRate: 0.05,
		BaseLapTimeBonus: -1.0, OptimalTemperature: 90,
	}
}

func HardTyre() model.TyreCompound {
	return model.TyreCompound{
		Name: "Hard", GripLevel: 0.75, Durability: 35, WearRate: 0.03,
		BaseLapTimeBonus: 0.0, OptimalTemperature: 80,
	}
}

// Tyres returns the canonical compounds ordered from soft to hard.
func Tyres() []model.TyreCompound {
	return []model.TyreCompound{SoftTyre(), MediumTyre(), HardTyre()}
}

// TyreByName matches case-insensitive against the canonical compounds.
func TyreByName(name string) (model.TyreCompound, bool) {
	return lo.Find(Tyres(), func(t model.TyreCompound) bool {
		return strings.EqualFold(t.Name, strings.TrimSpace(name))
	})
}

func Engines() []model.Engine {
	return []model.Engine{StandardEngine(), TurboEngine()}
}

func EngineByType(name string) (model.Engine, bool) {
	return lo.Find(Engines(), func(e model.Engine) bool {
		return strings.EqualFold(e.Type, strings.TrimSpace(name))
	})
}

// NewCar assembles a car from its components.
//
//nolint:whitespace // editor/linter issue
func NewCar(
	name string,
	chassisWeight float64,
	engine model.Engine,
	front, rear model.TyreCompound,
	kit model.AeroKit,
) model.Car {
	return model.Car{
		Name:          name,
		ChassisWeight: chassisWeight,
		Engine:        engine,
		FrontTyre:     front,
		RearTyre:      rear,
		AeroKit:       kit,
	}
}

// DefaultCar is a balanced setup used when no car is configured.
func DefaultCar() model.Car {
	return NewCar("Default Car", 800, StandardEngine(), MediumTyre(), MediumTyre(),
		StandardAeroKit())
}
