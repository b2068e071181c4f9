package model

import "math"

// Engine describes the power unit of a car.
type Engine struct {
	Type           string  `json:"type" yaml:"type"`
	Power          float64 `json:"power" yaml:"power"`                   // hp
	FuelEfficiency float64 `json:"fuelEfficiency" yaml:"fuelEfficiency"` // km per liter
	Weight         float64 `json:"weight" yaml:"weight"`                 // kg
}

// AeroKit describes the aerodynamic package of a car.
type AeroKit struct {
	Name            string  `json:"name" yaml:"name"`
	DragCoefficient float64 `json:"dragCoefficient" yaml:"dragCoefficient"`
	Downforce       float64 `json:"downforce" yaml:"downforce"`
	TopSpeedImpact  float64 `json:"topSpeedImpact" yaml:"topSpeedImpact"`
}

// Car is the immutable car profile used by the simulation.
type Car struct {
	ID            int          `json:"id" yaml:"id"`
	Name          string       `json:"name" yaml:"name"`
	ChassisWeight float64      `json:"chassisWeight" yaml:"chassisWeight"` // kg
	Engine        Engine       `json:"engine" yaml:"engine"`
	FrontTyre     TyreCompound `json:"frontTyre" yaml:"frontTyre"`
	RearTyre      TyreCompound `json:"rearTyre" yaml:"rearTyre"`
	AeroKit       AeroKit      `json:"aeroKit" yaml:"aeroKit"`
}

func (e Engine) IsZero() bool {
	return e == Engine{}
}

// PowerToWeight returns 0 for an engine without weight.
func (e Engine) PowerToWeight() float64 {
	if e.Weight == 0 {
		return 0
	}
	return e.Power / e.Weight
}

func (k AeroKit) IsZero() bool {
	return k == AeroKit{}
}

// Rating is a simple aerodynamic effectiveness score.
func (k AeroKit) Rating() int {
	return int(math.Round(k.Downforce - k.DragCoefficient*100))
}

func (k AeroKit) KitType() string {
	switch {
	case k.DragCoefficient <= 0.28 && k.TopSpeedImpact >= 270:
		return "High Speed"
	case k.Downforce >= 400:
		return "High Downforce"
	default:
		return "Balanced"
	}
}

func (c *Car) TotalWeight() float64 {
	return c.ChassisWeight + c.Engine.Weight
}

// IsFullyConfigured reports whether all components are assigned.
func (c *Car) IsFullyConfigured() bool {
	return !c.Engine.IsZero() && !c.FrontTyre.IsZero() &&
		!c.RearTyre.IsZero() && !c.AeroKit.IsZero()
}
