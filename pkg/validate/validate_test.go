//nolint:funlen // test tables
package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/race-strategy-sim/pkg/catalog"
	"github.com/mpapenbr/race-strategy-sim/pkg/model"
)

func TestCar(t *testing.T) {
	valid := catalog.DefaultCar()
	tests := []struct {
		name         string
		mod          func(c *model.Car)
		wantErr      bool
		wantWarnings int
	}{
		{"default", func(c *model.Car) {}, false, 0},
		{"no name", func(c *model.Car) { c.Name = " " }, false, 1},
		{"too light", func(c *model.Car) { c.ChassisWeight = 499 }, true, 0},
		{"too heavy", func(c *model.Car) { c.ChassisWeight = 1501 }, true, 0},
		{"heavy total", func(c *model.Car) {
			c.ChassisWeight = 1500
			c.Engine.Weight = 250
		}, false, 1},
		{"weak engine", func(c *model.Car) { c.Engine.Power = 99 }, true, 0},
		{"strong engine", func(c *model.Car) { c.Engine.Power = 501 }, true, 0},
		{"weightless engine", func(c *model.Car) { c.Engine.Weight = 0 }, true, 0},
		{"missing kit", func(c *model.Car) { c.AeroKit = model.AeroKit{} }, true, 0},
		{"missing tyre", func(c *model.Car) { c.RearTyre = model.TyreCompound{} }, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			car := valid
			tt.mod(&car)
			got, err := Car(&car)
			if tt.wantErr {
				var verr *Error
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, KindCar, verr.Kind)
				assert.NotEmpty(t, verr.ValidRange)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got.Warnings, tt.wantWarnings)
		})
	}
}

func TestTrack(t *testing.T) {
	tests := []struct {
		name         string
		track        model.Track
		wantErr      bool
		wantWarnings int
	}{
		{"monaco", catalog.Monaco(), false, 0},
		{"too short", model.Track{Name: "x", Length: 0.5, Corners: 5, Difficulty: "Easy"}, true, 0},
		{"too long", model.Track{Name: "x", Length: 11, Corners: 12, Difficulty: "Easy"}, true, 0},
		{"few corners", model.Track{Name: "x", Length: 3, Corners: 4, Difficulty: "Easy"}, true, 0},
		{"bad difficulty", model.Track{Name: "x", Length: 3, Corners: 8, Difficulty: "Insane"}, true, 0},
		{"dense", model.Track{Name: "x", Length: 1, Corners: 9, Difficulty: "Hard"}, false, 1},
		{"sparse", model.Track{Name: "x", Length: 10, Corners: 5, Difficulty: "Easy"}, false, 1},
		{"no name", model.Track{Length: 5, Corners: 10, Difficulty: "Easy"}, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Track(&tt.track)
			if tt.wantErr {
				var verr *Error
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, KindTrack, verr.Kind)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got.Warnings, tt.wantWarnings)
		})
	}
}

func TestStrategy(t *testing.T) {
	tests := []struct {
		name     string
		strategy model.Strategy
		wantErr  bool
	}{
		{"aggressive", catalog.Aggressive(), false},
		{"negative stops", model.Strategy{PitStops: -1, FuelLoad: model.FuelMedium}, true},
		{"too many stops", model.Strategy{PitStops: 5, FuelLoad: model.FuelMedium}, true},
		{"no fuel", model.Strategy{PitStops: 1}, true},
		{"unknown fuel", model.Strategy{PitStops: 1, FuelLoad: "Full"}, true},
		{"light without stop", model.Strategy{PitStops: 0, FuelLoad: model.FuelLight}, true},
		{"heavy without stop", model.Strategy{PitStops: 0, FuelLoad: model.FuelHeavy}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Strategy(&tt.strategy)
			assert.Equal(t, tt.wantErr, err != nil, "err: %v", err)
		})
	}
}

func TestSetup(t *testing.T) {
	car := catalog.DefaultCar()
	car.Name = ""
	track := catalog.Monza()
	strategy := catalog.Balanced()
	res, err := Setup(&car, &track, &strategy)
	require.NoError(t, err)
	assert.Equal(t, []string{"car name is empty"}, res.Warnings)
	assert.Equal(t, "Warnings: car name is empty", res.FormattedWarnings())

	strategy.PitStops = 7
	_, err = Setup(&car, &track, &strategy)
	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, KindStrategy, verr.Kind)
	assert.Contains(t, err.Error(), "exceeds maximum")
}
