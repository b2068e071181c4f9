package basedata

import (
	"time"

	"github.com/google/uuid"

	"github.com/mpapenbr/race-strategy-sim/pkg/catalog"
	"github.com/mpapenbr/race-strategy-sim/pkg/model"
)

func TestTime() time.Time {
	t, _ := time.Parse(time.RFC3339, "2024-04-28T11:10:12Z")
	return t
}

func SampleCar() model.Car {
	return catalog.NewCar("Test Car", 750,
		catalog.TurboEngine(), catalog.SoftTyre(), catalog.MediumTyre(),
		catalog.HighDownforceKit())
}

// SampleOutcome returns a finished race on Monza with a fixed id and time.
func SampleOutcome() *model.RaceOutcome {
	return &model.RaceOutcome{
		ID:               uuid.MustParse("0190f1f4-1c2a-7d3e-8000-000000000001"),
		CarName:          "Test Car",
		TrackName:        "Monza",
		Strategy:         "Balanced Strategy",
		WeatherCondition: "Dry",
		Laps:             10,
		TotalTime:        35.75,
		AverageLapTime:   208.5,
		PitStopCount:     2,
		PitStopTime:      60,
		Stints: []model.StintResult{
			{Laps: 4, Compound: "Soft", StintTime: 830},
			{Laps: 3, Compound: "Medium", StintTime: 625},
			{Laps: 3, Compound: "Hard", StintTime: 630},
		},
		CreatedAt: TestTime(),
	}
}
