package model

import (
	"time"

	"github.com/google/uuid"
)

type StintResult struct {
	Laps      int     `json:"laps"`
	Compound  string  `json:"compound"`
	StintTime float64 `json:"stintTime"` // sec, lap times only
}

// RaceOutcome is the result of a simulated race.
type RaceOutcome struct {
	ID               uuid.UUID     `json:"id"`
	CarName          string        `json:"carName"`
	TrackName        string        `json:"trackName"`
	Strategy         string        `json:"strategy"`
	Laps             int           `json:"laps"`
	TotalTime        float64       `json:"totalTime"`      // minutes, pit time included
	AverageLapTime   float64       `json:"averageLapTime"` // sec, pit time excluded
	PitStopCount     int           `json:"pitStopCount"`
	PitStopTime      float64       `json:"pitStopTime"` // sec
	WeatherCondition string        `json:"weatherCondition"`
	Stints           []StintResult `json:"stints,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
}

func (o *RaceOutcome) IsWinningTime(target float64) bool {
	return o.TotalTime < target
}
