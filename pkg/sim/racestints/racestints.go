// Package racestints splits a race into stints and pit stops.
package racestints

import (
	"errors"
	"fmt"
	"time"

	"github.com/mpapenbr/race-strategy-sim/pkg/model"
)

type (
	PartType   int
	CalcStints interface {
		Calc() (*Result, error)
	}
	Part interface {
		Type() PartType
		Output() string
	}
	StintPart interface {
		Part
		Laps() int
		LapStart() int
		LapEnd() int
		Compound() model.TyreCompound
	}
	PitPart interface {
		Part
		PitTime() time.Duration
	}
	// Result contains stints and pit stops in race order.
	Result struct {
		Parts []Part
	}
)

const (
	PartTypeStint PartType = iota
	PartTypePit
)

var ErrInvalidSchedule = errors.New("invalid stint schedule")

// InvalidScheduleError is returned for requests that cannot be split into
// stints with at least one lap each.
type InvalidScheduleError struct {
	Laps     int
	PitStops int
	Reason   string
}

func (e *InvalidScheduleError) Error() string {
	return fmt.Sprintf("invalid stint schedule (laps=%d, pitStops=%d): %s",
		e.Laps, e.PitStops, e.Reason)
}

func (e *InvalidScheduleError) Unwrap() error {
	return ErrInvalidSchedule
}

// Stints returns the stint parts only.
func (r *Result) Stints() []StintPart {
	ret := make([]StintPart, 0, len(r.Parts))
	for _, p := range r.Parts {
		if s, ok := p.(StintPart); ok {
			ret = append(ret, s)
		}
	}
	return ret
}

func (r *Result) PitStops() []PitPart {
	ret := make([]PitPart, 0, len(r.Parts))
	for _, p := range r.Parts {
		if s, ok := p.(PitPart); ok {
			ret = append(ret, s)
		}
	}
	return ret
}

func (r *Result) TotalLaps() int {
	ret := 0
	for _, s := range r.Stints() {
		ret += s.Laps()
	}
	return ret
}

// PitTime is the accumulated time of all pit stops.
func (r *Result) PitTime() time.Duration {
	var ret time.Duration
	for _, p := range r.PitStops() {
		ret += p.PitTime()
	}
	return ret
}

// StintLengths returns the lap count of each stint.
func (r *Result) StintLengths() []int {
	stints := r.Stints()
	ret := make([]int, len(stints))
	for i, s := range stints {
		ret[i] = s.Laps()
	}
	return ret
}
