package racestints

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/mpapenbr/race-strategy-sim/pkg/catalog"
	"github.com/mpapenbr/race-strategy-sim/pkg/model"
)

// CompoundSeparator separates the compounds in a tyre strategy like "Soft-Medium".
const CompoundSeparator = "-"

type (
	PlanParams struct {
		TotalLaps int
		PitStops  int
		Compounds string        // compound sequence, one entry per stint
		PitTime   time.Duration // time per pit stop
	}
	Option func(*planner)
)

type (
	planner struct {
		param  *PlanParams
		custom []model.TyreCompound
		parts  []Part
	}
	stintPart struct {
		laps     int
		lapStart int
		lapEnd   int
		compound model.TyreCompound
	}
	pitPart struct {
		pitTime time.Duration
	}
)

func NewPlanner(param *PlanParams, opts ...Option) CalcStints {
	ret := &planner{param: param}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// WithCompounds registers additional compounds. They are matched by name
// before the canonical compounds.
func WithCompounds(arg ...model.TyreCompound) Option {
	return func(p *planner) {
		p.custom = append(p.custom, arg...)
	}
}

// Plan splits totalLaps into pitStops+1 stints using the compound sequence
// of descriptor. No pit time is assigned.
func Plan(totalLaps, pitStops int, descriptor string) (*Result, error) {
	return NewPlanner(&PlanParams{
		TotalLaps: totalLaps,
		PitStops:  pitStops,
		Compounds: descriptor,
	}).Calc()
}

func (p *planner) Calc() (*Result, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	stints := p.param.PitStops + 1
	base := p.param.TotalLaps / stints
	extra := p.param.TotalLaps % stints
	compounds := p.resolve(stints)

	p.parts = make([]Part, 0, 2*stints-1)
	curLap := 1
	for i := range stints {
		laps := base
		if i < extra {
			laps++
		}
		if i > 0 {
			p.parts = append(p.parts, &pitPart{pitTime: p.param.PitTime})
		}
		p.parts = append(p.parts, &stintPart{
			laps:     laps,
			lapStart: curLap,
			lapEnd:   curLap + laps - 1,
			compound: compounds[i],
		})
		curLap += laps
	}
	return &Result{Parts: p.parts}, nil
}

func (p *planner) check() error {
	mkErr := func(reason string) error {
		return &InvalidScheduleError{
			Laps:     p.param.TotalLaps,
			PitStops: p.param.PitStops,
			Reason:   reason,
		}
	}
	switch {
	case p.param.TotalLaps <= 0:
		return mkErr("race needs at least one lap")
	case p.param.PitStops < 0:
		return mkErr("pit stops must not be negative")
	case p.param.PitStops+1 > p.param.TotalLaps:
		return mkErr(fmt.Sprintf("%d stints do not fit into %d laps",
			p.param.PitStops+1, p.param.TotalLaps))
	}
	return nil
}

func (p *planner) resolve(stints int) []model.TyreCompound {
	return lo.Map(CompoundNames(p.param.Compounds, stints),
		func(name string, _ int) model.TyreCompound {
			if c, ok := lo.Find(p.custom, func(c model.TyreCompound) bool {
				return strings.EqualFold(c.Name, name)
			}); ok {
				return c
			}
			return ResolveCompound(name)
		})
}

// CompoundNames splits descriptor into exactly stints entries.
// An empty descriptor yields "Medium" for every stint. Missing entries repeat
// the last one, surplus entries are dropped.
func CompoundNames(descriptor string, stints int) []string {
	tokens := lo.FilterMap(strings.Split(descriptor, CompoundSeparator),
		func(s string, _ int) (string, bool) {
			s = strings.TrimSpace(s)
			return s, s != ""
		})
	if len(tokens) == 0 {
		tokens = []string{catalog.MediumTyre().Name}
	}
	ret := make([]string, stints)
	for i := range ret {
		ret[i] = tokens[min(i, len(tokens)-1)]
	}
	return ret
}

// ResolveCompound returns the canonical compound for name. Unknown names
// resolve to Medium.
func ResolveCompound(name string) model.TyreCompound {
	if c, ok := catalog.TyreByName(name); ok {
		return c
	}
	return catalog.MediumTyre()
}

func (s stintPart) Type() PartType {
	return PartTypeStint
}

func (s stintPart) Laps() int {
	return s.laps
}

func (s stintPart) LapStart() int {
	return s.lapStart
}

func (s stintPart) LapEnd() int {
	return s.lapEnd
}

func (s stintPart) Compound() model.TyreCompound {
	return s.compound
}

func (s stintPart) Output() string {
	return fmt.Sprintf("%d-%d (%d): %s", s.lapStart, s.lapEnd, s.laps, s.compound.Name)
}

func (p pitPart) Type() PartType {
	return PartTypePit
}

func (p pitPart) PitTime() time.Duration {
	return p.pitTime
}

func (p pitPart) Output() string {
	return fmt.Sprintf("Pit %s", p.pitTime)
}
