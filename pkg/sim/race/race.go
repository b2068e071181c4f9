// Package race drives the lap loop of a race and aggregates the outcome.
package race

import (
	"time"

	"github.com/google/uuid"

	"github.com/mpapenbr/race-strategy-sim/log"
	"github.com/mpapenbr/race-strategy-sim/pkg/model"
	"github.com/mpapenbr/race-strategy-sim/pkg/sim/laptime"
	"github.com/mpapenbr/race-strategy-sim/pkg/sim/performance"
	"github.com/mpapenbr/race-strategy-sim/pkg/sim/racestints"
	"github.com/mpapenbr/race-strategy-sim/pkg/sim/rng"
)

type (
	// LapEvent is emitted after each simulated lap.
	LapEvent struct {
		Lap      int // 1-based
		Stint    int // 0-based
		TyreAge  int // tyre age the lap was simulated with
		Compound string
		LapTime  float64 // seconds
		Elapsed  float64 // seconds, sum of lap times so far
	}
	Observer func(LapEvent)
	Option   func(*Simulator)

	Simulator struct {
		src      rng.Source
		clock    func() time.Time
		idFn     func() uuid.UUID
		observer Observer
		logger   *log.Logger
	}
)

type (
	raceState int
	// lapState is the transient state of a running race.
	lapState struct {
		state       raceState
		stint       int
		tyreAge     int
		lapsInStint int
		total       float64
	}
)

const (
	stateRunning raceState = iota
	stateFinished
)

func NewSimulator(opts ...Option) *Simulator {
	ret := &Simulator{
		clock:  time.Now,
		idFn:   uuid.New,
		logger: log.Default().Named("sim.race"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.src == nil {
		ret.src = rng.New()
	}
	return ret
}

func WithSource(src rng.Source) Option {
	return func(s *Simulator) {
		s.src = src
	}
}

func WithClock(arg func() time.Time) Option {
	return func(s *Simulator) {
		s.clock = arg
	}
}

func WithIDGenerator(arg func() uuid.UUID) Option {
	return func(s *Simulator) {
		s.idFn = arg
	}
}

func WithObserver(arg Observer) Option {
	return func(s *Simulator) {
		s.observer = arg
	}
}

func WithLogger(arg *log.Logger) Option {
	return func(s *Simulator) {
		s.logger = arg
	}
}

// applyWeather returns a copy of track exposed to the weather in effect.
// A nil weather falls back to the track's own condition.
//
//nolint:whitespace // editor/linter issue
func applyWeather(
	track *model.Track,
	weather *model.Weather,
) (model.Track, *model.Weather) {
	if weather == nil {
		weather = track.Weather
	}
	if weather == nil {
		return *track, nil
	}
	return track.WithWeather(*weather), weather
}

// SimulateRace simulates totalLaps laps of car on track.
// The weather is applied to the track for the whole race. Without weather
// the track's own condition is used.
//
//nolint:whitespace,funlen // editor/linter issue
func (s *Simulator) SimulateRace(
	car *model.Car,
	track *model.Track,
	strategy *model.Strategy,
	weather *model.Weather,
	totalLaps int,
) (*model.RaceOutcome, error) {
	raceTrack, weather := applyWeather(track, weather)
	perStop := strategy.FuelLoad.PitStopSeconds()
	sched, err := racestints.NewPlanner(&racestints.PlanParams{
		TotalLaps: totalLaps,
		PitStops:  strategy.PitStops,
		Compounds: strategy.TyreStrategy,
		PitTime:   time.Duration(perStop * float64(time.Second)),
	}).Calc()
	if err != nil {
		return nil, err
	}
	perf := performance.Calculate(car, &raceTrack, weather)
	lapSim := laptime.NewSimulator(laptime.WithSource(s.src))
	stints := sched.Stints()
	stintTimes := make([]float64, len(stints))

	st := lapState{state: stateRunning}
	for lap := 0; st.state == stateRunning; lap++ {
		cur := stints[st.stint]
		lt := lapSim.Lap(&laptime.Input{
			Track:       &raceTrack,
			Weather:     weather,
			Compound:    cur.Compound(),
			TyreAge:     st.tyreAge,
			Fuel:        strategy.FuelLoad,
			BaseLapTime: perf.LapTime,
		})
		st.total += lt
		stintTimes[st.stint] += lt
		if s.observer != nil {
			s.observer(LapEvent{
				Lap:      lap + 1,
				Stint:    st.stint,
				TyreAge:  st.tyreAge,
				Compound: cur.Compound().Name,
				LapTime:  lt,
				Elapsed:  st.total,
			})
		}
		st.tyreAge++
		st.lapsInStint++
		switch {
		case lap == totalLaps-1:
			st.state = stateFinished
		case st.lapsInStint >= cur.Laps():
			st.stint++
			st.tyreAge = 0
			st.lapsInStint = 0
		}
	}

	pitTime := PitStopTime(strategy.PitStops, strategy.FuelLoad)
	ret := &model.RaceOutcome{
		ID:             s.idFn(),
		CarName:        car.Name,
		TrackName:      track.Name,
		Strategy:       StrategyName(strategy),
		Laps:           totalLaps,
		TotalTime:      (st.total + pitTime) / 60.0,
		AverageLapTime: st.total / float64(totalLaps),
		PitStopCount:   strategy.PitStops,
		PitStopTime:    pitTime,
		Stints:         make([]model.StintResult, len(stints)),
		CreatedAt:      s.clock(),
	}
	if weather != nil {
		ret.WeatherCondition = weather.Condition
	}
	for i, sp := range stints {
		ret.Stints[i] = model.StintResult{
			Laps:      sp.Laps(),
			Compound:  sp.Compound().Name,
			StintTime: stintTimes[i],
		}
	}
	s.logger.Debug("race simulated",
		log.String("car", ret.CarName),
		log.String("track", ret.TrackName),
		log.Int("laps", totalLaps),
		log.Float64("totalTime", ret.TotalTime),
		log.Float64("avgLap", ret.AverageLapTime))
	return ret, nil
}

// SimulateLap returns a quick lap estimate in seconds. Only weather and track
// difficulty are applied, tyres and noise are not considered.
//
//nolint:whitespace // editor/linter issue
func (s *Simulator) SimulateLap(
	car *model.Car,
	track *model.Track,
	weather *model.Weather,
) float64 {
	raceTrack, weather := applyWeather(track, weather)
	perf := performance.Calculate(car, &raceTrack, weather)
	return perf.LapTime *
		laptime.WeatherFactor(weather) *
		laptime.DifficultyFactor(track.Difficulty)
}

// SimulateDistance simulates as many laps as needed to cover distance km.
//
//nolint:whitespace // editor/linter issue
func (s *Simulator) SimulateDistance(
	car *model.Car,
	track *model.Track,
	strategy *model.Strategy,
	weather *model.Weather,
	distance float64,
) (*model.RaceOutcome, error) {
	return s.SimulateRace(car, track, strategy, weather, LapsForDistance(track, distance))
}
