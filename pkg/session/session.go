// Package session keeps the current selections of an interactive user and
// some usage counters. A Session is passed explicitly to the service layer.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mpapenbr/race-strategy-sim/pkg/catalog"
	"github.com/mpapenbr/race-strategy-sim/pkg/model"
)

type Counter string

const (
	CounterCarsCreated         Counter = "cars_created"
	CounterSimulationsRun      Counter = "simulations_run"
	CounterConfigurationsSaved Counter = "configurations_saved"
)

type (
	Session struct {
		mu        sync.RWMutex
		id        uuid.UUID
		startedAt time.Time
		car       *model.Car
		track     *model.Track
		strategy  *model.Strategy
		weather   model.Weather
		cars      []model.Car
		usage     map[Counter]int
	}
	Option func(*Session)

	// Selection is a consistent copy of the current selections.
	Selection struct {
		Car      *model.Car
		Track    *model.Track
		Strategy *model.Strategy
		Weather  model.Weather
	}
)

func New(opts ...Option) *Session {
	ret := &Session{
		id:        uuid.New(),
		startedAt: time.Now(),
		weather:   catalog.Dry(),
		usage:     map[Counter]int{},
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func WithID(id uuid.UUID) Option {
	return func(s *Session) {
		s.id = id
	}
}

func WithCar(car model.Car) Option {
	return func(s *Session) {
		s.car = &car
	}
}

func WithTrack(track model.Track) Option {
	return func(s *Session) {
		s.track = &track
	}
}

func WithStrategy(strategy model.Strategy) Option {
	return func(s *Session) {
		s.strategy = &strategy
	}
}

func WithWeather(w model.Weather) Option {
	return func(s *Session) {
		s.weather = w
	}
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// AddCar stores the car and selects it.
func (s *Session) AddCar(car model.Car) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cars = append(s.cars, car)
	s.car = &car
	s.usage[CounterCarsCreated]++
}

func (s *Session) Cars() []model.Car {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ret := make([]model.Car, len(s.cars))
	copy(ret, s.cars)
	return ret
}

func (s *Session) SelectCar(car model.Car) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.car = &car
}

func (s *Session) SelectTrack(track model.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.track = &track
}

func (s *Session) SelectStrategy(strategy model.Strategy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strategy = &strategy
}

func (s *Session) SelectWeather(w model.Weather) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weather = w
}

func (s *Session) Selection() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Selection{
		Car:      s.car,
		Track:    s.track,
		Strategy: s.strategy,
		Weather:  s.weather,
	}
}

// Complete reports whether car, track and strategy are selected.
func (sel Selection) Complete() bool {
	return sel.Car != nil && sel.Track != nil && sel.Strategy != nil
}

// Missing returns the names of the selections still missing.
func (sel Selection) Missing() []string {
	ret := []string{}
	if sel.Car == nil {
		ret = append(ret, "car")
	}
	if sel.Track == nil {
		ret = append(ret, "track")
	}
	if sel.Strategy == nil {
		ret = append(ret, "strategy")
	}
	return ret
}

func (s *Session) Inc(c Counter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage[c]++
}

func (s *Session) Usage() map[Counter]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ret := make(map[Counter]int, len(s.usage))
	for k, v := range s.usage {
		ret[k] = v
	}
	return ret
}

// Clear drops the stored cars and the car and strategy selection.
// Track and weather are kept.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cars = nil
	s.car = nil
	s.strategy = nil
}
