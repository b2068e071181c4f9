package simulation

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/mpapenbr/race-strategy-sim/pkg/advisor"
	"github.com/mpapenbr/race-strategy-sim/pkg/model"
	"github.com/mpapenbr/race-strategy-sim/pkg/repository/api"
	"github.com/mpapenbr/race-strategy-sim/pkg/resultlog"
	"github.com/mpapenbr/race-strategy-sim/pkg/session"
	"github.com/mpapenbr/race-strategy-sim/pkg/sim/performance"
	"github.com/mpapenbr/race-strategy-sim/pkg/sim/race"
	"github.com/mpapenbr/race-strategy-sim/pkg/validate"
)

var (
	ErrTooFewCars = errors.New("at least two cars are needed")
	ErrNoStorage  = errors.New("no result storage configured")
)

type (
	LapPreview struct {
		Car         string            `json:"car"`
		Track       string            `json:"track"`
		Weather     string            `json:"weather"`
		LapTime     float64           `json:"lapTime"` // sec
		Performance model.Performance `json:"performance"`
		Rating      int               `json:"rating"`
	}
	CompareEntry struct {
		Car         string            `json:"car"`
		Performance model.Performance `json:"performance"`
		LapTime     float64           `json:"lapTime"`
	}
	Comparison struct {
		Track   string         `json:"track"`
		Entries []CompareEntry `json:"entries"`
		Fastest string         `json:"fastest"`
		Gap     float64        `json:"gap"` // sec per lap between fastest and slowest
	}
	StrategyAnalysis struct {
		Name          string                `json:"name"`
		Strategy      model.Strategy        `json:"strategy"`
		Compatibility advisor.Compatibility `json:"compatibility"`
		PitStopTime   float64               `json:"pitStopTime"` // sec
	}
	Analysis struct {
		Track      string             `json:"track"`
		Hint       string             `json:"hint"`
		Strategies []StrategyAnalysis `json:"strategies"`
	}
)

// Lap returns a one lap preview without tyre wear and noise.
func (s *Service) Lap(car *model.Car, track *model.Track, weather *model.Weather) (
	*LapPreview, error,
) {
	if _, err := validate.Car(car); err != nil {
		return nil, err
	}
	if _, err := validate.Track(track); err != nil {
		return nil, err
	}
	raceTrack := track.WithWeather(*weather)
	perf := performance.Calculate(car, &raceTrack, weather)
	sim := race.NewSimulator(race.WithSource(s.src))
	return &LapPreview{
		Car:         car.Name,
		Track:       track.Name,
		Weather:     weather.Condition,
		LapTime:     sim.SimulateLap(car, track, weather),
		Performance: perf,
		Rating:      perf.OverallRating(),
	}, nil
}

// Compare computes the performance of cars on track. The fastest car has the
// lowest lap time; on equal lap times the first one wins.
func (s *Service) Compare(track *model.Track, weather *model.Weather, cars ...model.Car) (
	*Comparison, error,
) {
	if len(cars) < 2 {
		return nil, ErrTooFewCars
	}
	if s.session != nil {
		for i := range cars {
			s.session.AddCar(cars[i])
		}
	}
	raceTrack := track.WithWeather(*weather)
	ret := &Comparison{Track: track.Name}
	for i := range cars {
		perf := performance.Calculate(&cars[i], &raceTrack, weather)
		ret.Entries = append(ret.Entries, CompareEntry{
			Car:         cars[i].Name,
			Performance: perf,
			LapTime:     perf.LapTime,
		})
	}
	fastest := lo.MinBy(ret.Entries, func(a, b CompareEntry) bool {
		return a.LapTime < b.LapTime
	})
	slowest := lo.MaxBy(ret.Entries, func(a, b CompareEntry) bool {
		return a.LapTime > b.LapTime
	})
	ret.Fastest = fastest.Car
	ret.Gap = slowest.LapTime - fastest.LapTime
	return ret, nil
}

// Analyze rates the given strategies for track, sorted by name.
func (s *Service) Analyze(track *model.Track, strategies map[string]model.Strategy) *Analysis {
	ret := &Analysis{Track: track.Name, Hint: advisor.StrategyHint(track)}
	for name, st := range strategies {
		ret.Strategies = append(ret.Strategies, StrategyAnalysis{
			Name:          name,
			Strategy:      st,
			Compatibility: advisor.TrackCompatibility(track, &st),
			PitStopTime:   race.PitStopTime(st.PitStops, st.FuelLoad),
		})
	}
	sort.Slice(ret.Strategies, func(i, j int) bool {
		return ret.Strategies[i].Name < ret.Strategies[j].Name
	})
	return ret
}

// Batch runs all requests concurrently, at most limit at a time (0 means no limit).
// Reports are returned in request order. Requests without seed get the seed
// baseSeed+index so a batch is reproducible as a whole.
func (s *Service) Batch(ctx context.Context, reqs []*Request, baseSeed uint64, limit int) (
	[]*Report, error,
) {
	ret := make([]*Report, len(reqs))
	g, gCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, req := range reqs {
		work := *req
		if work.Seed == 0 && baseSeed != 0 {
			work.Seed = baseSeed + uint64(i)
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			report, err := s.Run(gCtx, &work)
			if err != nil {
				return fmt.Errorf("request %d: %w", i, err)
			}
			ret[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ret, nil
}

// Results returns stored results, newest first. The repository is preferred
// over the results log.
func (s *Service) Results(ctx context.Context, filter api.ResultFilter) (
	[]*model.RaceOutcome, error,
) {
	switch {
	case s.results != nil:
		return s.results.LoadAll(ctx, filter)
	case s.resultLog != nil:
		results, err := s.resultLog.Outcomes(resultlog.AllResults)
		if err != nil {
			return nil, err
		}
		results = lo.Reverse(lo.Filter(results, matches(filter)))
		if filter.Limit > 0 && len(results) > filter.Limit {
			results = results[:filter.Limit]
		}
		return results, nil
	default:
		return nil, ErrNoStorage
	}
}

// Summary aggregates the stored results matching filter.
func (s *Service) Summary(ctx context.Context, filter api.ResultFilter) (
	*model.ResultSummary, error,
) {
	results, err := s.Results(ctx, filter)
	if err != nil {
		return nil, err
	}
	summary := model.Summarize(results)
	return &summary, nil
}

// matches applies filter to a result read from the results log. Names are
// compared as values, never as part of a query expression.
func matches(filter api.ResultFilter) func(*model.RaceOutcome, int) bool {
	return func(o *model.RaceOutcome, _ int) bool {
		return (filter.Track == "" || o.TrackName == filter.Track) &&
			(filter.Car == "" || o.CarName == filter.Car)
	}
}

// SaveSetup stores car under name.
func (s *Service) SaveSetup(ctx context.Context, name string, car *model.Car) (
	*api.CarSetup, error,
) {
	if s.setups == nil {
		return nil, ErrNoStorage
	}
	if _, err := validate.Car(car); err != nil {
		return nil, err
	}
	ret, err := s.setups.Create(ctx, name, car)
	if err != nil {
		return nil, err
	}
	s.setupHold.Invalidate(name)
	if s.session != nil {
		s.session.Inc(session.CounterConfigurationsSaved)
	}
	return ret, nil
}

// LoadSetup returns the car stored under name. Lookups are cached for a minute.
func (s *Service) LoadSetup(ctx context.Context, name string) (*model.Car, error) {
	if s.setups == nil {
		return nil, ErrNoStorage
	}
	setup, err := s.setupHold.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	car := setup.Car
	return &car, nil
}
