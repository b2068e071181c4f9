//nolint:whitespace //can't make both the linter and editor happy :(
package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/mpapenbr/race-strategy-sim/log"
	"github.com/mpapenbr/race-strategy-sim/pkg/advisor"
	"github.com/mpapenbr/race-strategy-sim/pkg/model"
	"github.com/mpapenbr/race-strategy-sim/pkg/repository/api"
	"github.com/mpapenbr/race-strategy-sim/pkg/session"
	"github.com/mpapenbr/race-strategy-sim/pkg/sim/performance"
	"github.com/mpapenbr/race-strategy-sim/pkg/sim/race"
	"github.com/mpapenbr/race-strategy-sim/pkg/sim/rng"
	"github.com/mpapenbr/race-strategy-sim/pkg/utils/cache"
	"github.com/mpapenbr/race-strategy-sim/pkg/validate"
)

var ErrIncompleteSelection = errors.New("incomplete selection")

type (
	Publisher interface {
		Publish(ctx context.Context, outcome *model.RaceOutcome) error
	}
	ResultLog interface {
		Append(outcome *model.RaceOutcome) error
		Outcomes(expr string) ([]*model.RaceOutcome, error)
	}

	Request struct {
		Car      model.Car      `json:"car"`
		Track    model.Track    `json:"track"`
		Strategy model.Strategy `json:"strategy"`
		Weather  model.Weather  `json:"weather"`
		Laps     int            `json:"laps"`
		Distance float64        `json:"distance,omitempty"` // km, used if Laps is 0
		Seed     uint64         `json:"seed,omitempty"`     // 0 uses the service source
		// Observer is called after each simulated lap
		Observer race.Observer `json:"-"`
	}
	Report struct {
		Outcome         *model.RaceOutcome    `json:"outcome"`
		Performance     model.Performance     `json:"performance"`
		Rating          string                `json:"rating"`
		Compatibility   advisor.Compatibility `json:"compatibility"`
		Hint            string                `json:"hint"`
		Warnings        []string              `json:"warnings"`
		Recommendations []string              `json:"recommendations"`
	}

	Option  func(*Service)
	Service struct {
		advisor   *advisor.Advisor
		results   api.ResultRepository
		setups    api.SetupRepository
		setupHold *cache.Cache[string, api.CarSetup]
		resultLog ResultLog
		publisher Publisher
		session   *session.Session
		src       rng.Source
		sink      chan<- *model.RaceOutcome
		l         *log.Logger
		tracer    trace.Tracer
		runs      metric.Int64Counter
		lapTime   metric.Float64Histogram
		raceTime  metric.Float64Histogram
	}
)

func WithResultRepository(r api.ResultRepository) Option {
	return func(s *Service) {
		s.results = r
	}
}

func WithSetupRepository(r api.SetupRepository) Option {
	return func(s *Service) {
		s.setups = r
	}
}

func WithResultLog(r ResultLog) Option {
	return func(s *Service) {
		s.resultLog = r
	}
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithSession(sess *session.Session) Option {
	return func(s *Service) {
		s.session = sess
	}
}

// WithSource sets the random source for requests without seed.
func WithSource(src rng.Source) Option {
	return func(s *Service) {
		s.src = src
	}
}

// WithOutcomeSink passes every finished race to ch. Sends never block.
func WithOutcomeSink(ch chan<- *model.RaceOutcome) Option {
	return func(s *Service) {
		s.sink = ch
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		s.l = l
	}
}

func New(opts ...Option) (*Service, error) {
	adv, err := advisor.New()
	if err != nil {
		return nil, err
	}
	ret := &Service{
		advisor: adv,
		src:     rng.New(),
		l:       log.Default().Named("service.simulation"),
		tracer:  otel.Tracer("rss"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.src = rng.NewLocked(ret.src)
	if ret.setups != nil {
		ret.setupHold = cache.New(
			cache.WithExpiration[string, api.CarSetup](time.Minute),
			cache.WithLoader[string, api.CarSetup](ret.setups.LoadByName),
			cache.WithLogger[string, api.CarSetup](ret.l.Named("setups")),
		)
	}
	if err := ret.setupMetrics(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Service) setupMetrics() (err error) {
	meter := otel.Meter("rss.simulation")
	if s.runs, err = meter.Int64Counter("rss.simulation.runs",
		metric.WithDescription("number of simulated races"),
		metric.WithUnit("{race}")); err != nil {
		return err
	}
	if s.lapTime, err = meter.Float64Histogram("rss.simulation.lap_time",
		metric.WithDescription("average lap time of a simulated race"),
		metric.WithUnit("s")); err != nil {
		return err
	}
	s.raceTime, err = meter.Float64Histogram("rss.simulation.race_time",
		metric.WithDescription("total time of a simulated race"),
		metric.WithUnit("min"))
	return err
}

// Run validates the request, simulates the race and hands the outcome to the
// configured repository, result log, publisher and sink.
// Errors of these outputs are logged but do not fail the run.
func (s *Service) Run(ctx context.Context, req *Request) (*Report, error) {
	ctx, span := s.tracer.Start(ctx, "simulate race",
		trace.WithAttributes(
			attribute.String("car", req.Car.Name),
			attribute.String("track", req.Track.Name),
			attribute.String("weather", req.Weather.Condition),
		))
	defer span.End()

	report, err := s.simulate(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	attrs := metric.WithAttributes(attribute.String("track", req.Track.Name))
	s.runs.Add(ctx, 1, attrs)
	s.lapTime.Record(ctx, report.Outcome.AverageLapTime, attrs)
	s.raceTime.Record(ctx, report.Outcome.TotalTime, attrs)
	span.SetAttributes(
		attribute.Int("laps", report.Outcome.Laps),
		attribute.Float64("totalTime", report.Outcome.TotalTime))

	s.store(ctx, report.Outcome)
	if s.session != nil {
		s.session.Inc(session.CounterSimulationsRun)
	}
	return report, nil
}

// RunSession runs the current selection of the configured session.
func (s *Service) RunSession(ctx context.Context, laps int) (*Report, error) {
	if s.session == nil {
		return nil, fmt.Errorf("%w: no session", ErrIncompleteSelection)
	}
	sel := s.session.Selection()
	if !sel.Complete() {
		return nil, fmt.Errorf("%w: missing %v", ErrIncompleteSelection, sel.Missing())
	}
	return s.Run(ctx, &Request{
		Car:      *sel.Car,
		Track:    *sel.Track,
		Strategy: *sel.Strategy,
		Weather:  sel.Weather,
		Laps:     laps,
	})
}

func (s *Service) simulate(ctx context.Context, req *Request) (*Report, error) {
	checked, err := validate.Setup(&req.Car, &req.Track, &req.Strategy)
	if err != nil {
		return nil, err
	}
	laps := req.Laps
	if laps == 0 {
		laps = race.LapsForDistance(&req.Track, req.Distance)
	}
	src := s.src
	if req.Seed != 0 {
		src = rng.NewSeeded(req.Seed)
	}
	simOpts := []race.Option{race.WithSource(src), race.WithLogger(s.l.Named("race"))}
	if req.Observer != nil {
		simOpts = append(simOpts, race.WithObserver(req.Observer))
	}
	sim := race.NewSimulator(simOpts...)
	outcome, err := sim.SimulateRace(&req.Car, &req.Track, &req.Strategy, &req.Weather, laps)
	if err != nil {
		return nil, err
	}
	raceTrack := req.Track.WithWeather(req.Weather)
	perf := performance.Calculate(&req.Car, &raceTrack, &req.Weather)

	advice, err := s.advisor.Advise(ctx, &advisor.Setup{
		Car:         &req.Car,
		Track:       &req.Track,
		Strategy:    &req.Strategy,
		Performance: &perf,
	})
	if err != nil {
		return nil, err
	}
	return &Report{
		Outcome:         outcome,
		Performance:     perf,
		Rating:          race.Rating(outcome.TotalTime, req.Track.Length),
		Compatibility:   advisor.TrackCompatibility(&req.Track, &req.Strategy),
		Hint:            advisor.StrategyHint(&req.Track),
		Warnings:        append(checked.Warnings, advice.Warnings...),
		Recommendations: advice.Recommendations,
	}, nil
}

func (s *Service) store(ctx context.Context, outcome *model.RaceOutcome) {
	if s.results != nil {
		storeCtx, span := s.tracer.Start(ctx, "store result")
		if err := s.results.Create(storeCtx, outcome); err != nil {
			s.l.Error("could not store result", log.ErrorField(err))
		}
		span.End()
	}
	if s.resultLog != nil {
		if err := s.resultLog.Append(outcome); err != nil {
			s.l.Error("could not append to results log", log.ErrorField(err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, outcome); err != nil {
			s.l.Warn("could not publish result", log.ErrorField(err))
		}
	}
	if s.sink != nil {
		select {
		case s.sink <- outcome:
		default:
			s.l.Debug("outcome sink full, dropping", log.String("id", outcome.ID.String()))
		}
	}
}
