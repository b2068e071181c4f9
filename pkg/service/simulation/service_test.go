//nolint:funlen // ok for tests
package simulation

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/race-strategy-sim/pkg/advisor"
	"github.com/mpapenbr/race-strategy-sim/pkg/catalog"
	"github.com/mpapenbr/race-strategy-sim/pkg/model"
	"github.com/mpapenbr/race-strategy-sim/pkg/repository/api"
	"github.com/mpapenbr/race-strategy-sim/pkg/resultlog"
	"github.com/mpapenbr/race-strategy-sim/pkg/session"
	"github.com/mpapenbr/race-strategy-sim/pkg/sim/race"
	"github.com/mpapenbr/race-strategy-sim/pkg/sim/rng"
	"github.com/mpapenbr/race-strategy-sim/pkg/validate"
)

type memResults struct {
	mu   sync.Mutex
	data []*model.RaceOutcome
	err  error
}

func (m *memResults) Create(_ context.Context, o *model.RaceOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data = append(m.data, o)
	return nil
}

func (m *memResults) LoadByID(_ context.Context, id uuid.UUID) (*model.RaceOutcome, error) {
	for _, o := range m.data {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, api.ErrNoRows
}

func (m *memResults) LoadAll(_ context.Context, f api.ResultFilter) ([]*model.RaceOutcome, error) {
	ret := []*model.RaceOutcome{}
	for _, o := range m.data {
		if (f.Track == "" || o.TrackName == f.Track) && (f.Car == "" || o.CarName == f.Car) {
			ret = append(ret, o)
		}
	}
	return ret, nil
}

func (m *memResults) DeleteByID(context.Context, uuid.UUID) (int, error) { return 0, nil }
func (m *memResults) DeleteAll(context.Context) (int, error)             { return 0, nil }

type memSetups struct {
	loads int
	data  map[string]*api.CarSetup
}

func (m *memSetups) Create(_ context.Context, name string, car *model.Car) (*api.CarSetup, error) {
	s := &api.CarSetup{ID: name, Name: name, Car: *car}
	m.data[name] = s
	return s, nil
}

func (m *memSetups) LoadByName(_ context.Context, name string) (*api.CarSetup, error) {
	m.loads++
	if s, ok := m.data[name]; ok {
		return s, nil
	}
	return nil, api.ErrNoRows
}

func (m *memSetups) LoadAll(context.Context) ([]*api.CarSetup, error)  { return nil, nil }
func (m *memSetups) DeleteByName(context.Context, string) (int, error) { return 0, nil }

type memPublisher struct{ published []*model.RaceOutcome }

func (p *memPublisher) Publish(_ context.Context, o *model.RaceOutcome) error {
	p.published = append(p.published, o)
	return nil
}

func monzaRequest() *Request {
	return &Request{
		Car:      catalog.DefaultCar(),
		Track:    catalog.Monza(),
		Strategy: catalog.Balanced(),
		Weather:  catalog.Dry(),
		Laps:     10,
	}
}

func TestRun(t *testing.T) {
	repo := &memResults{}
	pub := &memPublisher{}
	sink := make(chan *model.RaceOutcome, 1)
	sess := session.New()
	rlog := resultlog.New(filepath.Join(t.TempDir(), "r.jsonl"))
	svc, err := New(
		WithResultRepository(repo),
		WithPublisher(pub),
		WithOutcomeSink(sink),
		WithSession(sess),
		WithResultLog(rlog),
		WithSource(rng.Fixed(0.5)),
	)
	require.NoError(t, err)

	report, err := svc.Run(context.Background(), monzaRequest())
	require.NoError(t, err)
	o := report.Outcome
	assert.Equal(t, 10, o.Laps)
	assert.Equal(t, "Balanced", o.Strategy)
	assert.Equal(t, 2, o.PitStopCount)
	assert.InDelta(t, 60.0, o.PitStopTime, 1e-9)
	assert.Equal(t, advisor.CompatibilityMedium, report.Compatibility)
	assert.NotEmpty(t, report.Rating)
	assert.NotEmpty(t, report.Recommendations)

	assert.Len(t, repo.data, 1)
	assert.Len(t, pub.published, 1)
	assert.Equal(t, o, <-sink)
	assert.Equal(t, 1, sess.Usage()[session.CounterSimulationsRun])
	logged, err := rlog.Outcomes("")
	require.NoError(t, err)
	assert.Len(t, logged, 1)
}

func TestRunSeedIsReproducible(t *testing.T) {
	svc, err := New()
	require.NoError(t, err)
	req := monzaRequest()
	req.Seed = 7
	a, err := svc.Run(context.Background(), req)
	require.NoError(t, err)
	b, err := svc.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, a.Outcome.TotalTime, b.Outcome.TotalTime)
	assert.NotEqual(t, a.Outcome.ID, b.Outcome.ID)
}

func TestRunDistance(t *testing.T) {
	svc, err := New()
	require.NoError(t, err)
	req := monzaRequest()
	req.Laps = 0
	req.Distance = 100
	report, err := svc.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 18, report.Outcome.Laps)
}

func TestRunInvalid(t *testing.T) {
	svc, err := New()
	require.NoError(t, err)

	req := monzaRequest()
	req.Car.ChassisWeight = 100
	_, err = svc.Run(context.Background(), req)
	var vErr *validate.Error
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, validate.KindCar, vErr.Kind)

	req = monzaRequest()
	req.Laps = 2 // two stops need at least three laps
	_, err = svc.Run(context.Background(), req)
	assert.Error(t, err)
}

func TestRunStorageErrorsDoNotFail(t *testing.T) {
	svc, err := New(WithResultRepository(&memResults{err: errors.New("db down")}))
	require.NoError(t, err)
	_, err = svc.Run(context.Background(), monzaRequest())
	assert.NoError(t, err)
}

func TestRunSession(t *testing.T) {
	sess := session.New()
	svc, err := New(WithSession(sess))
	require.NoError(t, err)

	_, err = svc.RunSession(context.Background(), 5)
	assert.ErrorIs(t, err, ErrIncompleteSelection)

	sess.SelectCar(catalog.DefaultCar())
	sess.SelectTrack(catalog.Monaco())
	sess.SelectStrategy(catalog.Conservative())
	report, err := svc.RunSession(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Monaco", report.Outcome.TrackName)
	assert.Equal(t, "Dry", report.Outcome.WeatherCondition)
}

func TestLap(t *testing.T) {
	svc, err := New()
	require.NoError(t, err)
	car := catalog.DefaultCar()
	track := catalog.Monza()
	weather := catalog.Dry()
	p, err := svc.Lap(&car, &track, &weather)
	require.NoError(t, err)
	assert.InDelta(t, 202.0, p.Performance.LapTime, 1e-9)
	assert.Greater(t, p.LapTime, 0.0)
	assert.Equal(t, p.Performance.OverallRating(), p.Rating)
}

func TestCompare(t *testing.T) {
	sess := session.New()
	svc, err := New(WithSession(sess))
	require.NoError(t, err)
	track := catalog.Monza()
	weather := catalog.Dry()
	slow := catalog.DefaultCar()
	fast := catalog.NewCar("Fast", 700, catalog.TurboEngine(),
		catalog.SoftTyre(), catalog.SoftTyre(), catalog.LowDragKit())

	cmp, err := svc.Compare(&track, &weather, slow, fast)
	require.NoError(t, err)
	assert.Equal(t, "Fast", cmp.Fastest)
	assert.Len(t, cmp.Entries, 2)
	assert.Greater(t, cmp.Gap, 0.0)
	assert.Equal(t, 2, sess.Usage()[session.CounterCarsCreated])

	_, err = svc.Compare(&track, &weather, slow)
	assert.ErrorIs(t, err, ErrTooFewCars)
}

func TestAnalyze(t *testing.T) {
	svc, err := New()
	require.NoError(t, err)
	track := catalog.Silverstone()
	a := svc.Analyze(&track, catalog.Strategies())
	require.Len(t, a.Strategies, 3)
	assert.Equal(t, "Aggressive", a.Strategies[0].Name)
	assert.Equal(t, advisor.CompatibilityMedium, a.Strategies[0].Compatibility)
	assert.InDelta(t, 75.0, a.Strategies[0].PitStopTime, 1e-9)
	assert.Contains(t, a.Hint, "medium-length")

	long := track
	long.Length = 7
	a = svc.Analyze(&long, catalog.Strategies())
	for _, st := range a.Strategies {
		assert.Equal(t, advisor.CompatibilityHigh, st.Compatibility, st.Name)
	}
}

func TestBatch(t *testing.T) {
	repo := &memResults{}
	svc, err := New(WithResultRepository(repo))
	require.NoError(t, err)
	reqs := []*Request{monzaRequest(), monzaRequest(), monzaRequest()}
	reqs[1].Track = catalog.Monaco()

	first, err := svc.Batch(context.Background(), reqs, 100, 2)
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.Equal(t, "Monaco", first[1].Outcome.TrackName)

	second, err := svc.Batch(context.Background(), reqs, 100, 0)
	require.NoError(t, err)
	for i := range first {
		assert.Equal(t, first[i].Outcome.TotalTime, second[i].Outcome.TotalTime)
	}
	assert.Len(t, repo.data, 6)

	reqs[2].Laps = 1
	_, err = svc.Batch(context.Background(), reqs, 100, 0)
	assert.ErrorContains(t, err, "request 2")
}

func TestSummary(t *testing.T) {
	svc, err := New()
	require.NoError(t, err)
	_, err = svc.Summary(context.Background(), api.ResultFilter{})
	assert.ErrorIs(t, err, ErrNoStorage)

	rlog := resultlog.New(filepath.Join(t.TempDir(), "r.jsonl"))
	for _, o := range []*model.RaceOutcome{
		{CarName: "A", TrackName: "Monza", TotalTime: 40},
		{CarName: "B", TrackName: "Monza", TotalTime: 30},
		{CarName: "A", TrackName: "Monaco", TotalTime: 50},
	} {
		require.NoError(t, rlog.Append(o))
	}
	svc, err = New(WithResultLog(rlog))
	require.NoError(t, err)

	all, err := svc.Summary(context.Background(), api.ResultFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Count)
	assert.InDelta(t, 40.0, all.AverageRaceTime, 1e-9)
	assert.Equal(t, "B", all.FastestCar)
	assert.Equal(t, "A", all.MostUsedCar)

	monzaA, err := svc.Summary(context.Background(), api.ResultFilter{Track: "Monza", Car: "A"})
	require.NoError(t, err)
	assert.Equal(t, 1, monzaA.Count)
	assert.InDelta(t, 40.0, monzaA.BestRaceTime, 1e-9)
}

func TestResultsFromLog(t *testing.T) {
	rlog := resultlog.New(filepath.Join(t.TempDir(), "r.jsonl"))
	for _, name := range []string{"first", "second", "third"} {
		require.NoError(t, rlog.Append(&model.RaceOutcome{CarName: name, TrackName: "Monza"}))
	}
	svc, err := New(WithResultLog(rlog))
	require.NoError(t, err)

	got, err := svc.Results(context.Background(), api.ResultFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "third", got[0].CarName)
	assert.Equal(t, "second", got[1].CarName)

	got, err = svc.Results(context.Background(), api.ResultFilter{Track: "Monaco"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResultsFromLogQuotedNames(t *testing.T) {
	rlog := resultlog.New(filepath.Join(t.TempDir(), "r.jsonl"))
	require.NoError(t, rlog.Append(&model.RaceOutcome{CarName: "a", TrackName: "Monza"}))
	require.NoError(t, rlog.Append(
		&model.RaceOutcome{CarName: "b", TrackName: "Circuit d'Espana"}))
	svc, err := New(WithResultLog(rlog))
	require.NoError(t, err)
	ctx := context.Background()

	got, err := svc.Results(ctx, api.ResultFilter{Track: "Circuit d'Espana"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].CarName)

	got, err = svc.Results(ctx, api.ResultFilter{Track: "x' || @.carName != 'zz"})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = svc.Results(ctx, api.ResultFilter{Car: "a' || @.carName != 'zz"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSetups(t *testing.T) {
	setups := &memSetups{data: map[string]*api.CarSetup{}}
	sess := session.New()
	svc, err := New(WithSetupRepository(setups), WithSession(sess))
	require.NoError(t, err)
	ctx := context.Background()
	car := catalog.DefaultCar()

	_, err = svc.SaveSetup(ctx, "mine", &car)
	require.NoError(t, err)
	assert.Equal(t, 1, sess.Usage()[session.CounterConfigurationsSaved])

	for range 3 {
		got, err := svc.LoadSetup(ctx, "mine")
		require.NoError(t, err)
		assert.Equal(t, car, *got)
	}
	assert.Equal(t, 1, setups.loads)

	_, err = svc.LoadSetup(ctx, "unknown")
	assert.ErrorIs(t, err, api.ErrNoRows)

	bad := car
	bad.ChassisWeight = 10
	_, err = svc.SaveSetup(ctx, "bad", &bad)
	assert.Error(t, err)
}

func TestRunObserver(t *testing.T) {
	svc, err := New()
	require.NoError(t, err)
	req := monzaRequest()
	laps := 0
	req.Observer = func(race.LapEvent) { laps++ }
	_, err = svc.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, req.Laps, laps)
}
