package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/race-strategy-sim/pkg/model"
	"github.com/mpapenbr/race-strategy-sim/pkg/resultlog"
	"github.com/mpapenbr/race-strategy-sim/pkg/service/simulation"
	"github.com/mpapenbr/race-strategy-sim/pkg/session"
	"github.com/mpapenbr/race-strategy-sim/pkg/sim/rng"
	"github.com/mpapenbr/race-strategy-sim/pkg/utils/broadcast"
)

type fixture struct {
	server *httptest.Server
	sess   *session.Session
	sink   chan *model.RaceOutcome
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	sess := session.New()
	sink := make(chan *model.RaceOutcome, 10)
	svc, err := simulation.New(
		simulation.WithSource(rng.Fixed(0.5)),
		simulation.WithSession(sess),
		simulation.WithOutcomeSink(sink),
		simulation.WithResultLog(resultlog.New(filepath.Join(t.TempDir(), "r.jsonl"))),
	)
	require.NoError(t, err)
	stream := broadcast.New(ctx, "results", (<-chan *model.RaceOutcome)(sink))
	srv := httptest.NewServer(New(svc, WithSession(sess), WithStream(stream)))
	t.Cleanup(srv.Close)
	return &fixture{server: srv, sess: sess, sink: sink}
}

func (f *fixture) post(t *testing.T, path, contentType, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(f.server.URL+path, contentType, strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (f *fixture) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(f.server.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var ret T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ret))
	return ret
}

func TestSimulate(t *testing.T) {
	f := newFixture(t)
	resp := f.post(t, "/v1/simulate", "application/yaml", `
track: Monaco
weather: Wet
strategy: Aggressive
laps: 8
`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report := decode[simulation.Report](t, resp)
	assert.Equal(t, "Monaco", report.Outcome.TrackName)
	assert.Equal(t, 8, report.Outcome.Laps)
	assert.Equal(t, "Wet", report.Outcome.WeatherCondition)
	assert.Equal(t, 1, f.sess.Usage()[session.CounterSimulationsRun])

	resp = f.post(t, "/v1/simulate", "application/json",
		`{"version": "v1.1.0", "track": "Monza", "strategy": "Balanced", "laps": 5}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.get(t, "/v1/results?track=Monza")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	outcomes := decode[[]*model.RaceOutcome](t, resp)
	require.Len(t, outcomes, 1)
	assert.Equal(t, 5, outcomes[0].Laps)

	resp = f.get(t, "/v1/summary")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, decode[model.ResultSummary](t, resp).Count)
}

func TestSimulateBadRequests(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown track", body: "track: Spa\nlaps: 5\n"},
		{name: "old version", body: "version: v0.5.0\ntrack: Monza\nlaps: 5\n"},
		{name: "invalid schedule", body: "track: Monza\nstrategy: Aggressive\nlaps: 2\n"},
		{name: "invalid car", body: `
track: Monza
laps: 5
car: {engine: Turbo, frontTyre: Soft, rearTyre: Soft, aeroKit: Standard Kit, chassisWeight: 100}
`},
		{name: "no yaml", body: "::: nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.post(t, "/v1/simulate", "application/yaml", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body := decode[errorBody](t, resp)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestLap(t *testing.T) {
	f := newFixture(t)
	resp := f.post(t, "/v1/lap", "application/yaml", "track: Silverstone\n")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	preview := decode[simulation.LapPreview](t, resp)
	assert.Equal(t, "Silverstone", preview.Track)
	assert.Greater(t, preview.LapTime, 0.0)
}

func TestCatalogAndStats(t *testing.T) {
	f := newFixture(t)
	resp := f.get(t, "/v1/catalog")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cat := decode[Catalog](t, resp)
	assert.Len(t, cat.Tracks, 3)
	assert.Len(t, cat.Strategies, 3)
	assert.Len(t, cat.AeroKits, 6)

	resp = f.get(t, "/v1/stats")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[Stats](t, resp)
	assert.Equal(t, f.sess.ID(), stats.Session)

	resp = f.get(t, "/v1/results?limit=-1")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = f.get(t, "/v1/simulate")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStream(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		f.server.URL+"/v1/results/stream", http.NoBody)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// the subscription is registered before the headers are sent
	f.post(t, "/v1/simulate", "application/yaml", "track: Monza\nlaps: 4\n")

	scanner := bufio.NewScanner(resp.Body)
	var data string
	for scanner.Scan() {
		if line, ok := strings.CutPrefix(scanner.Text(), "data: "); ok {
			data = line
			break
		}
	}
	require.NotEmpty(t, data)
	var outcome model.RaceOutcome
	require.NoError(t, json.Unmarshal([]byte(data), &outcome))
	assert.Equal(t, 4, outcome.Laps)
}
