package preview

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/race-strategy-sim/pkg/cmd/cmdutil"
	"github.com/mpapenbr/race-strategy-sim/pkg/service/simulation"
)

func newTestService(t *testing.T) *simulation.Service {
	t.Helper()
	svc, err := simulation.New()
	require.NoError(t, err)
	return svc
}

func TestLapPreview(t *testing.T) {
	sel := cmdutil.Selection{Track: "Monza", Weather: "Dry"}
	p, err := lapPreview(newTestService(t), &sel)
	require.NoError(t, err)
	assert.Equal(t, "Monza", p.Track)
	assert.Greater(t, p.LapTime, 0.0)

	buf := &bytes.Buffer{}
	PrintLap(buf, p)
	assert.Contains(t, buf.String(), "on Monza (Dry)")
}

func TestCompare(t *testing.T) {
	sel := cmdutil.Selection{Track: "Monaco", Weather: "Dry"}
	c, err := compare(newTestService(t), &sel, []string{
		"default",
		"name=Rocket,engine=Turbo,front=Soft,rear=Soft,aero=Low Drag Kit,weight=700",
	})
	require.NoError(t, err)
	require.Len(t, c.Entries, 2)
	assert.Equal(t, "Rocket", c.Entries[1].Car)
	assert.GreaterOrEqual(t, c.Gap, 0.0)

	buf := &bytes.Buffer{}
	PrintComparison(buf, c)
	assert.Contains(t, buf.String(), "Fastest: "+c.Fastest)

	_, err = compare(newTestService(t), &sel, []string{"default", "engine"})
	assert.Error(t, err)
}

func TestAnalyze(t *testing.T) {
	sel := cmdutil.Selection{Track: "Monaco"}
	a, err := analyze(newTestService(t), &sel)
	require.NoError(t, err)
	names := []string{}
	for _, s := range a.Strategies {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Aggressive", "Balanced", "Conservative"}, names)

	sel.Strategy.PitStops = 1
	sel.Strategy.TyreStrategy = "Soft-Hard"
	sel.Strategy.FuelLoad = "Light"
	a, err = analyze(newTestService(t), &sel)
	require.NoError(t, err)
	assert.Len(t, a.Strategies, 4)
	assert.Equal(t, "Custom", a.Strategies[3].Name)
	assert.Equal(t, 25.0, a.Strategies[3].PitStopTime)

	buf := &bytes.Buffer{}
	PrintAnalysis(buf, a)
	assert.Contains(t, buf.String(), "Strategies for Monaco")

	sel.Track = "Spa"
	_, err = analyze(newTestService(t), &sel)
	assert.Error(t, err)
}
