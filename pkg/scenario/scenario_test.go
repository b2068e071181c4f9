package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/race-strategy-sim/pkg/catalog"
	"github.com/mpapenbr/race-strategy-sim/pkg/model"
)

func TestLoadAndResolve(t *testing.T) {
	s, err := Load("testdata/monza.yml")
	require.NoError(t, err)
	assert.Equal(t, "monza sprint", s.Name)

	r, err := s.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "Turbo Special", r.Car.Name)
	assert.Equal(t, catalog.TurboEngine(), r.Car.Engine)
	assert.Equal(t, "Low Drag Kit", r.Car.AeroKit.Name)
	assert.Equal(t, "Monza", r.Track.Name)
	assert.Equal(t, "Wet", r.Weather.Condition)
	assert.Equal(t, model.Strategy{
		PitStops: 2, TyreStrategy: "Soft-Medium-Hard", FuelLoad: model.FuelMedium,
	}, r.Strategy)
	assert.Equal(t, 12, r.Laps)
	assert.Equal(t, uint64(42), r.Seed)
}

func TestParsePresets(t *testing.T) {
	s, err := Parse([]byte(`
version: "1.0.0"
car: default
track: monaco
strategy: Aggressive
distance: 20
`))
	require.NoError(t, err)
	r, err := s.Resolve()
	require.NoError(t, err)
	assert.Equal(t, catalog.DefaultCar(), r.Car)
	assert.Equal(t, catalog.Aggressive(), r.Strategy)
	assert.Equal(t, "Dry", r.Weather.Condition)
	assert.Equal(t, 7, r.Laps) // ceil(20 / 3.3)
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		version string
		wantErr bool
	}{
		{"v1.0.0", false},
		{"1.4.2", false},
		{"v0.9.0", true},
		{"v2.0.0", true},
		{"", true},
		{"latest", true},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			_, err := Parse([]byte("version: \"" + tt.version + "\"\ntrack: Monza\n"))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrVersion)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseDefaultVersion(t *testing.T) {
	s, err := ParseDefaultVersion([]byte(`{"track": "Monza", "strategy": "Balanced", "laps": 3}`))
	require.NoError(t, err)
	assert.Equal(t, MinVersion, s.Version)
	assert.Equal(t, "Balanced", s.Strategy.Preset)

	_, err = ParseDefaultVersion([]byte("version: v0.1.0\ntrack: Monza\n"))
	assert.ErrorIs(t, err, ErrVersion)
}

func TestResolveUnknown(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"track", "version: v1.0.0\ntrack: Spa\n"},
		{"weather", "version: v1.0.0\ntrack: Monza\nweather: Snow\n"},
		{"strategy", "version: v1.0.0\ntrack: Monza\nstrategy: Reckless\n"},
		{"fuel", "version: v1.0.0\ntrack: Monza\nstrategy:\n  pitStops: 1\n  fuelLoad: full\n"},
		{"engine", "version: v1.0.0\ntrack: Monza\ncar:\n  engine: V12\n"},
		{"car preset", "version: v1.0.0\ntrack: Monza\ncar: rocket\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.doc))
			require.NoError(t, err)
			_, err = s.Resolve()
			assert.ErrorIs(t, err, ErrUnknown)
		})
	}
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yml")
	require.NoError(t, os.WriteFile(path, []byte("version: v1.0.0\ntrack: Monza\n"), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got := make(chan *Scenario, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(s *Scenario, err error) {
			if err == nil {
				got <- s
			}
		})
	}()

	// give the watcher time to register
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("version: v1.0.0\ntrack: Monaco\n"), 0o600))

	select {
	case s := <-got:
		assert.Equal(t, "Monaco", s.Track)
	case <-ctx.Done():
		t.Fatal("no reload observed")
	}
	cancel()
	assert.NoError(t, <-done)
}
