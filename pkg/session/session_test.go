package session

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/mpapenbr/race-strategy-sim/pkg/catalog"
)

func TestSession_Selection(t *testing.T) {
	s := New()
	sel := s.Selection()
	assert.False(t, sel.Complete())
	assert.Equal(t, []string{"car", "track", "strategy"}, sel.Missing())
	assert.Equal(t, "Dry", sel.Weather.Condition)

	s.AddCar(catalog.DefaultCar())
	s.SelectTrack(catalog.Monaco())
	s.SelectStrategy(catalog.Balanced())
	s.SelectWeather(catalog.Wet())
	sel = s.Selection()
	assert.True(t, sel.Complete())
	assert.Empty(t, sel.Missing())
	assert.Equal(t, "Monaco", sel.Track.Name)
	assert.Equal(t, "Wet", sel.Weather.Condition)
	assert.Equal(t, 1, s.Usage()[CounterCarsCreated])

	s.Clear()
	sel = s.Selection()
	assert.Equal(t, []string{"car", "strategy"}, sel.Missing())
	assert.Empty(t, s.Cars())
}

func TestSession_Options(t *testing.T) {
	id := uuid.MustParse("0b7a1f3e-2b0c-4b53-9a71-6c3d1e0f8a11")
	s := New(WithID(id), WithCar(catalog.DefaultCar()), WithTrack(catalog.Monza()),
		WithStrategy(catalog.Aggressive()), WithWeather(catalog.Mixed()))
	assert.Equal(t, id, s.ID())
	assert.True(t, s.Selection().Complete())
	assert.Equal(t, "Mixed", s.Selection().Weather.Condition)
}

func TestSession_ConcurrentInc(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				s.Inc(CounterSimulationsRun)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1000, s.Usage()[CounterSimulationsRun])
}
