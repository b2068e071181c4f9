package cmdutil

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/race-strategy-sim/pkg/scenario"
)

func TestParseCarSpec(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		want    scenario.CarSpec
		wantErr bool
	}{
		{name: "default", arg: "Default", want: scenario.CarSpec{Preset: "default"}},
		{
			name: "custom",
			arg:  "name=Fast,engine=Turbo,front=Soft,rear=Soft,aero=Low Drag Kit,weight=750",
			want: scenario.CarSpec{
				Name: "Fast", Engine: "Turbo", FrontTyre: "Soft", RearTyre: "Soft",
				AeroKit: "Low Drag Kit", ChassisWeight: 750,
			},
		},
		{
			name: "defaults for missing attributes",
			arg:  "engine=Standard",
			want: scenario.CarSpec{
				Name: "Standard Car", Engine: "Standard", FrontTyre: "Medium",
				RearTyre: "Medium", AeroKit: "Standard Kit", ChassisWeight: 800,
			},
		},
		{name: "no engine", arg: "name=x", wantErr: true},
		{name: "unknown key", arg: "engine=Turbo,color=red", wantErr: true},
		{name: "no value", arg: "engine", wantErr: true},
		{name: "bad weight", arg: "engine=Turbo,weight=heavy", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCarSpec(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsedCarResolves(t *testing.T) {
	spec, err := ParseCarSpec("name=Fast,engine=Turbo,front=Soft,rear=Soft,aero=Low Drag Kit")
	require.NoError(t, err)
	car, err := spec.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "Fast", car.Name)
	assert.Equal(t, 300.0, car.Engine.Power)
	assert.True(t, car.IsFullyConfigured())
}

func TestTrackAndWeather(t *testing.T) {
	sel := Selection{Track: "monaco", Weather: "wet"}
	track, weather, err := sel.TrackAndWeather()
	require.NoError(t, err)
	assert.Equal(t, "Monaco", track.Name)
	assert.Equal(t, "Wet", weather.Condition)

	sel.Track = "Spa"
	_, _, err = sel.TrackAndWeather()
	assert.ErrorIs(t, err, scenario.ErrUnknown)
}

func TestPrint(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, Print(buf, OutputJSON, map[string]int{"laps": 3}, nil))
	assert.JSONEq(t, `{"laps":3}`, buf.String())

	buf.Reset()
	require.NoError(t, Print(buf, OutputText, nil, func(w io.Writer) {
		fmt.Fprint(w, "text")
	}))
	assert.Equal(t, "text", buf.String())

	assert.Error(t, Print(buf, "xml", nil, nil))
}
