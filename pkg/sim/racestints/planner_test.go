//nolint:whitespace,lll,funlen // readability
package racestints

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/race-strategy-sim/pkg/catalog"
	"github.com/mpapenbr/race-strategy-sim/pkg/model"
)

func Test_planner_Calc(t *testing.T) {
	type fields struct {
		param *PlanParams
	}
	toDur := func(secs int) time.Duration { return time.Duration(secs) * time.Second }
	soft, medium, hard := catalog.SoftTyre(), catalog.MediumTyre(), catalog.HardTyre()
	tests := []struct {
		name    string
		fields  fields
		want    *Result
		wantErr bool
	}{
		{
			name:   "single lap",
			fields: fields{param: &PlanParams{TotalLaps: 1, PitStops: 0, Compounds: "Soft"}},
			want: &Result{
				Parts: []Part{&stintPart{laps: 1, lapStart: 1, lapEnd: 1, compound: soft}},
			},
		},
		{
			name:   "no pit stop",
			fields: fields{param: &PlanParams{TotalLaps: 20, PitStops: 0, Compounds: "hard"}},
			want: &Result{
				Parts: []Part{&stintPart{laps: 20, lapStart: 1, lapEnd: 20, compound: hard}},
			},
		},
		{
			name: "two stints even",
			fields: fields{param: &PlanParams{
				TotalLaps: 10, PitStops: 1, Compounds: "Soft-Medium", PitTime: toDur(25),
			}},
			want: &Result{
				Parts: []Part{
					&stintPart{laps: 5, lapStart: 1, lapEnd: 5, compound: soft},
					&pitPart{pitTime: toDur(25)},
					&stintPart{laps: 5, lapStart: 6, lapEnd: 10, compound: medium},
				},
			},
		},
		{
			name: "extra laps go to first stints",
			fields: fields{param: &PlanParams{
				TotalLaps: 11, PitStops: 2, Compounds: "Medium-Hard", PitTime: toDur(30),
			}},
			want: &Result{
				Parts: []Part{
					&stintPart{laps: 4, lapStart: 1, lapEnd: 4, compound: medium},
					&pitPart{pitTime: toDur(30)},
					&stintPart{laps: 4, lapStart: 5, lapEnd: 8, compound: hard},
					&pitPart{pitTime: toDur(30)},
					&stintPart{laps: 3, lapStart: 9, lapEnd: 11, compound: hard},
				},
			},
		},
		{
			name:    "zero laps",
			fields:  fields{param: &PlanParams{TotalLaps: 0, PitStops: 0}},
			wantErr: true,
		},
		{
			name:    "negative pit stops",
			fields:  fields{param: &PlanParams{TotalLaps: 10, PitStops: -1}},
			wantErr: true,
		},
		{
			name:    "more stints than laps",
			fields:  fields{param: &PlanParams{TotalLaps: 3, PitStops: 3}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &planner{param: tt.fields.param}
			got, err := c.Calc()
			if (err != nil) != tt.wantErr {
				t.Errorf("planner.Calc() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("planner.Calc() diff %s",
					cmp.Diff(tt.want, got, cmp.AllowUnexported(stintPart{}, pitPart{})))
			}
		})
	}
}

func TestPlan_Invariants(t *testing.T) {
	for laps := 1; laps <= 60; laps++ {
		for stops := 0; stops <= 4 && stops+1 <= laps; stops++ {
			res, err := Plan(laps, stops, "Soft-Medium-Hard")
			require.NoError(t, err)
			assert.Equal(t, laps, res.TotalLaps(), "laps=%d stops=%d", laps, stops)
			assert.Len(t, res.Stints(), stops+1)
			assert.Len(t, res.PitStops(), stops)
			for _, s := range res.Stints() {
				assert.Positive(t, s.Laps())
			}
		}
	}
}

func TestPlan_InvalidScheduleError(t *testing.T) {
	_, err := Plan(2, 4, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSchedule))
	var ise *InvalidScheduleError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, 2, ise.Laps)
	assert.Equal(t, 4, ise.PitStops)
}

func TestCompoundNames(t *testing.T) {
	tests := []struct {
		name       string
		descriptor string
		stints     int
		want       []string
	}{
		{"empty", "", 3, []string{"Medium", "Medium", "Medium"}},
		{"blank tokens", " - ", 2, []string{"Medium", "Medium"}},
		{"pad with last", "Soft-Hard", 4, []string{"Soft", "Hard", "Hard", "Hard"}},
		{"truncate", "Soft-Medium-Hard", 2, []string{"Soft", "Medium"}},
		{"trim", " Soft - Medium ", 2, []string{"Soft", "Medium"}},
		{"exact", "Hard", 1, []string{"Hard"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, CompoundNames(tt.descriptor, tt.stints)); diff != "" {
				t.Errorf("CompoundNames() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveCompound(t *testing.T) {
	assert.Equal(t, "Soft", ResolveCompound("SOFT").Name)
	assert.Equal(t, "Hard", ResolveCompound("hard").Name)
	assert.Equal(t, "Medium", ResolveCompound("Intermediate").Name)
}

func TestWithCompounds(t *testing.T) {
	inter := model.TyreCompound{
		Name: "Inter", GripLevel: 0.8, Durability: 20, WearRate: 0.06, BaseLapTimeBonus: 1.5,
	}
	res, err := NewPlanner(
		&PlanParams{TotalLaps: 10, PitStops: 1, Compounds: "inter-soft"},
		WithCompounds(inter),
	).Calc()
	require.NoError(t, err)
	stints := res.Stints()
	assert.Equal(t, inter, stints[0].Compound())
	assert.Equal(t, "Soft", stints[1].Compound().Name)
}

func TestResult_PitTime(t *testing.T) {
	res, err := NewPlanner(&PlanParams{
		TotalLaps: 30, PitStops: 3, PitTime: 35 * time.Second,
	}).Calc()
	require.NoError(t, err)
	assert.Equal(t, 105*time.Second, res.PitTime())
	assert.Equal(t, []int{8, 8, 7, 7}, res.StintLengths())
	assert.Equal(t, "Pit 35s", res.PitStops()[0].Output())
	assert.Equal(t, "1-8 (8): Medium", res.Stints()[0].Output())
}
