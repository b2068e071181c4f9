// Package preview contains the commands that evaluate a setup without
// simulating a full race.
package preview

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/race-strategy-sim/pkg/catalog"
	"github.com/mpapenbr/race-strategy-sim/pkg/cmd/cmdutil"
	"github.com/mpapenbr/race-strategy-sim/pkg/model"
	"github.com/mpapenbr/race-strategy-sim/pkg/scenario"
	"github.com/mpapenbr/race-strategy-sim/pkg/service/simulation"
)

func newService() (*simulation.Service, error) {
	cmdutil.InitLogging()
	return simulation.New()
}

func NewLapCmd() *cobra.Command {
	var sel cmdutil.Selection
	var output string
	cmd := &cobra.Command{
		Use:   "lap",
		Short: "shows a one lap preview of a car",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			preview, err := lapPreview(svc, &sel)
			if err != nil {
				return err
			}
			return cmdutil.Print(cmd.OutOrStdout(), output, preview, func(w io.Writer) {
				PrintLap(w, preview)
			})
		},
	}
	sel.AddCarFlags(cmd.Flags())
	sel.AddTrackFlags(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", cmdutil.OutputText,
		"output format (text, json)")
	return cmd
}

func lapPreview(svc *simulation.Service, sel *cmdutil.Selection) (*simulation.LapPreview, error) {
	car, err := sel.Car.Resolve()
	if err != nil {
		return nil, err
	}
	track, weather, err := sel.TrackAndWeather()
	if err != nil {
		return nil, err
	}
	return svc.Lap(&car, &track, &weather)
}

func PrintLap(w io.Writer, p *simulation.LapPreview) {
	fmt.Fprintf(w, "%s on %s (%s)\n", p.Car, p.Track, p.Weather)
	fmt.Fprintf(w, "  Lap time:   %.3f s\n", p.LapTime)
	fmt.Fprintf(w, "  Top speed:  %d km/h\n", p.Performance.TopSpeed)
	fmt.Fprintf(w, "  0-100:      %.2f s\n", p.Performance.Acceleration)
	fmt.Fprintf(w, "  Fuel:       %.2f l/lap\n", p.Performance.FuelConsumption)
	fmt.Fprintf(w, "  Cornering:  %d\n", p.Performance.CorneringAbility)
	fmt.Fprintf(w, "  Rating:     %d\n", p.Rating)
}

func NewCompareCmd() *cobra.Command {
	var sel cmdutil.Selection
	var output string
	cmd := &cobra.Command{
		Use:   "compare CAR CAR [CAR...]",
		Short: "compares the performance of cars on a track",
		Long: `Compares cars on a track. Each car is either "default" or a list of
attributes like "name=Fast,engine=Turbo,front=Soft,rear=Soft,aero=Low Drag Kit,weight=750".`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			result, err := compare(svc, &sel, args)
			if err != nil {
				return err
			}
			return cmdutil.Print(cmd.OutOrStdout(), output, result, func(w io.Writer) {
				PrintComparison(w, result)
			})
		},
	}
	sel.AddTrackFlags(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", cmdutil.OutputText,
		"output format (text, json)")
	return cmd
}

//nolint:whitespace // editor/linter issue
func compare(
	svc *simulation.Service, sel *cmdutil.Selection, args []string,
) (*simulation.Comparison, error) {
	track, weather, err := sel.TrackAndWeather()
	if err != nil {
		return nil, err
	}
	cars := make([]model.Car, 0, len(args))
	for _, arg := range args {
		spec, err := cmdutil.ParseCarSpec(arg)
		if err != nil {
			return nil, err
		}
		car, err := spec.Resolve()
		if err != nil {
			return nil, err
		}
		cars = append(cars, car)
	}
	return svc.Compare(&track, &weather, cars...)
}

func PrintComparison(w io.Writer, c *simulation.Comparison) {
	fmt.Fprintf(w, "Comparison on %s\n", c.Track)
	for _, e := range c.Entries {
		fmt.Fprintf(w, "  %-20s lap %8.3f s  top speed %3d km/h  cornering %d\n",
			e.Car, e.LapTime, e.Performance.TopSpeed, e.Performance.CorneringAbility)
	}
	fmt.Fprintf(w, "Fastest: %s (gap %.3f s per lap)\n", c.Fastest, c.Gap)
}

func NewAnalyzeCmd() *cobra.Command {
	var sel cmdutil.Selection
	var output string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "rates the strategies for a track",
		Long: `Rates the strategy presets for a track. If a custom strategy is given
by flags, it is rated as "Custom" in addition.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}
			result, err := analyze(svc, &sel)
			if err != nil {
				return err
			}
			return cmdutil.Print(cmd.OutOrStdout(), output, result, func(w io.Writer) {
				PrintAnalysis(w, result)
			})
		},
	}
	sel.AddTrackFlags(cmd.Flags())
	sel.AddStrategyFlags(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", cmdutil.OutputText,
		"output format (text, json)")
	return cmd
}

func analyze(svc *simulation.Service, sel *cmdutil.Selection) (*simulation.Analysis, error) {
	track, ok := catalog.TrackByName(sel.Track)
	if !ok {
		return nil, fmt.Errorf("%w: track %q", scenario.ErrUnknown, sel.Track)
	}
	strategies := catalog.Strategies()
	if sel.Strategy.Preset == "" && sel.Strategy.FuelLoad != "" {
		custom, err := sel.Strategy.Resolve()
		if err != nil {
			return nil, err
		}
		strategies["Custom"] = custom
	}
	return svc.Analyze(&track, strategies), nil
}

func PrintAnalysis(w io.Writer, a *simulation.Analysis) {
	fmt.Fprintf(w, "Strategies for %s\n", a.Track)
	for _, s := range a.Strategies {
		fmt.Fprintf(w, "  %-13s %d stops  %-14s %-7s pit time %5.1f s  %s\n",
			s.Name, s.Strategy.PitStops, s.Strategy.TyreStrategy,
			s.Strategy.FuelLoad, s.PitStopTime, strings.ToLower(string(s.Compatibility)))
	}
	fmt.Fprintf(w, "Hint: %s\n", a.Hint)
}
