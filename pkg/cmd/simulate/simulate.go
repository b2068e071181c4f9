package simulate

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/race-strategy-sim/log"
	"github.com/mpapenbr/race-strategy-sim/pkg/cmd/cmdutil"
	"github.com/mpapenbr/race-strategy-sim/pkg/scenario"
	"github.com/mpapenbr/race-strategy-sim/pkg/service/simulation"
	"github.com/mpapenbr/race-strategy-sim/pkg/sim/race"
)

type options struct {
	sel          cmdutil.Selection
	scenarioFile string
	laps         int
	distance     float64
	seed         uint64
	setup        string
	saveSetup    string
	lapDetails   bool
	output       string
}

func NewSimulateCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "simulates a race",
		Long: `Simulates a race with the car, track and strategy given by flags or
by a scenario file (--scenario).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	opts.sel.AddCarFlags(cmd.Flags())
	opts.sel.AddTrackFlags(cmd.Flags())
	opts.sel.AddStrategyFlags(cmd.Flags())
	cmd.Flags().StringVar(&opts.scenarioFile, "scenario", "",
		"scenario file (yaml), replaces the car, track and strategy flags")
	cmd.Flags().IntVar(&opts.laps, "laps", 10, "number of laps")
	cmd.Flags().Float64Var(&opts.distance, "distance", 0,
		"race distance (km), overrides --laps")
	cmd.Flags().Uint64Var(&opts.seed, "race-seed", 0,
		"seed for this race, 0 uses the global source")
	cmd.Flags().StringVar(&opts.setup, "setup", "",
		"use the car setup stored under this name")
	cmd.Flags().StringVar(&opts.saveSetup, "save-setup", "",
		"store the car under this name before simulating")
	cmd.Flags().BoolVar(&opts.lapDetails, "lap-details", false, "print every lap")
	cmd.Flags().StringVarP(&opts.output, "output", "o", cmdutil.OutputText,
		"output format (text, json)")
	return cmd
}

func run(ctx context.Context, w io.Writer, opts *options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	infra, err := cmdutil.SetupInfra(ctx)
	if err != nil {
		return err
	}
	defer infra.Close()

	svc, err := simulation.New(infra.ServiceOptions()...)
	if err != nil {
		return err
	}
	req, err := buildRequest(ctx, svc, opts)
	if err != nil {
		return err
	}
	if opts.lapDetails && opts.output == cmdutil.OutputText {
		req.Observer = func(ev race.LapEvent) {
			fmt.Fprintf(w, "lap %3d  stint %d  %-6s age %2d  %8.3fs  %9.3fs\n",
				ev.Lap, ev.Stint+1, ev.Compound, ev.TyreAge, ev.LapTime, ev.Elapsed)
		}
	}
	report, err := svc.Run(ctx, req)
	if err != nil {
		return err
	}
	log.Debug("race simulated", log.String("id", report.Outcome.ID.String()))
	return cmdutil.Print(w, opts.output, report, func(w io.Writer) {
		PrintReport(w, report)
	})
}

//nolint:whitespace // editor/linter issue
func buildRequest(
	ctx context.Context, svc *simulation.Service, opts *options,
) (*simulation.Request, error) {
	var doc *scenario.Scenario
	if opts.scenarioFile != "" {
		var err error
		if doc, err = scenario.Load(opts.scenarioFile); err != nil {
			return nil, err
		}
	} else {
		doc = opts.sel.Scenario(opts.laps, opts.distance, opts.seed)
	}
	resolved, err := doc.Resolve()
	if err != nil {
		return nil, err
	}
	if opts.setup != "" {
		car, err := svc.LoadSetup(ctx, opts.setup)
		if err != nil {
			return nil, fmt.Errorf("load setup %q: %w", opts.setup, err)
		}
		resolved.Car = *car
	}
	if opts.saveSetup != "" {
		if _, err := svc.SaveSetup(ctx, opts.saveSetup, &resolved.Car); err != nil {
			return nil, fmt.Errorf("save setup %q: %w", opts.saveSetup, err)
		}
		log.Info("setup saved", log.String("name", opts.saveSetup))
	}
	return RequestFrom(resolved), nil
}

// RequestFrom converts a resolved scenario into a simulation request.
func RequestFrom(r *scenario.Resolved) *simulation.Request {
	return &simulation.Request{
		Car:      r.Car,
		Track:    r.Track,
		Strategy: r.Strategy,
		Weather:  r.Weather,
		Laps:     r.Laps,
		Seed:     r.Seed,
	}
}

// PrintReport writes the human readable race report.
func PrintReport(w io.Writer, r *simulation.Report) {
	o := r.Outcome
	fmt.Fprintf(w, "Race %s\n", o.ID)
	fmt.Fprintf(w, "  Car:        %s\n", o.CarName)
	fmt.Fprintf(w, "  Track:      %s (%s)\n", o.TrackName, o.WeatherCondition)
	fmt.Fprintf(w, "  Strategy:   %s, %d pit stops (%.1fs)\n",
		o.Strategy, o.PitStopCount, o.PitStopTime)
	fmt.Fprintf(w, "  Laps:       %d\n", o.Laps)
	fmt.Fprintf(w, "  Total time: %.2f min\n", o.TotalTime)
	fmt.Fprintf(w, "  Avg lap:    %.3f s\n", o.AverageLapTime)
	fmt.Fprintf(w, "  Rating:     %s\n", r.Rating)
	for i, s := range o.Stints {
		fmt.Fprintf(w, "  Stint %d:    %d laps on %s, %.2f s\n", i+1, s.Laps, s.Compound, s.StintTime)
	}
	fmt.Fprintf(w, "Performance: top speed %d km/h, 0-100 %.2f s, fuel %.2f l/lap, cornering %d\n",
		r.Performance.TopSpeed, r.Performance.Acceleration,
		r.Performance.FuelConsumption, r.Performance.CorneringAbility)
	fmt.Fprintf(w, "Compatibility: %s\n", r.Compatibility)
	if r.Hint != "" {
		fmt.Fprintf(w, "Hint: %s\n", r.Hint)
	}
	printList(w, "Warnings", r.Warnings)
	printList(w, "Recommendations", r.Recommendations)
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n  - %s\n", title, strings.Join(items, "\n  - "))
}
