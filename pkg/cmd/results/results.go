package results

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/race-strategy-sim/log"
	"github.com/mpapenbr/race-strategy-sim/pkg/cmd/cmdutil"
	"github.com/mpapenbr/race-strategy-sim/pkg/model"
	"github.com/mpapenbr/race-strategy-sim/pkg/repository/api"
	"github.com/mpapenbr/race-strategy-sim/pkg/resultlog"
	"github.com/mpapenbr/race-strategy-sim/pkg/service/simulation"
)

var (
	errNoResultsLog = errors.New("--query needs a results log (--results-log)")
	errNoNats       = errors.New("--latest and --follow need a NATS server (--nats-url)")
)

type options struct {
	filter  api.ResultFilter
	query   string
	summary bool
	latest  string
	follow  bool
	output  string
}

func NewResultsCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "results",
		Short: "lists stored race results",
		Long: `Lists the stored race results, newest first. The database is used if
configured, the results log otherwise.

With --query a JSONPath expression is applied to the results log, e.g.
  rss results --query "$[?(@.trackName == 'Monza')].totalTime"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.filter.Track, "track", "", "only results of this track")
	cmd.Flags().StringVar(&opts.filter.Car, "car", "", "only results of this car")
	cmd.Flags().IntVar(&opts.filter.Limit, "limit", 20, "max number of results, 0 for all")
	cmd.Flags().StringVarP(&opts.query, "query", "q", "",
		"JSONPath expression applied to the results log")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "print a summary only")
	cmd.Flags().StringVar(&opts.latest, "latest", "",
		"print the last result published for this track (NATS)")
	cmd.Flags().BoolVar(&opts.follow, "follow", false,
		"print results published by other simulator instances until interrupted (NATS)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", cmdutil.OutputText,
		"output format (text, json)")
	return cmd
}

func run(ctx context.Context, w io.Writer, opts *options) error {
	infra, err := cmdutil.SetupInfra(ctx)
	if err != nil {
		return err
	}
	defer infra.Close()

	switch {
	case opts.query != "":
		return runQuery(w, infra.ResultLog, opts.query)
	case opts.latest != "" || opts.follow:
		if infra.Publisher == nil {
			return errNoNats
		}
		if opts.latest != "" {
			return printLatest(ctx, w, infra.Publisher, opts)
		}
		return follow(ctx, w, infra.Publisher, opts.output)
	}
	svc, err := simulation.New(infra.ServiceOptions()...)
	if err != nil {
		return err
	}
	return list(ctx, w, svc, opts)
}

type natsSource interface {
	Latest(ctx context.Context, track string) (*model.RaceOutcome, error)
	Subscribe(ctx context.Context, fn func(*model.RaceOutcome)) error
}

func printLatest(ctx context.Context, w io.Writer, src natsSource, opts *options) error {
	outcome, err := src.Latest(ctx, opts.latest)
	if err != nil {
		return fmt.Errorf("latest result of %s: %w", opts.latest, err)
	}
	return cmdutil.Print(w, opts.output, outcome, func(w io.Writer) {
		PrintOutcomes(w, []*model.RaceOutcome{outcome})
	})
}

func follow(ctx context.Context, w io.Writer, src natsSource, output string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := src.Subscribe(ctx, func(o *model.RaceOutcome) {
		if err := cmdutil.Print(w, output, o, func(w io.Writer) {
			PrintOutcomes(w, []*model.RaceOutcome{o})
		}); err != nil {
			log.Warn("could not print result", log.ErrorField(err))
		}
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

func runQuery(w io.Writer, rlog *resultlog.Log, query string) error {
	if rlog == nil {
		return errNoResultsLog
	}
	matches, err := rlog.Query(query)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, resultlog.Format(matches))
	return nil
}

func list(ctx context.Context, w io.Writer, svc *simulation.Service, opts *options) error {
	if opts.summary {
		summary, err := svc.Summary(ctx, opts.filter)
		if err != nil {
			return err
		}
		return cmdutil.Print(w, opts.output, summary, func(w io.Writer) {
			PrintSummary(w, summary)
		})
	}
	outcomes, err := svc.Results(ctx, opts.filter)
	if err != nil {
		return err
	}
	return cmdutil.Print(w, opts.output, outcomes, func(w io.Writer) {
		PrintOutcomes(w, outcomes)
	})
}

func PrintSummary(w io.Writer, s *model.ResultSummary) {
	if s.Count == 0 {
		fmt.Fprintln(w, "no results")
		return
	}
	fmt.Fprintf(w, "Results:       %d\n", s.Count)
	fmt.Fprintf(w, "Avg race time: %.2f min\n", s.AverageRaceTime)
	fmt.Fprintf(w, "Best:          %.2f min (%s)\n", s.BestRaceTime, s.FastestCar)
	fmt.Fprintf(w, "Most used car: %s\n", s.MostUsedCar)
}

func PrintOutcomes(w io.Writer, outcomes []*model.RaceOutcome) {
	if len(outcomes) == 0 {
		fmt.Fprintln(w, "no results")
		return
	}
	for _, o := range outcomes {
		fmt.Fprintf(w, "%s  %-20s %-12s %-12s %3d laps %8.2f min  %s\n",
			o.CreatedAt.Format("2006-01-02 15:04:05"), o.CarName, o.TrackName,
			o.Strategy, o.Laps, o.TotalTime, o.WeatherCondition)
	}
}
