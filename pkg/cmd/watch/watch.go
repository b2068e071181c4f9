package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/race-strategy-sim/log"
	"github.com/mpapenbr/race-strategy-sim/pkg/cmd/cmdutil"
	"github.com/mpapenbr/race-strategy-sim/pkg/cmd/simulate"
	"github.com/mpapenbr/race-strategy-sim/pkg/scenario"
	"github.com/mpapenbr/race-strategy-sim/pkg/service/simulation"
)

func NewWatchCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "watch SCENARIO",
		Short: "simulates a scenario file each time it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cmd.OutOrStdout(), args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", cmdutil.OutputText,
		"output format (text, json)")
	return cmd
}

func run(ctx context.Context, w io.Writer, path, output string) error {
	infra, err := cmdutil.SetupInfra(ctx)
	if err != nil {
		return err
	}
	defer infra.Close()

	svc, err := simulation.New(infra.ServiceOptions()...)
	if err != nil {
		return err
	}
	runner := &runner{ctx: ctx, w: w, svc: svc, output: output}
	runner.handle(scenario.Load(path))
	return scenario.Watch(ctx, path, runner.handle)
}

type runner struct {
	//nolint:containedctx // lives as long as the watch
	ctx    context.Context
	w      io.Writer
	svc    *simulation.Service
	output string
}

// handle simulates a freshly loaded scenario. Errors are reported and the
// watch goes on.
func (r *runner) handle(doc *scenario.Scenario, err error) {
	if err != nil {
		log.Warn("could not load scenario", log.ErrorField(err))
		return
	}
	resolved, err := doc.Resolve()
	if err != nil {
		log.Warn("could not resolve scenario", log.ErrorField(err))
		return
	}
	report, err := r.svc.Run(r.ctx, simulate.RequestFrom(resolved))
	if err != nil {
		log.Warn("simulation failed", log.ErrorField(err))
		return
	}
	if doc.Name != "" && r.output == cmdutil.OutputText {
		fmt.Fprintf(r.w, "== %s ==\n", doc.Name)
	}
	if err := cmdutil.Print(r.w, r.output, report, func(w io.Writer) {
		simulate.PrintReport(w, report)
	}); err != nil {
		log.Warn("could not print report", log.ErrorField(err))
	}
}
