package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/liifit/fit"
	"github.com/katalvlaran/liifit/metrics"
	"github.com/katalvlaran/liifit/signal"
	"github.com/katalvlaran/liifit/store"
	"github.com/katalvlaran/liifit/traceplot"
)

var errIncomplete = errors.New("fit incomplete: some problems were canceled or failed")

type fitFlags struct {
	signals string
	out     string
	plots   string
	name    string
	workers int
	timeout time.Duration
}

func newFitCmd(a *app) *cobra.Command {
	f := &fitFlags{}
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit every signal of a signal file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFit(cmd, a, f)
		},
	}
	cmd.Flags().StringVarP(&f.signals, "signals", "s", "", "signal file (YAML)")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "result document; .zst, .lz4 or .s2 compress (default output.path)")
	cmd.Flags().StringVar(&f.plots, "plots", "", "directory for per-signal plots (default output.plot_dir)")
	cmd.Flags().StringVar(&f.name, "name", "", "run name stored in the result")
	cmd.Flags().IntVar(&f.workers, "workers", -1, "concurrent problems; 0 = one per problem (default numeric.workers)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "cancel the run after this long")
	_ = cmd.MarkFlagRequired("signals")

	return cmd
}

// progressLogger logs every tenth of the way.
func progressLogger(log zerolog.Logger) fit.ProgressFunc {
	var last int64 = -1

	return func(total, done int64) {
		if total <= 0 {
			return
		}
		decile := done * 10 / total
		if decile == last {
			return
		}
		last = decile
		log.Info().Int64("done", done).Int64("total", total).Msgf("progress %d%%", decile*10)
	}
}

func runFit(cmd *cobra.Command, a *app, f *fitFlags) error {
	cfg := a.cfg
	if f.workers >= 0 {
		cfg.Numeric.Workers = f.workers
	}
	out, plots := cfg.Output.Path, cfg.Output.PlotDir
	if f.out != "" {
		out = f.out
	}
	if f.plots != "" {
		plots = f.plots
	}

	src, err := signal.LoadYAML(f.signals)
	if err != nil {
		return err
	}

	opts := []fit.Option{
		fit.WithLogger(a.log),
		fit.WithRegistry(a.registry),
		fit.WithName(f.name),
		fit.WithProgress(progressLogger(a.log)),
	}
	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts = append(opts, fit.WithRecorder(metrics.New(reg, cfg.Metrics.Namespace)))
	}
	run, err := fit.NewRunFromConfig(cfg, opts...)
	if err != nil {
		return err
	}

	ctx, stop := ossignal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	if reg != nil && cfg.Metrics.Listen != "" {
		srv := metrics.NewServer(reg, a.log, metrics.RunStatus(run))
		srv.Start(cfg.Metrics.Listen)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Stop(sctx); err != nil {
				a.log.Warn().Err(err).Msg("metrics server")
			}
		}()
	}

	if err = run.AddFromSource(ctx, src, src.Keys()); err != nil {
		return err
	}
	if err = run.FitAll(ctx); err != nil {
		return err
	}
	run.Wait()

	doc := store.FromRun(run)
	if err = writeSummary(cmd.OutOrStdout(), doc); err != nil {
		return err
	}
	for _, d := range run.Diagnostics() {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s\n", d)
	}
	if out != "" {
		if err = store.Save(out, doc); err != nil {
			return err
		}
		a.log.Info().Str("path", out).Msg("result saved")
	}
	if plots != "" {
		ylabel := yLabel(doc.Mode)
		for _, p := range doc.Problems {
			if _, err = traceplot.SaveProblem(plots, ylabel, p); err != nil {
				return err
			}
		}
		a.log.Info().Str("dir", plots).Int("problems", len(doc.Problems)).Msg("plots written")
	}
	if run.Canceled() {
		return errIncomplete
	}

	return nil
}

func yLabel(mode string) string {
	if mode == string(fit.ModeIntensity) {
		return "normalized intensity"
	}

	return "temperature (K)"
}
