package main

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/liifit/fit"
	"github.com/katalvlaran/liifit/signal"
	"github.com/katalvlaran/liifit/traceplot"
)

type simFlags struct {
	out      string
	plots    string
	points   int
	noise    float64
	seed     uint64
	diameter float64
	peak     float64
}

func newSimCmd(a *app) *cobra.Command {
	f := &simFlags{}
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Simulate traces from the configured parameter values",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSim(cmd, a, f)
		},
	}
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "signal file to write (YAML)")
	cmd.Flags().StringVar(&f.plots, "plots", "", "directory for trace and heat-loss plots")
	cmd.Flags().IntVar(&f.points, "points", 1, "number of measurement points to emit")
	cmd.Flags().Float64Var(&f.noise, "noise", 0, "Gaussian noise σ added to every sample")
	cmd.Flags().Uint64Var(&f.seed, "seed", 1, "noise seed")
	cmd.Flags().Float64Var(&f.diameter, "diameter", 0, "true diameter in nm (default: fit start value)")
	cmd.Flags().Float64Var(&f.peak, "peak", 0, "true peak temperature in K (default: fit start value)")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runSim(cmd *cobra.Command, a *app, f *simFlags) error {
	if f.points < 1 {
		return fmt.Errorf("points must be ≥ 1, got %d", f.points)
	}
	sim, err := fit.NewSimRun(a.cfg)
	if err != nil {
		return err
	}
	if f.diameter > 0 {
		sim.Diameter = f.diameter
	}
	if f.peak > 0 {
		sim.PeakTemperature = f.peak
	}
	res, err := sim.Run(cmd.Context(), a.registry)
	if err != nil {
		return err
	}
	if res.Trace.Truncated {
		a.log.Warn().Int("sample", res.Stats.Truncated).Msg("trace held at last physical state")
	}

	typ := signal.TypeTemperature
	if sim.Mode == fit.ModeIntensity {
		typ = signal.TypeIntensity
	}
	keys := make([]signal.Key, f.points)
	sigs := make([]*signal.Signal, f.points)
	for i := range keys {
		keys[i] = signal.Key{Run: sim.ID.String(), Point: i, Type: typ}
		s := res.Measurement()
		if f.noise > 0 {
			rng := rand.New(rand.NewPCG(f.seed, uint64(i)))
			s.Stdev = make([]float64, s.Len())
			for j := range s.Data {
				s.Data[j] += f.noise * rng.NormFloat64()
				s.Stdev[j] = f.noise
			}
		}
		sigs[i] = s
	}
	if err = signal.WriteYAML(f.out, keys, sigs); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d signal(s) of %d samples to %s (d=%g nm, T0=%g K, Tg=%g K)\n",
		f.points, res.Trace.Len(), f.out, sim.Diameter, sim.PeakTemperature, sim.GasTemperature)

	if f.plots != "" {
		x := res.Trace.Times()
		p, err := traceplot.Contributions("heat loss", x, res.Evaporation, res.Conduction, res.Radiation)
		if err != nil {
			return err
		}
		if err = traceplot.Save(p, filepath.Join(f.plots, "heat_loss.png")); err != nil {
			return err
		}
		if p, err = traceplot.Fit("simulated trace", yLabel(string(sim.Mode)), x, sigs[0].Data, res.Observable); err != nil {
			return err
		}
		if err = traceplot.Save(p, filepath.Join(f.plots, "trace.png")); err != nil {
			return err
		}
	}

	return nil
}
