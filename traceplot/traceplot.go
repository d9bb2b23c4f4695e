// Package traceplot renders fit results with gonum/plot: observed versus
// fitted traces, the heat-loss channels along a model trace, and the χ²
// history of a problem.
package traceplot

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/katalvlaran/liifit/lm"
	"github.com/katalvlaran/liifit/store"
)

// ErrLength indicates series of different lengths.
var ErrLength = errors.New("traceplot: series length mismatch")

// Default canvas size.
const (
	Width  = 16 * vg.Centimeter
	Height = 10 * vg.Centimeter
)

// chiFloor keeps exact fits visible on the log axis.
const chiFloor = 1e-30

func xys(x, y []float64, xscale float64) (plotter.XYs, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLength, len(x), len(y))
	}
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X = x[i] * xscale
		pts[i].Y = y[i]
	}

	return pts, nil
}

// Fit plots observed samples as points and the fitted curve as a line.
// x is in seconds and is drawn in ns. fitted may be nil.
func Fit(title, ylabel string, x, observed, fitted []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (ns)"
	p.Y.Label.Text = ylabel

	obs, err := xys(x, observed, 1e9)
	if err != nil {
		return nil, err
	}
	sc, err := plotter.NewScatter(obs)
	if err != nil {
		return nil, err
	}
	sc.GlyphStyle.Radius = vg.Points(1.5)
	sc.GlyphStyle.Color = plotutil.Color(0)
	p.Add(sc)
	p.Legend.Add("observed", sc)

	if fitted != nil {
		fit, err := xys(x, fitted, 1e9)
		if err != nil {
			return nil, err
		}
		line, err := plotter.NewLine(fit)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = plotutil.Color(1)
		p.Add(line)
		p.Legend.Add("fitted", line)
	}
	p.Legend.Top = true

	return p, nil
}

// Contributions plots the evaporation, conduction and radiation loss rates
// (W) on a log axis.
func Contributions(title string, x, evap, cond, rad []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (ns)"
	p.Y.Label.Text = "heat loss (W)"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	for i, s := range []struct {
		name string
		y    []float64
	}{{"evaporation", evap}, {"conduction", cond}, {"radiation", rad}} {
		pts, err := xys(x, s.y, 1e9)
		if err != nil {
			return nil, err
		}
		for j := range pts {
			pts[j].Y = math.Max(pts[j].Y, chiFloor)
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Color = plotutil.Color(i)
		line.LineStyle.Dashes = plotutil.Dashes(i)
		p.Add(line)
		p.Legend.Add(s.name, line)
	}

	return p, nil
}

// History plots χ² per recorded iteration on a log axis.
func History(title string, hist []lm.IterationResult) (*plot.Plot, error) {
	if len(hist) == 0 {
		return nil, fmt.Errorf("%w: empty history", ErrLength)
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "χ²"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	pts := make(plotter.XYs, len(hist))
	for i, r := range hist {
		pts[i].X = float64(i)
		pts[i].Y = math.Max(r.ChiSquare(), chiFloor)
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, err
	}
	p.Add(line, points)

	return p, nil
}

// Save writes p to path; the extension picks the format (png, svg, pdf, ...).
func Save(p *plot.Plot, path string) error {
	if err := p.Save(Width, Height, path); err != nil {
		return fmt.Errorf("traceplot: save %s: %w", path, err)
	}

	return nil
}

// Write renders p in format to w.
func Write(p *plot.Plot, w io.Writer, format string) error {
	wt, err := p.WriterTo(Width, Height, format)
	if err != nil {
		return fmt.Errorf("traceplot: %w", err)
	}
	_, err = wt.WriteTo(w)

	return err
}

// SaveProblem writes <key>_fit.png and, when a history exists,
// <key>_chi2.png into dir. It returns the written paths.
func SaveProblem(dir, ylabel string, prob store.Problem) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("traceplot: %w", err)
	}
	base := fileBase(prob)
	x := make([]float64, len(prob.Observed))
	for i := range x {
		x[i] = prob.Start + float64(i)*prob.Dt
	}
	var fitted []float64
	if len(prob.Fitted) == len(prob.Observed) {
		fitted = prob.Fitted
	}

	var out []string
	p, err := Fit(prob.Key.String()+" ("+prob.Status+")", ylabel, x, prob.Observed, fitted)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, base+"_fit.png")
	if err = Save(p, path); err != nil {
		return nil, err
	}
	out = append(out, path)

	if len(prob.Iterations) > 0 {
		hist := make([]lm.IterationResult, len(prob.Iterations))
		for i, it := range prob.Iterations {
			hist[i] = lm.IterationResult(it)
		}
		if p, err = History(prob.Key.String()+" χ²", hist); err != nil {
			return out, err
		}
		path = filepath.Join(dir, base+"_chi2.png")
		if err = Save(p, path); err != nil {
			return out, err
		}
		out = append(out, path)
	}

	return out, nil
}

func fileBase(prob store.Problem) string {
	name := fmt.Sprintf("%s_%d_%d_%s", prob.Key.Run, prob.Key.Point, prob.Key.Channel, prob.Key.Type)

	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '-'
		}

		return r
	}, name)
}
