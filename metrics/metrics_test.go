package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/liifit/fit"
	"github.com/katalvlaran/liifit/heat"
	"github.com/katalvlaran/liifit/settings"
	"github.com/katalvlaran/liifit/signal"
)

func TestRecorder_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg, "liifit")

	r.ProblemStarted("temperature")
	r.ProblemStarted("temperature")
	assert.Equal(t, 2.0, testutil.ToFloat64(r.inFlight))
	r.Iteration(12)
	r.Iteration(3)
	r.Evaluation()
	r.ProblemFinished("done", 0.5)
	r.ProblemFinished("canceled", 0.1)
	r.RunFinished(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.problemsStarted.WithLabelValues("temperature")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.problemsFinished.WithLabelValues("done")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.problemsFinished.WithLabelValues("canceled")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.inFlight))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.iterations))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.evaluations))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("incomplete")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.chiSquare))
}

func fittedRun(t *testing.T, rec fit.Recorder) *fit.Run {
	t.Helper()
	cfg, err := settings.Parse([]byte("mode: temperature\n"))
	require.NoError(t, err)
	sim, err := fit.NewSimRun(cfg)
	require.NoError(t, err)
	res, err := sim.Run(context.Background(), heat.DefaultRegistry())
	require.NoError(t, err)

	fs := cfg.Fit.Clone()
	for i := range fs.Params {
		fs.Params[i].Enabled = fs.Params[i].ID == settings.Diameter
	}
	fs.Params[fs.ByID(settings.Diameter)].Value = 22
	run, err := fit.NewRun(fit.ModeTemperature, cfg.Modeling, fs, cfg.Numeric, fit.WithRecorder(rec), fit.WithName("m"))
	require.NoError(t, err)
	_, err = run.AddProblem(signal.Key{Run: "sim", Point: 1, Type: signal.TypeTemperature}, res.Measurement())
	require.NoError(t, err)
	require.NoError(t, run.FitAll(context.Background()))
	run.Wait()

	return run
}

func TestRecorder_WiredIntoRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg, "liifit")
	run := fittedRun(t, r)

	assert.False(t, run.Canceled())
	assert.Equal(t, 1.0, testutil.ToFloat64(r.problemsFinished.WithLabelValues("done")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("complete")))
	assert.Greater(t, testutil.ToFloat64(r.iterations), 1.0)
	assert.Greater(t, testutil.ToFloat64(r.evaluations), testutil.ToFloat64(r.iterations))
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	return rec
}

func TestServer_Endpoints(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg, "liifit")

	idle := NewServer(reg, zerolog.Nop(), nil)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, idle.Handler(), "/status").Code)

	run := fittedRun(t, r)
	s := NewServer(reg, zerolog.Nop(), RunStatus(run))

	res := get(t, s.Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "ok", res.Body.String())

	res = get(t, s.Handler(), "/status")
	require.Equal(t, http.StatusOK, res.Code)
	var st Status
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &st))
	assert.Equal(t, run.ID().String(), st.Run)
	assert.Equal(t, "m", st.Name)
	assert.Equal(t, 1, st.Problems)
	assert.EqualValues(t, 1, st.Finished)
	assert.False(t, st.Active)
	assert.Equal(t, st.Total, st.Done)

	res = get(t, s.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "liifit_problems_finished_total")

	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/nope").Code)
}
