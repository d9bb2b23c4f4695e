package fit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/liifit/signal"
)

func TestBudget(t *testing.T) {
	assert.Equal(t, int64(51*4+1), budget(50, 3))
	assert.Equal(t, int64(2), budget(0, 0))
}

func TestTracker_ClampsAndShrinks(t *testing.T) {
	var calls [][2]int64
	p := newProgress(func(total, done int64) { calls = append(calls, [2]int64{total, done}) })
	p.reset(20)

	a := &tracker{p: p, budget: 10}
	b := &tracker{p: p, budget: 10}
	a.step(4)
	a.step(100) // capped at the remaining 6
	b.step(3)
	total, done := p.Snapshot()
	assert.Equal(t, int64(20), total)
	assert.Equal(t, int64(13), done)

	a.close()
	b.close()
	total, done = p.Snapshot()
	assert.Equal(t, int64(13), total)
	assert.Equal(t, int64(13), done)

	b.step(1) // closed trackers do nothing
	_, done = p.Snapshot()
	assert.Equal(t, int64(13), done)
	assert.Equal(t, [2]int64{20, 0}, calls[0])
	assert.Equal(t, [2]int64{13, 13}, calls[len(calls)-1])
}

func TestObservable_IntensityPeaksAtOne(t *testing.T) {
	sig := newTestSignal()
	out := observable(ModeIntensity, sig, 700e-9)
	assert.InDelta(t, 1, out[0], 1e-15)
	for i := 1; i < len(out); i++ {
		assert.Less(t, out[i], out[i-1])
	}
	temps := observable(ModeTemperature, sig, 700e-9)
	assert.Equal(t, sig.Data, temps)
	temps[0] = 0
	assert.NotEqual(t, sig.Data[0], temps[0], "temperature observable must not alias the trace")
}

func newTestSignal() *signal.Signal {
	return &signal.Signal{
		Dt:       1e-9,
		Data:     []float64{3000, 2800, 2600, 2400},
		Diameter: []float64{20e-9, 19.9e-9, 19.85e-9, 19.84e-9},
	}
}
