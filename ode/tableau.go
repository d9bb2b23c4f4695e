package ode

// tableau is an explicit Runge–Kutta pair for an autonomous system, so the
// node vector c is omitted. b propagates the solution; e holds the error
// weights (b - b̂) of the embedded estimate and is nil for plain methods.
type tableau struct {
	a     [][]float64
	b     []float64
	e     []float64
	order int // order of the propagated solution
}

var rk4Tableau = tableau{
	a: [][]float64{
		{},
		{1.0 / 2},
		{0, 1.0 / 2},
		{0, 0, 1},
	},
	b:     []float64{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6},
	order: 4,
}

var cashKarpTableau = func() tableau {
	b5 := []float64{37.0 / 378, 0, 250.0 / 621, 125.0 / 594, 0, 512.0 / 1771}
	b4 := []float64{2825.0 / 27648, 0, 18575.0 / 48384, 13525.0 / 55296, 277.0 / 14336, 1.0 / 4}
	e := make([]float64, len(b5))
	for i := range e {
		e[i] = b5[i] - b4[i]
	}

	return tableau{
		a: [][]float64{
			{},
			{1.0 / 5},
			{3.0 / 40, 9.0 / 40},
			{3.0 / 10, -9.0 / 10, 6.0 / 5},
			{-11.0 / 54, 5.0 / 2, -70.0 / 27, 35.0 / 27},
			{1631.0 / 55296, 175.0 / 512, 575.0 / 13824, 44275.0 / 110592, 253.0 / 4096},
		},
		b:     b5,
		e:     e,
		order: 5,
	}
}()

var fehlbergTableau = tableau{
	a: [][]float64{
		{},
		{2.0 / 27},
		{1.0 / 36, 1.0 / 12},
		{1.0 / 24, 0, 1.0 / 8},
		{5.0 / 12, 0, -25.0 / 16, 25.0 / 16},
		{1.0 / 20, 0, 0, 1.0 / 4, 1.0 / 5},
		{-25.0 / 108, 0, 0, 125.0 / 108, -65.0 / 27, 125.0 / 54},
		{31.0 / 300, 0, 0, 0, 61.0 / 225, -2.0 / 9, 13.0 / 900},
		{2, 0, 0, -53.0 / 6, 704.0 / 45, -107.0 / 9, 67.0 / 90, 3},
		{-91.0 / 108, 0, 0, 23.0 / 108, -976.0 / 135, 311.0 / 54, -19.0 / 60, 17.0 / 6, -1.0 / 12},
		{2383.0 / 4100, 0, 0, -341.0 / 164, 4496.0 / 1025, -301.0 / 82, 2133.0 / 4100, 45.0 / 82, 45.0 / 164, 18.0 / 41},
		{3.0 / 205, 0, 0, 0, 0, -6.0 / 41, -3.0 / 205, -3.0 / 41, 3.0 / 41, 6.0 / 41, 0},
		{-1777.0 / 4100, 0, 0, -341.0 / 164, 4496.0 / 1025, -289.0 / 82, 2193.0 / 4100, 51.0 / 82, 33.0 / 164, 12.0 / 41, 0, 1},
	},
	b:     []float64{0, 0, 0, 0, 0, 34.0 / 105, 9.0 / 35, 9.0 / 35, 9.0 / 280, 9.0 / 280, 0, 41.0 / 840, 41.0 / 840},
	e:     []float64{41.0 / 840, 0, 0, 0, 0, 0, 0, 0, 0, 0, 41.0 / 840, -41.0 / 840, -41.0 / 840},
	order: 8,
}

// tableauFor returns the Runge–Kutta tableau behind s; Euler has none.
func tableauFor(s Scheme) *tableau {
	switch s {
	case RK4:
		return &rk4Tableau
	case CashKarp45, CashKarp45Adaptive:
		return &cashKarpTableau
	case Fehlberg78, Fehlberg78Adaptive:
		return &fehlbergTableau
	}

	return nil
}
