package matrix_test

import (
	"math/rand"
	"testing"

	"github.com/katalvlaran/liifit/matrix"
)

// benchSPD builds an SPD packed matrix without a *testing.T.
func benchSPD(b *testing.B, n int) *matrix.SymPacked {
	b.Helper()
	rng := rand.New(rand.NewSource(42))
	vals := make([]float64, n*n)
	for i := range vals {
		vals[i] = rng.Float64()*2 - 1
	}
	d, err := matrix.NewDenseFrom(n, n, vals)
	if err != nil {
		b.Fatal(err)
	}
	a, err := matrix.WeightedGram(d, nil)
	if err != nil {
		b.Fatal(err)
	}
	diag := make([]float64, n)
	for i := range diag {
		diag[i] = float64(n)
	}
	_ = a.AddDiag(diag)

	return a
}

func BenchmarkLDLT_Factorize8(b *testing.B) {
	a := benchSPD(b, 8)
	var f matrix.LDLT
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := f.Factorize(a); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCholesky_Factorize8(b *testing.B) {
	a := benchSPD(b, 8)
	var c matrix.Cholesky
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := c.Factorize(a); err != nil {
			b.Fatal(err)
		}
	}
}
