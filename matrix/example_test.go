package matrix_test

import (
	"fmt"

	"github.com/katalvlaran/liifit/matrix"
)

// ExampleLDLT solves the damped normal equations of a tiny 3×2 problem.
func ExampleLDLT() {
	j, _ := matrix.NewDenseFrom(3, 2, []float64{
		1, 0,
		1, 1,
		1, 2,
	})
	r := []float64{1, 2, 3}

	a, _ := matrix.WeightedGram(j, nil)
	g, _ := matrix.WeightedTransposeMatVec(j, nil, r)

	var f matrix.LDLT
	if err := f.Factorize(a); err != nil {
		fmt.Println("factorize:", err)
		return
	}
	step, _ := f.Solve(g)
	fmt.Printf("intercept=%.3f slope=%.3f\n", step[0], step[1])

	// Output:
	// intercept=1.000 slope=1.000
}

// ExampleSymPacked shows index reflection in packed storage.
func ExampleSymPacked() {
	s, _ := matrix.NewSymPacked(3)
	_ = s.Set(0, 2, 5)
	v, _ := s.At(2, 0)
	fmt.Println(v, matrix.PackedLen(3))

	// Output:
	// 5 6
}
