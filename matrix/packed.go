// SPDX-License-Identifier: MIT

// Package matrix - SymPacked storage (packed lower triangle) & reflecting accessors.
//
// Purpose:
//   - Store an N×N symmetric matrix (covariance, normal-equation Hessian) in
//     N(N+1)/2 elements instead of N².
//   - Address elements by (row,col) in either triangle: (r<c) is reflected to
//     (c,r) so the implicit upper triangle always mirrors the lower one.
//   - Normalize every write to the lower-triangular index, so Set(0,2,v) and
//     Set(2,0,v) touch the same cell.
//
// Layout:
//
//	row-major packed lower: idx(r,c) = r(r+1)/2 + c, for r ≥ c
//
//	  [ a00              ]      data = [a00, a10, a11, a20, a21, a22]
//	  [ a10 a11          ]
//	  [ a20 a21 a22      ]
//
// Complexity quicksheet:
//   - NewSymPacked: O(N²/2) zero-init; At/Set: O(1); Clone: O(N²/2); Max: O(N²/2).

package matrix

import (
	"fmt"
	"math"
	"strings"
)

// packedErrorf wraps an underlying error with SymPacked method context.
func packedErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("SymPacked.%s(%d,%d): %w", method, row, col, err)
}

// PackedLen returns the number of stored elements for an n×n symmetric matrix.
func PackedLen(n int) int { return n * (n + 1) / 2 }

// packedIndex maps (row,col) with row ≥ col to the flat packed offset.
// Callers MUST normalize (row,col) first.
func packedIndex(row, col int) int { return row*(row+1)/2 + col }

// SymPacked is an N×N symmetric matrix stored as a packed lower triangle.
type SymPacked struct {
	n    int       // order of the matrix
	data []float64 // packed lower triangle, len == n(n+1)/2
}

// NewSymPacked creates an n×n symmetric matrix initialized to zeros.
// Returns ErrInvalidDimensions when n ≤ 0.
func NewSymPacked(n int) (*SymPacked, error) {
	if n <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &SymPacked{n: n, data: make([]float64, PackedLen(n))}, nil
}

// NewSymPackedFrom builds an n×n symmetric matrix from packed lower-triangular
// data (copied). Returns ErrDimensionMismatch if len(packed) != n(n+1)/2.
func NewSymPackedFrom(n int, packed []float64) (*SymPacked, error) {
	s, err := NewSymPacked(n)
	if err != nil {
		return nil, err
	}
	if len(packed) != len(s.data) {
		return nil, fmt.Errorf("NewSymPackedFrom: %w", ErrDimensionMismatch)
	}
	copy(s.data, packed)

	return s, nil
}

// Dim returns the order N of the matrix.
func (s *SymPacked) Dim() int { return s.n }

// Rows returns N.
func (s *SymPacked) Rows() int { return s.n }

// Cols returns N.
func (s *SymPacked) Cols() int { return s.n }

// Packed returns a copy of the packed lower-triangular storage.
func (s *SymPacked) Packed() []float64 {
	out := make([]float64, len(s.data))
	copy(out, s.data)

	return out
}

// normalize validates (row,col) and reflects the upper triangle onto the lower.
func (s *SymPacked) normalize(method string, row, col int) (int, error) {
	if row < 0 || row >= s.n || col < 0 || col >= s.n {
		return 0, packedErrorf(method, row, col, ErrOutOfRange)
	}
	if row < col {
		row, col = col, row // reflect (r<c) → (c,r)
	}

	return packedIndex(row, col), nil
}

// At returns element (row,col); the upper triangle reads its mirror.
func (s *SymPacked) At(row, col int) (float64, error) {
	idx, err := s.normalize("At", row, col)
	if err != nil {
		return 0, err
	}

	return s.data[idx], nil
}

// Set writes v at (row,col) and, implicitly, at (col,row).
// Non-finite values are rejected with ErrNaNInf so a Hessian never silently
// carries NaN into a factorization.
func (s *SymPacked) Set(row, col int, v float64) error {
	idx, err := s.normalize("Set", row, col)
	if err != nil {
		return err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return packedErrorf("Set", row, col, ErrNaNInf)
	}
	s.data[idx] = v

	return nil
}

// Diag returns a copy of the main diagonal.
func (s *SymPacked) Diag() []float64 {
	out := make([]float64, s.n)
	for i := 0; i < s.n; i++ {
		out[i] = s.data[packedIndex(i, i)]
	}

	return out
}

// AddDiag adds d[i] to each diagonal element. len(d) must equal Dim().
func (s *SymPacked) AddDiag(d []float64) error {
	if len(d) != s.n {
		return packedErrorf("AddDiag", 0, 0, ErrDimensionMismatch)
	}
	for i := 0; i < s.n; i++ {
		s.data[packedIndex(i, i)] += d[i]
	}

	return nil
}

// Max returns the largest stored element. It exists for diagnostics only
// (debug logging of a Hessian's scale) and has no algorithmic role.
func (s *SymPacked) Max() float64 {
	best := math.Inf(-1)
	for _, v := range s.data {
		if v > best {
			best = v
		}
	}

	return best
}

// Clone returns a deep copy.
func (s *SymPacked) Clone() Matrix {
	return s.CloneSym()
}

// CloneSym returns a deep copy with the concrete type preserved.
func (s *SymPacked) CloneSym() *SymPacked {
	data := make([]float64, len(s.data))
	copy(data, s.data)

	return &SymPacked{n: s.n, data: data}
}

// Dense expands the packed storage into a full row-major Dense matrix.
func (s *SymPacked) Dense() *Dense {
	d := &Dense{r: s.n, c: s.n, data: make([]float64, s.n*s.n)}
	var i, j int
	var v float64
	for i = 0; i < s.n; i++ {
		for j = 0; j <= i; j++ {
			v = s.data[packedIndex(i, j)]
			d.data[i*s.n+j] = v
			d.data[j*s.n+i] = v
		}
	}

	return d
}

// String renders the full (mirrored) matrix for debugging.
func (s *SymPacked) String() string {
	var sb strings.Builder
	var i, j int
	for i = 0; i < s.n; i++ {
		sb.WriteString("[")
		for j = 0; j < s.n; j++ {
			v, _ := s.At(i, j)
			sb.WriteString(fmt.Sprintf("%g", v))
			if j < s.n-1 {
				sb.WriteString(", ")
			}
		}
		sb.WriteString("]\n")
	}

	return sb.String()
}
