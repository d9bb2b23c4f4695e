package signal

import (
	"errors"
	"math"
	"sort"
)

// ErrEmptySequence is returned by Warp when either trace has no samples.
var ErrEmptySequence = errors.New("signal: warp needs non-empty sequences")

// WarpOptions configures Warp.
//
//   - Band limits the index deviation |i-j| (Sakoe–Chiba band); 0 means
//     unconstrained. A band narrower than |len(a)-len(b)| makes the end
//     cell unreachable and Warp reports +Inf.
//   - SlopePenalty is added to every non-diagonal step.
//   - Path requests the optimal alignment; without it only two DP rows are
//     kept.
type WarpOptions struct {
	Band         int
	SlopePenalty float64
	Path         bool
}

// Alignment is the result of Warp.
type Alignment struct {
	// Distance is the accumulated |a[i]-b[j]| cost along the optimal path.
	Distance float64
	// Path holds (i, j) index pairs from (0,0) to (len(a)-1, len(b)-1),
	// nil unless WarpOptions.Path was set.
	Path [][2]int
}

// Mean returns Distance divided by the path length, or by max(len) when no
// path was recorded.
func (al Alignment) Mean(n int) float64 {
	if len(al.Path) > 0 {
		return al.Distance / float64(len(al.Path))
	}
	if n <= 0 {
		return al.Distance
	}

	return al.Distance / float64(n)
}

// Lag returns the median of j−i along the path: the number of samples by
// which b trails a. Zero without a path.
func (al Alignment) Lag() int {
	if len(al.Path) == 0 {
		return 0
	}
	d := make([]int, len(al.Path))
	for k, p := range al.Path {
		d[k] = p[1] - p[0]
	}
	sort.Ints(d)

	return d[len(d)/2]
}

// predecessor moves recorded while filling the DP table.
const (
	stepMatch byte = iota
	stepUp         // from (i-1, j)
	stepLeft       // from (i, j-1)
)

// Warp computes the dynamic time warping distance between a and b.
//
// Recurrence over the (n+1)×(m+1) table D with D[0][0] = 0 and +Inf borders:
//
//	D[i][j] = |a[i-1]-b[j-1]| + min(D[i-1][j-1], D[i-1][j]+p, D[i][j-1]+p)
//
// Ties prefer the diagonal move. Time O(n·m); memory O(m) for the distance
// plus O(n·m) bytes when the path is requested.
func Warp(a, b []float64, opts WarpOptions) (Alignment, error) {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return Alignment{}, ErrEmptySequence
	}

	band := opts.Band
	if band <= 0 {
		band = max(n, m)
	}
	p := opts.SlopePenalty
	inf := math.Inf(1)

	prev := make([]float64, m+1)
	curr := make([]float64, m+1)
	for j := 1; j <= m; j++ {
		prev[j] = inf
	}

	var moves []byte
	if opts.Path {
		moves = make([]byte, n*m)
	}

	var i, j int
	var diag, up, left, best float64
	var step byte
	for i = 1; i <= n; i++ {
		curr[0] = inf
		for j = 1; j <= m; j++ {
			if i-j > band || j-i > band {
				curr[j] = inf
				continue
			}
			diag, up, left = prev[j-1], prev[j]+p, curr[j-1]+p
			best, step = diag, stepMatch
			if up < best {
				best, step = up, stepUp
			}
			if left < best {
				best, step = left, stepLeft
			}
			curr[j] = math.Abs(a[i-1]-b[j-1]) + best
			if moves != nil {
				moves[(i-1)*m+(j-1)] = step
			}
		}
		prev, curr = curr, prev
	}

	al := Alignment{Distance: prev[m]}
	if moves == nil || math.IsInf(al.Distance, 1) {
		return al, nil
	}

	i, j = n-1, m-1
	for {
		al.Path = append(al.Path, [2]int{i, j})
		if i == 0 && j == 0 {
			break
		}
		switch {
		case i == 0:
			j--
		case j == 0:
			i--
		default:
			switch moves[i*m+j] {
			case stepUp:
				i--
			case stepLeft:
				j--
			default:
				i--
				j--
			}
		}
	}
	for l, r := 0, len(al.Path)-1; l < r; l, r = l+1, r-1 {
		al.Path[l], al.Path[r] = al.Path[r], al.Path[l]
	}

	return al, nil
}
