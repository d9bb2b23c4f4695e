package lm

// IterationResult is the fixed-layout record of one solver iteration:
//
//	[χ², λ, p0, σp0, p1, σp1, ...]
//
// Disabled parameters carry σ = 0.
type IterationResult []float64

const headerLen = 2

// NewIterationResult assembles a record. len(sigma) must equal len(values).
func NewIterationResult(chi2, lambda float64, values, sigma []float64) IterationResult {
	r := make(IterationResult, headerLen+2*len(values))
	r[0], r[1] = chi2, lambda
	for i := range values {
		r[headerLen+2*i] = values[i]
		r[headerLen+2*i+1] = sigma[i]
	}

	return r
}

// ChiSquare returns χ².
func (r IterationResult) ChiSquare() float64 { return r[0] }

// Lambda returns the damping parameter in effect when the record was made.
func (r IterationResult) Lambda() float64 { return r[1] }

// NumParams returns the number of parameters in the record.
func (r IterationResult) NumParams() int { return (len(r) - headerLen) / 2 }

// Value returns parameter i.
func (r IterationResult) Value(i int) float64 { return r[headerLen+2*i] }

// Uncertainty returns the standard error of parameter i.
func (r IterationResult) Uncertainty(i int) float64 { return r[headerLen+2*i+1] }

// Values returns all parameter values.
func (r IterationResult) Values() []float64 {
	out := make([]float64, r.NumParams())
	for i := range out {
		out[i] = r.Value(i)
	}

	return out
}

// Clone returns an independent copy.
func (r IterationResult) Clone() IterationResult {
	out := make(IterationResult, len(r))
	copy(out, r)

	return out
}

// StopReason says why Solve returned.
type StopReason int

const (
	StopMaxIterations  StopReason = iota
	StopConverged                 // relative improvement below tolerance
	StopChiSquareFloor            // χ² reached the floor
	StopStalled                   // MaxRetries consecutive rejections
	StopNoFreeParams              // nothing enabled; single evaluation
	StopCanceled
	StopFailed
)

var stopNames = [...]string{"max-iterations", "converged", "chi2-floor", "stalled", "no-free-params", "canceled", "failed"}

func (s StopReason) String() string {
	if s < 0 || int(s) >= len(stopNames) {
		return "unknown"
	}

	return stopNames[s]
}

// Result is the outcome of Solve.
type Result struct {
	History     []IterationResult
	Params      []float64 // final parameter values, all parameters
	Prediction  []float64 // model output at Params
	Evaluations int       // model evaluations, including Jacobian columns
	Rejected    int       // rejected trial steps
	Reason      StopReason
}

// Best returns the last recorded iteration, or nil for an empty history.
func (r *Result) Best() IterationResult {
	if len(r.History) == 0 {
		return nil
	}

	return r.History[len(r.History)-1]
}
