package settings

import (
	"fmt"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"github.com/katalvlaran/liifit/ode"
)

var validate = validator.New()

// NumericSettings configures the solver and the integrator. Shared
// read-only by every problem of a run.
type NumericSettings struct {
	MaxIterations    int     `yaml:"max_iterations" default:"50" validate:"gte=1,lte=100000"`
	Scheme           string  `yaml:"scheme" default:"rk4" validate:"required"`
	StepSizeFactor   int     `yaml:"step_size_factor" default:"4" validate:"gte=1,lte=65536"`
	Tolerance        float64 `yaml:"tolerance" default:"1e-6" validate:"gt=0"`
	LambdaInit       float64 `yaml:"lambda_init" default:"1e-3" validate:"gt=0"`
	LambdaUp         float64 `yaml:"lambda_up" default:"2" validate:"gt=1"`
	LambdaDown       float64 `yaml:"lambda_down" default:"0.5" validate:"gt=0,lt=1"`
	LambdaMin        float64 `yaml:"lambda_min" default:"1e-12" validate:"gt=0"`
	LambdaEscalation float64 `yaml:"lambda_escalation" default:"1" validate:"gte=1"`
	MaxRetries       int     `yaml:"max_retries" default:"10" validate:"gte=1"`
	Workers          int     `yaml:"workers" validate:"gte=0"` // 0 = one goroutine per problem
}

// DefaultNumeric returns NumericSettings with every default applied.
func DefaultNumeric() NumericSettings {
	var n NumericSettings
	defaults.MustSet(&n)

	return n
}

// Validate runs struct-tag validation and the semantic checks tags cannot
// express (known scheme, power-of-two step factor).
func (n NumericSettings) Validate() error {
	if err := validate.Struct(n); err != nil {
		return fmt.Errorf("%w: numeric: %w", ErrInvalid, err)
	}
	if _, err := ode.ParseScheme(n.Scheme); err != nil {
		return fmt.Errorf("%w: numeric: %w", ErrInvalid, err)
	}
	if !ode.IsPowerOfTwo(n.StepSizeFactor) {
		return fmt.Errorf("%w: numeric: step size factor %d is not a power of two", ErrInvalid, n.StepSizeFactor)
	}

	return nil
}

// ODEOptions translates to integrator options. Unknown schemes fall back
// to RK4; call Validate first to reject them.
func (n NumericSettings) ODEOptions() ode.Options {
	o := ode.DefaultOptions()
	if s, err := ode.ParseScheme(n.Scheme); err == nil {
		o.Scheme = s
	}
	if n.StepSizeFactor > 0 {
		o.StepSizeFactor = n.StepSizeFactor
	}

	return o
}
