package estimate

import "context"

// Static returns a fixed estimate, such as one given with --estimate
type Static struct {
	value float64
}

// NewStatic validates value and wraps it as an Estimator
func NewStatic(value float64) (*Static, error) {
	v, err := CheckRange(value)
	if err != nil {
		return nil, err
	}
	return &Static{value: v}, nil
}

// Name returns the provider name
func (s *Static) Name() string {
	return "static"
}

// Estimate returns the fixed value
func (s *Static) Estimate(ctx context.Context, text string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.value, nil
}
