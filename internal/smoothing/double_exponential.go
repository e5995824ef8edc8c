package smoothing

// DoubleExponential implements Holt's double exponential smoothing, which
// tracks a level and a trend term and follows drifting signals with less lag
// than a plain EMA.
type DoubleExponential struct {
	alpha  float64 // level factor
	beta   float64 // trend factor
	level  float64
	trend  float64
	seeded bool
}

// NewDoubleExponential creates a filter with level factor alpha and trend
// factor beta, both in [0, 1].
func NewDoubleExponential(alpha, beta float64) (*DoubleExponential, error) {
	if err := validateAlpha("alpha", alpha); err != nil {
		return nil, err
	}
	if err := validateAlpha("beta", beta); err != nil {
		return nil, err
	}
	return &DoubleExponential{alpha: alpha, beta: beta}, nil
}

// Update feeds a sample and returns level + trend.
func (d *DoubleExponential) Update(value float64) float64 {
	if !d.seeded {
		d.level = value
		d.trend = 0
		d.seeded = true
		return value
	}

	prev := d.level
	d.level = d.alpha*value + (1-d.alpha)*(d.level+d.trend)
	d.trend = d.beta*(d.level-prev) + (1-d.beta)*d.trend

	return d.level + d.trend
}

// Reset clears level and trend.
func (d *DoubleExponential) Reset() {
	d.level = 0
	d.trend = 0
	d.seeded = false
}
