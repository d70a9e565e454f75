package arima

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kilianp07/chargecast/core/series"
)

// Fit is an estimated ARIMA model. It is immutable and can produce
// forecasts any number of times.
type Fit struct {
	Order Order
	// AR holds phi_1..phi_p of (1 - phi_1 B - ...).
	AR []float64
	// MA holds theta_1..theta_q of (1 + theta_1 B + ...).
	MA      []float64
	Mean    float64
	HasMean bool
	Sigma2  float64
	// LogLik and the information criteria are zero for an exact fit.
	LogLik float64
	AIC    float64
	AICc   float64
	BIC    float64
	// NObs is the number of observations after differencing.
	NObs        int
	Iterations  int
	Evaluations int
	Converged   bool
	Exact       bool
	Status      string
	Accuracy    Accuracy
	LjungBox    *LjungBox

	ss        *stateSpace
	state     []float64
	values    []float64
	residuals []float64
}

// NumParams counts the estimated parameters, including sigma^2.
func (f *Fit) NumParams() int {
	k := len(f.AR) + len(f.MA) + 1
	if f.HasMean {
		k++
	}
	return k
}

func (f *Fit) setCriteria() {
	k := float64(f.NumParams())
	n := float64(f.NObs)
	f.AIC = -2*f.LogLik + 2*k
	f.BIC = -2*f.LogLik + k*math.Log(n)
	f.AICc = f.AIC
	if n-k-1 > 0 {
		f.AICc += 2 * k * (k + 1) / (n - k - 1)
	}
}

// Residuals returns the one-step innovations of the differenced series.
func (f *Fit) Residuals() []float64 {
	return append([]float64(nil), f.residuals...)
}

// FittedValues returns the in-sample one-step predictions on the original
// scale, aligned with the observations from index d onwards.
func (f *Fit) FittedValues() []float64 {
	d := f.Order.D
	out := make([]float64, len(f.residuals))
	for i, v := range f.residuals {
		out[i] = f.values[i+d] - v
	}
	return out
}

// Forecast returns point forecasts for the next h periods.
func (f *Fit) Forecast(h int) ([]float64, error) {
	if h < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHorizon, h)
	}
	diffs := f.ss.propagate(f.state, h)
	if f.HasMean {
		for i := range diffs {
			diffs[i] += f.Mean
		}
	}
	return series.Integrate(diffs, f.values, f.Order.D), nil
}

// ForecastIntervals returns symmetric normal prediction intervals at the
// given confidence level around the point forecasts.
func (f *Fit) ForecastIntervals(h int, level float64) (lower, upper []float64, err error) {
	if !(level > 0 && level < 1) {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidConfidence, level)
	}
	point, err := f.Forecast(h)
	if err != nil {
		return nil, nil, err
	}
	z := distuv.UnitNormal.Quantile(0.5 + level/2)
	se := f.StdErrors(h)
	lower = make([]float64, h)
	upper = make([]float64, h)
	for i := range point {
		lower[i] = point[i] - z*se[i]
		upper[i] = point[i] + z*se[i]
	}
	return lower, upper, nil
}

// StdErrors returns the forecast standard errors for horizons 1..h from
// the psi weights of the integrated model.
func (f *Fit) StdErrors(h int) []float64 {
	psi := f.psiWeights(h)
	out := make([]float64, h)
	var acc float64
	for i := 0; i < h; i++ {
		acc += psi[i] * psi[i]
		out[i] = math.Sqrt(f.Sigma2 * acc)
	}
	return out
}

// psiWeights expands theta(B) / (phi(B) (1-B)^d) up to h terms.
func (f *Fit) psiWeights(h int) []float64 {
	// phi(B)(1-B)^d as 1 - sum a_i B^i
	poly := make([]float64, len(f.AR)+1)
	poly[0] = 1
	for i, p := range f.AR {
		poly[i+1] = -p
	}
	for k := 0; k < f.Order.D; k++ {
		next := make([]float64, len(poly)+1)
		for i, c := range poly {
			next[i] += c
			next[i+1] -= c
		}
		poly = next
	}
	a := make([]float64, len(poly)-1)
	for i := range a {
		a[i] = -poly[i+1]
	}

	psi := make([]float64, h)
	psi[0] = 1
	for j := 1; j < h; j++ {
		var v float64
		if j <= len(f.MA) {
			v = f.MA[j-1]
		}
		for i := 1; i <= len(a) && i <= j; i++ {
			v += a[i-1] * psi[j-i]
		}
		psi[j] = v
	}
	return psi
}
