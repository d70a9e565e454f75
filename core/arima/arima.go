package arima

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/chargecast/core/logger"
	"github.com/kilianp07/chargecast/core/series"
)

const (
	DefaultMaxIterations = 5000
	DefaultTolerance     = 1e-8
	// stallIterations is how many non-improving iterations end the search.
	stallIterations = 50
)

// Model is an unfitted ARIMA specification. It is safe to reuse across
// series; each Fit call is independent.
type Model struct {
	order   Order
	maxIter int
	tol     float64
	startAR []float64
	startMA []float64
	log     logger.Logger
}

// Option configures a Model.
type Option func(*Model)

// WithMaxIterations bounds the number of optimizer iterations.
func WithMaxIterations(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.maxIter = n
		}
	}
}

// WithTolerance sets the absolute and relative improvement under which the
// search is considered converged.
func WithTolerance(tol float64) Option {
	return func(m *Model) {
		if tol > 0 {
			m.tol = tol
		}
	}
}

// WithStartParams overrides the data driven starting coefficients. Values
// outside the stationary or invertible region are pulled inside.
func WithStartParams(ar, ma []float64) Option {
	return func(m *Model) {
		m.startAR = append([]float64(nil), ar...)
		m.startMA = append([]float64(nil), ma...)
	}
}

// WithLogger attaches a logger receiving debug output of the search.
func WithLogger(l logger.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// New returns a Model for the given order.
func New(order Order, opts ...Option) (*Model, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}
	m := &Model{
		order:   order,
		maxIter: DefaultMaxIterations,
		tol:     DefaultTolerance,
		log:     logger.Nop{},
	}
	for _, o := range opts {
		o(m)
	}
	if m.startAR != nil && len(m.startAR) != order.P {
		return nil, fmt.Errorf("%w: %d start AR values for p=%d", ErrInvalidOrder, len(m.startAR), order.P)
	}
	if m.startMA != nil && len(m.startMA) != order.Q {
		return nil, fmt.Errorf("%w: %d start MA values for q=%d", ErrInvalidOrder, len(m.startMA), order.Q)
	}
	return m, nil
}

// Order returns the model order.
func (m *Model) Order() Order { return m.order }

// Fit estimates the model on s.
func (m *Model) Fit(ctx context.Context, s *series.Series) (*Fit, error) {
	o := m.order
	if s.Len() < o.MinObservations() {
		return nil, fmt.Errorf("%w: %s needs %d observations, got %d",
			ErrInsufficientData, o, o.MinObservations(), s.Len())
	}
	if !s.Finite() {
		return nil, ErrNonFinite
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w := series.Difference(s.Values, o.D)
	hasMean := o.D == 0
	est := estimator{p: o.P, q: o.Q, hasMean: hasMean, w: w}

	if c, ok := constant(w); ok && (hasMean || c == 0) {
		m.log.Debugf("%s: differenced series is constant, exact fit", o)
		return est.exact(o, s.Values, c)
	}

	x0 := m.start(w, hasMean)
	iters, evals := 0, 0
	status := optimize.FunctionConvergence
	if len(x0) > 0 {
		prob := optimize.Problem{
			Func: est.objective,
			Status: func() (optimize.Status, error) {
				if err := ctx.Err(); err != nil {
					return optimize.Failure, err
				}
				return optimize.NotTerminated, nil
			},
		}
		settings := &optimize.Settings{
			MajorIterations: m.maxIter,
			FuncEvaluations: 20 * m.maxIter,
			Converger: &optimize.FunctionConverge{
				Absolute:   m.tol,
				Relative:   m.tol,
				Iterations: stallIterations,
			},
		}
		res, err := optimize.Minimize(prob, x0, settings, &optimize.NelderMead{})
		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return nil, cerr
			}
			return nil, fmt.Errorf("%s: optimize: %w", o, err)
		}
		if res.Status.Early() {
			return nil, fmt.Errorf("%w: %s stopped with %s after %d iterations",
				ErrNotConverged, o, res.Status, res.Stats.MajorIterations)
		}
		if math.IsInf(res.F, 0) || math.IsNaN(res.F) {
			return nil, fmt.Errorf("%w: %s likelihood is not finite", ErrNotConverged, o)
		}
		x0 = res.X
		iters, evals = res.Stats.MajorIterations, res.Stats.FuncEvaluations
		status = res.Status
	}

	fit, err := est.finish(o, s.Values, x0)
	if err != nil {
		return nil, err
	}
	fit.Iterations = iters
	fit.Evaluations = evals
	fit.Status = status.String()
	m.log.Debugw("arima fit", map[string]any{
		"order":       o.String(),
		"ar":          fit.AR,
		"ma":          fit.MA,
		"sigma2":      fit.Sigma2,
		"loglik":      fit.LogLik,
		"iterations":  iters,
		"evaluations": evals,
	})
	return fit, nil
}

// start builds the unconstrained starting vector.
func (m *Model) start(w []float64, hasMean bool) []float64 {
	o := m.order
	x := make([]float64, 0, o.P+o.Q+1)
	if m.startAR != nil {
		x = append(x, unconstrain(m.startAR)...)
	} else {
		for _, r := range samplePACF(w, o.P, hasMean) {
			x = append(x, math.Atanh(r/pacfBound))
		}
	}
	if m.startMA != nil {
		neg := make([]float64, len(m.startMA))
		for i, v := range m.startMA {
			neg[i] = -v
		}
		x = append(x, unconstrain(neg)...)
	} else {
		x = append(x, make([]float64, o.Q)...)
	}
	if hasMean {
		x = append(x, stat.Mean(w, nil))
	}
	return x
}

// constant reports whether every value of w equals the first.
func constant(w []float64) (float64, bool) {
	if len(w) == 0 {
		return 0, false
	}
	for _, v := range w[1:] {
		if v != w[0] {
			return 0, false
		}
	}
	return w[0], true
}

// estimator evaluates the likelihood of the differenced series.
type estimator struct {
	p, q    int
	hasMean bool
	w       []float64
}

func (e estimator) unpack(x []float64) (ar, ma []float64, mu float64) {
	ar = constrain(x[:e.p])
	ma = constrain(x[e.p : e.p+e.q])
	for i := range ma {
		ma[i] = -ma[i]
	}
	if e.hasMean {
		mu = x[e.p+e.q]
	}
	return ar, ma, mu
}

func (e estimator) centered(mu float64) []float64 {
	if mu == 0 {
		return e.w
	}
	z := make([]float64, len(e.w))
	for i, v := range e.w {
		z[i] = v - mu
	}
	return z
}

// objective is the concentrated negative log likelihood per observation.
func (e estimator) objective(x []float64) float64 {
	ar, ma, mu := e.unpack(x)
	ss, err := newStateSpace(ar, ma)
	if err != nil {
		return math.Inf(1)
	}
	fr := ss.filter(e.centered(mu), false)
	n := float64(len(e.w))
	sigma2 := fr.sumSq / n
	if !(sigma2 > 0) {
		return math.Inf(1)
	}
	return 0.5*(math.Log(2*math.Pi)+1) + 0.5*math.Log(sigma2) + 0.5*fr.sumLog/n
}

// finish evaluates the model at the optimum and assembles the result.
func (e estimator) finish(o Order, values, x []float64) (*Fit, error) {
	ar, ma, mu := e.unpack(x)
	ss, err := newStateSpace(ar, ma)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotConverged, o, err)
	}
	fr := ss.filter(e.centered(mu), true)
	n := float64(len(e.w))
	sigma2 := fr.sumSq / n
	loglik := -0.5*n*(math.Log(2*math.Pi*sigma2)+1) - 0.5*fr.sumLog

	fit := &Fit{
		Order:     o,
		AR:        ar,
		MA:        ma,
		Mean:      mu,
		HasMean:   e.hasMean,
		Sigma2:    sigma2,
		LogLik:    loglik,
		NObs:      len(e.w),
		Converged: true,
		ss:        ss,
		state:     fr.state,
		values:    append([]float64(nil), values...),
		residuals: fr.innov,
	}
	fit.setCriteria()
	fit.diagnose()
	return fit, nil
}

// exact builds the fit of a series whose differences are all equal to c.
func (e estimator) exact(o Order, values []float64, c float64) (*Fit, error) {
	ar := make([]float64, o.P)
	ma := make([]float64, o.Q)
	ss, err := newStateSpace(ar, ma)
	if err != nil {
		return nil, err
	}
	fit := &Fit{
		Order:     o,
		AR:        ar,
		MA:        ma,
		HasMean:   e.hasMean,
		NObs:      len(e.w),
		Converged: true,
		Exact:     true,
		Status:    "Exact",
		ss:        ss,
		state:     make([]float64, ss.r),
		values:    append([]float64(nil), values...),
		residuals: make([]float64, len(e.w)),
	}
	if e.hasMean {
		fit.Mean = c
	}
	fit.diagnose()
	return fit, nil
}
