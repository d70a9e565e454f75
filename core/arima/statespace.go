package arima

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

var errNotStationary = errors.New("initial state covariance is not positive")

// stateSpace is the Harvey representation of a zero-mean ARMA(p,q):
//
//	y_t     = Z a_t
//	a_{t+1} = T a_t + R e_t
//
// with Z = e1, T holding phi in its first column and ones on the
// superdiagonal, and R = (1, theta_1, ..., theta_{r-1}).
type stateSpace struct {
	r    int
	phi  []float64 // length r, zero padded
	rvec []float64 // length r
	p0   []float64 // r*r row-major unconditional state covariance
}

func newStateSpace(ar, ma []float64) (*stateSpace, error) {
	r := len(ar)
	if len(ma)+1 > r {
		r = len(ma) + 1
	}
	ss := &stateSpace{
		r:    r,
		phi:  make([]float64, r),
		rvec: make([]float64, r),
	}
	copy(ss.phi, ar)
	ss.rvec[0] = 1
	copy(ss.rvec[1:], ma)
	if err := ss.initCovariance(); err != nil {
		return nil, err
	}
	return ss, nil
}

// transition returns T as a dense matrix.
func (ss *stateSpace) transition() *mat.Dense {
	t := mat.NewDense(ss.r, ss.r, nil)
	for i := 0; i < ss.r; i++ {
		t.Set(i, 0, ss.phi[i])
		if i+1 < ss.r {
			t.Set(i, i+1, 1)
		}
	}
	return t
}

// initCovariance solves P = T P T' + R R' through
// vec(P) = (I - T kron T)^-1 vec(R R').
func (ss *stateSpace) initCovariance() error {
	r := ss.r
	t := ss.transition()
	var kron mat.Dense
	kron.Kronecker(t, t)

	n := r * r
	lhs := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := -kron.At(i, j)
			if i == j {
				v++
			}
			lhs.Set(i, j, v)
		}
	}
	rhs := mat.NewVecDense(n, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < r; j++ {
			rhs.SetVec(i*r+j, ss.rvec[i]*ss.rvec[j])
		}
	}
	var sol mat.VecDense
	if err := sol.SolveVec(lhs, rhs); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return err
		}
	}
	ss.p0 = make([]float64, n)
	for i := 0; i < n; i++ {
		ss.p0[i] = sol.AtVec(i)
	}
	if !(ss.p0[0] > 0) || math.IsInf(ss.p0[0], 0) {
		return errNotStationary
	}
	return nil
}

// filterResult holds the output of a Kalman pass over the data.
type filterResult struct {
	sumSq  float64   // sum of v_t^2 / F_t
	sumLog float64   // sum of log F_t
	innov  []float64 // v_t, only when requested
	state  []float64 // predicted state a_{n+1|n}
	cov    []float64 // predicted covariance P_{n+1|n}
}

// filter runs the Kalman filter over w. When keep is false the per-step
// innovations are not stored.
func (ss *stateSpace) filter(w []float64, keep bool) filterResult {
	r := ss.r
	a := make([]float64, r)
	p := append([]float64(nil), ss.p0...)
	tp := make([]float64, r*r)
	next := make([]float64, r*r)
	k := make([]float64, r)

	var res filterResult
	if keep {
		res.innov = make([]float64, len(w))
	}
	for t, y := range w {
		v := y - a[0]
		f := p[0]
		if keep {
			res.innov[t] = v
		}
		res.sumSq += v * v / f
		res.sumLog += math.Log(f)

		// tp = T P
		for i := 0; i < r; i++ {
			for j := 0; j < r; j++ {
				x := ss.phi[i] * p[j]
				if i+1 < r {
					x += p[(i+1)*r+j]
				}
				tp[i*r+j] = x
			}
		}
		for i := 0; i < r; i++ {
			k[i] = tp[i*r] / f
		}
		// a = T a + K v
		a0 := a[0]
		for i := 0; i < r; i++ {
			x := ss.phi[i] * a0
			if i+1 < r {
				x += a[i+1]
			}
			a[i] = x + k[i]*v
		}
		// P = T P T' + R R' - K K' F
		for i := 0; i < r; i++ {
			for j := 0; j < r; j++ {
				x := tp[i*r] * ss.phi[j]
				if j+1 < r {
					x += tp[i*r+j+1]
				}
				next[i*r+j] = x + ss.rvec[i]*ss.rvec[j] - k[i]*k[j]*f
			}
		}
		p, next = next, p
	}
	res.state = a
	res.cov = p
	return res
}

// propagate returns the mean of the next h observations given the
// predicted state a, with future shocks set to zero.
func (ss *stateSpace) propagate(a []float64, h int) []float64 {
	r := ss.r
	cur := append([]float64(nil), a...)
	out := make([]float64, h)
	for step := 0; step < h; step++ {
		out[step] = cur[0]
		a0 := cur[0]
		for i := 0; i < r; i++ {
			x := ss.phi[i] * a0
			if i+1 < r {
				x += cur[i+1]
			}
			cur[i] = x
		}
	}
	return out
}
