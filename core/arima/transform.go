package arima

import "math"

// pacfBound keeps partial autocorrelations strictly inside the unit interval.
const pacfBound = 0.9999

// startBound caps the partial autocorrelations used as starting values.
const startBound = 0.95

// constrain maps unconstrained reals to the coefficients of a stationary
// AR polynomial 1 - c1 B - ... - ck B^k.
func constrain(raw []float64) []float64 {
	r := make([]float64, len(raw))
	for i, x := range raw {
		r[i] = pacfBound * math.Tanh(x)
	}
	return fromPACF(r)
}

// unconstrain is the inverse of constrain.
func unconstrain(coefs []float64) []float64 {
	r := toPACF(coefs)
	raw := make([]float64, len(r))
	for i, v := range r {
		raw[i] = math.Atanh(clamp(v/pacfBound, startBound))
	}
	return raw
}

// fromPACF runs the Durbin-Levinson recursion from partial
// autocorrelations to AR coefficients.
func fromPACF(r []float64) []float64 {
	phi := make([]float64, len(r))
	prev := make([]float64, len(r))
	for k := range r {
		copy(prev, phi[:k])
		phi[k] = r[k]
		for j := 0; j < k; j++ {
			phi[j] = prev[j] - r[k]*prev[k-1-j]
		}
	}
	return phi
}

// toPACF is the step-down recursion inverting fromPACF.
func toPACF(phi []float64) []float64 {
	cur := append([]float64(nil), phi...)
	r := make([]float64, len(phi))
	for k := len(phi) - 1; k >= 0; k-- {
		rk := clamp(cur[k], pacfBound)
		r[k] = rk
		den := 1 - rk*rk
		prev := make([]float64, k)
		for j := 0; j < k; j++ {
			prev[j] = (cur[j] + rk*cur[k-1-j]) / den
		}
		cur = prev
	}
	return r
}

// samplePACF estimates partial autocorrelations up to lag k from the
// biased sample autocovariances of x. When demean is false the
// autocovariances are taken around zero.
func samplePACF(x []float64, k int, demean bool) []float64 {
	out := make([]float64, k)
	if k == 0 || len(x) <= k {
		return out
	}
	mu := 0.0
	if demean {
		for _, v := range x {
			mu += v
		}
		mu /= float64(len(x))
	}
	gamma := make([]float64, k+1)
	for lag := 0; lag <= k; lag++ {
		var s float64
		for t := lag; t < len(x); t++ {
			s += (x[t] - mu) * (x[t-lag] - mu)
		}
		gamma[lag] = s / float64(len(x))
	}
	if gamma[0] <= 0 {
		return out
	}
	rho := make([]float64, k+1)
	for i := range rho {
		rho[i] = gamma[i] / gamma[0]
	}
	// Durbin-Levinson on the autocorrelations.
	phi := make([]float64, k)
	prev := make([]float64, k)
	for m := 0; m < k; m++ {
		num := rho[m+1]
		den := 1.0
		for j := 0; j < m; j++ {
			num -= phi[j] * rho[m-j]
			den -= phi[j] * rho[j+1]
		}
		if den <= 0 {
			break
		}
		pm := num / den
		copy(prev, phi[:m])
		phi[m] = pm
		for j := 0; j < m; j++ {
			phi[j] = prev[j] - pm*prev[m-1-j]
		}
		out[m] = clamp(pm, startBound)
	}
	return out
}

func clamp(v, bound float64) float64 {
	switch {
	case v > bound:
		return bound
	case v < -bound:
		return -bound
	}
	return v
}
