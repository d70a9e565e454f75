// Package arima fits ARIMA(p,d,q) models by exact maximum likelihood and
// produces point and interval forecasts.
//
// The differenced series is cast in state-space form and its Gaussian
// likelihood is evaluated with a Kalman filter. The innovation variance is
// concentrated out and the remaining coefficients are searched with the
// gonum Nelder-Mead optimizer over an unconstrained parameterisation that
// keeps the AR part stationary and the MA part invertible.
//
//	m, _ := arima.New(arima.Order{P: 1, D: 1, Q: 1})
//	fit, err := m.Fit(ctx, s)
//	if err != nil {
//	    return err
//	}
//	next, _ := fit.Forecast(30)
package arima
