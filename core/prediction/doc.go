// Package prediction turns a demand series into a dated forecast. Engines
// are pluggable through a factory registry; the ARIMA engine is the
// production implementation and MockEngine serves tests.
package prediction
