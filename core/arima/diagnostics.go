package arima

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// maxLjungBoxLags caps the number of lags used for the residual test.
const maxLjungBoxLags = 10

// Accuracy holds in-sample error measures of the one-step predictions.
type Accuracy struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	// MAPE is a percentage; observations equal to zero are ignored.
	MAPE float64 `json:"mape"`
}

// LjungBox is the portmanteau test of residual autocorrelation.
type LjungBox struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	Lags      int     `json:"lags"`
	DOF       int     `json:"dof"`
}

func (f *Fit) diagnose() {
	fitted := f.FittedValues()
	f.Accuracy = ComputeAccuracy(f.values[f.Order.D:], fitted)
	lags := maxLjungBoxLags
	if lags > len(f.residuals)/5 {
		lags = len(f.residuals) / 5
	}
	f.LjungBox = LjungBoxTest(f.residuals, lags, len(f.AR)+len(f.MA))
}

// ComputeAccuracy compares actual and predicted values of equal length.
func ComputeAccuracy(actual, predicted []float64) Accuracy {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return Accuracy{}
	}
	var abs, sq, pct float64
	var nz int
	for i := range actual {
		d := actual[i] - predicted[i]
		abs += math.Abs(d)
		sq += d * d
		if actual[i] != 0 {
			pct += math.Abs(d / actual[i])
			nz++
		}
	}
	n := float64(len(actual))
	acc := Accuracy{MAE: abs / n, RMSE: math.Sqrt(sq / n)}
	if nz > 0 {
		acc.MAPE = pct / float64(nz) * 100
	}
	return acc
}

// LjungBoxTest returns nil when the residuals carry no variance or are too
// short for the requested lags. fitdf is the number of ARMA coefficients.
func LjungBoxTest(resid []float64, lags, fitdf int) *LjungBox {
	n := len(resid)
	if lags < 1 || n <= lags {
		return nil
	}
	mu, variance := stat.MeanVariance(resid, nil)
	if !(variance > 0) {
		return nil
	}
	var gamma0 float64
	for _, v := range resid {
		gamma0 += (v - mu) * (v - mu)
	}
	var q float64
	for k := 1; k <= lags; k++ {
		var c float64
		for t := k; t < n; t++ {
			c += (resid[t] - mu) * (resid[t-k] - mu)
		}
		rho := c / gamma0
		q += rho * rho / float64(n-k)
	}
	q *= float64(n) * float64(n+2)
	dof := lags - fitdf
	if dof < 1 {
		dof = 1
	}
	return &LjungBox{
		Statistic: q,
		PValue:    1 - distuv.ChiSquared{K: float64(dof)}.CDF(q),
		Lags:      lags,
		DOF:       dof,
	}
}
