package model

import "time"

// Point is a single dated forecast value. Lower and Upper are equal to
// Value when no interval was requested.
type Point struct {
	Date  time.Time `json:"date" yaml:"date"`
	Value float64   `json:"value" yaml:"value"`
	Lower float64   `json:"lower" yaml:"lower"`
	Upper float64   `json:"upper" yaml:"upper"`
}

// FitSummary describes the fitted model behind a forecast.
type FitSummary struct {
	Order       string        `json:"order" yaml:"order"`
	AR          []float64     `json:"ar" yaml:"ar"`
	MA          []float64     `json:"ma" yaml:"ma"`
	Mean        float64       `json:"mean,omitempty" yaml:"mean,omitempty"`
	Sigma2      float64       `json:"sigma2" yaml:"sigma2"`
	LogLik      float64       `json:"loglik" yaml:"loglik"`
	AIC         float64       `json:"aic" yaml:"aic"`
	BIC         float64       `json:"bic" yaml:"bic"`
	NObs        int           `json:"nobs" yaml:"nobs"`
	Iterations  int           `json:"iterations" yaml:"iterations"`
	Exact       bool          `json:"exact,omitempty" yaml:"exact,omitempty"`
	MAE         float64       `json:"mae" yaml:"mae"`
	RMSE        float64       `json:"rmse" yaml:"rmse"`
	MAPE        float64       `json:"mape" yaml:"mape"`
	LjungBoxP   float64       `json:"ljung_box_p,omitempty" yaml:"ljung_box_p,omitempty"`
	FitDuration time.Duration `json:"fit_duration" yaml:"fit_duration"`
}

// Forecast is the result of one pipeline run.
type Forecast struct {
	RunID      string        `json:"run_id" yaml:"run_id"`
	Source     string        `json:"source" yaml:"source"`
	Series     string        `json:"series" yaml:"series"`
	Engine     string        `json:"engine" yaml:"engine"`
	Step       time.Duration `json:"step" yaml:"step"`
	Confidence float64       `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	Points     []Point       `json:"points" yaml:"points"`
	Summary    FitSummary    `json:"summary" yaml:"summary"`
	CreatedAt  time.Time     `json:"created_at" yaml:"created_at"`
}

// Horizon returns the number of forecast steps.
func (f *Forecast) Horizon() int { return len(f.Points) }

// Values returns the point forecasts in order.
func (f *Forecast) Values() []float64 {
	out := make([]float64, len(f.Points))
	for i, p := range f.Points {
		out[i] = p.Value
	}
	return out
}

// Dates returns the forecast dates in order.
func (f *Forecast) Dates() []time.Time {
	out := make([]time.Time, len(f.Points))
	for i, p := range f.Points {
		out[i] = p.Date
	}
	return out
}
