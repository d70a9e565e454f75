package metrics

import (
	"time"

	"github.com/kilianp07/chargecast/core/model"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func sampleForecast() *model.Forecast {
	day := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	return &model.Forecast{
		RunID:  "run-1",
		Source: "charging_demand.csv",
		Series: "Demand",
		Engine: "ARIMA(1,1,1)",
		Step:   24 * time.Hour,
		Points: []model.Point{
			{Date: day, Value: 101.25, Lower: 90.5, Upper: 112},
			{Date: day.AddDate(0, 0, 1), Value: 102.5, Lower: 88, Upper: 117},
		},
		Summary: model.FitSummary{
			Order:       "ARIMA(1,1,1)",
			AR:          []float64{0.6},
			MA:          []float64{0.3},
			Sigma2:      25.1234,
			LogLik:      -320.5,
			AIC:         647,
			BIC:         655.25,
			NObs:        99,
			MAE:         4.1,
			RMSE:        5.2,
			MAPE:        3.3,
			FitDuration: 1500 * time.Microsecond,
		},
		CreatedAt: now,
	}
}
