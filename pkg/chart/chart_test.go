package chart

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/chargecast/core/model"
	"github.com/kilianp07/chargecast/core/series"
)

func TestRenderHTML(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, 400)
	values := make([]float64, 400)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
		values[i] = float64(i)
	}
	hist, err := series.New("Demand", dates, values)
	require.NoError(t, err)
	next := dates[len(dates)-1].AddDate(0, 0, 1)
	f := &model.Forecast{
		Series: "Demand",
		Engine: "ARIMA(1,1,1)",
		Step:   24 * time.Hour,
		Points: []model.Point{{Date: next, Value: 400, Lower: 390, Upper: 410}},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, hist, f, Options{}))
	html := buf.String()
	assert.Contains(t, html, "Demand forecast (ARIMA(1,1,1))")
	assert.Contains(t, html, next.Format("2006-01-02"))
	assert.Contains(t, html, `"upper"`)
	assert.NotContains(t, html, dates[0].Format("2006-01-02"), "history is cut to the tail")

	buf.Reset()
	require.NoError(t, RenderHTML(&buf, hist, f, Options{Tail: -1, Title: "all"}))
	assert.Contains(t, buf.String(), dates[0].Format("2006-01-02"))
}

func TestRenderHTML_Empty(t *testing.T) {
	assert.Error(t, RenderHTML(&bytes.Buffer{}, nil, &model.Forecast{}, Options{}))
}
