package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/chargecast/core/model"
)

func forecast(id string, created time.Time) *model.Forecast {
	return &model.Forecast{
		RunID:     id,
		Series:    "Demand",
		Engine:    "ARIMA(1,1,1)",
		Step:      24 * time.Hour,
		Points:    []model.Point{{Date: created.AddDate(0, 0, 1), Value: 1}},
		Summary:   model.FitSummary{AR: []float64{0.5}, AIC: 10},
		CreatedAt: created,
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	f := forecast("a", base)
	require.NoError(t, s.Save(ctx, f))
	require.NoError(t, s.Save(ctx, forecast("b", base.Add(time.Hour))))
	require.NoError(t, s.Save(ctx, forecast("c", base.Add(2*time.Hour))))
	assert.ErrorIs(t, s.Save(ctx, forecast("a", base)), ErrDuplicate)
	assert.Error(t, s.Save(ctx, &model.Forecast{}))

	f.Points[0].Value = 99
	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Points[0].Value, "store keeps its own copy")

	runs, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)
	assert.Equal(t, 1, runs[0].Horizon)

	runs, err = s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)

	_, err = s.Get(ctx, "zzz")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, s.Close())
}
