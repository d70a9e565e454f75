// Package history keeps a record of past forecast runs so they can be
// listed and compared later.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/chargecast/core/model"
)

var (
	ErrNotFound  = errors.New("run not found")
	ErrDuplicate = errors.New("run already recorded")
)

// Run is the header of a recorded forecast.
type Run struct {
	ID        string        `json:"id"`
	Source    string        `json:"source"`
	Series    string        `json:"series"`
	Engine    string        `json:"engine"`
	Step      time.Duration `json:"step"`
	Horizon   int           `json:"horizon"`
	AIC       float64       `json:"aic"`
	CreatedAt time.Time     `json:"created_at"`
}

// RunOf extracts the header of f.
func RunOf(f *model.Forecast) Run {
	return Run{
		ID:        f.RunID,
		Source:    f.Source,
		Series:    f.Series,
		Engine:    f.Engine,
		Step:      f.Step,
		Horizon:   f.Horizon(),
		AIC:       f.Summary.AIC,
		CreatedAt: f.CreatedAt,
	}
}

// Store persists forecasts. List returns the most recent runs first; a
// non-positive limit returns every run.
type Store interface {
	Save(ctx context.Context, f *model.Forecast) error
	List(ctx context.Context, limit int) ([]Run, error)
	Get(ctx context.Context, id string) (*model.Forecast, error)
	Close() error
}
