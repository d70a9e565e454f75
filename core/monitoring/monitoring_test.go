package monitoring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordMonitor struct {
	errs    []error
	flushed time.Duration
}

func (r *recordMonitor) CaptureException(err error, _ map[string]string) {
	r.errs = append(r.errs, err)
}
func (r *recordMonitor) Recover()              {}
func (r *recordMonitor) Flush(d time.Duration) { r.flushed = d }

func TestGlobalMonitor(t *testing.T) {
	t.Cleanup(func() { Init(NopMonitor{}) })
	assert.IsType(t, NopMonitor{}, Current())

	rec := &recordMonitor{}
	Init(rec)
	Init(nil)
	assert.Same(t, rec, Current())

	CaptureException(nil, nil)
	CaptureException(errors.New("fit failed"), map[string]string{"stage": "fit"})
	Flush(time.Second)
	assert.Len(t, rec.errs, 1)
	assert.Equal(t, time.Second, rec.flushed)
}
