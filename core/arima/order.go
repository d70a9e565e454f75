package arima

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidOrder      = errors.New("invalid model order")
	ErrInsufficientData  = errors.New("insufficient data for model order")
	ErrNonFinite         = errors.New("series contains non-finite values")
	ErrNotConverged      = errors.New("optimizer did not converge")
	ErrInvalidHorizon    = errors.New("forecast horizon must be positive")
	ErrInvalidConfidence = errors.New("confidence level must be in (0,1)")
)

const (
	maxDiff  = 2
	maxCoefs = 10
	// minExtraObs is the number of observations required beyond p+d+q.
	minExtraObs = 10
)

// Order holds the (p,d,q) orders of an ARIMA model.
type Order struct {
	P int `json:"p" yaml:"p"`
	D int `json:"d" yaml:"d"`
	Q int `json:"q" yaml:"q"`
}

// DefaultOrder is ARIMA(1,1,1).
var DefaultOrder = Order{P: 1, D: 1, Q: 1}

// Validate checks that the orders are within supported bounds.
func (o Order) Validate() error {
	switch {
	case o.P < 0 || o.D < 0 || o.Q < 0:
		return fmt.Errorf("%w: negative order %s", ErrInvalidOrder, o)
	case o.D > maxDiff:
		return fmt.Errorf("%w: d=%d exceeds %d", ErrInvalidOrder, o.D, maxDiff)
	case o.P+o.Q > maxCoefs:
		return fmt.Errorf("%w: p+q=%d exceeds %d", ErrInvalidOrder, o.P+o.Q, maxCoefs)
	}
	return nil
}

// MinObservations is the shortest series the order can be fitted on.
func (o Order) MinObservations() int {
	return o.P + o.D + o.Q + minExtraObs
}

func (o Order) String() string {
	return fmt.Sprintf("ARIMA(%d,%d,%d)", o.P, o.D, o.Q)
}

// ParseOrder parses "p,d,q".
func ParseOrder(s string) (Order, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 3 {
		return Order{}, fmt.Errorf("%w: %q, expected p,d,q", ErrInvalidOrder, s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Order{}, fmt.Errorf("%w: %q: %v", ErrInvalidOrder, s, err)
		}
		v[i] = n
	}
	o := Order{P: v[0], D: v[1], Q: v[2]}
	if err := o.Validate(); err != nil {
		return Order{}, err
	}
	return o, nil
}
