package metrics

import "github.com/kilianp07/chargecast/core/factory"

var sinkRegistry = factory.NewRegistry[ForecastSink]()

// RegisterSink adds a sink factory identified by name.
func RegisterSink(name string, f factory.Factory[ForecastSink]) error {
	return sinkRegistry.Register(name, f)
}

// NewSink creates the sink described by cfgs: NopSink when empty, the sink
// itself for a single entry, a MultiSink otherwise.
func NewSink(cfgs []factory.ModuleConfig) (ForecastSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return sinkRegistry.Create(cfgs[0])
	}
	sinks := make([]ForecastSink, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			return nil, err
		}
		sinks[i] = s
	}
	return NewMultiSink(sinks...), nil
}
