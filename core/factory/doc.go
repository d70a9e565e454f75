// Package factory provides the generic registry used to build pluggable
// modules (prediction engines, metrics sinks) from configuration. A module
// is identified by a type string and a map of raw settings that the
// factory decodes into its own typed struct.
//
//	reg := factory.NewRegistry[prediction.Engine]()
//	_ = reg.Register("arima", func(conf map[string]any) (prediction.Engine, error) {
//	    var c prediction.ARIMAConfig
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return prediction.NewARIMAEngine(c, nil)
//	})
//	eng, err := reg.Create(factory.ModuleConfig{Type: "arima", Conf: map[string]any{"p": 2}})
package factory
