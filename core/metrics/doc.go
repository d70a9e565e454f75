// Package metrics defines the sinks that observe forecast runs. A sink
// records every produced forecast; sinks may also record failed runs by
// implementing FailureRecorder. Implementations (Prometheus, InfluxDB,
// MQTT) live in infra/metrics and register themselves with RegisterSink so
// they can be selected from configuration.
package metrics
