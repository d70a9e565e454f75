// Package infra holds the adapters behind the core interfaces: CSV loading,
// logging, metrics sinks, the MQTT client, Sentry and the SQLite history.
// Subpackages depend on core, never the other way round.
package infra
