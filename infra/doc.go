// Package infra holds the adapters behind the core ports: PostgreSQL and
// in-memory stores, MQTT and Kafka publishers, metrics sinks, logging and
// error monitoring. These packages depend only on interfaces defined in core.
package infra
