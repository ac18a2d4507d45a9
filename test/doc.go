// Package test holds integration tests that run against real PostgreSQL and
// Mosquitto containers. They are built with the integration tag:
//
//	go test -tags integration ./test/...
package test
