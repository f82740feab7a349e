// Package memstore holds in-memory implementations of every repository interface. They back
// the service when APP_STORE=memory and are the fixtures for use case tests.
package memstore
