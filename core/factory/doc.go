// Package factory provides a generic registry used to build pluggable
// modules (forecast providers, result sinks, metrics sinks) from their
// configured type name and raw settings.
package factory
