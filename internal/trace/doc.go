// Package trace defines the event sink consumed by stations and session runners.
//
// Ownership boundary:
// - trace event shape and kinds
// - zerolog-backed console tracer
// - fan-out and in-memory recording sinks
package trace
