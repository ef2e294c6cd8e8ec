// Package simulation runs contention sessions: N stations on one shared medium.
//
// Ownership boundary:
// - station construction (names, quotas, random sources)
// - concurrent start and join barrier
// - aggregate session results
package simulation
