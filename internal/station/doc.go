// Package station runs one contending participant on a shared medium.
//
// Ownership boundary:
// - sense/transmit/verify/backoff state machine
// - binary exponential backoff
// - per-station delivery and attempt bookkeeping
//
// A station releases the medium only after a successful transmission. A
// colliding or exhausted station leaves it marked busy, so a station that
// collided resumes once some other station succeeds and calls MarkIdle.
package station
