// Package heartbeat provides leader liveness signalling for tabtrack.
//
// The leader broadcasts a timestamped heartbeat message on the cross-instance
// channel at a fixed interval. Every follower runs a monitor on a shorter
// interval comparing "now" to the last heartbeat timestamp it observed; when
// the gap exceeds the timeout (about three missed heartbeats by default) the
// monitor fires a callback that attempts a leadership claim.
//
// Heartbeats are purely ephemeral message traffic. There is no acknowledgement
// and no persistence; a lost heartbeat just narrows the failover margin.
package heartbeat
