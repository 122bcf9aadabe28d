// Package channel provides Channel implementations for tabtrack.
//
// The channel is the instances' control-plane bus: session handoff, event
// delegation, heartbeats and leadership requests all travel over it, never
// through the server. Delivery is best-effort and unacknowledged; messages
// from one sender arrive in publish order, messages from different senders in
// no particular order.
//
// Two implementations are included:
//
//   - NATS: core NATS publish/subscribe on a single subject, shared by every
//     instance of an origin.
//   - Memory: an in-process bus for tests and single-process simulations;
//     one Memory instance is shared by all simulated instances.
//
// Both deliver a published message back to its own sender; receivers filter
// on Message.SenderID.
package channel
