// Package election provides advisory leader election for tabtrack.
//
// Exactly one instance of an origin should talk to the server at a time. The
// instances coordinate through a single shared key, the leadership token,
// whose value is the client id of the current leader.
//
// Unlike lease-based elections built on atomic create/update, the token lives
// in a last-writer-wins store, so the protocol is write-then-verify: claim by
// writing your own id, then re-read and accept leadership only if your id
// stuck. Short multi-leader windows during races and failover are an accepted
// cost; the batching server deduplicates and followers reconverge on their
// next periodic check.
//
// Failover is driven from the outside: a follower's heartbeat monitor calls
// Claim when the leader has been silent past the timeout, and an observed
// token change calls Verify to reconcile local belief with the store.
package election
