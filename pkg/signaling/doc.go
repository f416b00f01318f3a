/*
Package signaling implements the cluster's event bus. The hub accepts pushes
and heartbeats on a ZeroMQ reply socket, persists every accepted event to the
signaling_events table, and fans events out on a publish socket. Live
delivery is at most once; the HTTP browse API serves the persisted history
for anything that needs a gap-free view.
*/
package signaling
