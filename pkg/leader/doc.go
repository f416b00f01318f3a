/*
Package leader implements the cluster registrar. Nodes report liveness
beacons over HTTP, the registrar keeps their records in the last_seen table,
and readiness is evaluated against the configured required-node list. The
package also issues the cluster-wide monotonic message and object ids backed
by the cluster_state table.
*/
package leader
