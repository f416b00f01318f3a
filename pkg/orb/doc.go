/*
Package orb implements the cluster's object store. Data records are keyed by
time-ordered UUIDs and meta records by a serial id; both live in Postgres.
Mutations arrive over gRPC and every completed write is announced on the
signaling bus as a FileOp event.
*/
package orb
