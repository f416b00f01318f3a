/*
Package cluster is the client side of the registrar protocol. Every service
embeds a Client to announce itself with periodic liveness beacons and to look
up its peers, the shared cluster configuration, and the cluster-wide id
counters.
*/
package cluster
