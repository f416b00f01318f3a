/*
Package metrics defines the Prometheus collectors exported by the Lunaricorn
services and the /metrics handler every HTTP surface mounts.
*/
package metrics
