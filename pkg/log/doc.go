/*
Package log provides structured logging for Lunaricorn services.

Built on zerolog, it exposes a single global logger initialized once per
process plus helpers for creating child loggers scoped to a component, a
cluster node, or a signaling client.
*/
package log
