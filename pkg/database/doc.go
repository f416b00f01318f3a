/*
Package database implements the persistence adapter shared by every
Lunaricorn service.

The adapter owns exactly one serialized connection to the cluster's
relational store. All statements run inside short-lived transactions under
the adapter mutex; a statement that fails on a broken connection is retried
once after a reconnect, while permanent failures (constraint or schema
errors) surface to the caller untouched.

Each subsystem creates its tables and indexes through Install, which is
idempotent and safe to call at every process start.
*/
package database
