/*
Package types defines the core data structures shared by the Lunaricorn
services.

This package contains the records that cross process boundaries: cluster
inventory nodes and beacons, signaling events, and the two orb record
families. All other packages depend on it for state management and API
communication.

The wire representation of every enum-like type is its string value, so the
Go services stay compatible with existing producers and consumers.
*/
package types
