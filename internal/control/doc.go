// Package control issues commands to modules over MQTT.
//
// Commands are published to control/{moduleID} and guarded by a
// per-module cooldown. Accepted reset commands are logged against the
// module's reset control when one is assigned.
package control
