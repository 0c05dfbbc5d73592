// Package actuator provides the network backends behind the bridge's
// Actuator interface:
//
//	local    ovs-ofctl port mod and tc tbf shaping on the switch host
//	onos     flow rules installed through the ONOS REST API
//	dry-run  logs every call and succeeds
//
// [New] picks a backend by name and wraps it in [Instrumented], which
// records metrics, tags each call with a correlation id and publishes an
// ActuationEvent.
package actuator
