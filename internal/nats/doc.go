// Package nats publishes bridge telemetry to a NATS server.
//
// A Forwarder subscribes to the in-process event bus and republishes state
// snapshots, temperature readings and actuation results as JSON. Messages
// are fire-and-forget (core NATS, no JetStream) and the bridge keeps
// running when the server is unreachable.
//
// # Subjects
//
//	sdnbridge.state         # StateMessage after every selection or toggle
//	sdnbridge.temperature   # TemperatureMessage for every valid reading
//	sdnbridge.actuations    # ActuationMessage for every actuator call
//
// # Debugging with nats CLI
//
//	nats sub "sdnbridge.>" -s nats://localhost:4222
//	nats sub "sdnbridge.state" | jq .
//
// or with the bridge itself:
//
//	sdnbridge watch --nats-server nats://localhost:4222
//
// # Message Formats
//
// StateMessage (sdnbridge.state):
//
//	{
//	  "timestamp": "2024-01-01T12:00:00Z",
//	  "target": "a",
//	  "link_a": false,
//	  "link_b": true,
//	  "congested": false,
//	  "leds": ["RED", "GREEN", "GREEN"],
//	  "reason": "toggle"
//	}
//
// TemperatureMessage (sdnbridge.temperature):
//
//	{"timestamp": "2024-01-01T12:00:00Z", "celsius": 31.2, "level": "high"}
//
// ActuationMessage (sdnbridge.actuations):
//
//	{
//	  "id": "7c9e6679-7425-40de-944b-e07fc1f90ae7",
//	  "timestamp": "2024-01-01T12:00:00Z",
//	  "backend": "local",
//	  "action": "link_down",
//	  "link": "a",
//	  "success": true,
//	  "duration_ms": 38
//	}
package nats
