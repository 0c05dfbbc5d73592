// Package bridge is the control loop between the hardware panel and the
// network actuator.
//
// The loop reads one panel line at a time, decodes it with [panel.Parse],
// and routes it to exactly one handler:
//
//	JOY_UP / JOY_LEFT / JOY_RIGHT / JOY_DOWN → Select
//	BUTTON                                   → Toggle (calls the Actuator)
//	TEMP:<float>                             → RecordTemperature
//	anything else                            → reported, no state change
//
// After every selection or toggle step the full LED frame is recomputed
// with [Encode] and sent to the panel. Network state only changes after the
// Actuator reports success, with the exceptions of congestion-off (always
// considered applied) and the best-effort dual-link toggle.
//
// State is a plain value owned by the loop goroutine; handlers take a State
// and return the next one, so they can be tested without a panel.
package bridge
