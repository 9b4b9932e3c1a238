package h1

// State identifies the protocol state of a connection handler. States are
// mutually exclusive; transitions happen only under the handler's lock.
type State int32

const (
	// StateConnecting means the transport is not yet active.
	StateConnecting State = iota
	// StateIdle means the connection is active with no request outstanding.
	StateIdle
	// StateAwaitingHead means a request has been written and the response
	// head has not arrived yet.
	StateAwaitingHead
	// StateAssemblingBody means the head arrived and body bytes are being
	// accumulated until the end of the message.
	StateAssemblingBody
	// StateClosed means the connection failed or was closed; no further
	// exchanges are possible.
	StateClosed
)

// String returns a human-readable state name for diagnostics.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateIdle:
		return "idle"
	case StateAwaitingHead:
		return "awaiting-head"
	case StateAssemblingBody:
		return "assembling-body"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
