package relationship

// Status is the derived relationship state between a viewer and a subject.
// It is never stored; it is computed from the connection edge (if any) and
// the viewer's role on it.
type Status int

const (
	// StatusNone means no connection edge exists between the pair
	StatusNone Status = iota
	// StatusPendingSent means the viewer initiated a request awaiting the subject
	StatusPendingSent
	// StatusPendingReceived means the subject initiated a request awaiting the viewer
	StatusPendingReceived
	// StatusConnected means the pair has an accepted edge
	StatusConnected
)

// String returns the wire representation of the status
func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusPendingSent:
		return "pending_sent"
	case StatusPendingReceived:
		return "pending_received"
	case StatusConnected:
		return "connected"
	default:
		return "none"
	}
}
