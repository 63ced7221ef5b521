package domain

// Payload is the body of an add-to-cart JSON response.
// Every field is optional on the wire.
type Payload struct {
	Success bool
	Message string

	// CartCount is the literal text of cart_count, nil when absent.
	CartCount *string
}

type OutcomeKind int

const (
	OutcomeUnrecognized OutcomeKind = iota
	OutcomePayload
	OutcomeReload
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomePayload:
		return "payload"
	case OutcomeReload:
		return "reload"
	case OutcomeFailed:
		return "failed"
	default:
		return "unrecognized"
	}
}

// Outcome is the settled result of one add-to-cart exchange.
// Payload is set only for OutcomePayload, Err only for OutcomeFailed.
type Outcome struct {
	Kind    OutcomeKind
	Payload Payload
	Err     error
}

// Effect describes the UI work derived from an Outcome.
type Effect struct {
	Reload      bool
	CounterText *string
	Notice      *Notice
}

type Notice struct {
	Message  string
	Severity Severity
}
