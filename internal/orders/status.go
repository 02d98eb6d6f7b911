package orders

import "strings"

// settableStatuses is the whitelist of values a caller may request through
// the status endpoint. pending_review is deliberately absent: it is an
// internal degradation, not a settable state.
var settableStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// transitions is the full state machine keyed by (current, requested).
// delivered and cancelled are terminal; no backward jumps are allowed.
var transitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusProcessing:    true,
		StatusShipped:       true,
		StatusDelivered:     true,
		StatusCancelled:     true,
		StatusPendingReview: true,
	},
	StatusPendingReview: {
		StatusProcessing: true,
		StatusShipped:    true,
		StatusDelivered:  true,
		StatusCancelled:  true,
	},
	StatusProcessing: {
		StatusShipped:   true,
		StatusDelivered: true,
		StatusCancelled: true,
	},
	StatusShipped: {
		StatusDelivered: true,
		StatusCancelled: true,
	},
	StatusDelivered: {},
	StatusCancelled: {},
}

// IsSettable reports whether callers may request this status at all.
func IsSettable(s Status) bool {
	for _, valid := range settableStatuses {
		if s == valid {
			return true
		}
	}
	return false
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to Status) bool {
	return transitions[from][to]
}

// ValidStatusValues returns the settable whitelist for error messages.
func ValidStatusValues() string {
	values := make([]string, 0, len(settableStatuses))
	for _, s := range settableStatuses {
		values = append(values, string(s))
	}
	return strings.Join(values, ", ")
}
