package logkey

// Common keys for structured log attributes so log lines stay greppable
// across handlers and internal packages.
const (
	TraceID = "Trace ID"
	ERROR   = "Error"
	OrderID = "Order ID"
	UserID  = "User ID"
)
