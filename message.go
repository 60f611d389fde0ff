package windowlimiter

import "time"

const (
	defaultLimitMessage         = "Too Many Requests"
	defaultInternalErrorMessage = "Internal Server Error"
)

// Message is the body produced when a request is denied. It is either a
// static value or a function of the window's remaining TTL, decided at
// configuration time rather than by runtime type inspection.
//
// Example:
//
//	windowlimiter.StaticMessage("slow down")
//	windowlimiter.MessageFunc(func(ttl time.Duration) string {
//	    return fmt.Sprintf("retry in %dms", ttl.Milliseconds())
//	})
type Message struct {
	static string
	fn     func(ttl time.Duration) string
}

// StaticMessage returns a Message that renders the same body on every
// rejection.
func StaticMessage(body string) Message {
	return Message{static: body}
}

// MessageFunc returns a Message that is invoked with the remaining TTL of
// the current window at decision time; its return value is the exact
// rejection body.
func MessageFunc(fn func(ttl time.Duration) string) Message {
	return Message{fn: fn}
}

// Render produces the rejection body for the given remaining TTL.
// The zero Message renders a default body.
func (m Message) Render(ttl time.Duration) string {
	if m.fn != nil {
		return m.fn(ttl)
	}
	if m.static != "" {
		return m.static
	}
	return defaultLimitMessage
}
