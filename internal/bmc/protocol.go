package bmc

import "fmt"

// Field is the sub-command slot of the two-phase protocol.
type Field int

const (
	// FieldMax sets the duty cycle ceiling of a channel
	FieldMax Field = iota
	// FieldMin sets the floor, pinned a small margin below the ceiling
	// to force an exact duty cycle
	FieldMin
)

func (f Field) String() string {
	if f == FieldMin {
		return "min"
	}
	return "max"
}

// Request is one structured sub-command of the two-phase protocol.
// Value is in the 8-bit duty cycle domain [1, 255].
type Request struct {
	Channel int
	Field   Field
	Value   int
}

// Encode translates the request into the controller's wire form.
// This is the only place wire syntax is assembled.
func (r Request) Encode() string {
	return fmt.Sprintf("channel %d %s %d", r.Channel, r.Field, r.Value)
}

// LegacyRequest is a property write on the slower legacy path.
// Value is a percentage [0, 100].
type LegacyRequest struct {
	Path     string
	Property string
	Value    int
}

func (r LegacyRequest) Encode() string {
	return fmt.Sprintf("set %s %s=%d", r.Path, r.Property, r.Value)
}
