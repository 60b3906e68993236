package enums

import "fmt"

// TicketStatus tracks the lifecycle of a register ticket draft.
type TicketStatus string

const (
	TicketStatusOpen      TicketStatus = "open"
	TicketStatusImported  TicketStatus = "imported"
	TicketStatusDiscarded TicketStatus = "discarded"
)

var validTicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusImported,
	TicketStatusDiscarded,
}

// String implements fmt.Stringer.
func (t TicketStatus) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TicketStatus.
func (t TicketStatus) IsValid() bool {
	for _, candidate := range validTicketStatuses {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTicketStatus converts raw input into a TicketStatus.
func ParseTicketStatus(value string) (TicketStatus, error) {
	for _, candidate := range validTicketStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ticket status %q", value)
}
