package enums

import "fmt"

// KeyScheme tags the provenance of a ledger line item, which decides how
// its ledger key is built.
type KeyScheme string

const (
	KeySchemeCatalog     KeyScheme = "catalog"
	KeySchemeSizedOption KeyScheme = "sized_option"
	KeySchemeOrderLine   KeyScheme = "order_line"
	KeySchemeTicketLine  KeyScheme = "ticket_line"
)

var validKeySchemes = []KeyScheme{
	KeySchemeCatalog,
	KeySchemeSizedOption,
	KeySchemeOrderLine,
	KeySchemeTicketLine,
}

// String implements fmt.Stringer.
func (k KeyScheme) String() string {
	return string(k)
}

// IsValid reports whether the value is a known KeyScheme.
func (k KeyScheme) IsValid() bool {
	for _, candidate := range validKeySchemes {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseKeyScheme converts raw input into a KeyScheme.
func ParseKeyScheme(value string) (KeyScheme, error) {
	for _, candidate := range validKeySchemes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid key scheme %q", value)
}
