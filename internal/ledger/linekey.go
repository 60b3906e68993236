package ledger

import (
	"github.com/rcabrera/tillpoint-backend/pkg/enums"
)

// optionKeySeparator joins item and option ids for sized-option lines.
const optionKeySeparator = "&&"

// LineKey builds the ledger key for a line source. The scheme decides the
// formula: catalog items key on their own id, sized options on
// "<item_id>&&<option_id>", order lines on the order line id, and ticket
// lines on the ref id assigned when the draft was parked. Distinct source
// records never collide across schemes because each scheme draws from its
// own id space and only the composite form contains the separator.
func LineKey(src LineSource) string {
	switch src.Scheme {
	case enums.KeySchemeSizedOption:
		return src.ItemID + optionKeySeparator + src.OptionID
	default:
		return src.ItemID
	}
}
