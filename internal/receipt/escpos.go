package receipt

// ESC/POS control sequences embedded verbatim in the rendered text. The
// printer transport transmits the string as-is; anything inspecting the
// output for display should strip these first.
const (
	escInit        = "\x1b@"
	escAlignLeft   = "\x1b\x61\x00"
	escAlignCenter = "\x1b\x61\x01"
	escAlignRight  = "\x1b\x61\x02"
	escBoldOn      = "\x1bG\x01"
	escBoldOff     = "\x1bG\x00"
)
