package ledger

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rcabrera/tillpoint-backend/internal/pricing"
	pkgerrors "github.com/rcabrera/tillpoint-backend/pkg/errors"
	"github.com/rcabrera/tillpoint-backend/pkg/enums"
)

// Ceiling violation messages surfaced inline on the register.
const (
	MsgInsufficientStock = "Insufficient stock!"
	MsgOrderQtyExceeded  = "Remaining order quantity exceeded!"
)

// CeilingOpts toggles the advisory quantity ceilings for one mutation.
type CeilingOpts struct {
	EnableStockCeiling bool
	EnableOrderCeiling bool
}

// Session is the in-progress sale ledger for one register interaction.
// It is a plain state machine with no locking of its own: callers must
// serialize mutations, which the Manager does with a per-session mutex.
// Every mutation ends in a full totals recompute, so totals never drift
// from the item map.
type Session struct {
	id      string
	focused *LineSource
	items   map[string]*LineItem
	errs    map[string]string
	totals  SaleTotals
	seq     int
}

// NewSession returns an empty ledger for the given session id.
func NewSession(id string) *Session {
	return &Session{
		id:     id,
		items:  map[string]*LineItem{},
		errs:   map[string]string{},
		totals: ZeroTotals(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Items exposes the live line-item map. Read-only by convention.
func (s *Session) Items() map[string]*LineItem {
	return s.items
}

// Errors exposes the per-line ceiling violations. Read-only by convention.
func (s *Session) Errors() map[string]string {
	return s.errs
}

// Totals returns the snapshot computed by the last settled mutation.
func (s *Session) Totals() SaleTotals {
	return s.totals
}

// Focused returns the line source currently targeted by the +/- controls.
func (s *Session) Focused() *LineSource {
	return s.focused
}

// SetFocused selects the line targeted by the quantity controls. It never
// touches the item map.
func (s *Session) SetFocused(src *LineSource) {
	s.focused = src
}

// FocusLine points the quantity controls at an existing line by key. It
// reports whether the key matched a line.
func (s *Session) FocusLine(key string) bool {
	item, ok := s.items[key]
	if !ok {
		return false
	}
	src := item.Source()
	s.focused = &src
	return true
}

// IncreaseQty steps the focused line up by one. No focused line, no change.
func (s *Session) IncreaseQty(opts CeilingOpts) {
	s.stepFocused(decimal.NewFromInt(1), opts)
}

// DecreaseQty steps the focused line down by one, clamping at zero. The
// entry stays in the map until finalize strips it.
func (s *Session) DecreaseQty(opts CeilingOpts) {
	s.stepFocused(decimal.NewFromInt(-1), opts)
}

func (s *Session) stepFocused(step decimal.Decimal, opts CeilingOpts) {
	if s.focused == nil {
		return
	}
	key := LineKey(*s.focused)
	item, ok := s.items[key]
	if !ok {
		item = newLineItem(*s.focused, s.nextSeq())
		s.items[key] = item
	}
	next := item.QtyOrZero().Add(step)
	if next.IsNegative() {
		next = decimal.Zero
	}
	s.commit(item, &next, opts)
}

// UpdateQty is the authoritative replace-quantity path. It ignores any call
// whose lineKey does not match the focused line's resolved key: a stale
// async update targeting a line the operator has navigated away from must
// not mutate the ledger. An empty raw value stores a blank quantity.
func (s *Session) UpdateQty(lineKey, raw string, opts CeilingOpts) error {
	if s.focused == nil || LineKey(*s.focused) != lineKey {
		return nil
	}

	var qty *decimal.Decimal
	if trimmed := strings.TrimSpace(raw); trimmed != "" {
		parsed, err := decimal.NewFromString(trimmed)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quantity")
		}
		if parsed.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
		}
		qty = &parsed
	}

	item, ok := s.items[lineKey]
	if !ok {
		item = newLineItem(*s.focused, s.nextSeq())
		s.items[lineKey] = item
	}
	s.commit(item, qty, opts)
	return nil
}

// UpsertCatalogItem adds or updates a plain catalog line.
func (s *Session) UpsertCatalogItem(src LineSource, qty *decimal.Decimal, autoIncrease bool, opts CeilingOpts) error {
	return s.upsert(src, enums.KeySchemeCatalog, qty, autoIncrease, opts)
}

// UpsertSizedOption adds or updates an item+size/modifier line.
func (s *Session) UpsertSizedOption(src LineSource, qty *decimal.Decimal, autoIncrease bool, opts CeilingOpts) error {
	return s.upsert(src, enums.KeySchemeSizedOption, qty, autoIncrease, opts)
}

// UpsertOrderLine adds or updates a line derived from a sales order line.
func (s *Session) UpsertOrderLine(src LineSource, qty *decimal.Decimal, autoIncrease bool, opts CeilingOpts) error {
	return s.upsert(src, enums.KeySchemeOrderLine, qty, autoIncrease, opts)
}

// UpsertTicketLine adds or updates a line re-imported from a parked ticket.
func (s *Session) UpsertTicketLine(src LineSource, qty *decimal.Decimal, autoIncrease bool, opts CeilingOpts) error {
	return s.upsert(src, enums.KeySchemeTicketLine, qty, autoIncrease, opts)
}

func (s *Session) upsert(src LineSource, want enums.KeyScheme, qty *decimal.Decimal, autoIncrease bool, opts CeilingOpts) error {
	if src.Scheme != want {
		return pkgerrors.New(pkgerrors.CodeValidation, "line source scheme mismatch")
	}
	if src.ItemID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "line source id is required")
	}
	if want == enums.KeySchemeSizedOption && src.OptionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "option id is required")
	}
	if qty != nil && qty.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	key := LineKey(src)
	item, ok := s.items[key]
	if !ok {
		item = newLineItem(src, s.nextSeq())
		s.items[key] = item
	} else {
		// Re-adding refreshes the snapshot of the source row; the stock
		// and price the register saw last are the ones validated against.
		item.UnitSellingPrice = src.UnitSellingPrice
		item.TaxID = src.TaxID
		item.TaxRatePercentage = src.TaxRatePercentage
		item.CurrentStockQty = src.CurrentStockQty
		item.OrderQty = src.OrderQty
		item.FulfilledOrderQty = src.FulfilledOrderQty
	}

	next := qty
	if autoIncrease && qty != nil {
		summed := item.QtyOrZero().Add(*qty)
		next = &summed
	}
	s.commit(item, next, opts)
	return nil
}

// RemoveTicketLine deletes a ticket-line entry outright. Ticket provenance
// is the only one with an explicit remove path.
func (s *Session) RemoveTicketLine(src LineSource) error {
	if src.Scheme != enums.KeySchemeTicketLine {
		return pkgerrors.New(pkgerrors.CodeValidation, "only ticket lines can be removed")
	}
	key := LineKey(src)
	delete(s.items, key)
	delete(s.errs, key)
	if s.focused != nil && LineKey(*s.focused) == key {
		s.focused = nil
	}
	s.recompute()
	return nil
}

// commit is the single mutation primitive: it stores the quantity, derives
// the subtotal, runs the ceiling checks and recomputes totals. Quantities
// are never rejected here; a breached ceiling is recorded per line and the
// commit proceeds. Checkout is responsible for refusing to continue while
// any line carries an error.
func (s *Session) commit(item *LineItem, qty *decimal.Decimal, opts CeilingOpts) {
	item.SaleQty = qty
	item.SaleSubtotal = pricing.Subtotal(item.UnitSellingPrice, qty)
	s.validateCeilings(item, opts)
	s.recompute()
}

func (s *Session) validateCeilings(item *LineItem, opts CeilingOpts) {
	qty := item.QtyOrZero()
	switch {
	case opts.EnableStockCeiling && qty.GreaterThan(item.CurrentStockQty):
		s.errs[item.Key] = MsgInsufficientStock
	case opts.EnableOrderCeiling && item.Scheme == enums.KeySchemeOrderLine &&
		qty.GreaterThan(item.OrderQty.Sub(item.FulfilledOrderQty)):
		s.errs[item.Key] = MsgOrderQtyExceeded
	default:
		delete(s.errs, item.Key)
	}
}

func (s *Session) recompute() {
	s.totals = ComputeTotals(s.items)
}

func (s *Session) nextSeq() int {
	s.seq++
	return s.seq
}

// OrderedItems returns the lines in add order.
func (s *Session) OrderedItems() []*LineItem {
	items := make([]*LineItem, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Seq < items[j].Seq })
	return items
}

// Review is the frozen result handed to checkout.
type Review struct {
	Items    []*LineItem
	LineKeys []string
	Totals   SaleTotals
}

// FinalizeForReview strips zero/blank-quantity lines, clears the focused
// line and returns the surviving items in add order with the recomputed
// totals. Calling it again without an intervening mutation returns the
// same result.
func (s *Session) FinalizeForReview() Review {
	for key, item := range s.items {
		if !item.HasQty() {
			delete(s.items, key)
			delete(s.errs, key)
		}
	}
	s.focused = nil
	s.recompute()

	items := s.OrderedItems()

	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, item.Key)
	}

	return Review{Items: items, LineKeys: keys, Totals: s.totals}
}

// Reset clears the ledger back to its defaults. Called after a successful
// checkout or on abandonment.
func (s *Session) Reset() {
	s.focused = nil
	s.items = map[string]*LineItem{}
	s.errs = map[string]string{}
	s.totals = ZeroTotals()
	s.seq = 0
}

// HasErrors reports whether any line currently violates a ceiling.
func (s *Session) HasErrors() bool {
	return len(s.errs) > 0
}
