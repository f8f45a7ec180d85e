package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Totals are the derived money fields of a sale
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals derives sale totals from its lines. Tax is not charged yet.
func ComputeTotals(lines []SaleLine) Totals {
	subtotal := decimal.Zero
	discount := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Price)
		discount = discount.Add(line.Discount)
	}
	subtotal = subtotal.Round(2)
	discount = discount.Round(2)
	tax := decimal.Zero

	// Total is max(0, Subtotal-Discount+Tax) over the rounded parts
	total := subtotal.Sub(discount).Add(tax)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    total,
	}
}

// Apply copies t onto the sale
func (s *Sale) Apply(t Totals) {
	s.Subtotal = t.Subtotal
	s.Discount = t.Discount
	s.Tax = t.Tax
	s.Total = t.Total
}

// Recompute re-derives the sale's totals from its loaded lines
func (s *Sale) Recompute() {
	s.Apply(ComputeTotals(s.Lines))
}

// PaidAmount sums the sale's loaded payments
func (s *Sale) PaidAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range s.Payments {
		sum = sum.Add(p.Amount)
	}
	return sum.Round(2)
}

// SortedIDs returns a sorted copy of ids without duplicates
func SortedIDs(ids []uint) []uint {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
