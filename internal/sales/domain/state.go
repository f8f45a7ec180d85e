package domain

// Operation names a sale engine operation
type Operation string

const (
	OpCreate        Operation = "create"
	OpAddLine       Operation = "add_line"
	OpRemoveLine    Operation = "remove_line"
	OpRecompute     Operation = "recompute"
	OpReserve       Operation = "reserve"
	OpMarkPaid      Operation = "mark_paid"
	OpMarkDelivered Operation = "mark_delivered"
	OpCancel        Operation = "cancel"
	OpDelete        Operation = "delete"
)

// allowedFrom lists the sale states each operation may start from.
// MarkPaid accepts PAID so that a repeated call reaches the unit checks and fails there.
var allowedFrom = map[Operation][]SaleState{
	OpAddLine:       {SaleDraft},
	OpRemoveLine:    {SaleDraft, SaleCancelled},
	OpRecompute:     {SaleDraft, SalePaid, SaleDelivered, SaleCancelled},
	OpReserve:       {SaleDraft},
	OpMarkPaid:      {SaleDraft, SalePaid},
	OpMarkDelivered: {SalePaid},
	OpCancel:        {SaleDraft, SaleCancelled},
	OpDelete:        {SaleDraft, SaleCancelled},
}

// resultingState is where a successful operation leaves the sale; absent means unchanged
var resultingState = map[Operation]SaleState{
	OpMarkPaid:      SalePaid,
	OpMarkDelivered: SaleDelivered,
	OpCancel:        SaleCancelled,
}

// CanApply reports whether op may run against a sale in state s
func CanApply(op Operation, s SaleState) bool {
	for _, allowed := range allowedFrom[op] {
		if allowed == s {
			return true
		}
	}
	return false
}

// NextState returns the state a sale in s ends up in after op succeeds
func NextState(op Operation, s SaleState) SaleState {
	if next, ok := resultingState[op]; ok {
		return next
	}
	return s
}
