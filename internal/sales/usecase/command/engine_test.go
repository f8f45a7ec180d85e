package command

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	invdomain "github.com/tair/stockroom/internal/inventory/domain"
	"github.com/tair/stockroom/internal/sales/domain"
	"github.com/tair/stockroom/internal/sales/repository"
	"github.com/tair/stockroom/internal/sequence"
	"github.com/tair/stockroom/internal/testutil"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.SaleEvent
	err    error
}

func (p *recordingPublisher) PublishSaleEvent(_ context.Context, event domain.SaleEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType)
	}
	return out
}

type salesEnv struct {
	t        *testing.T
	db       *gorm.DB
	store    domain.Store
	events   *recordingPublisher
	product  *invdomain.Product
	customer *domain.Customer
	serial   int

	create    *CreateSaleHandler
	addLine   *AddLineHandler
	remove    *RemoveLineHandler
	recompute *RecomputeHandler
	reserve   *ReserveHandler
	pay       *MarkPaidHandler
	deliver   *MarkDeliveredHandler
	cancel    *CancelHandler
	deleteH   *DeleteSaleHandler
}

func newSalesEnv(t *testing.T) *salesEnv {
	db := testutil.NewDB(t)
	require.NoError(t, repository.AutoMigrate(db))

	counter, err := sequence.NewTableCounter(db)
	require.NoError(t, err)

	store := repository.NewGormStore(db, time.Second)
	events := &recordingPublisher{}

	env := &salesEnv{
		t:         t,
		db:        db,
		store:     store,
		events:    events,
		create:    NewCreateSaleHandler(store, sequence.NewCodeGenerator(counter)),
		addLine:   NewAddLineHandler(store, events),
		remove:    NewRemoveLineHandler(store, events),
		recompute: NewRecomputeHandler(store),
		reserve:   NewReserveHandler(store, events),
		pay:       NewMarkPaidHandler(store, events),
		deliver:   NewMarkDeliveredHandler(store, events),
		cancel:    NewCancelHandler(store, events),
		deleteH:   NewDeleteSaleHandler(store, events),
	}

	env.product = &invdomain.Product{SKU: "LAP-1", Name: "Laptop", SalePrice: decimal.RequireFromString("75.50"), Active: true}
	require.NoError(t, db.Create(env.product).Error)

	customer, err := NewCreateCustomerHandler(store).Handle(context.Background(), CreateCustomerCommand{Name: "Ana Pérez"})
	require.NoError(t, err)
	env.customer = customer

	return env
}

func (e *salesEnv) unit(state invdomain.UnitState) *invdomain.Unit {
	e.serial++
	unit := &invdomain.Unit{
		Code:      sequence.FormatUnitCode(int64(e.serial)),
		ProductID: e.product.ID,
		State:     state,
	}
	require.NoError(e.t, e.db.Create(unit).Error)
	return unit
}

func (e *salesEnv) sale() *domain.Sale {
	sale, err := e.create.Handle(context.Background(), CreateSaleCommand{CustomerID: e.customer.ID})
	require.NoError(e.t, err)
	return sale
}

func (e *salesEnv) add(saleID, unitID uint, price, discount string) *domain.Sale {
	p := decimal.RequireFromString(price)
	sale, err := e.addLine.Handle(context.Background(), AddLineCommand{
		SaleID:   saleID,
		UnitID:   unitID,
		Price:    &p,
		Discount: decimal.RequireFromString(discount),
	})
	require.NoError(e.t, err)
	return sale
}

func (e *salesEnv) unitState(id uint) invdomain.UnitState {
	var unit invdomain.Unit
	require.NoError(e.t, e.db.First(&unit, id).Error)
	return unit.State
}

func (e *salesEnv) stored(id uint) *domain.Sale {
	sale, err := e.store.FindSale(context.Background(), id)
	require.NoError(e.t, err)
	return sale
}

func (e *salesEnv) paymentCount(saleID uint) int64 {
	var n int64
	require.NoError(e.t, e.db.Model(&domain.Payment{}).Where("sale_id = ?", saleID).Count(&n).Error)
	return n
}

func assertTotalInvariant(t *testing.T, sale *domain.Sale) {
	t.Helper()
	expected := sale.Subtotal.Sub(sale.Discount).Add(sale.Tax)
	if expected.IsNegative() {
		expected = decimal.Zero
	}
	assert.True(t, sale.Total.Equal(expected), "total %s, want %s", sale.Total, expected)
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSaleLifecycleScenario(t *testing.T) {
	env := newSalesEnv(t)
	ctx := context.Background()

	unitA := env.unit(invdomain.UnitAvailable)
	unitB := env.unit(invdomain.UnitAvailable)
	sale := env.sale()
	assert.Equal(t, domain.SaleDraft, sale.State)
	assert.Regexp(t, `^VTA-\d{8}-00000001$`, sale.Folio)

	env.add(sale.ID, unitA.ID, "100.00", "0")
	env.add(sale.ID, unitB.ID, "50.00", "10.00")

	recomputed, err := env.recompute.Handle(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, recomputed.Subtotal.Equal(money("150.00")))
	assert.True(t, recomputed.Discount.Equal(money("10.00")))
	assert.True(t, recomputed.Tax.IsZero())
	assert.True(t, recomputed.Total.Equal(money("140.00")))

	_, err = env.reserve.Handle(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, invdomain.UnitReserved, env.unitState(unitA.ID))
	assert.Equal(t, invdomain.UnitReserved, env.unitState(unitB.ID))

	paid, err := env.pay.Handle(ctx, MarkPaidCommand{SaleID: sale.ID, Method: domain.PaymentCash, Amount: money("140.00")})
	require.NoError(t, err)
	assert.Equal(t, domain.SalePaid, paid.State)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, invdomain.UnitSold, env.unitState(unitA.ID))
	assert.Equal(t, invdomain.UnitSold, env.unitState(unitB.ID))

	// Paying again re-validates the units, which are already SOLD
	_, err = env.pay.Handle(ctx, MarkPaidCommand{SaleID: sale.ID, Method: domain.PaymentCash, Amount: money("1.00")})
	assert.ErrorIs(t, err, domain.ErrUnitConflict)
	assert.Equal(t, int64(1), env.paymentCount(sale.ID))

	delivered, err := env.deliver.Handle(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SaleDelivered, delivered.State)
	require.NotNil(t, delivered.DeliveredAt)

	_, err = env.cancel.Handle(ctx, sale.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	final := env.stored(sale.ID)
	assert.Equal(t, domain.SaleDelivered, final.State)
	assert.True(t, final.Total.Equal(money("140.00")))
	require.Len(t, final.Lines, 2)
	require.NotNil(t, final.Lines[0].Unit)
	assert.Equal(t, invdomain.UnitSold, final.Lines[0].Unit.State)
	require.Len(t, final.Payments, 1)
	assert.Equal(t, domain.PaymentCash, final.Payments[0].Method)

	assert.Equal(t, []string{
		domain.EventLineAdded,
		domain.EventLineAdded,
		domain.EventUnitsReserved,
		domain.EventPaid,
		domain.EventDelivered,
	}, env.events.types())
}

func TestTotalsHoldAfterEveryMutation(t *testing.T) {
	env := newSalesEnv(t)
	ctx := context.Background()

	sale := env.sale()
	first := env.add(sale.ID, env.unit(invdomain.UnitAvailable).ID, "30.00", "45.00")
	assertTotalInvariant(t, first)
	assert.True(t, first.Total.IsZero())

	second := env.add(sale.ID, env.unit(invdomain.UnitAvailable).ID, "99.99", "0.99")
	assertTotalInvariant(t, second)
	assert.True(t, second.Total.Equal(money("84.00")))

	removed, err := env.remove.Handle(ctx, RemoveLineCommand{SaleID: sale.ID, LineID: second.Lines[0].ID})
	require.NoError(t, err)
	assertTotalInvariant(t, removed)
	assert.True(t, removed.Total.Equal(money("99.00")))

	stored := env.stored(sale.ID)
	assertTotalInvariant(t, stored)
	assert.True(t, stored.Total.Equal(removed.Total))
}

func TestRecomputeIsIdempotent(t *testing.T) {
	env := newSalesEnv(t)
	ctx := context.Background()

	sale := env.sale()
	env.add(sale.ID, env.unit(invdomain.UnitAvailable).ID, "12.34", "0.34")

	first, err := env.recompute.Handle(ctx, sale.ID)
	require.NoError(t, err)
	second, err := env.recompute.Handle(ctx, sale.ID)
	require.NoError(t, err)

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.Discount.Equal(second.Discount))
	assert.True(t, first.Tax.Equal(second.Tax))
	assert.True(t, first.Total.Equal(second.Total))

	_, err = env.recompute.Handle(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrSaleNotFound)
}

func TestAddLineUsesProductPriceByDefault(t *testing.T) {
	env := newSalesEnv(t)
	sale := env.sale()
	unit := env.unit(invdomain.UnitAvailable)

	updated, err := env.addLine.Handle(context.Background(), AddLineCommand{SaleID: sale.ID, UnitID: unit.ID})
	require.NoError(t, err)
	require.Len(t, updated.Lines, 1)
	assert.True(t, updated.Lines[0].Price.Equal(money("75.50")))
	assert.True(t, updated.Total.Equal(money("75.50")))
}

func TestAddLineRejections(t *testing.T) {
	env := newSalesEnv(t)
	ctx := context.Background()

	taken := env.unit(invdomain.UnitAvailable)
	other := env.sale()
	env.add(other.ID, taken.ID, "10", "0")

	sale := env.sale()
	negative := money("-1")

	tests := []struct {
		name    string
		cmd     AddLineCommand
		wantErr error
	}{
		{"sold unit", AddLineCommand{SaleID: sale.ID, UnitID: env.unit(invdomain.UnitSold).ID}, domain.ErrUnitNotAddable},
		{"reserved unit", AddLineCommand{SaleID: sale.ID, UnitID: env.unit(invdomain.UnitReserved).ID}, domain.ErrUnitNotAddable},
		{"decommissioned unit", AddLineCommand{SaleID: sale.ID, UnitID: env.unit(invdomain.UnitDecommissioned).ID}, domain.ErrUnitNotAddable},
		{"disposed unit", AddLineCommand{SaleID: sale.ID, UnitID: env.unit(invdomain.UnitDisposed).ID}, domain.ErrUnitNotAddable},
		{"unit on another sale", AddLineCommand{SaleID: sale.ID, UnitID: taken.ID}, domain.ErrDuplicateUnitAssignment},
		{"negative price", AddLineCommand{SaleID: sale.ID, UnitID: env.unit(invdomain.UnitAvailable).ID, Price: &negative}, domain.ErrInvalidAmount},
		{"negative discount", AddLineCommand{SaleID: sale.ID, UnitID: env.unit(invdomain.UnitAvailable).ID, Discount: negative}, domain.ErrInvalidAmount},
		{"missing unit", AddLineCommand{SaleID: sale.ID, UnitID: 9999}, invdomain.ErrUnitNotFound},
		{"missing sale", AddLineCommand{SaleID: 9999, UnitID: env.unit(invdomain.UnitAvailable).ID}, domain.ErrSaleNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.addLine.Handle(ctx, tt.cmd)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Empty(t, env.stored(sale.ID).Lines)

	// an in-repair unit may be sold, it only fails later when paying
	repair := env.unit(invdomain.UnitInRepair)
	env.add(sale.ID, repair.ID, "5", "0")

	_, err := env.cancel.Handle(ctx, sale.ID)
	require.NoError(t, err)
	_, err = env.addLine.Handle(ctx, AddLineCommand{SaleID: sale.ID, UnitID: env.unit(invdomain.UnitAvailable).ID})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestUnitIsNeverOnTwoLines(t *testing.T) {
	env := newSalesEnv(t)
	ctx := context.Background()

	unit := env.unit(invdomain.UnitAvailable)
	first := env.sale()
	added := env.add(first.ID, unit.ID, "10", "0")

	// the same unit stays bound even after the owning sale is cancelled
	_, err := env.cancel.Handle(ctx, first.ID)
	require.NoError(t, err)

	second := env.sale()
	_, err = env.addLine.Handle(ctx, AddLineCommand{SaleID: second.ID, UnitID: unit.ID})
	assert.ErrorIs(t, err, domain.ErrDuplicateUnitAssignment)

	_, err = env.remove.Handle(ctx, RemoveLineCommand{SaleID: first.ID, LineID: added.Lines[0].ID})
	require.NoError(t, err)

	_, err = env.addLine.Handle(ctx, AddLineCommand{SaleID: second.ID, UnitID: unit.ID})
	assert.NoError(t, err)
}

func TestRemoveLineRules(t *testing.T) {
	env := newSalesEnv(t)
	ctx := context.Background()

	sale := env.sale()
	unit := env.unit(invdomain.UnitAvailable)
	withLine := env.add(sale.ID, unit.ID, "10", "0")
	lineID := withLine.Lines[0].ID

	_, err := env.reserve.Handle(ctx, sale.ID)
	require.NoError(t, err)

	_, err = env.remove.Handle(ctx, RemoveLineCommand{SaleID: sale.ID, LineID: lineID})
	assert.ErrorIs(t, err, domain.ErrUnitNotAddable)

	_, err = env.remove.Handle(ctx, RemoveLineCommand{SaleID: sale.ID, LineID: 9999})
	assert.ErrorIs(t, err, domain.ErrLineNotFound)

	_, err = env.pay.Handle(ctx, MarkPaidCommand{SaleID: sale.ID, Method: domain.PaymentCard, Amount: money("10")})
	require.NoError(t, err)

	_, err = env.remove.Handle(ctx, RemoveLineCommand{SaleID: sale.ID, LineID: lineID})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestReserveRules(t *testing.T) {
	env := newSalesEnv(t)
	ctx := context.Background()

	empty := env.sale()
	_, err := env.reserve.Handle(ctx, empty.ID)
	assert.ErrorIs(t, err, domain.ErrEmptySale)

	sale := env.sale()
	ok := env.unit(invdomain.UnitAvailable)
	broken := env.unit(invdomain.UnitInRepair)
	env.add(sale.ID, ok.ID, "10", "0")
	env.add(sale.ID, broken.ID, "10", "0")

	_, err = env.reserve.Handle(ctx, sale.ID)
	var saleErr *domain.SaleError
	require.ErrorAs(t, err, &saleErr)
	assert.ErrorIs(t, err, domain.ErrUnitUnavailable)
	assert.Equal(t, broken.ID, saleErr.UnitID)
	assert.Equal(t, invdomain.UnitAvailable, env.unitState(ok.ID), "reservation is all or nothing")
}

func TestReserveOnNonDraftChangesNothing(t *testing.T) {
	env := newSalesEnv(t)
	ctx := context.Background()

	paidSale := env.sale()
	sold := env.unit(invdomain.UnitAvailable)
	env.add(paidSale.ID, sold.ID, "20", "0")
	_, err := env.pay.Handle(ctx, MarkPaidCommand{SaleID: paidSale.ID, Method: domain.PaymentTransfer, Amount: money("20")})
	require.NoError(t, err)

	cancelled := env.sale()
	free := env.unit(invdomain.UnitAvailable)
	env.add(cancelled.ID, free.ID, "20", "0")
	_, err = env.cancel.Handle(ctx, cancelled.ID)
	require.NoError(t, err)

	for _, id := range []uint{paidSale.ID, cancelled.ID} {
		_, err := env.reserve.Handle(ctx, id)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	}
	assert.Equal(t, invdomain.UnitSold, env.unitState(sold.ID))
	assert.Equal(t, invdomain.UnitAvailable, env.unitState(free.ID))
}

func TestMarkPaidUnderpaidRollsBack(t *testing.T) {
	env := newSalesEnv(t)
	ctx := context.Background()

	sale := env.sale()
	unit := env.unit(invdomain.UnitAvailable)
	env.add(sale.ID, unit.ID, "100", "0")
	_, err := env.reserve.Handle(ctx, sale.ID)
	require.NoError(t, err)

	_, err = env.pay.Handle(ctx, MarkPaidCommand{SaleID: sale.ID, Method: domain.PaymentCash, Amount: money("99.99")})
	assert.ErrorIs(t, err, domain.ErrInsufficientPayment)

	stored := env.stored(sale.ID)
	assert.Equal(t, domain.SaleDraft, stored.State)
	assert.Nil(t, stored.PaidAt)
	assert.Empty(t, stored.Payments)
	assert.Equal(t, invdomain.UnitReserved, env.unitState(unit.ID))
}

func TestMarkPaidKeepsNoPartialPayment(t *testing.T) {
	env := newSalesEnv(t)
	ctx := context.Background()

	sale := env.sale()
	env.add(sale.ID, env.unit(invdomain.UnitAvailable).ID, "100", "0")

	// a short payment is refused and not kept
	_, err := env.pay.Handle(ctx, MarkPaidCommand{SaleID: sale.ID, Method: domain.PaymentCash, Amount: money("60")})
	require.ErrorIs(t, err, domain.ErrInsufficientPayment)

	paid, err := env.pay.Handle(ctx, MarkPaidCommand{SaleID: sale.ID, Method: domain.PaymentCard, Amount: money("100"), Reference: "AUTH-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.SalePaid, paid.State)
	require.Len(t, paid.Payments, 1)
	assert.Equal(t, "AUTH-1", paid.Payments[0].Reference)
}

func TestMarkPaidValidation(t *testing.T) {
	env := newSalesEnv(t)
	ctx := context.Background()

	empty := env.sale()
	_, err := env.pay.Handle(ctx, MarkPaidCommand{SaleID: empty.ID, Method: domain.PaymentCash})
	assert.ErrorIs(t, err, domain.ErrEmptySale)

	sale := env.sale()
	env.add(sale.ID, env.unit(invdomain.UnitAvailable).ID, "10", "0")

	_, err = env.pay.Handle(ctx, MarkPaidCommand{SaleID: sale.ID, Method: "CHEQUE", Amount: money("10")})
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentMethod)

	_, err = env.pay.Handle(ctx, MarkPaidCommand{SaleID: sale.ID, Method: domain.PaymentCash, Amount: money("-5")})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = env.pay.Handle(ctx, MarkPaidCommand{SaleID: sale.ID, Method: domain.PaymentCash, Amount: money("10"), RequireReserved: true})
	assert.ErrorIs(t, err, domain.ErrUnitNotReserved)

	assert.Zero(t, env.paymentCount(sale.ID))
}

func TestMarkPaidUnitChecks(t *testing.T) {
	tests := []struct {
		state   invdomain.UnitState
		wantErr error
	}{
		{invdomain.UnitSold, domain.ErrUnitConflict},
		{invdomain.UnitDecommissioned, domain.ErrUnitUnavailable},
		{invdomain.UnitInRepair, domain.ErrUnitUnavailable},
		{invdomain.UnitDisposed, domain.ErrUnitUnavailable},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			env := newSalesEnv(t)
			ctx := context.Background()

			sale := env.sale()
			unit := env.unit(invdomain.UnitAvailable)
			env.add(sale.ID, unit.ID, "10", "0")
			require.NoError(t, env.db.Model(unit).Update("state", tt.state).Error)

			_, err := env.pay.Handle(ctx, MarkPaidCommand{SaleID: sale.ID, Method: domain.PaymentCash, Amount: money("10")})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.state, env.unitState(unit.ID))
			assert.Equal(t, domain.SaleDraft, env.stored(sale.ID).State)
		})
	}
}

func TestMarkPaidFromAvailableWithoutReservation(t *testing.T) {
	env := newSalesEnv(t)
	sale := env.sale()
	unit := env.unit(invdomain.UnitAvailable)
	env.add(sale.ID, unit.ID, "10", "2.5")

	paid, err := env.pay.Handle(context.Background(), MarkPaidCommand{SaleID: sale.ID, Method: domain.PaymentCash, Amount: money("7.50")})
	require.NoError(t, err)
	assert.Equal(t, domain.SalePaid, paid.State)
	assert.Equal(t, invdomain.UnitSold, env.unitState(unit.ID))
}

func TestMarkDeliveredRequiresPaid(t *testing.T) {
	env := newSalesEnv(t)
	sale := env.sale()

	_, err := env.deliver.Handle(context.Background(), sale.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancelReleasesOnlyReservedUnits(t *testing.T) {
	env := newSalesEnv(t)
	ctx := context.Background()

	sale := env.sale()
	reserved := env.unit(invdomain.UnitAvailable)
	repair := env.unit(invdomain.UnitAvailable)
	env.add(sale.ID, reserved.ID, "10", "0")
	env.add(sale.ID, repair.ID, "10", "0")
	_, err := env.reserve.Handle(ctx, sale.ID)
	require.NoError(t, err)

	// the second unit goes to repair behind the engine's back
	require.NoError(t, env.db.Model(repair).Update("state", invdomain.UnitInRepair).Error)

	cancelled, err := env.cancel.Handle(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SaleCancelled, cancelled.State)
	assert.Equal(t, invdomain.UnitAvailable, env.unitState(reserved.ID))
	assert.Equal(t, invdomain.UnitInRepair, env.unitState(repair.ID))

	again, err := env.cancel.Handle(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SaleCancelled, again.State)

	assert.Equal(t, []uint{reserved.ID}, env.events.events[len(env.events.events)-1].UnitIDs)
}

func TestDeleteSale(t *testing.T) {
	env := newSalesEnv(t)
	ctx := context.Background()

	sale := env.sale()
	unit := env.unit(invdomain.UnitAvailable)
	env.add(sale.ID, unit.ID, "10", "0")
	_, err := env.reserve.Handle(ctx, sale.ID)
	require.NoError(t, err)

	require.NoError(t, env.deleteH.Handle(ctx, sale.ID))
	assert.Equal(t, invdomain.UnitAvailable, env.unitState(unit.ID))

	_, err = env.store.FindSale(ctx, sale.ID)
	assert.ErrorIs(t, err, domain.ErrSaleNotFound)

	var lines int64
	require.NoError(t, env.db.Model(&domain.SaleLine{}).Count(&lines).Error)
	assert.Zero(t, lines)

	paid := env.sale()
	env.add(paid.ID, unit.ID, "10", "0")
	_, err = env.pay.Handle(ctx, MarkPaidCommand{SaleID: paid.ID, Method: domain.PaymentCash, Amount: money("10")})
	require.NoError(t, err)
	assert.ErrorIs(t, env.deleteH.Handle(ctx, paid.ID), domain.ErrInvalidTransition)
}

func TestCreateSaleRequiresCustomer(t *testing.T) {
	env := newSalesEnv(t)
	ctx := context.Background()

	_, err := env.create.Handle(ctx, CreateSaleCommand{CustomerID: 4242})
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)

	_, err = env.create.Handle(ctx, CreateSaleCommand{})
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)

	first := env.sale()
	second := env.sale()
	assert.NotEqual(t, first.Folio, second.Folio)
}

func TestConcurrentMarkPaidOnlyOneWins(t *testing.T) {
	env := newSalesEnv(t)
	ctx := context.Background()

	sale := env.sale()
	env.add(sale.ID, env.unit(invdomain.UnitAvailable).ID, "40", "0")
	_, err := env.reserve.Handle(ctx, sale.ID)
	require.NoError(t, err)

	const attempts = 2
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.pay.Handle(ctx, MarkPaidCommand{SaleID: sale.ID, Method: domain.PaymentCash, Amount: money("40")})
		}(i)
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrUnitConflict)
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, int64(1), env.paymentCount(sale.ID))
}

func TestConcurrentSalesRaceForOneUnit(t *testing.T) {
	env := newSalesEnv(t)
	ctx := context.Background()

	unit := env.unit(invdomain.UnitAvailable)
	sales := []*domain.Sale{env.sale(), env.sale(), env.sale()}

	errs := make([]error, len(sales))
	var wg sync.WaitGroup
	for i, sale := range sales {
		wg.Add(1)
		go func(i int, saleID uint) {
			defer wg.Done()
			_, errs[i] = env.addLine.Handle(ctx, AddLineCommand{SaleID: saleID, UnitID: unit.ID})
		}(i, sale.ID)
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrDuplicateUnitAssignment)
	}
	assert.Equal(t, 1, wins)

	var lines int64
	require.NoError(t, env.db.Model(&domain.SaleLine{}).Where("unit_id = ?", unit.ID).Count(&lines).Error)
	assert.Equal(t, int64(1), lines)
}

func TestPublishFailureDoesNotUndoOperation(t *testing.T) {
	env := newSalesEnv(t)
	env.events.err = errors.New("broker down")

	sale := env.sale()
	unit := env.unit(invdomain.UnitAvailable)
	env.add(sale.ID, unit.ID, "10", "0")

	_, err := env.reserve.Handle(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.Equal(t, invdomain.UnitReserved, env.unitState(unit.ID))
}
