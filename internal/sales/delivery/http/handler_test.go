package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	invdomain "github.com/tair/stockroom/internal/inventory/domain"
	"github.com/tair/stockroom/internal/sales/domain"
	"github.com/tair/stockroom/internal/sales/repository"
	"github.com/tair/stockroom/internal/sales/usecase/command"
	"github.com/tair/stockroom/internal/sales/usecase/query"
	"github.com/tair/stockroom/internal/sequence"
	"github.com/tair/stockroom/internal/testutil"
)

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Fields  map[string]string `json:"fields"`
}

type server struct {
	t      *testing.T
	db     *gorm.DB
	router *mux.Router
}

func newServer(t *testing.T) *server {
	db := testutil.NewDB(t)
	require.NoError(t, repository.AutoMigrate(db))

	counter, err := sequence.NewTableCounter(db)
	require.NoError(t, err)

	store := repository.NewGormStore(db, time.Second)
	events := domain.NopPublisher{}

	handler := NewSalesHandler(
		command.NewCreateCustomerHandler(store),
		command.NewCreateSaleHandler(store, sequence.NewCodeGenerator(counter)),
		command.NewAddLineHandler(store, events),
		command.NewRemoveLineHandler(store, events),
		command.NewRecomputeHandler(store),
		command.NewReserveHandler(store, events),
		command.NewMarkPaidHandler(store, events),
		command.NewMarkDeliveredHandler(store, events),
		command.NewCancelHandler(store, events),
		command.NewDeleteSaleHandler(store, events),
		query.NewGetSaleHandler(store),
		query.NewListSalesHandler(store),
		query.NewListCustomersHandler(store),
	)

	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	return &server{t: t, db: db, router: router}
}

func (s *server) do(method, path string, body any) (int, envelope) {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))

	var env envelope
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

func (s *server) sale(env envelope) domain.Sale {
	s.t.Helper()
	var sale domain.Sale
	require.NoError(s.t, json.Unmarshal(env.Data, &sale))
	return sale
}

func (s *server) seedUnit() *invdomain.Unit {
	product := &invdomain.Product{SKU: "TAB-1", Name: "Tablet", SalePrice: decimal.NewFromInt(300), Active: true}
	require.NoError(s.t, s.db.Create(product).Error)
	unit := &invdomain.Unit{Code: "ART-000001", ProductID: product.ID, State: invdomain.UnitAvailable}
	require.NoError(s.t, s.db.Create(unit).Error)
	return unit
}

func TestSaleFlowOverHTTP(t *testing.T) {
	s := newServer(t)
	unit := s.seedUnit()

	status, env := s.do(http.MethodPost, "/api/customers", map[string]string{"name": "Ana Pérez"})
	require.Equal(t, http.StatusCreated, status)
	var customer domain.Customer
	require.NoError(t, json.Unmarshal(env.Data, &customer))

	status, env = s.do(http.MethodPost, "/api/sales", map[string]any{"customer_id": customer.ID})
	require.Equal(t, http.StatusCreated, status)
	sale := s.sale(env)
	assert.Equal(t, domain.SaleDraft, sale.State)
	base := fmt.Sprintf("/api/sales/%d", sale.ID)

	status, env = s.do(http.MethodPost, base+"/lines", map[string]any{"unit_id": unit.ID, "discount": "20"})
	require.Equal(t, http.StatusCreated, status)
	sale = s.sale(env)
	assert.Equal(t, "280", sale.Total.String())

	status, env = s.do(http.MethodPost, base+"/lines", map[string]any{"unit_id": unit.ID})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE_UNIT_ASSIGNMENT", env.Code)

	status, _ = s.do(http.MethodPost, base+"/reserve", nil)
	require.Equal(t, http.StatusOK, status)

	status, env = s.do(http.MethodPost, base+"/pay", map[string]any{"method": "EFECTIVO", "amount": "100"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "INSUFFICIENT_PAYMENT", env.Code)

	status, env = s.do(http.MethodPost, base+"/pay", map[string]any{"method": "TARJETA", "amount": "280", "reference": "AUTH-1"})
	require.Equal(t, http.StatusOK, status)
	sale = s.sale(env)
	assert.Equal(t, domain.SalePaid, sale.State)

	status, env = s.do(http.MethodPost, base+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSITION", env.Code)

	status, env = s.do(http.MethodPost, base+"/deliver", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, domain.SaleDelivered, s.sale(env).State)

	status, env = s.do(http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, status)
	sale = s.sale(env)
	require.Len(t, sale.Lines, 1)
	require.Len(t, sale.Payments, 1)

	status, env = s.do(http.MethodGet, "/api/sales?state=DELIVERED", nil)
	require.Equal(t, http.StatusOK, status)
	var sales []domain.Sale
	require.NoError(t, json.Unmarshal(env.Data, &sales))
	assert.Len(t, sales, 1)
}

func TestSaleRequestValidation(t *testing.T) {
	s := newServer(t)

	status, env := s.do(http.MethodPost, "/api/sales/1/pay", map[string]any{"method": "CHEQUE", "amount": "10"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "oneof", env.Fields["Method"])

	status, env = s.do(http.MethodPost, "/api/sales/1/pay", map[string]any{"method": "EFECTIVO", "amount": "10"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Code)

	status, _ = s.do(http.MethodPost, "/api/sales/zero/reserve", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = s.do(http.MethodPost, "/api/sales", map[string]any{"customer_id": 77})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Code)

	status, env = s.do(http.MethodGet, "/api/sales?state=LOST", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Code)
}

func TestDeleteDraftSaleOverHTTP(t *testing.T) {
	s := newServer(t)
	unit := s.seedUnit()

	_, env := s.do(http.MethodPost, "/api/customers", map[string]string{"name": "Luis"})
	var customer domain.Customer
	require.NoError(t, json.Unmarshal(env.Data, &customer))

	_, env = s.do(http.MethodPost, "/api/sales", map[string]any{"customer_id": customer.ID})
	sale := s.sale(env)
	base := fmt.Sprintf("/api/sales/%d", sale.ID)

	_, env = s.do(http.MethodPost, base+"/lines", map[string]any{"unit_id": unit.ID})
	sale = s.sale(env)
	require.Len(t, sale.Lines, 1)

	status, env := s.do(http.MethodDelete, fmt.Sprintf("%s/lines/%d", base, sale.Lines[0].ID), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, s.sale(env).Lines)

	status, _ = s.do(http.MethodDelete, base, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = s.do(http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAddUnknownUnitIsNotFound(t *testing.T) {
	s := newServer(t)

	status, env := s.do(http.MethodPost, "/api/customers", map[string]string{
		"name":    "Marta",
		"tax_id":  "maro800101ab1",
		"address": "Av. Juárez 12",
	})
	require.Equal(t, http.StatusCreated, status)
	var customer domain.Customer
	require.NoError(t, json.Unmarshal(env.Data, &customer))
	assert.Equal(t, "MARO800101AB1", customer.TaxID)
	assert.Equal(t, "Av. Juárez 12", customer.Address)

	_, env = s.do(http.MethodPost, "/api/sales", map[string]any{"customer_id": customer.ID})
	sale := s.sale(env)

	status, env = s.do(http.MethodPost, fmt.Sprintf("/api/sales/%d/lines", sale.ID), map[string]any{"unit_id": 9999, "price": "1"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Code)

	code := func(err error) string { _, c := statusOf(err); return c }
	assert.Equal(t, "NOT_FOUND", code(fmt.Errorf("lock units: %w", invdomain.ErrUnitNotFound)))
	assert.Equal(t, "NOT_FOUND", code(fmt.Errorf("find product: %w", invdomain.ErrProductNotFound)))
}

func TestLockTimeoutAdvertisesRetry(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sales/1/pay", nil)

	respondError(rec, req, domain.Fail(domain.OpMarkPaid, 1, fmt.Errorf("lock units: %w", domain.ErrLockTimeout)))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, retryAfterSeconds, rec.Header().Get("Retry-After"))
}

func TestStatusOfUnknownError(t *testing.T) {
	status, code := statusOf(fmt.Errorf("disk on fire"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL", code)
}
