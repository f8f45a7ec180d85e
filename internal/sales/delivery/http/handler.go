package http

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	invdomain "github.com/tair/stockroom/internal/inventory/domain"
	"github.com/tair/stockroom/internal/sales/domain"
	"github.com/tair/stockroom/internal/sales/usecase/command"
	"github.com/tair/stockroom/internal/sales/usecase/query"
	"github.com/tair/stockroom/pkg/logger"
	"github.com/tair/stockroom/pkg/response"
)

// retryAfterSeconds is advertised when a row lock could not be taken in time
const retryAfterSeconds = "1"

// SalesHandler handles HTTP requests for customers and sales
type SalesHandler struct {
	createCustomerHandler *command.CreateCustomerHandler
	createSaleHandler     *command.CreateSaleHandler
	addLineHandler        *command.AddLineHandler
	removeLineHandler     *command.RemoveLineHandler
	recomputeHandler      *command.RecomputeHandler
	reserveHandler        *command.ReserveHandler
	markPaidHandler       *command.MarkPaidHandler
	markDeliveredHandler  *command.MarkDeliveredHandler
	cancelHandler         *command.CancelHandler
	deleteSaleHandler     *command.DeleteSaleHandler

	getSaleHandler       *query.GetSaleHandler
	listSalesHandler     *query.ListSalesHandler
	listCustomersHandler *query.ListCustomersHandler
}

// NewSalesHandler creates a new sales handler
func NewSalesHandler(
	createCustomerHandler *command.CreateCustomerHandler,
	createSaleHandler *command.CreateSaleHandler,
	addLineHandler *command.AddLineHandler,
	removeLineHandler *command.RemoveLineHandler,
	recomputeHandler *command.RecomputeHandler,
	reserveHandler *command.ReserveHandler,
	markPaidHandler *command.MarkPaidHandler,
	markDeliveredHandler *command.MarkDeliveredHandler,
	cancelHandler *command.CancelHandler,
	deleteSaleHandler *command.DeleteSaleHandler,
	getSaleHandler *query.GetSaleHandler,
	listSalesHandler *query.ListSalesHandler,
	listCustomersHandler *query.ListCustomersHandler,
) *SalesHandler {
	return &SalesHandler{
		createCustomerHandler: createCustomerHandler,
		createSaleHandler:     createSaleHandler,
		addLineHandler:        addLineHandler,
		removeLineHandler:     removeLineHandler,
		recomputeHandler:      recomputeHandler,
		reserveHandler:        reserveHandler,
		markPaidHandler:       markPaidHandler,
		markDeliveredHandler:  markDeliveredHandler,
		cancelHandler:         cancelHandler,
		deleteSaleHandler:     deleteSaleHandler,
		getSaleHandler:        getSaleHandler,
		listSalesHandler:      listSalesHandler,
		listCustomersHandler:  listCustomersHandler,
	}
}

type createCustomerRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	TaxID   string `json:"tax_id" validate:"max=30"`
	Email   string `json:"email" validate:"omitempty,email,max=120"`
	Phone   string `json:"phone" validate:"max=30"`
	Address string `json:"address" validate:"max=300"`
}

type createSaleRequest struct {
	CustomerID uint  `json:"customer_id" validate:"required"`
	SellerID   *uint `json:"seller_id"`
}

type addLineRequest struct {
	UnitID   uint             `json:"unit_id" validate:"required"`
	Price    *decimal.Decimal `json:"price"`
	Discount decimal.Decimal  `json:"discount"`
}

type markPaidRequest struct {
	Method          string          `json:"method" validate:"required,oneof=EFECTIVO TRANSFERENCIA TARJETA"`
	Amount          decimal.Decimal `json:"amount"`
	Reference       string          `json:"reference" validate:"max=120"`
	RequireReserved bool            `json:"require_reserved"`
}

// saleOperation is the shape shared by every single-sale transition
type saleOperation func(r *http.Request, saleID uint) (*domain.Sale, error)

// CreateCustomer handles POST /api/customers
func (h *SalesHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if !decode(w, r, &req) {
		return
	}

	customer, err := h.createCustomerHandler.Handle(r.Context(), command.CreateCustomerCommand{
		Name:    req.Name,
		TaxID:   req.TaxID,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.OK(w, http.StatusCreated, "Customer created successfully", customer)
}

// ListCustomers handles GET /api/customers
func (h *SalesHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.listCustomersHandler.Handle(r.Context(), query.ListCustomersQuery{
		Q:      r.URL.Query().Get("q"),
		Limit:  response.QueryInt(r, "limit"),
		Offset: response.QueryInt(r, "offset"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.OK(w, http.StatusOK, "", customers)
}

// CreateSale handles POST /api/sales
func (h *SalesHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req createSaleRequest
	if !decode(w, r, &req) {
		return
	}

	sale, err := h.createSaleHandler.Handle(r.Context(), command.CreateSaleCommand{
		CustomerID: req.CustomerID,
		SellerID:   req.SellerID,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.OK(w, http.StatusCreated, "Sale created successfully", sale)
}

// ListSales handles GET /api/sales
func (h *SalesHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sales, err := h.listSalesHandler.Handle(r.Context(), query.ListSalesQuery{
		State:  domain.SaleState(q.Get("state")),
		Q:      q.Get("q"),
		Limit:  response.QueryInt(r, "limit"),
		Offset: response.QueryInt(r, "offset"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.OK(w, http.StatusOK, "", sales)
}

// GetSale handles GET /api/sales/{id}
func (h *SalesHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "", func(r *http.Request, id uint) (*domain.Sale, error) {
		return h.getSaleHandler.Handle(r.Context(), id)
	})
}

// DeleteSale handles DELETE /api/sales/{id}
func (h *SalesHandler) DeleteSale(w http.ResponseWriter, r *http.Request) {
	id, ok := response.PathID(r, "id")
	if !ok {
		response.Fail(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid sale ID")
		return
	}

	if err := h.deleteSaleHandler.Handle(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	response.OK(w, http.StatusOK, "Sale deleted", nil)
}

// AddLine handles POST /api/sales/{id}/lines
func (h *SalesHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	id, ok := response.PathID(r, "id")
	if !ok {
		response.Fail(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid sale ID")
		return
	}

	var req addLineRequest
	if !decode(w, r, &req) {
		return
	}

	sale, err := h.addLineHandler.Handle(r.Context(), command.AddLineCommand{
		SaleID:   id,
		UnitID:   req.UnitID,
		Price:    req.Price,
		Discount: req.Discount,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.OK(w, http.StatusCreated, "Line added", sale)
}

// RemoveLine handles DELETE /api/sales/{id}/lines/{line_id}
func (h *SalesHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	lineID, ok := response.PathID(r, "line_id")
	if !ok {
		response.Fail(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid line ID")
		return
	}

	h.run(w, r, "Line removed", func(r *http.Request, id uint) (*domain.Sale, error) {
		return h.removeLineHandler.Handle(r.Context(), command.RemoveLineCommand{SaleID: id, LineID: lineID})
	})
}

// Recompute handles POST /api/sales/{id}/recompute
func (h *SalesHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "Totals recomputed", func(r *http.Request, id uint) (*domain.Sale, error) {
		return h.recomputeHandler.Handle(r.Context(), id)
	})
}

// Reserve handles POST /api/sales/{id}/reserve
func (h *SalesHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "Units reserved", func(r *http.Request, id uint) (*domain.Sale, error) {
		return h.reserveHandler.Handle(r.Context(), id)
	})
}

// MarkPaid handles POST /api/sales/{id}/pay
func (h *SalesHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := response.PathID(r, "id")
	if !ok {
		response.Fail(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid sale ID")
		return
	}

	var req markPaidRequest
	if !decode(w, r, &req) {
		return
	}

	sale, err := h.markPaidHandler.Handle(r.Context(), command.MarkPaidCommand{
		SaleID:          id,
		Method:          domain.PaymentMethod(req.Method),
		Amount:          req.Amount,
		Reference:       req.Reference,
		RequireReserved: req.RequireReserved,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.OK(w, http.StatusOK, "Sale paid", sale)
}

// MarkDelivered handles POST /api/sales/{id}/deliver
func (h *SalesHandler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "Sale delivered", func(r *http.Request, id uint) (*domain.Sale, error) {
		return h.markDeliveredHandler.Handle(r.Context(), id)
	})
}

// Cancel handles POST /api/sales/{id}/cancel
func (h *SalesHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "Sale cancelled", func(r *http.Request, id uint) (*domain.Sale, error) {
		return h.cancelHandler.Handle(r.Context(), id)
	})
}

func (h *SalesHandler) run(w http.ResponseWriter, r *http.Request, message string, op saleOperation) {
	id, ok := response.PathID(r, "id")
	if !ok {
		response.Fail(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid sale ID")
		return
	}

	sale, err := op(r, id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.OK(w, http.StatusOK, message, sale)
}

// RegisterRoutes registers all sales routes
func (h *SalesHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/customers", h.ListCustomers).Methods("GET")
	router.HandleFunc("/api/customers", h.CreateCustomer).Methods("POST")

	router.HandleFunc("/api/sales", h.ListSales).Methods("GET")
	router.HandleFunc("/api/sales", h.CreateSale).Methods("POST")
	router.HandleFunc("/api/sales/{id}", h.GetSale).Methods("GET")
	router.HandleFunc("/api/sales/{id}", h.DeleteSale).Methods("DELETE")
	router.HandleFunc("/api/sales/{id}/lines", h.AddLine).Methods("POST")
	router.HandleFunc("/api/sales/{id}/lines/{line_id}", h.RemoveLine).Methods("DELETE")
	router.HandleFunc("/api/sales/{id}/recompute", h.Recompute).Methods("POST")
	router.HandleFunc("/api/sales/{id}/reserve", h.Reserve).Methods("POST")
	router.HandleFunc("/api/sales/{id}/pay", h.MarkPaid).Methods("POST")
	router.HandleFunc("/api/sales/{id}/deliver", h.MarkDelivered).Methods("POST")
	router.HandleFunc("/api/sales/{id}/cancel", h.Cancel).Methods("POST")
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := response.Decode(r, dst)
	if err == nil {
		return true
	}
	if !response.ValidationFailed(w, err) {
		response.Fail(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
	}
	return false
}

// statusOf maps engine failures onto HTTP statuses and stable error codes
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrSaleNotFound), errors.Is(err, domain.ErrLineNotFound), errors.Is(err, domain.ErrCustomerNotFound),
		errors.Is(err, invdomain.ErrUnitNotFound), errors.Is(err, invdomain.ErrProductNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrLockTimeout):
		return http.StatusServiceUnavailable, "LOCK_TIMEOUT"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION"
	case errors.Is(err, domain.ErrUnitConflict):
		return http.StatusConflict, "UNIT_CONFLICT"
	case errors.Is(err, domain.ErrUnitUnavailable):
		return http.StatusConflict, "UNIT_UNAVAILABLE"
	case errors.Is(err, domain.ErrUnitNotReserved):
		return http.StatusConflict, "UNIT_NOT_RESERVED"
	case errors.Is(err, domain.ErrUnitNotAddable):
		return http.StatusConflict, "UNIT_NOT_ADDABLE"
	case errors.Is(err, domain.ErrDuplicateUnitAssignment):
		return http.StatusConflict, "DUPLICATE_UNIT_ASSIGNMENT"
	case errors.Is(err, domain.ErrEmptySale):
		return http.StatusUnprocessableEntity, "EMPTY_SALE"
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusUnprocessableEntity, "INVALID_AMOUNT"
	case errors.Is(err, domain.ErrInsufficientPayment):
		return http.StatusUnprocessableEntity, "INSUFFICIENT_PAYMENT"
	case errors.Is(err, domain.ErrInvalidPaymentMethod):
		return http.StatusUnprocessableEntity, "INVALID_PAYMENT_METHOD"
	case errors.Is(err, domain.ErrInvalidCustomer), errors.Is(err, domain.ErrInvalidQuery):
		return http.StatusUnprocessableEntity, "VALIDATION_FAILED"
	}
	return http.StatusInternalServerError, "INTERNAL"
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusOf(err)

	message := err.Error()
	switch status {
	case http.StatusServiceUnavailable:
		w.Header().Set("Retry-After", retryAfterSeconds)
	case http.StatusInternalServerError:
		logger.WithContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Sales request failed")
		message = "Internal server error"
	}
	response.Fail(w, status, code, message)
}
