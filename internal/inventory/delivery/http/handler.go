package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tair/stockroom/internal/inventory/domain"
	"github.com/tair/stockroom/internal/inventory/usecase/command"
	"github.com/tair/stockroom/internal/inventory/usecase/query"
	"github.com/tair/stockroom/pkg/logger"
	"github.com/tair/stockroom/pkg/response"
)

// InventoryHandler handles HTTP requests for products, units and assets
type InventoryHandler struct {
	createProductHandler     *command.CreateProductHandler
	registerUnitHandler      *command.RegisterUnitHandler
	changeStateHandler       *command.ChangeUnitStateHandler
	registerAssetHandler     *command.RegisterAssetHandler
	decommissionAssetHandler *command.DecommissionAssetHandler

	getUnitHandler      *query.GetUnitHandler
	listUnitsHandler    *query.ListUnitsHandler
	listProductsHandler *query.ListProductsHandler
	getAssetHandler     *query.GetAssetHandler
	listAssetsHandler   *query.ListAssetsHandler
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(
	createProductHandler *command.CreateProductHandler,
	registerUnitHandler *command.RegisterUnitHandler,
	changeStateHandler *command.ChangeUnitStateHandler,
	registerAssetHandler *command.RegisterAssetHandler,
	decommissionAssetHandler *command.DecommissionAssetHandler,
	getUnitHandler *query.GetUnitHandler,
	listUnitsHandler *query.ListUnitsHandler,
	listProductsHandler *query.ListProductsHandler,
	getAssetHandler *query.GetAssetHandler,
	listAssetsHandler *query.ListAssetsHandler,
) *InventoryHandler {
	return &InventoryHandler{
		createProductHandler:     createProductHandler,
		registerUnitHandler:      registerUnitHandler,
		changeStateHandler:       changeStateHandler,
		registerAssetHandler:     registerAssetHandler,
		decommissionAssetHandler: decommissionAssetHandler,
		getUnitHandler:           getUnitHandler,
		listUnitsHandler:         listUnitsHandler,
		listProductsHandler:      listProductsHandler,
		getAssetHandler:          getAssetHandler,
		listAssetsHandler:        listAssetsHandler,
	}
}

type createProductRequest struct {
	SKU          string          `json:"sku" validate:"required,max=50"`
	Name         string          `json:"name" validate:"required,max=200"`
	Description  string          `json:"description"`
	Brand        string          `json:"brand" validate:"max=100"`
	Model        string          `json:"model" validate:"max=120"`
	Category     string          `json:"category" validate:"max=100"`
	Cost         decimal.Decimal `json:"cost"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	MinimumPrice decimal.Decimal `json:"minimum_price"`
}

type registerUnitRequest struct {
	ProductID   uint   `json:"product_id" validate:"required"`
	Serial      string `json:"serial" validate:"max=120"`
	InternalTag string `json:"internal_tag" validate:"max=60"`
	Condition   string `json:"condition" validate:"max=50"`
	Grade       string `json:"grade" validate:"max=10"`
	Accessories string `json:"accessories" validate:"max=200"`
	Location    string `json:"location" validate:"max=120"`
	Notes       string `json:"notes"`
	CreatedBy   *uint  `json:"created_by"`
}

type changeStateRequest struct {
	State string `json:"state" validate:"required,oneof=AVAILABLE IN_REPAIR DECOMMISSIONED DISPOSED RESERVED SOLD"`
}

type registerAssetRequest struct {
	Category           string           `json:"category" validate:"required,max=100"`
	Location           string           `json:"location" validate:"required,max=120"`
	State              string           `json:"state" validate:"omitempty,oneof=IN_USE STORAGE DECOMMISSIONED DISPOSED"`
	Brand              string           `json:"brand" validate:"max=80"`
	Model              string           `json:"model" validate:"max=120"`
	Serial             string           `json:"serial" validate:"max=120"`
	InternalTag        string           `json:"internal_tag" validate:"max=60"`
	Custodian          string           `json:"custodian" validate:"max=120"`
	Notes              string           `json:"notes"`
	SuggestedPrice     *decimal.Decimal `json:"suggested_price"`
	RegisteredOn       *time.Time       `json:"registered_on"`
	Active             *bool            `json:"active"`
	DecommissionedOn   *time.Time       `json:"decommissioned_on"`
	DecommissionReason string           `json:"decommission_reason" validate:"max=120"`
}

type decommissionRequest struct {
	State  string     `json:"state" validate:"omitempty,oneof=DECOMMISSIONED DISPOSED"`
	On     *time.Time `json:"on"`
	Reason string     `json:"reason" validate:"required,max=120"`
}

// CreateProduct handles POST /api/products
func (h *InventoryHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if !decode(w, r, &req) {
		return
	}

	product, err := h.createProductHandler.Handle(r.Context(), command.CreateProductCommand{
		SKU:          req.SKU,
		Name:         req.Name,
		Description:  req.Description,
		Brand:        req.Brand,
		Model:        req.Model,
		Category:     req.Category,
		Cost:         req.Cost,
		SalePrice:    req.SalePrice,
		MinimumPrice: req.MinimumPrice,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	response.OK(w, http.StatusCreated, "Product created successfully", product)
}

// ListProducts handles GET /api/products
func (h *InventoryHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.listProductsHandler.Handle(r.Context(), query.ListProductsQuery{
		Limit:  response.QueryInt(r, "limit"),
		Offset: response.QueryInt(r, "offset"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.OK(w, http.StatusOK, "", products)
}

// RegisterUnit handles POST /api/units
func (h *InventoryHandler) RegisterUnit(w http.ResponseWriter, r *http.Request) {
	var req registerUnitRequest
	if !decode(w, r, &req) {
		return
	}

	unit, err := h.registerUnitHandler.Handle(r.Context(), command.RegisterUnitCommand{
		ProductID:   req.ProductID,
		Serial:      req.Serial,
		InternalTag: req.InternalTag,
		Condition:   req.Condition,
		Grade:       req.Grade,
		Accessories: req.Accessories,
		Location:    req.Location,
		Notes:       req.Notes,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	response.OK(w, http.StatusCreated, "Unit registered successfully", unit)
}

// GetUnit handles GET /api/units/{id}
func (h *InventoryHandler) GetUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := response.PathID(r, "id")
	if !ok {
		response.Fail(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid unit ID")
		return
	}

	unit, err := h.getUnitHandler.Handle(r.Context(), query.GetUnitQuery{ID: id})
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.OK(w, http.StatusOK, "", unit)
}

// ListUnits handles GET /api/units
func (h *InventoryHandler) ListUnits(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	productID, _ := strconv.ParseUint(q.Get("product_id"), 10, 32)

	units, err := h.listUnitsHandler.Handle(r.Context(), query.ListUnitsQuery{
		State:     domain.UnitState(q.Get("state")),
		ProductID: uint(productID),
		Location:  q.Get("location"),
		Q:         q.Get("q"),
		Limit:     response.QueryInt(r, "limit"),
		Offset:    response.QueryInt(r, "offset"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.OK(w, http.StatusOK, "", units)
}

// ChangeUnitState handles PATCH /api/units/{id}/state
func (h *InventoryHandler) ChangeUnitState(w http.ResponseWriter, r *http.Request) {
	id, ok := response.PathID(r, "id")
	if !ok {
		response.Fail(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid unit ID")
		return
	}

	var req changeStateRequest
	if !decode(w, r, &req) {
		return
	}

	unit, err := h.changeStateHandler.Handle(r.Context(), command.ChangeUnitStateCommand{
		UnitID: id,
		State:  domain.UnitState(req.State),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.OK(w, http.StatusOK, "Unit state updated", unit)
}

// RegisterAsset handles POST /api/assets
func (h *InventoryHandler) RegisterAsset(w http.ResponseWriter, r *http.Request) {
	var req registerAssetRequest
	if !decode(w, r, &req) {
		return
	}

	cmd := command.RegisterAssetCommand{
		Category:           req.Category,
		Location:           req.Location,
		State:              domain.AssetState(req.State),
		Brand:              req.Brand,
		Model:              req.Model,
		Serial:             req.Serial,
		InternalTag:        req.InternalTag,
		Custodian:          req.Custodian,
		Notes:              req.Notes,
		SuggestedPrice:     req.SuggestedPrice,
		Active:             req.Active,
		DecommissionedOn:   req.DecommissionedOn,
		DecommissionReason: req.DecommissionReason,
	}
	if req.RegisteredOn != nil {
		cmd.RegisteredOn = *req.RegisteredOn
	}

	asset, err := h.registerAssetHandler.Handle(r.Context(), cmd)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.OK(w, http.StatusCreated, "Asset registered successfully", asset)
}

// GetAsset handles GET /api/assets/{id}
func (h *InventoryHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := response.PathID(r, "id")
	if !ok {
		response.Fail(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid asset ID")
		return
	}

	asset, err := h.getAssetHandler.Handle(r.Context(), query.GetAssetQuery{ID: id})
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.OK(w, http.StatusOK, "", asset)
}

// ListAssets handles GET /api/assets
func (h *InventoryHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	listQuery := query.ListAssetsQuery{
		State:    domain.AssetState(q.Get("state")),
		Category: q.Get("category"),
		Location: q.Get("location"),
		Limit:    response.QueryInt(r, "limit"),
		Offset:   response.QueryInt(r, "offset"),
	}
	if raw := q.Get("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			listQuery.Active = &active
		}
	}

	assets, err := h.listAssetsHandler.Handle(r.Context(), listQuery)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.OK(w, http.StatusOK, "", assets)
}

// DecommissionAsset handles POST /api/assets/{id}/decommission
func (h *InventoryHandler) DecommissionAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := response.PathID(r, "id")
	if !ok {
		response.Fail(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid asset ID")
		return
	}

	var req decommissionRequest
	if !decode(w, r, &req) {
		return
	}

	cmd := command.DecommissionAssetCommand{ID: id, State: domain.AssetState(req.State), Reason: req.Reason}
	if req.On != nil {
		cmd.On = *req.On
	}

	asset, err := h.decommissionAssetHandler.Handle(r.Context(), cmd)
	if err != nil {
		respondError(w, r, err)
		return
	}
	response.OK(w, http.StatusOK, "Asset decommissioned", asset)
}

// RegisterRoutes registers all inventory routes
func (h *InventoryHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/products", h.ListProducts).Methods("GET")
	router.HandleFunc("/api/products", h.CreateProduct).Methods("POST")
	router.HandleFunc("/api/units", h.ListUnits).Methods("GET")
	router.HandleFunc("/api/units", h.RegisterUnit).Methods("POST")
	router.HandleFunc("/api/units/{id}", h.GetUnit).Methods("GET")
	router.HandleFunc("/api/units/{id}/state", h.ChangeUnitState).Methods("PATCH")
	router.HandleFunc("/api/assets", h.ListAssets).Methods("GET")
	router.HandleFunc("/api/assets", h.RegisterAsset).Methods("POST")
	router.HandleFunc("/api/assets/{id}", h.GetAsset).Methods("GET")
	router.HandleFunc("/api/assets/{id}/decommission", h.DecommissionAsset).Methods("POST")
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

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrUnitNotFound), errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrAssetNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInvalidStateChange):
		status, code = http.StatusConflict, "INVALID_STATE_CHANGE"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		status, code = http.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrInvalidUnit), errors.Is(err, domain.ErrInvalidProduct), errors.Is(err, domain.ErrInvalidAsset):
		status, code = http.StatusUnprocessableEntity, "VALIDATION_FAILED"
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.WithContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Inventory request failed")
		message = "Internal server error"
	}
	response.Fail(w, status, code, message)
}
