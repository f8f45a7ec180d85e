package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/stockroom/internal/sales/domain"
)

// CreateCustomerCommand represents the command to add a customer
type CreateCustomerCommand struct {
	Name    string
	TaxID   string
	Email   string
	Phone   string
	Address string
}

// CreateCustomerHandler handles create customer command
type CreateCustomerHandler struct {
	store domain.Store
}

// NewCreateCustomerHandler creates a new create customer handler
func NewCreateCustomerHandler(store domain.Store) *CreateCustomerHandler {
	return &CreateCustomerHandler{store: store}
}

// Handle executes the create customer command
func (h *CreateCustomerHandler) Handle(ctx context.Context, cmd CreateCustomerCommand) (*domain.Customer, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidCustomer)
	}

	customer := &domain.Customer{
		Name:    name,
		TaxID:   strings.ToUpper(strings.TrimSpace(cmd.TaxID)),
		Email:   strings.TrimSpace(cmd.Email),
		Phone:   strings.TrimSpace(cmd.Phone),
		Address: strings.TrimSpace(cmd.Address),
	}
	if err := h.store.CreateCustomer(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}
