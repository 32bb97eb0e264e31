package customers

import (
	"context"
	"fmt"
	"strings"

	checkoutrules "github.com/grameenmart/storefront/pkg/checkout"
	"github.com/grameenmart/storefront/pkg/db/models"
	pkgerrors "github.com/grameenmart/storefront/pkg/errors"
)

type customerBinding interface {
	Items(ctx context.Context) ([]models.Customer, error)
	Find(ctx context.Context, mobile string) (*models.Customer, error)
	Remove(ctx context.Context, mobile string) error
}

// Service exposes saved customer profiles to the storefront and the admin
// panel. Profiles are only created by checkout.
type Service interface {
	List(ctx context.Context) ([]models.Customer, error)
	Lookup(ctx context.Context, mobile string) (*models.Customer, error)
	Delete(ctx context.Context, mobile string) error
}

type service struct {
	customers customerBinding
}

func NewService(customers customerBinding) (Service, error) {
	if customers == nil {
		return nil, fmt.Errorf("customer binding required")
	}
	return &service{customers: customers}, nil
}

func (s *service) List(ctx context.Context) ([]models.Customer, error) {
	return s.customers.Items(ctx)
}

// Lookup returns the first profile saved under mobile.
func (s *service) Lookup(ctx context.Context, mobile string) (*models.Customer, error) {
	mobile = strings.TrimSpace(mobile)
	if !checkoutrules.ValidMobile(mobile) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mobile must be a 10 digit number")
	}
	customer, err := s.customers.Find(ctx, mobile)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	return customer, nil
}

// Delete removes every profile saved under mobile.
func (s *service) Delete(ctx context.Context, mobile string) error {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "mobile is required")
	}
	return s.customers.Remove(ctx, mobile)
}
