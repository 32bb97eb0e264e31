package cart

import (
	"context"
	"fmt"
	"regexp"

	"github.com/grameenmart/storefront/pkg/db/models"
	"github.com/grameenmart/storefront/pkg/enums"
	pkgerrors "github.com/grameenmart/storefront/pkg/errors"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

type productFinder interface {
	Find(ctx context.Context, id int64) (*models.Product, error)
}

// Service exposes session cart operations.
type Service interface {
	Get(ctx context.Context, sessionID string) (*Cart, error)
	AddItem(ctx context.Context, sessionID string, input AddItemInput) (*Cart, error)
	RemoveItem(ctx context.Context, sessionID string, productID int64, unit enums.SelectedUnit) (*Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

// AddItemInput is one "add to cart" action. SelectedUnit defaults to the
// product's default unit; Quantity defaults to 1.
type AddItemInput struct {
	ProductID    int64
	SelectedUnit enums.SelectedUnit
	Quantity     float64
}

type service struct {
	store    *Store
	products productFinder
}

func NewService(store *Store, products productFinder) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	return &service{store: store, products: products}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*Cart, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}
	return s.load(ctx, sessionID)
}

func (s *service) AddItem(ctx context.Context, sessionID string, input AddItemInput) (*Cart, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}

	product, err := s.products.Find(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if !product.InStock {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s is currently out of stock.", product.Name))
	}

	unit := input.SelectedUnit
	if unit == "" {
		unit = product.Unit.DefaultSelectedUnit()
	}
	if !product.Unit.Allows(unit) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit not offered for this product").
			WithDetails(map[string]any{"selectedUnit": unit, "options": product.Unit.UnitOptions()})
	}

	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 || quantity > maxPerAdd(unit) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be between 1 and %v %s", maxPerAdd(unit), unit))
	}

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cart.Add(*product, unit, quantity)
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *service) RemoveItem(ctx context.Context, sessionID string, productID int64, unit enums.SelectedUnit) (*Cart, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !cart.Remove(productID, unit) {
		return cart, nil
	}
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	if err := validateSessionID(sessionID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) load(ctx context.Context, sessionID string) (*Cart, error) {
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

func (s *service) save(ctx context.Context, cart *Cart) error {
	if err := s.store.Save(ctx, cart); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return nil
}

func validateSessionID(sessionID string) error {
	if !sessionIDPattern.MatchString(sessionID) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid cart session id")
	}
	return nil
}
