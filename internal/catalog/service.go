package catalog

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/grameenmart/storefront/pkg/db/models"
	"github.com/grameenmart/storefront/pkg/enums"
	pkgerrors "github.com/grameenmart/storefront/pkg/errors"
	"github.com/grameenmart/storefront/pkg/logger"
)

// DefaultMaxImageBytes caps uploaded product images.
const DefaultMaxImageBytes = 5 * 1024 * 1024

type productBinding interface {
	Items(ctx context.Context) ([]models.Product, error)
	Find(ctx context.Context, id int64) (*models.Product, error)
	Add(ctx context.Context, product models.Product) error
	Update(ctx context.Context, id int64, patch models.ProductPatch) error
	Remove(ctx context.Context, id int64) error
	SetAll(ctx context.Context, products []models.Product) error
}

// Service manages the product catalog on behalf of the storefront and the
// admin panel.
type Service interface {
	List(ctx context.Context, filter Filter) ([]models.Product, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, input CreateProductInput) (*models.Product, error)
	Update(ctx context.Context, id int64, patch models.ProductPatch) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
	ToggleStock(ctx context.Context, id int64) (*models.Product, error)
	SaveAll(ctx context.Context, products []models.Product) error
	SetImage(ctx context.Context, id int64, data []byte) (*models.Product, error)
	RemoveImage(ctx context.Context, id int64) (*models.Product, error)
}

// CreateProductInput is a new catalog entry. Unit, category and stock fall
// back to kg, vegetable and in stock.
type CreateProductInput struct {
	Name          string                `json:"name"`
	MalayalamName string                `json:"malayalamName"`
	Description   string                `json:"description"`
	Price         float64               `json:"price"`
	MarketPrice   float64               `json:"marketPrice"`
	Unit          enums.ProductUnit     `json:"unit"`
	Category      enums.ProductCategory `json:"category"`
	InStock       *bool                 `json:"inStock"`
	ImageURL      string                `json:"imageUrl"`
}

type service struct {
	products      productBinding
	logg          *logger.Logger
	maxImageBytes int
	now           func() time.Time
}

// Option configures optional service behavior.
type Option func(*service)

// WithClock overrides the time source used for ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMaxImageBytes overrides DefaultMaxImageBytes.
func WithMaxImageBytes(limit int) Option {
	return func(s *service) {
		if limit > 0 {
			s.maxImageBytes = limit
		}
	}
}

func NewService(products productBinding, logg *logger.Logger, opts ...Option) (Service, error) {
	if products == nil {
		return nil, fmt.Errorf("product binding required")
	}
	svc := &service{
		products:      products,
		logg:          logg,
		maxImageBytes: DefaultMaxImageBytes,
		now:           time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]models.Product, error) {
	if !filter.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown product filter %q", filter))
	}
	items, err := s.products.Items(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, len(items))
	for _, product := range items {
		if filter.Match(product) {
			out = append(out, product)
		}
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.Product, error) {
	return s.mustFind(ctx, id)
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	malayalam := strings.TrimSpace(input.MalayalamName)
	if name == "" || malayalam == "" || input.Price <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Please fill in all required fields")
	}

	unit := input.Unit
	if unit == "" {
		unit = enums.ProductUnitKg
	}
	if !unit.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid product unit %q", unit))
	}
	category := input.Category
	if category == "" {
		category = enums.ProductCategoryVegetable
	}
	if !category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid product category %q", category))
	}
	inStock := true
	if input.InStock != nil {
		inStock = *input.InStock
	}

	now := s.now().UTC()
	product := models.Product{
		ID:            now.UnixMilli(),
		Name:          name,
		MalayalamName: malayalam,
		Description:   strings.TrimSpace(input.Description),
		Price:         input.Price,
		MarketPrice:   input.MarketPrice,
		Unit:          unit,
		Category:      category,
		InStock:       inStock,
		Image:         models.PlaceholderImage,
		ImageURL:      input.ImageURL,
		CreatedAt:     &now,
	}
	if err := s.products.Add(ctx, product); err != nil {
		return nil, err
	}
	if s.logg != nil {
		s.logg.Info(ctx, fmt.Sprintf("product %d (%s) added", product.ID, product.Name))
	}
	return s.mustFind(ctx, product.ID)
}

func (s *service) Update(ctx context.Context, id int64, patch models.ProductPatch) (*models.Product, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	if _, err := s.mustFind(ctx, id); err != nil {
		return nil, err
	}
	if err := s.products.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.mustFind(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.products.Remove(ctx, id)
}

func (s *service) ToggleStock(ctx context.Context, id int64) (*models.Product, error) {
	current, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}
	inStock := !current.InStock
	if err := s.products.Update(ctx, id, models.ProductPatch{InStock: &inStock}); err != nil {
		return nil, err
	}
	return s.mustFind(ctx, id)
}

func (s *service) SaveAll(ctx context.Context, products []models.Product) error {
	if products == nil {
		products = []models.Product{}
	}
	return s.products.SetAll(ctx, products)
}

// SetImage stores the upload inline as a data URL on the product.
func (s *service) SetImage(ctx context.Context, id int64, data []byte) (*models.Product, error) {
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Please select an image file")
	}
	if len(data) > s.maxImageBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Please select an image smaller than %dMB", s.maxImageBytes/(1024*1024)))
	}
	mediaType := detectImageType(data)
	if mediaType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Please select an image file")
	}
	if _, err := s.mustFind(ctx, id); err != nil {
		return nil, err
	}
	dataURL := "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
	if err := s.products.Update(ctx, id, models.ProductPatch{ImageURL: &dataURL}); err != nil {
		return nil, err
	}
	return s.mustFind(ctx, id)
}

func (s *service) RemoveImage(ctx context.Context, id int64) (*models.Product, error) {
	if _, err := s.mustFind(ctx, id); err != nil {
		return nil, err
	}
	empty := ""
	if err := s.products.Update(ctx, id, models.ProductPatch{ImageURL: &empty}); err != nil {
		return nil, err
	}
	return s.mustFind(ctx, id)
}

func (s *service) mustFind(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.products.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

// detectImageType sniffs the payload and returns its image media type, or ""
// for anything that is not an image.
func detectImageType(data []byte) string {
	detected := mimetype.Detect(data)
	mediaType, _, _ := strings.Cut(detected.String(), ";")
	mediaType = strings.TrimSpace(mediaType)
	if !strings.HasPrefix(mediaType, "image/") {
		return ""
	}
	return mediaType
}

func validatePatch(patch models.ProductPatch) error {
	var violations []string
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		violations = append(violations, "name must not be empty")
	}
	if patch.MalayalamName != nil && strings.TrimSpace(*patch.MalayalamName) == "" {
		violations = append(violations, "malayalamName must not be empty")
	}
	if patch.Price != nil && *patch.Price <= 0 {
		violations = append(violations, "price must be greater than zero")
	}
	if patch.MarketPrice != nil && *patch.MarketPrice < 0 {
		violations = append(violations, "marketPrice must not be negative")
	}
	if patch.Unit != nil && !patch.Unit.IsValid() {
		violations = append(violations, fmt.Sprintf("invalid product unit %q", *patch.Unit))
	}
	if patch.Category != nil && !patch.Category.IsValid() {
		violations = append(violations, fmt.Sprintf("invalid product category %q", *patch.Category))
	}
	if len(violations) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid product update").WithDetails(violations)
}
